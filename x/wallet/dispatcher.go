package wallet

import (
	"context"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// NativeLedger moves the native asset.
type NativeLedger interface {
	Balance(db custody.ReadOnlyKVStore, addr custody.Address) (uint64, error)
	Transfer(ctx context.Context, db custody.KVStore, from, to custody.Address, amount uint64, payload []byte) error
}

// TokenContract moves the token of a wallet. Transfer returns false if
// the token declines the transfer.
type TokenContract interface {
	Address() custody.Address
	BalanceOf(db custody.ReadOnlyKVStore, account custody.Address) (uint64, error)
	Transfer(ctx context.Context, db custody.KVStore, from, to custody.Address, amount uint64) (bool, error)
}

// Dispatcher executes confirmed transactions from the wallet account.
type Dispatcher struct {
	registry *Registry
	ledger   *Ledger
	account  custody.Address
	native   NativeLedger
	token    TokenContract
}

func newDispatcher(registry *Registry, ledger *Ledger, account custody.Address, native NativeLedger, token TokenContract) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		ledger:   ledger,
		account:  account,
		native:   native,
		token:    token,
	}
}

// Execute performs the transfer of a confirmed transaction. The
// transaction is stored as executed before the transfer starts. A failed
// transfer returns ErrTransferFailed and leaves the executed transaction
// in db; the caller must drop all changes made to db in that case.
func (d *Dispatcher) Execute(ctx context.Context, db custody.KVStore, caller custody.Address, index uint64) error {
	if err := d.registry.RequireOwner(caller); err != nil {
		return err
	}
	tx, err := d.ledger.Transaction(db, index)
	if err != nil {
		return err
	}
	if tx.Executed {
		return errors.Wrapf(ErrAlreadyExecuted, "index %d", index)
	}
	if tx.Confirmations < d.registry.Required() {
		return errors.Wrapf(ErrInsufficientConfirmations, "%d of %d confirmations", tx.Confirmations, d.registry.Required())
	}

	tx.Executed = true
	if err := d.ledger.save(db, index, tx); err != nil {
		return err
	}
	if err := d.dispatch(ctx, db, tx); err != nil {
		return errors.Wrapf(ErrTransferFailed, "index %d: %s", index, err)
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, db custody.KVStore, tx *Transaction) error {
	switch tx.Kind {
	case AssetNative:
		if d.native == nil {
			return errors.Wrap(errors.ErrEmpty, "no native ledger")
		}
		return d.native.Transfer(ctx, db, d.account, tx.Recipient, tx.Amount, tx.Payload)
	case AssetToken:
		if d.token == nil {
			return errors.Wrap(errors.ErrEmpty, "no token contract")
		}
		ok, err := d.token.Transfer(ctx, db, d.account, tx.Recipient, tx.Amount)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrapf(errors.ErrInsufficientAmount, "token %s declined", d.token.Address())
		}
		return nil
	default:
		return errors.Wrapf(errors.ErrHuman, "unhandled asset kind %d", int32(tx.Kind))
	}
}
