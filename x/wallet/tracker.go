package wallet

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// Tracker records which owners confirmed which transaction and keeps the
// confirmation counter of every transaction in line with it.
type Tracker struct {
	registry *Registry
	ledger   *Ledger
	confirms orm.ModelBucket
}

func newTracker(registry *Registry, ledger *Ledger) *Tracker {
	return &Tracker{
		registry: registry,
		ledger:   ledger,
		confirms: orm.NewModelBucket("walletconfirm", &Confirmation{}),
	}
}

func (t *Tracker) key(index uint64, owner custody.Address) []byte {
	return append(t.ledger.key(index), owner...)
}

// Confirm records the confirmation of caller.
func (t *Tracker) Confirm(db custody.KVStore, caller custody.Address, index uint64) error {
	if err := t.registry.RequireOwner(caller); err != nil {
		return err
	}
	tx, err := t.ledger.Transaction(db, index)
	if err != nil {
		return err
	}
	if tx.Executed {
		return errors.Wrapf(ErrAlreadyExecuted, "index %d", index)
	}
	confirmed, err := t.IsConfirmed(db, index, caller)
	if err != nil {
		return err
	}
	if confirmed {
		return errors.Wrapf(ErrAlreadyConfirmed, "index %d", index)
	}

	if err := t.confirms.Put(db, t.key(index, caller), &Confirmation{Owner: caller}); err != nil {
		return err
	}
	tx.Confirmations++
	return t.ledger.save(db, index, tx)
}

// Revoke removes the confirmation of caller.
func (t *Tracker) Revoke(db custody.KVStore, caller custody.Address, index uint64) error {
	if err := t.registry.RequireOwner(caller); err != nil {
		return err
	}
	tx, err := t.ledger.Transaction(db, index)
	if err != nil {
		return err
	}
	confirmed, err := t.IsConfirmed(db, index, caller)
	if err != nil {
		return err
	}
	if !confirmed {
		return errors.Wrapf(ErrNotConfirmed, "index %d", index)
	}
	if tx.Executed {
		return errors.Wrapf(ErrAlreadyExecuted, "index %d", index)
	}
	if tx.Confirmations == 0 {
		return errors.Wrapf(errors.ErrHuman, "confirmation counter of %d out of sync", index)
	}

	if err := t.confirms.Delete(db, t.key(index, caller)); err != nil {
		return err
	}
	tx.Confirmations--
	return t.ledger.save(db, index, tx)
}

// IsConfirmed returns true if owner confirmed the transaction at index.
func (t *Tracker) IsConfirmed(db custody.ReadOnlyKVStore, index uint64, owner custody.Address) (bool, error) {
	switch err := t.confirms.Has(db, t.key(index, owner)); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

// Confirmations returns the owners that confirmed the transaction at
// index, in the order of the registry.
func (t *Tracker) Confirmations(db custody.ReadOnlyKVStore, index uint64) ([]custody.Address, error) {
	if _, err := t.ledger.Transaction(db, index); err != nil {
		return nil, err
	}
	var res []custody.Address
	for _, o := range t.registry.Owners() {
		ok, err := t.IsConfirmed(db, index, o)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, o)
		}
	}
	return res, nil
}
