package wallet

import (
	"context"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/errors"
)

// DefaultID is used when a wallet is created without an ID.
const DefaultID = "wallet"

// Params are the construction parameters of a wallet.
type Params struct {
	ID       string            `json:"id"`
	Owners   []custody.Address `json:"owners"`
	Required uint32            `json:"required"`
	Token    custody.Address   `json:"token,omitempty"`
}

// Deps are the collaborators of a wallet. Token may be nil, in which case
// token transactions fail on execution. Notifier may be nil.
type Deps struct {
	Native   NativeLedger
	Token    TokenContract
	Notifier Notifier
}

// Wallet is a multi-signature wallet running on a host. All methods are
// safe for concurrent use.
type Wallet struct {
	host       *app.Host
	id         string
	address    custody.Address
	registry   *Registry
	ledger     *Ledger
	tracker    *Tracker
	dispatcher *Dispatcher
	native     NativeLedger
	token      TokenContract
	notifier   Notifier
}

// Create stores a new wallet. It fails with ErrDuplicate if a wallet with
// the same ID exists.
func Create(ctx context.Context, host *app.Host, params Params, deps Deps) (*Wallet, error) {
	var conf *Config
	err := host.Update(ctx, "wallet/create", func(ctx context.Context, db custody.KVStore) error {
		var err error
		conf, err = createConfig(db, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newWallet(host, idOrDefault(params.ID), conf, deps)
}

// Open loads the wallet with given ID. It fails with ErrNotFound if no
// such wallet was created.
func Open(ctx context.Context, host *app.Host, id string, deps Deps) (*Wallet, error) {
	id = idOrDefault(id)
	if err := validateID(id); err != nil {
		return nil, err
	}
	var conf Config
	err := host.View(ctx, func(ctx context.Context, db custody.ReadOnlyKVStore) error {
		return newConfigBucket().One(db, []byte(id), &conf)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "wallet %q", id)
	}
	return newWallet(host, id, &conf, deps)
}

func idOrDefault(id string) string {
	if id == "" {
		return DefaultID
	}
	return id
}

// validateID accepts 3 to 20 lower case letters, digits and underscores.
// The ID prefixes every key of the wallet, so it must not contain the
// separator.
func validateID(id string) error {
	if len(id) < 3 || len(id) > 20 {
		return errors.Wrapf(ErrInvalidWalletID, "%q", id)
	}
	for _, c := range id {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '_' {
			return errors.Wrapf(ErrInvalidWalletID, "%q", id)
		}
	}
	return nil
}

func createConfig(db custody.KVStore, params Params) (*Config, error) {
	id := idOrDefault(params.ID)
	if err := validateID(id); err != nil {
		return nil, err
	}
	conf := &Config{
		Owners:   params.Owners,
		Required: params.Required,
		Token:    params.Token,
		Address:  AddressOf(id),
	}
	// Validation errors are returned as they are, not as invalid models.
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	bucket := newConfigBucket()
	switch err := bucket.Has(db, []byte(id)); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "wallet %q", id)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	if err := bucket.Put(db, []byte(id), conf); err != nil {
		return nil, err
	}
	return conf, nil
}

func newWallet(host *app.Host, id string, conf *Config, deps Deps) (*Wallet, error) {
	registry, err := NewRegistry(conf.Owners, conf.Required, conf.Token)
	if err != nil {
		return nil, err
	}
	if deps.Token != nil && !deps.Token.Address().Equals(conf.Token) {
		return nil, errors.Wrapf(errors.ErrInput, "wallet token is %s, got contract %s", conf.Token, deps.Token.Address())
	}
	ledger := newLedger(id, registry)
	return &Wallet{
		host:       host,
		id:         id,
		address:    conf.Address,
		registry:   registry,
		ledger:     ledger,
		tracker:    newTracker(registry, ledger),
		dispatcher: newDispatcher(registry, ledger, conf.Address, deps.Native, deps.Token),
		native:     deps.Native,
		token:      deps.Token,
		notifier:   deps.Notifier,
	}, nil
}

// update runs fn as a host call and publishes ev once it is committed.
func (w *Wallet) update(ctx context.Context, op string, fn func(ctx context.Context, db custody.KVStore) (*Event, error)) error {
	ctx = custody.WithLogInfo(ctx, "wallet", w.id)
	err := w.host.Update(ctx, "wallet/"+op, func(ctx context.Context, db custody.KVStore) error {
		ev, err := fn(ctx, db)
		if err != nil || ev == nil || w.notifier == nil {
			return err
		}
		ev.Wallet = w.id
		return w.host.AfterCommit(ctx, func() { w.notifier.Notify(*ev) })
	})
	countOperation(op, err)
	return err
}

func (w *Wallet) view(ctx context.Context, fn func(ctx context.Context, db custody.ReadOnlyKVStore) error) error {
	return w.host.View(custody.WithLogInfo(ctx, "wallet", w.id), fn)
}

// Submit adds a transaction and returns its index.
func (w *Wallet) Submit(
	ctx context.Context,
	caller, to custody.Address,
	amount uint64,
	payload []byte,
	kind AssetKind,
) (uint64, error) {
	var index uint64
	err := w.update(ctx, "submit", func(ctx context.Context, db custody.KVStore) (*Event, error) {
		var err error
		index, err = w.ledger.Submit(db, caller, to, amount, payload, kind)
		if err != nil {
			return nil, err
		}
		return &Event{
			Kind:      EventSubmission,
			Index:     index,
			Owner:     caller,
			Recipient: to,
			Amount:    amount,
			Payload:   payload,
			Asset:     kind,
		}, nil
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// Confirm records the confirmation of caller for the transaction at index.
func (w *Wallet) Confirm(ctx context.Context, caller custody.Address, index uint64) error {
	return w.update(ctx, "confirm", func(ctx context.Context, db custody.KVStore) (*Event, error) {
		if err := w.tracker.Confirm(db, caller, index); err != nil {
			return nil, err
		}
		return &Event{Kind: EventConfirmation, Index: index, Owner: caller}, nil
	})
}

// Revoke removes the confirmation of caller for the transaction at index.
func (w *Wallet) Revoke(ctx context.Context, caller custody.Address, index uint64) error {
	return w.update(ctx, "revoke", func(ctx context.Context, db custody.KVStore) (*Event, error) {
		if err := w.tracker.Revoke(db, caller, index); err != nil {
			return nil, err
		}
		return &Event{Kind: EventRevocation, Index: index, Owner: caller}, nil
	})
}

// Execute performs the transaction at index. If the transfer fails
// nothing changes, the transaction stays pending.
func (w *Wallet) Execute(ctx context.Context, caller custody.Address, index uint64) error {
	return w.update(ctx, "execute", func(ctx context.Context, db custody.KVStore) (*Event, error) {
		if err := w.dispatcher.Execute(ctx, db, caller, index); err != nil {
			return nil, err
		}
		return &Event{Kind: EventExecution, Index: index, Owner: caller}, nil
	})
}

// ID returns the wallet ID.
func (w *Wallet) ID() string {
	return w.id
}

// Address returns the account holding the funds of the wallet.
func (w *Wallet) Address() custody.Address {
	return w.address
}

// Owners returns the owners in the order the wallet was created with.
func (w *Wallet) Owners() []custody.Address {
	return w.registry.Owners()
}

// IsOwner returns true if addr is an owner.
func (w *Wallet) IsOwner(addr custody.Address) bool {
	return w.registry.IsOwner(addr)
}

// Required returns the number of confirmations a transaction needs.
func (w *Wallet) Required() uint32 {
	return w.registry.Required()
}

// Token returns the address of the wallet token, which may be empty.
func (w *Wallet) Token() custody.Address {
	return w.registry.Token()
}

// Count returns the number of submitted transactions.
func (w *Wallet) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := w.view(ctx, func(ctx context.Context, db custody.ReadOnlyKVStore) error {
		var err error
		n, err = w.ledger.Count(db)
		return err
	})
	return n, err
}

// Transaction returns a snapshot of the transaction at index.
func (w *Wallet) Transaction(ctx context.Context, index uint64) (*Transaction, error) {
	var tx *Transaction
	err := w.view(ctx, func(ctx context.Context, db custody.ReadOnlyKVStore) error {
		var err error
		tx, err = w.ledger.Transaction(db, index)
		return err
	})
	return tx, err
}

// IsConfirmed returns true if owner confirmed the transaction at index.
func (w *Wallet) IsConfirmed(ctx context.Context, index uint64, owner custody.Address) (bool, error) {
	var ok bool
	err := w.view(ctx, func(ctx context.Context, db custody.ReadOnlyKVStore) error {
		var err error
		ok, err = w.tracker.IsConfirmed(db, index, owner)
		return err
	})
	return ok, err
}

// Confirmations returns the owners that confirmed the transaction at index.
func (w *Wallet) Confirmations(ctx context.Context, index uint64) ([]custody.Address, error) {
	var owners []custody.Address
	err := w.view(ctx, func(ctx context.Context, db custody.ReadOnlyKVStore) error {
		var err error
		owners, err = w.tracker.Confirmations(db, index)
		return err
	})
	return owners, err
}

// Filter selects transactions by state.
type Filter struct {
	Pending  bool
	Executed bool
}

// Transactions returns the indices of all transactions matching filter,
// in ascending order.
func (w *Wallet) Transactions(ctx context.Context, filter Filter) ([]uint64, error) {
	var res []uint64
	err := w.view(ctx, func(ctx context.Context, db custody.ReadOnlyKVStore) error {
		n, err := w.ledger.Count(db)
		if err != nil {
			return err
		}
		for i := uint64(0); i < n; i++ {
			tx, err := w.ledger.Transaction(db, i)
			if err != nil {
				return err
			}
			if (filter.Pending && !tx.Executed) || (filter.Executed && tx.Executed) {
				res = append(res, i)
			}
		}
		return nil
	})
	return res, err
}

// NativeBalance returns the native asset held by the wallet.
func (w *Wallet) NativeBalance(ctx context.Context) (uint64, error) {
	if w.native == nil {
		return 0, errors.Wrap(errors.ErrEmpty, "no native ledger")
	}
	var n uint64
	err := w.view(ctx, func(ctx context.Context, db custody.ReadOnlyKVStore) error {
		var err error
		n, err = w.native.Balance(db, w.address)
		return err
	})
	return n, err
}

// TokenBalance returns the amount of the wallet token held by the wallet.
func (w *Wallet) TokenBalance(ctx context.Context) (uint64, error) {
	if w.token == nil {
		return 0, errors.Wrap(errors.ErrEmpty, "no token contract")
	}
	var n uint64
	err := w.view(ctx, func(ctx context.Context, db custody.ReadOnlyKVStore) error {
		var err error
		n, err = w.token.BalanceOf(db, w.address)
		return err
	})
	return n, err
}
