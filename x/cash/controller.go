package cash

import (
	"context"
	"math"
	"sync"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// Receiver is implemented by accounts that want to observe, and possibly
// reject, incoming transfers.
//
// Receive runs inside the call that moves the funds. Calls back into the
// host must use the given ctx: a call made with any other context waits
// for the running call to finish and never returns.
type Receiver interface {
	Receive(ctx context.Context, db custody.KVStore, from custody.Address, amount uint64, payload []byte) error
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func(ctx context.Context, db custody.KVStore, from custody.Address, amount uint64, payload []byte) error

// Receive calls fn.
func (fn ReceiverFunc) Receive(ctx context.Context, db custody.KVStore, from custody.Address, amount uint64, payload []byte) error {
	return fn(ctx, db, from, amount, payload)
}

// Controller moves the native asset between accounts.
type Controller struct {
	bucket orm.ModelBucket

	mu        sync.RWMutex
	receivers map[string]Receiver
}

// NewController returns a controller using the default bucket.
func NewController() *Controller {
	return &Controller{
		bucket:    NewBucket(),
		receivers: make(map[string]Receiver),
	}
}

// RegisterReceiver sets the Receiver called for every transfer to addr.
// Registering again replaces the previous one; nil removes it.
func (c *Controller) RegisterReceiver(addr custody.Address, r Receiver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r == nil {
		delete(c.receivers, string(addr))
		return
	}
	c.receivers[string(addr)] = r
}

func (c *Controller) receiver(addr custody.Address) Receiver {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.receivers[string(addr)]
}

// Balance returns the amount held by addr. Unknown accounts hold nothing.
func (c *Controller) Balance(db custody.ReadOnlyKVStore, addr custody.Address) (uint64, error) {
	var acc Account
	switch err := c.bucket.One(db, addr, &acc); {
	case err == nil:
		return acc.Amount, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

// Issue adds amount to the balance of addr. It fails if the balance
// would overflow.
func (c *Controller) Issue(db custody.KVStore, addr custody.Address, amount uint64) error {
	if err := addr.Validate(); err != nil {
		return errors.Wrap(err, "account")
	}
	balance, err := c.Balance(db, addr)
	if err != nil {
		return err
	}
	if balance > math.MaxUint64-amount {
		return errors.Wrapf(errors.ErrOverflow, "balance of %s", addr)
	}
	return c.bucket.Put(db, addr, &Account{Amount: balance + amount})
}

// Transfer moves amount from one account to another and then notifies
// the Receiver of the recipient, if any. A transfer to the zero address
// or beyond the sender balance fails, as does a transfer the Receiver
// rejects. Changes are not reverted here; callers run transfers within
// a host call that is dropped on failure.
func (c *Controller) Transfer(
	ctx context.Context,
	db custody.KVStore,
	from, to custody.Address,
	amount uint64,
	payload []byte,
) error {
	if to.IsZero() || to.Validate() != nil {
		return errors.Wrapf(ErrInvalidRecipient, "%s", to)
	}
	balance, err := c.Balance(db, from)
	if err != nil {
		return err
	}
	if balance < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %d, want %d", balance, amount)
	}
	if !from.Equals(to) {
		if err := c.bucket.Put(db, from, &Account{Amount: balance - amount}); err != nil {
			return err
		}
		if err := c.Issue(db, to, amount); err != nil {
			return err
		}
	}

	if r := c.receiver(to); r != nil {
		if err := r.Receive(ctx, db, from, amount, payload); err != nil {
			return errors.Wrap(ErrRecipientRejected, err.Error())
		}
	}
	return nil
}
