package wallet

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// Ledger keeps the transactions of a wallet. Transactions are appended
// with consecutive indices starting at zero and are never removed.
type Ledger struct {
	registry *Registry
	prefix   []byte
	txs      orm.ModelBucket
	seq      orm.Sequence
}

func newLedger(id string, registry *Registry) *Ledger {
	return &Ledger{
		registry: registry,
		prefix:   []byte(id + "/"),
		txs:      orm.NewModelBucket("wallettx", &Transaction{}),
		seq:      orm.NewSequence("wallettx", id),
	}
}

func (l *Ledger) key(index uint64) []byte {
	return append(append([]byte{}, l.prefix...), orm.EncodeSequence(int64(index))...)
}

// Submit appends a new transaction and returns its index. Only the asset
// kind is checked; recipient and amount are checked on execution.
func (l *Ledger) Submit(
	db custody.KVStore,
	caller, to custody.Address,
	amount uint64,
	payload []byte,
	kind AssetKind,
) (uint64, error) {
	if err := l.registry.RequireOwner(caller); err != nil {
		return 0, err
	}
	if err := kind.Validate(); err != nil {
		return 0, err
	}
	next, err := l.seq.NextInt(db)
	if err != nil {
		return 0, err
	}
	index := uint64(next - 1)
	tx := &Transaction{
		Recipient: to,
		Amount:    amount,
		Payload:   payload,
		Kind:      kind,
	}
	if err := l.save(db, index, tx); err != nil {
		return 0, err
	}
	return index, nil
}

// Count returns the number of submitted transactions.
func (l *Ledger) Count(db custody.ReadOnlyKVStore) (uint64, error) {
	n, _, err := l.seq.Latest(db)
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// Transaction returns a copy of the transaction at index.
func (l *Ledger) Transaction(db custody.ReadOnlyKVStore, index uint64) (*Transaction, error) {
	var tx Transaction
	switch err := l.txs.One(db, l.key(index), &tx); {
	case err == nil:
		return &tx, nil
	case errors.ErrNotFound.Is(err):
		return nil, errors.Wrapf(ErrTxDoesNotExist, "index %d", index)
	default:
		return nil, err
	}
}

func (l *Ledger) save(db custody.KVStore, index uint64, tx *Transaction) error {
	return l.txs.Put(db, l.key(index), tx)
}
