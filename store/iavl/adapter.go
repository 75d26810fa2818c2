package iavl

import (
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// DefaultCacheSize is the number of tree nodes kept in memory.
const DefaultCacheSize = 10000

// CommitStore keeps the state in a versioned iavl tree. Every successful
// write of a cache wrap is saved as a new version of the tree, so the
// on-disk state only ever changes as a whole.
type CommitStore struct {
	db   dbm.DB
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = (*CommitStore)(nil)

// NewCommitStore opens or creates a goleveldb backed tree named name in
// directory dir and loads the latest saved version.
func NewCommitStore(dir, name string) (*CommitStore, error) {
	db, err := openDB(dir, name)
	if err != nil {
		return nil, err
	}
	return NewCommitStoreWithDB(db)
}

func openDB(dir, name string) (db dbm.DB, err error) {
	// goleveldb panics when the directory is not usable.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(errors.ErrDatabase, "open %s: %v", dir, r)
		}
	}()
	return dbm.NewDB(name, dbm.GoLevelDBBackend, dir), nil
}

// NewCommitStoreWithDB loads the latest version of the tree stored in db.
func NewCommitStoreWithDB(db dbm.DB) (*CommitStore, error) {
	tree := iavl.NewMutableTree(db, DefaultCacheSize)
	if _, err := tree.Load(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return &CommitStore{db: db, tree: tree}, nil
}

// Get returns the value of the working tree.
// Returns nil iff key doesn't exist.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, errors.Wrap(errors.ErrDatabase, "empty key")
	}
	_, val := s.tree.Get(key)
	return val, nil
}

// Has checks if a key exists in the working tree.
func (s *CommitStore) Has(key []byte) (bool, error) {
	if len(key) == 0 {
		return false, errors.Wrap(errors.ErrDatabase, "empty key")
	}
	return s.tree.Has(key), nil
}

// Set modifies the working tree. The change is persisted with the next
// Commit.
func (s *CommitStore) Set(key, value []byte) error {
	return treeWriter{s.tree}.Set(key, value)
}

// Delete removes the key from the working tree. The change is persisted
// with the next Commit.
func (s *CommitStore) Delete(key []byte) error {
	return treeWriter{s.tree}.Delete(key)
}

// NewBatch returns a batch that applies all of its operations and saves
// a new version in one Write call.
func (s *CommitStore) NewBatch() store.Batch {
	return &versionBatch{
		NonAtomicBatch: store.NewNonAtomicBatch(treeWriter{s.tree}),
		commit:         s,
	}
}

// CacheWrap gives us a savepoint to perform actions. Writing the returned
// cache saves a new version.
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	return store.NewBTreeCacheWrap(s, s.NewBatch(), nil)
}

// Commit saves the working tree as the next version.
func (s *CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.CommitID{Version: version, Hash: hash}, nil
}

// LatestVersion returns info on the latest version saved to disk
func (s *CommitStore) LatestVersion() store.CommitID {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}
}

// Close releases the underlying database.
func (s *CommitStore) Close() error {
	s.db.Close()
	return nil
}

// versionBatch applies all collected operations to the working tree
// and saves a version. On failure the working tree is rolled back to
// the last saved version.
type versionBatch struct {
	*store.NonAtomicBatch
	commit *CommitStore
}

func (b *versionBatch) Write() error {
	if err := b.NonAtomicBatch.Write(); err != nil {
		b.commit.tree.Rollback()
		return err
	}
	if _, err := b.commit.Commit(); err != nil {
		b.commit.tree.Rollback()
		return err
	}
	return nil
}

type treeWriter struct {
	tree *iavl.MutableTree
}

func (w treeWriter) Set(key, value []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrDatabase, "empty key")
	}
	if value == nil {
		return errors.Wrap(errors.ErrDatabase, "nil value")
	}
	w.tree.Set(key, value)
	return nil
}

func (w treeWriter) Delete(key []byte) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrDatabase, "empty key")
	}
	w.tree.Remove(key)
	return nil
}
