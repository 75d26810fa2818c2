package app

import (
	"context"
	"sync"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// UpdateFn is executed by Host.Update with a store that is committed only
// when the function returns no error.
type UpdateFn func(ctx context.Context, db custody.KVStore) error

// ViewFn is executed by Host.View with a read only store.
type ViewFn func(ctx context.Context, db custody.ReadOnlyKVStore) error

// Host serializes all calls against a store and commits each of them
// atomically.
type Host struct {
	mu sync.RWMutex
	db custody.CacheableKVStore
}

// NewHost returns a host owning given store. The store must not be used
// directly once the host is created.
func NewHost(db custody.CacheableKVStore) *Host {
	return &Host{db: db}
}

// scope is the state of one active call.
type scope struct {
	db       custody.CacheableKVStore
	writable bool
	hooks    []func()
	// finished is shared by all scopes of a single top level call.
	finished *bool
}

type scopeKey struct {
	host *Host
}

func (h *Host) activeScope(ctx context.Context) *scope {
	s, _ := ctx.Value(scopeKey{host: h}).(*scope)
	return s
}

func (h *Host) withScope(ctx context.Context, s *scope) context.Context {
	return context.WithValue(ctx, scopeKey{host: h}, s)
}

// Update runs fn with exclusive access to the store. All changes made by
// fn are written if it returns nil and dropped otherwise, including when
// fn panics. Hooks registered with AfterCommit run once the changes are
// written and the lock is released.
//
// When ctx belongs to a call already running on this host, fn is executed
// on a savepoint of that call instead. Its changes become part of the
// outer call and are dropped if either fn or the outer call fails.
// Code running inside fn must pass its ctx on; an Update or View started
// from fn with an unrelated context blocks forever.
func (h *Host) Update(ctx context.Context, op string, fn UpdateFn) error {
	if parent := h.activeScope(ctx); parent != nil {
		if !parent.writable {
			return errors.Wrapf(errors.ErrHuman, "%s: cannot update within a view", op)
		}
		return h.nested(ctx, parent, true, func(ctx context.Context, db custody.KVCacheWrap) error {
			return fn(ctx, db)
		})
	}

	start := time.Now()
	hooks, err := h.update(ctx, fn)
	logCall(ctx, op, start, err)
	observeCall(op, start, err)
	if err != nil {
		return err
	}
	runHooks(ctx, op, hooks)
	return nil
}

func (h *Host) update(ctx context.Context, fn UpdateFn) ([]func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cache := h.db.CacheWrap()
	finished := false
	s := &scope{db: cache, writable: true, finished: &finished}
	defer func() { finished = true }()

	if err := call(h.withScope(ctx, s), cache, fn); err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "cannot commit")
	}
	return s.hooks, nil
}

// View runs fn with a read only store. It can run concurrently with
// other views but never with an update, so fn always observes committed
// state. Within an active call fn observes the state of that call.
func (h *Host) View(ctx context.Context, fn ViewFn) error {
	if parent := h.activeScope(ctx); parent != nil {
		return h.nested(ctx, parent, false, func(ctx context.Context, db custody.KVCacheWrap) error {
			return fn(ctx, db)
		})
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	finished := false
	s := &scope{db: h.db, writable: false, finished: &finished}
	defer func() { finished = true }()

	err := func() (err error) {
		defer errors.Recover(&err)
		return fn(h.withScope(ctx, s), h.db)
	}()
	if err != nil {
		custody.GetLogger(ctx).Debug("view failed", "err", err)
	}
	return err
}

// nested runs fn on a savepoint of parent. The savepoint is written into
// parent only when fn succeeds.
func (h *Host) nested(
	ctx context.Context,
	parent *scope,
	writable bool,
	fn func(context.Context, custody.KVCacheWrap) error,
) (err error) {
	if *parent.finished {
		return errors.Wrap(errors.ErrHuman, "call already finished")
	}

	cache := parent.db.CacheWrap()
	s := &scope{db: cache, writable: writable, finished: parent.finished}
	err = func() (err error) {
		defer errors.Recover(&err)
		return fn(h.withScope(ctx, s), cache)
	}()
	if err != nil || !writable {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "cannot write savepoint")
	}
	parent.hooks = append(parent.hooks, s.hooks...)
	return nil
}

// AfterCommit registers fn to be called once the top level call that ctx
// belongs to is committed. If that call fails, fn is never called.
func (h *Host) AfterCommit(ctx context.Context, fn func()) error {
	s := h.activeScope(ctx)
	if s == nil || !s.writable {
		return errors.Wrap(errors.ErrHuman, "after commit hook requires an update")
	}
	if *s.finished {
		return errors.Wrap(errors.ErrHuman, "call already finished")
	}
	s.hooks = append(s.hooks, fn)
	return nil
}

func call(ctx context.Context, db custody.KVStore, fn UpdateFn) (err error) {
	defer errors.Recover(&err)
	return fn(ctx, db)
}

func runHooks(ctx context.Context, op string, hooks []func()) {
	for _, fn := range hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					custody.GetLogger(ctx).Error("after commit hook panicked", "op", op, "panic", r)
				}
			}()
			fn()
		}()
	}
}

// logCall writes information about the time and result to the logger
func logCall(ctx context.Context, op string, start time.Time, err error) {
	delta := time.Since(start)
	logger := custody.GetLogger(ctx).With("op", op, "duration", delta/time.Microsecond)

	if err != nil {
		logger.Error("call failed", "err", err)
	} else {
		logger.Info("call committed")
	}
}
