package app

import (
	"context"
	"strconv"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/sourcegraph/conc"
)

func readKey(t testing.TB, h *Host, key string) string {
	t.Helper()
	var value string
	err := h.View(context.Background(), func(ctx context.Context, db custody.ReadOnlyKVStore) error {
		raw, err := db.Get([]byte(key))
		value = string(raw)
		return err
	})
	assert.Nil(t, err)
	return value
}

func set(key, value string) UpdateFn {
	return func(ctx context.Context, db custody.KVStore) error {
		return db.Set([]byte(key), []byte(value))
	}
}

func TestUpdateCommitsOrDiscards(t *testing.T) {
	cases := map[string]struct {
		fn      UpdateFn
		wantErr *errors.Error
		want    string
	}{
		"success is written": {
			fn:   set("k", "new"),
			want: "new",
		},
		"error discards changes": {
			fn: func(ctx context.Context, db custody.KVStore) error {
				if err := db.Set([]byte("k"), []byte("new")); err != nil {
					return err
				}
				return errors.Wrap(errors.ErrState, "rejected")
			},
			wantErr: errors.ErrState,
			want:    "old",
		},
		"panic discards changes": {
			fn: func(ctx context.Context, db custody.KVStore) error {
				if err := db.Set([]byte("k"), []byte("new")); err != nil {
					return err
				}
				panic("boom")
			},
			wantErr: errors.ErrPanic,
			want:    "old",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			h := NewHost(store.MemStore())
			assert.Nil(t, h.Update(context.Background(), "init", set("k", "old")))

			err := h.Update(context.Background(), "test", tc.fn)
			if tc.wantErr == nil {
				assert.Nil(t, err)
			} else {
				assert.IsErr(t, tc.wantErr, err)
			}
			assert.Equal(t, tc.want, readKey(t, h, "k"))
		})
	}
}

func TestNestedUpdateObservesOuterChanges(t *testing.T) {
	h := NewHost(store.MemStore())

	err := h.Update(context.Background(), "outer", func(ctx context.Context, db custody.KVStore) error {
		if err := db.Set([]byte("sealed"), []byte("yes")); err != nil {
			return err
		}
		var seen []byte
		err := h.Update(ctx, "inner", func(ctx context.Context, db custody.KVStore) error {
			var err error
			seen, err = db.Get([]byte("sealed"))
			if err != nil {
				return err
			}
			return db.Set([]byte("inner"), []byte("done"))
		})
		if err != nil {
			return err
		}
		if string(seen) != "yes" {
			t.Errorf("inner call must see the outer change, got %q", seen)
		}
		return nil
	})
	assert.Nil(t, err)
	assert.Equal(t, "yes", readKey(t, h, "sealed"))
	assert.Equal(t, "done", readKey(t, h, "inner"))
}

func TestFailedNestedUpdateDiscardsOnlyItsSavepoint(t *testing.T) {
	h := NewHost(store.MemStore())

	err := h.Update(context.Background(), "outer", func(ctx context.Context, db custody.KVStore) error {
		if err := db.Set([]byte("outer"), []byte("kept")); err != nil {
			return err
		}
		err := h.Update(ctx, "inner", func(ctx context.Context, db custody.KVStore) error {
			if err := db.Set([]byte("inner"), []byte("dropped")); err != nil {
				return err
			}
			return errors.Wrap(errors.ErrState, "inner rejects")
		})
		assert.IsErr(t, errors.ErrState, err)

		got, err := db.Get([]byte("inner"))
		if err != nil {
			return err
		}
		if got != nil {
			t.Errorf("failed inner call leaked %q", got)
		}
		return nil
	})
	assert.Nil(t, err)
	assert.Equal(t, "kept", readKey(t, h, "outer"))
	assert.Equal(t, "", readKey(t, h, "inner"))
}

func TestFailedOuterDropsNestedChanges(t *testing.T) {
	h := NewHost(store.MemStore())

	err := h.Update(context.Background(), "outer", func(ctx context.Context, db custody.KVStore) error {
		if err := h.Update(ctx, "inner", set("inner", "written")); err != nil {
			return err
		}
		return errors.Wrap(errors.ErrExecution, "outer fails")
	})
	assert.IsErr(t, errors.ErrExecution, err)
	assert.Equal(t, "", readKey(t, h, "inner"))
}

func TestAfterCommit(t *testing.T) {
	h := NewHost(store.MemStore())

	var calls []string
	hook := func(name string) func() {
		return func() { calls = append(calls, name) }
	}

	err := h.Update(context.Background(), "ok", func(ctx context.Context, db custody.KVStore) error {
		if err := h.AfterCommit(ctx, hook("outer")); err != nil {
			return err
		}
		if len(calls) != 0 {
			t.Error("hook called before commit")
		}
		// hooks of a failed nested call are dropped
		_ = h.Update(ctx, "failing", func(ctx context.Context, db custody.KVStore) error {
			if err := h.AfterCommit(ctx, hook("failed inner")); err != nil {
				return err
			}
			return errors.ErrState
		})
		return h.Update(ctx, "inner", func(ctx context.Context, db custody.KVStore) error {
			return h.AfterCommit(ctx, hook("inner"))
		})
	})
	assert.Nil(t, err)
	assert.Equal(t, []string{"outer", "inner"}, calls)

	calls = nil
	err = h.Update(context.Background(), "failing", func(ctx context.Context, db custody.KVStore) error {
		if err := h.AfterCommit(ctx, hook("never")); err != nil {
			return err
		}
		return errors.ErrState
	})
	assert.IsErr(t, errors.ErrState, err)
	assert.Equal(t, 0, len(calls))

	assert.IsErr(t, errors.ErrHuman, h.AfterCommit(context.Background(), hook("no call")))
}

func TestHookMayUseHost(t *testing.T) {
	h := NewHost(store.MemStore())

	var value string
	err := h.Update(context.Background(), "write", func(ctx context.Context, db custody.KVStore) error {
		if err := db.Set([]byte("k"), []byte("v")); err != nil {
			return err
		}
		return h.AfterCommit(ctx, func() {
			value = readKey(t, h, "k")
		})
	})
	assert.Nil(t, err)
	assert.Equal(t, "v", value)
}

func TestFinishedScopeCannotBeReused(t *testing.T) {
	h := NewHost(store.MemStore())

	var leaked context.Context
	assert.Nil(t, h.Update(context.Background(), "leak", func(ctx context.Context, db custody.KVStore) error {
		leaked = ctx
		return nil
	}))

	assert.IsErr(t, errors.ErrHuman, h.Update(leaked, "reuse", set("k", "v")))
	assert.IsErr(t, errors.ErrHuman, h.AfterCommit(leaked, func() {}))
	assert.Equal(t, "", readKey(t, h, "k"))
}

func TestUpdateWithinViewIsRejected(t *testing.T) {
	h := NewHost(store.MemStore())

	err := h.View(context.Background(), func(ctx context.Context, db custody.ReadOnlyKVStore) error {
		return h.Update(ctx, "write", set("k", "v"))
	})
	assert.IsErr(t, errors.ErrHuman, err)
	assert.Equal(t, "", readKey(t, h, "k"))
}

func TestScopesOfDifferentHostsAreIndependent(t *testing.T) {
	first := NewHost(store.MemStore())
	second := NewHost(store.MemStore())

	err := first.Update(context.Background(), "first", func(ctx context.Context, db custody.KVStore) error {
		// second host takes its own lock and commits on its own
		return second.Update(ctx, "second", set("k", "v"))
	})
	assert.Nil(t, err)
	assert.Equal(t, "v", readKey(t, second, "k"))
	assert.Equal(t, "", readKey(t, first, "k"))
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	const workers = 40

	h := NewHost(store.MemStore())
	increment := func(ctx context.Context, db custody.KVStore) error {
		raw, err := db.Get([]byte("counter"))
		if err != nil {
			return err
		}
		n := 0
		if raw != nil {
			if n, err = strconv.Atoi(string(raw)); err != nil {
				return err
			}
		}
		// mirror writes that readers must only ever see together
		if err := db.Set([]byte("mirror"), []byte(strconv.Itoa(n+1))); err != nil {
			return err
		}
		return db.Set([]byte("counter"), []byte(strconv.Itoa(n+1)))
	}

	var wg conc.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Go(func() {
			if err := h.Update(context.Background(), "increment", increment); err != nil {
				t.Errorf("increment: %+v", err)
			}
		})
		wg.Go(func() {
			err := h.View(context.Background(), func(ctx context.Context, db custody.ReadOnlyKVStore) error {
				counter, err := db.Get([]byte("counter"))
				if err != nil {
					return err
				}
				mirror, err := db.Get([]byte("mirror"))
				if err != nil {
					return err
				}
				if string(counter) != string(mirror) {
					t.Errorf("view observed partial state: %q != %q", counter, mirror)
				}
				return nil
			})
			if err != nil {
				t.Errorf("view: %+v", err)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, strconv.Itoa(workers), readKey(t, h, "counter"))
}
