package handlers

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"sync"
	"time"

	cache "github.com/Code-Hex/go-generics-cache"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/client"
	"github.com/iov-one/custody/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const maxBodySize = 1 << 20

type callerKey struct{}

// Caller returns the address that signed the request.
func Caller(ctx context.Context) custody.Address {
	addr, _ := ctx.Value(callerKey{}).(custody.Address)
	return addr
}

// SeenSignatures remembers the signatures of accepted requests for as long
// as their timestamp is valid.
type SeenSignatures struct {
	mu   sync.Mutex
	sigs *cache.Cache[string, struct{}]
}

func NewSeenSignatures() *SeenSignatures {
	return &SeenSignatures{sigs: cache.New[string, struct{}]()}
}

// Add returns false if sig was added before and did not expire yet.
func (s *SeenSignatures) Add(sig string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sigs.Get(sig); ok {
		return false
	}
	s.sigs.Set(sig, struct{}{}, cache.WithExpiration(2*client.MaxClockSkew))
	return true
}

// RequireSignature rejects requests that are not signed with an ed25519
// key, and requests carrying a signature that was already accepted. The
// address of the key is available to the next handler through Caller and
// the request body can be read again.
func RequireSignature(logger log.Logger, debug bool, now func() time.Time, seen *SeenSignatures) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := ioutil.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
			if err != nil {
				JSONErr(w, logger, debug, errors.Wrap(errors.ErrInput, "cannot read body"))
				return
			}
			if len(body) > maxBodySize {
				JSONErr(w, logger, debug, errors.Wrap(errors.ErrInput, "body too large"))
				return
			}
			pub, err := client.Verify(r, body, now())
			if err != nil {
				JSONErr(w, logger, debug, err)
				return
			}
			if !seen.Add(strings.ToLower(r.Header.Get(client.HeaderSignature))) {
				JSONErr(w, logger, debug, errors.Wrap(errors.ErrUnauthorized, "signature already used"))
				return
			}
			r.Body = ioutil.NopCloser(bytes.NewReader(body))
			ctx := context.WithValue(r.Context(), callerKey{}, pub.Address())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
