package client

import (
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/iov-one/custody/crypto"
	"github.com/google/uuid"
	"github.com/iov-one/custody/errors"
)

// Headers carrying the request signature.
const (
	HeaderPubKey    = "X-Custody-Pubkey"
	HeaderTimestamp = "X-Custody-Timestamp"
	HeaderNonce     = "X-Custody-Nonce"
	HeaderSignature = "X-Custody-Signature"
)

// MaxClockSkew is how far the timestamp of a signed request may be off
// the server clock.
const MaxClockSkew = 5 * time.Minute

const maxNonceLength = 64

// SignBytes returns the message signed for a request.
func SignBytes(method, path string, timestamp int64, nonce string, body []byte) []byte {
	msg := make([]byte, 0, len(method)+len(path)+len(nonce)+len(body)+24)
	msg = append(msg, method...)
	msg = append(msg, '\n')
	msg = append(msg, path...)
	msg = append(msg, '\n')
	msg = strconv.AppendInt(msg, timestamp, 10)
	msg = append(msg, '\n')
	msg = append(msg, nonce...)
	msg = append(msg, '\n')
	return append(msg, body...)
}

// Sign sets the signature headers of req. body must be the request body.
// Every call uses a fresh nonce, so signing the same request twice gives
// two different signatures.
func Sign(req *http.Request, body []byte, signer crypto.Signer, now time.Time) error {
	ts := now.Unix()
	nonce := uuid.NewString()
	sig, err := signer.Sign(SignBytes(req.Method, req.URL.Path, ts, nonce, body))
	if err != nil {
		return errors.Wrap(err, "sign request")
	}
	req.Header.Set(HeaderPubKey, signer.PublicKey().String())
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderNonce, nonce)
	req.Header.Set(HeaderSignature, hex.EncodeToString(sig))
	return nil
}

// Verify checks the signature headers of req and returns the key that
// signed it. body must be the request body. Verify does not remember
// signatures; rejecting a repeated one is up to the server.
func Verify(req *http.Request, body []byte, now time.Time) (crypto.PublicKey, error) {
	pub, err := crypto.ParsePublicKey(req.Header.Get(HeaderPubKey))
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, err.Error())
	}
	ts, err := strconv.ParseInt(req.Header.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "malformed timestamp")
	}
	if skew := now.Sub(time.Unix(ts, 0)); skew > MaxClockSkew || skew < -MaxClockSkew {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "timestamp off by %s", skew)
	}
	nonce := req.Header.Get(HeaderNonce)
	if nonce == "" || len(nonce) > maxNonceLength {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing or malformed nonce")
	}
	sig, err := hex.DecodeString(req.Header.Get(HeaderSignature))
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signature is not hex encoded")
	}
	if !pub.Verify(SignBytes(req.Method, req.URL.Path, ts, nonce, body), sig) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	return pub, nil
}
