package orm

import (
	"github.com/iov-one/custody/errors"
)

// Orm reserves 100~109 error codes

// ErrInvalidModel is returned when a model fails its own validation before
// being written.
var ErrInvalidModel = errors.RegisterWithin(errors.ErrValidation, 100, "invalid model")
