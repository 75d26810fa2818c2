package token

import "github.com/iov-one/custody/errors"

// Token reserves 1010~1019 error codes
var (
	ErrInvalidToken     = errors.RegisterWithin(errors.ErrValidation, 1010, "invalid token")
	ErrInvalidRecipient = errors.RegisterWithin(errors.ErrExecution, 1011, "transfer to invalid address")
)
