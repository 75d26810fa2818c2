package cash

import "github.com/iov-one/custody/errors"

// Cash reserves 1000~1009 error codes
var (
	ErrInvalidRecipient  = errors.RegisterWithin(errors.ErrExecution, 1000, "invalid recipient")
	ErrRecipientRejected = errors.RegisterWithin(errors.ErrExecution, 1001, "recipient rejected transfer")
)
