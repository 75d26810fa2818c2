package wallet

import "github.com/iov-one/custody/errors"

// Wallet reserves 1100~1119 error codes
var (
	ErrEmptyOwnerSet    = errors.RegisterWithin(errors.ErrValidation, 1100, "owners required")
	ErrInvalidThreshold = errors.RegisterWithin(errors.ErrValidation, 1101, "invalid number of required confirmations")
	ErrZeroAddress      = errors.RegisterWithin(errors.ErrValidation, 1102, "invalid owner")
	ErrInvalidOwner     = errors.RegisterWithin(errors.ErrValidation, 1103, "malformed owner address")
	ErrDuplicateOwner   = errors.RegisterWithin(errors.ErrValidation, 1104, "owner not unique")
	ErrInvalidAssetKind = errors.RegisterWithin(errors.ErrValidation, 1105, "invalid asset kind")
	ErrInvalidWalletID  = errors.RegisterWithin(errors.ErrValidation, 1113, "invalid wallet id")

	ErrNotAnOwner = errors.RegisterWithin(errors.ErrUnauthorized, 1106, "caller is not the owner")

	ErrTxDoesNotExist = errors.RegisterWithin(errors.ErrNotFound, 1107, "transaction does not exist")

	ErrAlreadyExecuted           = errors.RegisterWithin(errors.ErrState, 1108, "transaction already executed")
	ErrAlreadyConfirmed          = errors.RegisterWithin(errors.ErrState, 1109, "transaction already confirmed")
	ErrNotConfirmed              = errors.RegisterWithin(errors.ErrState, 1110, "transaction not confirmed")
	ErrInsufficientConfirmations = errors.RegisterWithin(errors.ErrState, 1111, "cannot execute transaction")

	ErrTransferFailed = errors.RegisterWithin(errors.ErrExecution, 1112, "transfer failed")
)
