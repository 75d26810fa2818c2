package errors

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// SuccessCode declares a response use 0 to signal that the
	// processing was successful and no error is returned.
	SuccessCode = 0

	// All unclassified errors that do not provide a code are clubbed
	// under an internal error code and a generic message instead of
	// detailed error string.
	internalCode uint32 = 1
	internalLog         = "internal error"
)

// Info returns the error information as consumed by a client. Returned code
// and log message should be used as a response.
// Any error that does not provide Code information is categorized as error
// with code 1.
// When not running in a debug mode all messages of errors that do not provide
// Code information are replaced with generic "internal error". Errors
// without a Code information as considered internal.
func Info(err error, debug bool) (uint32, string) {
	if errIsNil(err) {
		return SuccessCode, ""
	}

	// Only non-internal errors information can be exposed. Any error that
	// does not explicitly expose its state by providing a code must be
	// silenced.
	if code := errCode(err); code != internalCode && !ErrPanic.Is(err) {
		if debug {
			// Try to trigger full information formatting. This
			// might produce a stacktrace.
			return code, fmt.Sprintf("%+v", err)
		}
		return code, err.Error()
	}

	if debug {
		return errCode(err), fmt.Sprintf("%+v", err)
	}

	// For internal errors hide the original error message and return
	// generic data.
	return internalCode, internalLog
}

// CategoryOf returns the taxonomy category of given error or nil if the
// error was not created from a registered error.
func CategoryOf(err error) *Error {
	for {
		if e, ok := err.(*Error); ok {
			return e.Category()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

type coder interface {
	Code() uint32
}

// errCode test if given error contains a code and returns the value of
// it if available. This function is testing for the causer interface as well
// and unwraps the error.
func errCode(err error) uint32 {
	if errIsNil(err) {
		return SuccessCode
	}

	for {
		if c, ok := err.(coder); ok {
			return c.Code()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalCode
		}
	}
}

// FromCode rebuilds an error from the code and log returned by Info. The
// result matches the registered error with that code, so that a client can
// test it the same way the server does. Unknown codes give an internal
// error.
func FromCode(code uint32, log string) error {
	if code == SuccessCode {
		return nil
	}
	if e := usedCodes[code]; e != nil {
		if log == "" || log == e.desc {
			return e
		}
		return Wrap(e, strings.TrimSuffix(log, ": "+e.desc))
	}
	return errors.New(log)
}
