/*
Package errors implements the failure taxonomy of the module.

Five categories cover every rejected operation: ErrValidation, ErrUnauthorized,
ErrNotFound, ErrState and ErrExecution. Extensions register more specific
reasons inside a category with RegisterWithin, so that callers can test either
the broad category or the exact reason:

	ErrState.Is(err)              // any state machine violation
	wallet.ErrAlreadyExecuted.Is(err)

Infrastructure errors (ErrInput, ErrDatabase, ErrOverflow, ...) are declared
here as well. To register a custom root error use Register(code, description).
For reusing errors use Errxxx.New and Errxxx.Newf.

There is also support for stacktraces. Please ensure you create the custom error using
ErrXyz.New("...") or errors.Wrap(err, "...") at the point of creation to ensure we attach
a stacktrace. If you wrap multiple times, we only record the first wrap with the stacktrace.
(And don't do this as a global `var ErrFoo = errors.ErrInternal.New("foo")` or you will get a
useless stacktrace).

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context for the error
	%s is just the error message
	%+v is the full stack trace
*/
package errors
