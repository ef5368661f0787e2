package errors

import "fmt"

const (
	// SuccessABCICode declares an ABCI response use 0 to signal that the
	// processing was successful and no error is returned.
	SuccessABCICode = 0

	// All unclassified errors that do not provide an ABCI code are clubbed
	// under an internal error code and a generic message instead of
	// detailed error string.
	internalABCICode uint32 = 1
	internalABCILog         = "internal error"
)

// ABCIInfo returns the ABCI error information as consumed by the client.
// Returned code and log message should be used as the transaction response.
// Any error that does not provide ABCICode information is categorized as
// error with code 1 and, unless debug mode is enabled, a generic log
// message, so that no internal details leak to the caller.
func ABCIInfo(err error, debug bool) (uint32, string) {
	if isNilErr(err) {
		return SuccessABCICode, ""
	}

	// In debug mode the full error chain, including implementation
	// details, is revealed.
	if debug {
		return abciCode(err), fmt.Sprintf("%+v", err)
	}

	code := abciCode(err)
	if code == internalABCICode {
		return code, internalABCILog
	}
	return code, err.Error()
}

// abciCode tests if given error contains an ABCI code and returns the value
// of it if available. This function is testing for the causer interface as
// well and unwraps the error.
func abciCode(err error) uint32 {
	if isNilErr(err) {
		return SuccessABCICode
	}

	for {
		if c, ok := err.(coder); ok {
			return c.ABCICode()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return internalABCICode
		}
	}
}

type coder interface {
	ABCICode() uint32
}

// Redact replaces the panic error content with a message safe to return to
// the caller. Use it before exposing an error message to an untrusted
// source.
func Redact(err error) error {
	if ErrPanic.Is(err) {
		return Wrap(ErrPanic, "cannot show details")
	}
	return err
}

// Recover captures a panic and stops its propagation. If panic happens it is
// transformed into a ErrPanic instance and assigned to given error. Call
// this function using defer in order to work as expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}
