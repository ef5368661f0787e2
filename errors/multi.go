package errors

import (
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If given error implements the unpacker interface, it is flattened and all
// represented errors are directly included into the result set. This means
// that the result error does not nest multi errors.
func Append(errs ...error) error {
	var res multiError
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if u, ok := e.(unpacker); ok {
			for _, e := range u.Unpack() {
				if !isNilErr(e) {
					res = append(res, e)
				}
			}
		} else {
			res = append(res, e)
		}
	}

	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiError represents a group of errors. It "is" all of them.
type multiError []error

var _ unpacker = multiError(nil)

// Unpack implements the unpacker interface.
func (e multiError) Unpack() []error {
	return e
}

// ABCICode returns the code of the first represented error, consistent with
// the fail-fast behaviour of the group.
func (e multiError) ABCICode() uint32 {
	if len(e) == 0 {
		return SuccessABCICode
	}
	return abciCode(e[0])
}

func (e multiError) Error() string {
	switch len(e) {
	case 0:
		return "<nil>"
	case 1:
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// unpacker is implemented by errors that represent a group of errors.
type unpacker interface {
	Unpack() []error
}
