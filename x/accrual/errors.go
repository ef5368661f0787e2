package accrual

import "github.com/iov-one/drip/errors"

// ErrRateIncrease is returned when a rate update does not strictly lower
// the global interest rate. Over the lifetime of a ledger the sequence of
// accepted rates is strictly decreasing.
var ErrRateIncrease = errors.Register(1100, "rate can only decrease")
