// Package fixed implements the scaled integer arithmetic used for interest
// accrual. All rates and factors are integers scaled by Scale. Division
// always truncates toward zero, so any dust is kept by the ledger rather
// than paid out.
package fixed

import (
	"math"
	"math/big"

	"github.com/iov-one/drip/errors"
)

// Scale is the factor all rates and interest factors are multiplied by to be
// represented as integers. A per second rate of 5*10^-8 is stored as 5*10^10.
const Scale uint64 = 1_000_000_000_000_000_000

// MaxAmount is a sentinel accepted by burn and send operations meaning
// "the full balance of the account".
const MaxAmount uint64 = math.MaxUint64

var (
	scaleBig = new(big.Int).SetUint64(Scale)
	maxBig   = new(big.Int).SetUint64(math.MaxUint64)
)

// MulDiv returns a*b/div, computed in arbitrary precision so the
// intermediate product cannot overflow. Division truncates.
func MulDiv(a, b, div uint64) (uint64, error) {
	if div == 0 {
		return 0, errors.Wrap(errors.ErrInput, "division by zero")
	}
	res := new(big.Int).SetUint64(a)
	res.Mul(res, new(big.Int).SetUint64(b))
	res.Quo(res, new(big.Int).SetUint64(div))
	if res.Cmp(maxBig) > 0 {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d * %d / %d", a, b, div)
	}
	return res.Uint64(), nil
}

// Balance returns principal * (Scale + rate*elapsed) / Scale, truncated.
// With elapsed of zero this is the identity.
func Balance(principal, rate uint64, elapsed uint64) (uint64, error) {
	if principal == 0 || rate == 0 || elapsed == 0 {
		return principal, nil
	}
	factor := new(big.Int).SetUint64(rate)
	factor.Mul(factor, new(big.Int).SetUint64(elapsed))
	factor.Add(factor, scaleBig)

	res := new(big.Int).SetUint64(principal)
	res.Mul(res, factor)
	res.Quo(res, scaleBig)
	if res.Cmp(maxBig) > 0 {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d units at rate %d for %ds", principal, rate, elapsed)
	}
	return res.Uint64(), nil
}

// Add returns a+b or ErrOverflow.
func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", a, b)
	}
	return sum, nil
}

// Sub returns a-b or ErrInsufficientAmount if b is bigger than a.
func Sub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, errors.Wrapf(errors.ErrInsufficientAmount, "%d < %d", a, b)
	}
	return a - b, nil
}
