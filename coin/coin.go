package coin

import (
	"fmt"
	"regexp"

	"github.com/iov-one/drip/errors"
)

// IsCC checks for a valid currency code.
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

const (
	// MaxInt is the largest whole value we accept.
	MaxInt int64 = 999999999999999 // 10^15-1
	// MinInt is the lowest whole value we accept.
	MinInt = -MaxInt

	// FracUnit is the number of fractional units per whole coin.
	FracUnit int64 = 1000000000 // 10^9
	// MaxFrac is the highest possible fractional value.
	MaxFrac = FracUnit - 1
	// MinFrac is the lowest possible fractional value.
	MinFrac = -MaxFrac
)

// NewCoin creates a new coin object
func NewCoin(whole int64, fractional int64, ticker string) Coin {
	return Coin{
		Whole:      whole,
		Fractional: fractional,
		Ticker:     ticker,
	}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(whole, fractional int64, ticker string) *Coin {
	c := NewCoin(whole, fractional, ticker)
	return &c
}

// FromUnits builds a coin from an amount counted in fractional units.
// This is the bridge between the ledger's plain integer amounts and the
// fixed-point coin representation.
func FromUnits(units uint64, ticker string) (Coin, error) {
	whole := int64(units / uint64(FracUnit))
	frac := int64(units % uint64(FracUnit))
	c := NewCoin(whole, frac, ticker)
	return c, c.Validate()
}

// Units returns the coin value counted in fractional units. Negative
// coins cannot be expressed this way.
func (c Coin) Units() (uint64, error) {
	if c.IsNegative() {
		return 0, errors.Wrap(errors.ErrAmount, "negative coin")
	}
	return uint64(c.Whole)*uint64(FracUnit) + uint64(c.Fractional), nil
}

// Add combines two coins of the same currency.
func (c Coin) Add(o Coin) (Coin, error) {
	// If any of the coins is zero, the currency does not matter.
	if c.IsZero() {
		c.Ticker = o.Ticker
	}
	if o.IsZero() {
		o.Ticker = c.Ticker
	}

	if !c.SameType(o) {
		err := errors.Wrapf(errors.ErrCurrency, "adding %s to %s", c.Ticker, o.Ticker)
		return Coin{}, err
	}

	c.Whole += o.Whole
	c.Fractional += o.Fractional
	return c.normalize()
}

// Subtract removes the value of the other coin.
func (c Coin) Subtract(amount Coin) (Coin, error) {
	return c.Add(amount.Negative())
}

// Negative returns the opposite coin value.
func (c Coin) Negative() Coin {
	return Coin{
		Ticker:     c.Ticker,
		Whole:      -1 * c.Whole,
		Fractional: -1 * c.Fractional,
	}
}

// Compare returns 1 if this coin is larger, -1 if smaller and 0 if equal.
// Comparing coins of a different currency panics.
func (c Coin) Compare(o Coin) int {
	if !c.SameType(o) {
		panic(fmt.Sprintf("comparing %s to %s", c.Ticker, o.Ticker))
	}
	if c.Whole > o.Whole {
		return 1
	}
	if c.Whole < o.Whole {
		return -1
	}
	if c.Fractional > o.Fractional {
		return 1
	}
	if c.Fractional < o.Fractional {
		return -1
	}
	return 0
}

// Equals returns true if all fields are identical.
func (c Coin) Equals(o Coin) bool {
	return c.Ticker == o.Ticker &&
		c.Whole == o.Whole &&
		c.Fractional == o.Fractional
}

// IsZero returns true on a zero amount.
func (c Coin) IsZero() bool {
	return c.Whole == 0 && c.Fractional == 0
}

// IsPositive returns true if the value is greater than 0.
func (c Coin) IsPositive() bool {
	return c.Whole > 0 ||
		(c.Whole == 0 && c.Fractional > 0)
}

// IsNonNegative returns true if the value is 0 or higher.
func (c Coin) IsNonNegative() bool {
	return c.Whole >= 0 && c.Fractional >= 0
}

// IsNegative is the inverse of IsNonNegative.
func (c Coin) IsNegative() bool {
	return !c.IsNonNegative()
}

// IsGTE returns true if c is same type and at least as big as o.
func (c Coin) IsGTE(o Coin) bool {
	if !c.SameType(o) || c.Whole < o.Whole {
		return false
	}
	if (c.Whole == o.Whole) &&
		(c.Fractional < o.Fractional) {
		return false
	}
	return true
}

// SameType returns true if both coins use the same currency.
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Clone provides an independent copy of a coin pointer.
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	return &Coin{
		Ticker:     c.Ticker,
		Whole:      c.Whole,
		Fractional: c.Fractional,
	}
}

// Validate ensures the coin is in the expected range and the whole and
// fractional part carry the same sign.
func (c Coin) Validate() error {
	if !IsCC(c.Ticker) {
		return errors.Wrapf(errors.ErrCurrency, "invalid ticker: %q", c.Ticker)
	}
	if c.Whole < MinInt || c.Whole > MaxInt {
		return errors.Wrap(errors.ErrOverflow, "whole")
	}
	if c.Fractional < MinFrac || c.Fractional > MaxFrac {
		return errors.Wrap(errors.ErrOverflow, "fractional")
	}
	if (c.Whole > 0 && c.Fractional < 0) ||
		(c.Whole < 0 && c.Fractional > 0) {
		return errors.Wrap(errors.ErrState, "mismatched sign")
	}
	return nil
}

// normalize keeps the fractional part inside its range and both parts on
// the same sign.
func (c Coin) normalize() (Coin, error) {
	// Make sure fractional is in the range.
	for c.Fractional < MinFrac {
		c.Whole--
		c.Fractional += FracUnit
	}
	for c.Fractional > MaxFrac {
		c.Whole++
		c.Fractional -= FracUnit
	}

	// Make sure the signs match.
	if c.Fractional < 0 && c.Whole > 0 {
		c.Whole--
		c.Fractional += FracUnit
	}
	if c.Fractional > 0 && c.Whole < 0 {
		c.Whole++
		c.Fractional -= FracUnit
	}

	if c.Whole < MinInt || c.Whole > MaxInt {
		return Coin{}, errors.Wrap(errors.ErrOverflow, "whole")
	}
	return c, nil
}
