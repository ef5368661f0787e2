package bank

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/errors"
)

// Controller moves the base asset between wallets.
type Controller struct {
	bucket Bucket
}

// NewController returns a controller over the default wallet bucket.
func NewController() *Controller {
	return &Controller{bucket: NewBucket()}
}

// Balance returns the coin held by the address, a zero coin when the
// wallet is missing.
func (c *Controller) Balance(db drip.ReadOnlyKVStore, addr drip.Address) (coin.Coin, error) {
	return c.bucket.balance(db, addr)
}

// MoveCoins transfers the amount between the two wallets. The source must
// hold at least the amount in the same currency.
func (c *Controller) MoveCoins(db drip.KVStore, src, dest drip.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "must be positive: %v", amount)
	}

	held, err := c.bucket.balance(db, src)
	if err != nil {
		return err
	}
	if held.IsZero() || !held.SameType(amount) || !held.IsGTE(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "wallet holds %v", held)
	}

	remains, err := held.Subtract(amount)
	if err != nil {
		return err
	}
	if err := c.bucket.SaveWallet(db, src, &Wallet{Coin: &remains}); err != nil {
		return err
	}

	recv, err := c.bucket.balance(db, dest)
	if err != nil {
		return err
	}
	total, err := recv.Add(amount)
	if err != nil {
		return err
	}
	return c.bucket.SaveWallet(db, dest, &Wallet{Coin: &total})
}

// IssueCoins credits the amount out of thin air. A negative amount burns,
// but never below a zero balance.
func (c *Controller) IssueCoins(db drip.KVStore, dest drip.Address, amount coin.Coin) error {
	held, err := c.bucket.balance(db, dest)
	if err != nil {
		return err
	}
	total, err := held.Add(amount)
	if err != nil {
		return err
	}
	if total.IsNegative() {
		return errors.Wrapf(errors.ErrInsufficientAmount, "wallet holds %v", held)
	}
	return c.bucket.SaveWallet(db, dest, &Wallet{Coin: &total})
}
