package accrual

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/fixed"
)

// Controller implements the ledger. Interest is lazy: it exists only as a
// function of an account's principal, personal rate and the time passed
// since the last write. Every mutating operation first crystallizes the
// outstanding interest into principal, so no accrued value is ever lost.
type Controller struct {
	bucket Bucket
}

// NewController returns a controller over the default account bucket.
func NewController() *Controller {
	return &Controller{bucket: NewBucket()}
}

// Balance returns the account balance including interest accrued until
// now. It does not modify any state. A missing account has balance zero.
func (c *Controller) Balance(db drip.ReadOnlyKVStore, now drip.UnixTime, addr drip.Address) (uint64, error) {
	acct, err := c.bucket.GetAccount(db, addr)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		return 0, nil
	}
	return balanceAt(acct, now)
}

// Principal returns the crystallized amount only, excluding any interest
// accrued since the last write. A missing account has principal zero.
func (c *Controller) Principal(db drip.ReadOnlyKVStore, addr drip.Address) (uint64, error) {
	acct, err := c.bucket.GetAccount(db, addr)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		return 0, nil
	}
	return acct.Principal, nil
}

// UserRate returns the personal rate frozen onto the account.
func (c *Controller) UserRate(db drip.ReadOnlyKVStore, addr drip.Address) (uint64, error) {
	acct, err := c.bucket.GetAccount(db, addr)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		return 0, nil
	}
	return acct.Rate, nil
}

// GlobalRate returns the current protocol wide rate.
func (c *Controller) GlobalRate(db drip.ReadOnlyKVStore) (uint64, error) {
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	return conf.InterestRate, nil
}

// Mint credits amount to the recipient and freezes the given rate onto the
// whole account, overwriting any previous rate. Any interest accrued under
// the old rate is crystallized first, so nothing already earned is lost.
func (c *Controller) Mint(db drip.KVStore, now drip.UnixTime, to drip.Address, amount, rate uint64) error {
	acct, err := c.bucket.GetAccount(db, to)
	if err != nil {
		return err
	}
	if acct == nil {
		acct = &Account{}
	} else if err := crystallize(acct, now); err != nil {
		return err
	}
	principal, err := fixed.Add(acct.Principal, amount)
	if err != nil {
		return err
	}
	acct.Principal = principal
	acct.Rate = rate
	acct.Updated = now
	return c.bucket.SaveAccount(db, to, acct)
}

// Burn destroys amount from the account. The fixed.MaxAmount sentinel
// burns the whole balance, leaving exactly zero. A drained account is
// deleted, so a later funding starts with a fresh rate. The amount
// actually burned is returned.
func (c *Controller) Burn(db drip.KVStore, now drip.UnixTime, from drip.Address, amount uint64) (uint64, error) {
	acct, err := c.bucket.GetAccount(db, from)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		return 0, errors.Wrap(errors.ErrEmpty, "no account")
	}
	if err := crystallize(acct, now); err != nil {
		return 0, err
	}
	if amount == fixed.MaxAmount {
		amount = acct.Principal
	}
	principal, err := fixed.Sub(acct.Principal, amount)
	if err != nil {
		return 0, err
	}
	if principal == 0 {
		if err := c.bucket.Delete(db, from); err != nil {
			return 0, err
		}
		return amount, nil
	}
	acct.Principal = principal
	acct.Updated = now
	if err := c.bucket.SaveAccount(db, from, acct); err != nil {
		return 0, err
	}
	return amount, nil
}

// Move transfers amount from source to destination. The fixed.MaxAmount
// sentinel moves the full balance. Both accounts are crystallized first.
// A destination holding no balance inherits the source's personal rate, a
// funded destination keeps its own rate untouched. The amount actually
// moved is returned.
func (c *Controller) Move(db drip.KVStore, now drip.UnixTime, src, dest drip.Address, amount uint64) (uint64, error) {
	if src.Equals(dest) {
		return 0, errors.Wrap(errors.ErrInput, "source and destination are the same")
	}
	acct, err := c.bucket.GetAccount(db, src)
	if err != nil {
		return 0, err
	}
	if acct == nil {
		return 0, errors.Wrap(errors.ErrEmpty, "no source account")
	}
	if err := crystallize(acct, now); err != nil {
		return 0, err
	}
	if amount == fixed.MaxAmount {
		amount = acct.Principal
	}
	principal, err := fixed.Sub(acct.Principal, amount)
	if err != nil {
		return 0, err
	}
	srcRate := acct.Rate

	if principal == 0 {
		if err := c.bucket.Delete(db, src); err != nil {
			return 0, err
		}
	} else {
		acct.Principal = principal
		acct.Updated = now
		if err := c.bucket.SaveAccount(db, src, acct); err != nil {
			return 0, err
		}
	}

	recv, err := c.bucket.GetAccount(db, dest)
	if err != nil {
		return 0, err
	}
	if recv == nil {
		recv = &Account{}
	} else if err := crystallize(recv, now); err != nil {
		return 0, err
	}
	if recv.Principal == 0 {
		// an empty destination inherits the sender's rate
		recv.Rate = srcRate
	}
	total, err := fixed.Add(recv.Principal, amount)
	if err != nil {
		return 0, err
	}
	recv.Principal = total
	recv.Updated = now
	if err := c.bucket.SaveAccount(db, dest, recv); err != nil {
		return 0, err
	}
	return amount, nil
}

// SetRate lowers the global rate. A rate greater or equal to the current
// one is rejected with ErrRateIncrease and no state change.
func (c *Controller) SetRate(db drip.KVStore, rate uint64) error {
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	if rate >= conf.InterestRate {
		return errors.Wrapf(ErrRateIncrease, "%d -> %d", conf.InterestRate, rate)
	}
	conf.InterestRate = rate
	return saveConf(db, conf)
}

// balanceAt computes the account balance at the given time without
// touching the account.
func balanceAt(acct *Account, now drip.UnixTime) (uint64, error) {
	return fixed.Balance(acct.Principal, acct.Rate, elapsed(acct.Updated, now))
}

// crystallize folds the interest accrued until now into the principal and
// resets the accrual clock. Must run before any change to principal or
// rate.
func crystallize(acct *Account, now drip.UnixTime) error {
	balance, err := balanceAt(acct, now)
	if err != nil {
		return err
	}
	acct.Principal = balance
	acct.Updated = now
	return nil
}

// elapsed returns the seconds between the two times, never negative.
func elapsed(from, to drip.UnixTime) uint64 {
	if to <= from {
		return 0
	}
	return uint64(to - from)
}
