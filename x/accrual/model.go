package accrual

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/orm"
)

// BucketName is where all accounts are stored, and the prefix for the
// account query path.
const BucketName = "accrual"

var _ orm.Model = (*Account)(nil)

// Validate ensures the account is sane before storing.
func (a *Account) Validate() error {
	if a.Updated < 0 {
		return errors.Field("Updated", errors.ErrState, "negative timestamp")
	}
	return nil
}

// Bucket is a type safe wrapper around the account storage.
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes the account bucket.
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, orm.NewSimpleObj(nil, &Account{})),
	}
}

// GetAccount loads the account stored under the address. A missing account
// returns nil without an error.
func (b Bucket) GetAccount(db drip.ReadOnlyKVStore, addr drip.Address) (*Account, error) {
	obj, err := b.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	acct, ok := obj.Value().(*Account)
	if !ok {
		return nil, errors.Wrapf(errors.ErrModel, "invalid type: %T", obj.Value())
	}
	return acct, nil
}

// SaveAccount persists the account under the address.
func (b Bucket) SaveAccount(db drip.KVStore, addr drip.Address, acct *Account) error {
	return b.Save(db, orm.NewSimpleObj(addr, acct))
}
