package bank

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/orm"
)

// BucketName is where all wallets are stored, and the prefix for the
// wallet query path.
const BucketName = "bank"

var _ orm.Model = (*Wallet)(nil)

// Validate ensures a stored wallet holds a well formed, non negative coin.
func (w *Wallet) Validate() error {
	if w.Coin == nil {
		return nil
	}
	if err := w.Coin.Validate(); err != nil {
		return errors.Field("Coin", err, "invalid coin")
	}
	if w.Coin.IsNegative() {
		return errors.Field("Coin", errors.ErrAmount, "negative balance")
	}
	return nil
}

// Bucket is a type safe wrapper around the wallet storage.
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes the wallet bucket.
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, orm.NewSimpleObj(nil, &Wallet{})),
	}
}

// GetWallet loads the wallet stored under the address. A missing wallet
// returns nil without an error.
func (b Bucket) GetWallet(db drip.ReadOnlyKVStore, addr drip.Address) (*Wallet, error) {
	obj, err := b.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	wallet, ok := obj.Value().(*Wallet)
	if !ok {
		return nil, errors.Wrapf(errors.ErrModel, "invalid type: %T", obj.Value())
	}
	return wallet, nil
}

// SaveWallet persists the wallet under the address. An emptied wallet is
// removed from the store.
func (b Bucket) SaveWallet(db drip.KVStore, addr drip.Address, wallet *Wallet) error {
	if wallet.Coin == nil || wallet.Coin.IsZero() {
		return b.Delete(db, addr)
	}
	return b.Save(db, orm.NewSimpleObj(addr, wallet))
}

// balance returns the wallet coin, a zero coin for a missing wallet.
func (b Bucket) balance(db drip.ReadOnlyKVStore, addr drip.Address) (coin.Coin, error) {
	wallet, err := b.GetWallet(db, addr)
	if err != nil {
		return coin.Coin{}, err
	}
	if wallet == nil || wallet.Coin == nil {
		return coin.Coin{}, nil
	}
	return *wallet.Coin, nil
}
