package bank

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/errors"
)

// Initializer fulfils the drip.Initializer interface to load data from the
// genesis file
type Initializer struct{}

var _ drip.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial wallets from the genesis and persist
// them. Expected options:
//
//	"bank": [{"address": ..., "coin": {"whole": ..., "fractional": ..., "ticker": ...}}]
func (Initializer) FromGenesis(opts drip.Options, db drip.KVStore) error {
	var wallets []struct {
		Address drip.Address `json:"address"`
		Coin    coin.Coin    `json:"coin"`
	}
	if err := opts.ReadOptions("bank", &wallets); err != nil {
		return errors.Wrap(err, "wallets")
	}

	bucket := NewBucket()
	for i, w := range wallets {
		if err := w.Address.Validate(); err != nil {
			return errors.Wrapf(err, "wallet #%d address", i)
		}
		if err := w.Coin.Validate(); err != nil {
			return errors.Wrapf(err, "wallet #%d coin", i)
		}
		c := w.Coin
		if err := bucket.SaveWallet(db, w.Address, &Wallet{Coin: &c}); err != nil {
			return errors.Wrapf(err, "save wallet #%d", i)
		}
	}
	return nil
}

// RegisterQuery registers the wallet bucket for queries.
func RegisterQuery(qr drip.QueryRouter) {
	NewBucket().Register("wallets", qr)
}
