package accrual

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/gconf"
)

// Initializer fulfils the drip.Initializer interface to load data from the
// genesis file
type Initializer struct{}

var _ drip.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial account and configuration information from
// the genesis and persist it. Expected options:
//
//	"conf": {"accrual": {"owner": ..., "governor": ..., "minters": [...],
//	         "interest_rate": ...}}
//	"accrual": [{"address": ..., "principal": ..., "rate": ...}]
//	"genesis_time": unix seconds the initial accounts start accruing at
func (Initializer) FromGenesis(opts drip.Options, db drip.KVStore) error {
	if err := gconf.InitConfig(db, opts, "accrual", &Configuration{}); err != nil {
		return errors.Wrap(err, "configuration")
	}

	var start drip.UnixTime
	if err := opts.ReadOptions("genesis_time", &start); err != nil {
		return errors.Wrap(err, "genesis time")
	}

	var accounts []struct {
		Address   drip.Address `json:"address"`
		Principal uint64       `json:"principal"`
		Rate      uint64       `json:"rate"`
	}
	if err := opts.ReadOptions("accrual", &accounts); err != nil {
		return errors.Wrap(err, "accounts")
	}

	bucket := NewBucket()
	for i, a := range accounts {
		if err := a.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account #%d address", i)
		}
		acct := &Account{
			Principal: a.Principal,
			Rate:      a.Rate,
			Updated:   start,
		}
		if err := bucket.SaveAccount(db, a.Address, acct); err != nil {
			return errors.Wrapf(err, "save account #%d", i)
		}
	}
	return nil
}
