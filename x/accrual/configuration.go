package accrual

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/gconf"
)

// Validate ensures the configuration names the authorities and that every
// minter address is well formed.
func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	errs = errors.AppendField(errs, "Governor", c.Governor.Validate())
	for _, m := range c.Minters {
		errs = errors.AppendField(errs, "Minters", m.Validate())
	}
	return errs
}

func loadConf(db drip.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "accrual", &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}

func saveConf(db drip.KVStore, conf *Configuration) error {
	return gconf.Save(db, "accrual", conf)
}

// IsMinter returns true if the address holds the mint and burn capability.
func (c *Configuration) IsMinter(addr drip.Address) bool {
	for _, m := range c.Minters {
		if addr.Equals(m) {
			return true
		}
	}
	return false
}
