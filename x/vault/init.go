package vault

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/gconf"
)

// Initializer fulfils the drip.Initializer interface to load data from the
// genesis file
type Initializer struct{}

var _ drip.Initializer = (*Initializer)(nil)

// FromGenesis will parse the vault configuration from the genesis and
// persist it. Expected options:
//
//	"conf": {"vault": {"owner": ..., "ticker": ...}}
func (Initializer) FromGenesis(opts drip.Options, db drip.KVStore) error {
	if err := gconf.InitConfig(db, opts, "vault", &Configuration{}); err != nil {
		return errors.Wrap(err, "configuration")
	}
	return nil
}
