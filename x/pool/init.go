package pool

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/gconf"
)

// Initializer fulfils the drip.Initializer interface to load data from the
// genesis file
type Initializer struct{}

var _ drip.Initializer = (*Initializer)(nil)

// FromGenesis will parse the configuration and initial routes from the
// genesis and persist them. Expected options:
//
//	"conf": {"pool": {"owner": ..., "relay": ...}}
//	"pool": [{"channel": ..., "remote_token": ..., "enabled": ...}]
func (Initializer) FromGenesis(opts drip.Options, db drip.KVStore) error {
	if err := gconf.InitConfig(db, opts, "pool", &Configuration{}); err != nil {
		return errors.Wrap(err, "configuration")
	}

	var routes []struct {
		Channel     string `json:"channel"`
		RemoteToken string `json:"remote_token"`
		Enabled     bool   `json:"enabled"`
	}
	if err := opts.ReadOptions("pool", &routes); err != nil {
		return errors.Wrap(err, "routes")
	}

	bucket := NewBucket()
	for i, r := range routes {
		if !isChannel(r.Channel) {
			return errors.Wrapf(errors.ErrInput, "route #%d channel", i)
		}
		route := &Route{RemoteToken: r.RemoteToken, Enabled: r.Enabled}
		if err := bucket.SaveRoute(db, r.Channel, route); err != nil {
			return errors.Wrapf(err, "save route #%d", i)
		}
	}
	return nil
}
