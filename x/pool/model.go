package pool

import (
	"regexp"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/orm"
)

// BucketName is where all routes are stored, and the prefix for the route
// query path.
const BucketName = "pool"

// isChannel restricts channel names so they can be embedded in store keys
// and escrow conditions without ambiguity.
var isChannel = regexp.MustCompile(`^[a-z0-9_\-]{2,32}$`).MatchString

var _ orm.Model = (*Route)(nil)

// Validate ensures the route is sane before storing.
func (r *Route) Validate() error {
	if r.RemoteToken == "" {
		return errors.Field("RemoteToken", errors.ErrEmpty, "remote token required")
	}
	return nil
}

// Bucket is a type safe wrapper around the route storage. Routes are keyed
// by channel name.
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes the route bucket.
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, orm.NewSimpleObj(nil, &Route{})),
	}
}

// GetRoute loads the route stored under the channel name. A missing route
// returns nil without an error.
func (b Bucket) GetRoute(db drip.ReadOnlyKVStore, channel string) (*Route, error) {
	obj, err := b.Get(db, []byte(channel))
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	route, ok := obj.Value().(*Route)
	if !ok {
		return nil, errors.Wrapf(errors.ErrModel, "invalid type: %T", obj.Value())
	}
	return route, nil
}

// SaveRoute persists the route under the channel name.
func (b Bucket) SaveRoute(db drip.KVStore, channel string, route *Route) error {
	return b.Save(db, orm.NewSimpleObj([]byte(channel), route))
}
