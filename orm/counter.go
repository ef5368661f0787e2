package orm

import (
	"encoding/binary"

	"github.com/iov-one/drip/errors"
)

var _ Model = (*Counter)(nil)

// Counter is a trivial model, mainly for test purposes.
// The value is stored as 8 bytes big endian.
type Counter struct {
	Count int64
}

// NewCounter wraps a count value in a saveable object
// with the given key.
func NewCounter(key []byte, count int64) Object {
	return NewSimpleObj(key, &Counter{Count: count})
}

func (c *Counter) Marshal() ([]byte, error) {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(c.Count))
	return bz, nil
}

func (c *Counter) Unmarshal(bz []byte) error {
	if len(bz) != 8 {
		return errors.Wrapf(errors.ErrInput, "invalid length: %d", len(bz))
	}
	c.Count = int64(binary.BigEndian.Uint64(bz))
	return nil
}

// Validate rejects negative counts.
func (c *Counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrState, "negative count")
	}
	return nil
}
