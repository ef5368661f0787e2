package orm

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/iov-one/drip/store"
	"github.com/stretchr/testify/assert"
)

func TestSequence(t *testing.T) {
	cases := []struct {
		bucket     string
		name       string
		increments int64
	}{
		0: {"aaa", "id", 22},
		1: {"aaa", "seq", 11},
		2: {"bbb", "id", 77},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			db := store.MemStore()
			s := NewSequence(tc.bucket, tc.name)

			_, orig := s.Latest(db)

			var val int64
			for i := int64(0); i < tc.increments; i++ {
				val = s.NextInt(db)
			}
			assert.Equal(t, tc.increments, val)

			// raw bytes must sort after the original value so
			// they can be used as ever growing keys
			last, raw := s.Latest(db)
			assert.Equal(t, tc.increments, last)
			assert.Equal(t, 1, bytes.Compare(raw, orig))
		})
	}
}

func TestSequenceIndependence(t *testing.T) {
	db := store.MemStore()

	a := NewSequence("bank", "in")
	b := NewSequence("bank", "out")

	a.NextInt(db)
	a.NextInt(db)
	assert.Equal(t, int64(1), b.NextInt(db))
	assert.Equal(t, int64(3), a.NextInt(db))
}

func TestDecodeEncodeSequence(t *testing.T) {
	assert.Equal(t, int64(0), DecodeSequence(nil))
	bz := EncodeSequence(892)
	assert.Equal(t, 8, len(bz))
	assert.Equal(t, int64(892), DecodeSequence(bz))
}
