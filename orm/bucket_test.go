package orm

import (
	"testing"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketName(t *testing.T) {
	obj := NewSimpleObj(nil, &Counter{})

	assert.Panics(t, func() {
		// An invalid bucket name must crash.
		NewBucket("l33t", obj)
	})
}

func TestBucketSaveGet(t *testing.T) {
	db := store.MemStore()
	bucket := NewBucket("cnts", NewCounter(nil, 0))

	key := []byte("alice")

	// loading a missing object returns nil, nil
	got, err := bucket.Get(db, key)
	assert.NoError(t, err)
	assert.Nil(t, got)

	obj := NewCounter(key, 55)
	require.NoError(t, bucket.Save(db, obj))

	got, err = bucket.Get(db, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, key, got.Key())
	assert.Equal(t, int64(55), got.Value().(*Counter).Count)

	// saving without a key fails validation
	noKey := NewCounter(nil, 11)
	assert.Error(t, bucket.Save(db, noKey))

	// delete removes it
	require.NoError(t, bucket.Delete(db, key))
	got, err = bucket.Get(db, key)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestBucketNoCollision(t *testing.T) {
	// two buckets with separate names must not see each
	// other's data even under the same raw key
	db := store.MemStore()
	one := NewBucket("aaa", NewCounter(nil, 0))
	two := NewBucket("bbb", NewCounter(nil, 0))

	key := []byte{1, 2, 3}
	require.NoError(t, one.Save(db, NewCounter(key, 5)))

	got, err := two.Get(db, key)
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = one.Get(db, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(5), got.Value().(*Counter).Count)
}

func TestBucketQuery(t *testing.T) {
	db := store.MemStore()
	bucket := NewBucket("cnts", NewCounter(nil, 0))

	require.NoError(t, bucket.Save(db, NewCounter([]byte("add"), 1)))
	require.NoError(t, bucket.Save(db, NewCounter([]byte("adder"), 2)))
	require.NoError(t, bucket.Save(db, NewCounter([]byte("base"), 3)))

	qr := drip.NewQueryRouter()
	bucket.Register("counters", qr)
	h := qr.Handler("/counters")
	require.NotNil(t, h)

	// point query hits exactly one
	res, err := h.Query(db, drip.KeyQueryMod, []byte("base"))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, bucket.DBKey([]byte("base")), res[0].Key)

	// point query misses return nothing
	res, err = h.Query(db, drip.KeyQueryMod, []byte("missing"))
	require.NoError(t, err)
	assert.Len(t, res, 0)

	// prefix query returns both matches in order
	res, err = h.Query(db, drip.PrefixQueryMod, []byte("add"))
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, bucket.DBKey([]byte("add")), res[0].Key)
	assert.Equal(t, bucket.DBKey([]byte("adder")), res[1].Key)

	// unknown modifier is an error
	_, err = h.Query(db, "like", []byte("add"))
	assert.Error(t, err)
}

func TestSimpleObjClone(t *testing.T) {
	obj := NewCounter([]byte("key"), 7)
	clone := obj.Clone()

	// clone has a fresh value but keeps the key
	assert.Equal(t, []byte("key"), clone.Key())
	assert.Equal(t, int64(0), clone.Value().(*Counter).Count)
	// and mutating the clone leaves the original alone
	clone.Value().(*Counter).Count = 9
	assert.Equal(t, int64(7), obj.Value().(*Counter).Count)
}
