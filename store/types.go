package store

import "github.com/iov-one/drip"

// Move references for all storage types into this package
// for shorter names everywhere

type KVStore = drip.KVStore
type ReadOnlyKVStore = drip.ReadOnlyKVStore
type SetDeleter = drip.SetDeleter
type Batch = drip.Batch
type Iterator = drip.Iterator
type CacheableKVStore = drip.CacheableKVStore
type KVCacheWrap = drip.KVCacheWrap

type Model = drip.Model
