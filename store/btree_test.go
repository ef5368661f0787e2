package store

import (
	"bytes"
	"testing"
)

func TestBTreeCacheGetSet(t *testing.T) {
	base := MemStore()
	base.Set([]byte("a"), []byte("1"))

	cache := base.CacheWrap()

	if got := cache.Get([]byte("a")); !bytes.Equal(got, []byte("1")) {
		t.Fatalf("cache must read through: got %q", got)
	}

	cache.Set([]byte("b"), []byte("2"))
	cache.Delete([]byte("a"))

	// Cache sees its own writes, base does not yet.
	if cache.Has([]byte("a")) {
		t.Fatal("delete not visible in cache")
	}
	if !cache.Has([]byte("b")) {
		t.Fatal("set not visible in cache")
	}
	if !base.Has([]byte("a")) {
		t.Fatal("base modified before Write")
	}
	if base.Has([]byte("b")) {
		t.Fatal("base modified before Write")
	}

	cache.Write()

	if base.Has([]byte("a")) {
		t.Fatal("delete not written to base")
	}
	if got := base.Get([]byte("b")); !bytes.Equal(got, []byte("2")) {
		t.Fatalf("set not written to base: got %q", got)
	}
}

func TestBTreeCacheDiscard(t *testing.T) {
	base := MemStore()
	base.Set([]byte("a"), []byte("1"))

	cache := base.CacheWrap()
	cache.Set([]byte("b"), []byte("2"))
	cache.Delete([]byte("a"))
	cache.Discard()

	if !base.Has([]byte("a")) || base.Has([]byte("b")) {
		t.Fatal("discarded cache leaked into base")
	}
}

func TestBTreeCacheIterator(t *testing.T) {
	base := MemStore()
	base.Set([]byte("a"), []byte("1"))
	base.Set([]byte("c"), []byte("3"))

	cache := base.CacheWrap()
	cache.Set([]byte("b"), []byte("2"))
	cache.Delete([]byte("c"))
	cache.Set([]byte("a"), []byte("one"))

	var keys, values []string
	it := cache.Iterator(nil, nil)
	defer it.Close()
	for ; it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
		values = append(values, string(it.Value()))
	}

	wantKeys := []string{"a", "b"}
	wantValues := []string{"one", "2"}
	if len(keys) != len(wantKeys) {
		t.Fatalf("want keys %v, got %v", wantKeys, keys)
	}
	for i := range wantKeys {
		if keys[i] != wantKeys[i] || values[i] != wantValues[i] {
			t.Fatalf("position %d: want %s=%s, got %s=%s",
				i, wantKeys[i], wantValues[i], keys[i], values[i])
		}
	}
}

func TestCacheWrapRecursive(t *testing.T) {
	base := MemStore()
	outer := base.CacheWrap()
	outer.Set([]byte("k"), []byte("outer"))

	inner := outer.CacheWrap()
	inner.Set([]byte("k"), []byte("inner"))
	inner.Discard()

	if got := outer.Get([]byte("k")); !bytes.Equal(got, []byte("outer")) {
		t.Fatalf("inner discard must not touch outer: got %q", got)
	}

	inner = outer.CacheWrap()
	inner.Set([]byte("k"), []byte("inner"))
	inner.Write()

	if got := outer.Get([]byte("k")); !bytes.Equal(got, []byte("inner")) {
		t.Fatalf("inner write must reach outer: got %q", got)
	}
}
