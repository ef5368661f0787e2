package app

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/driptest"
	"github.com/iov-one/drip/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeHandler writes a fixed key/value pair and returns the configured
// error.
type writeHandler struct {
	key, value []byte
	err        error
}

func (h writeHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	db.Set(h.key, h.value)
	return &drip.CheckResult{}, h.err
}

func (h writeHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	db.Set(h.key, h.value)
	return &drip.DeliverResult{}, h.err
}

func tick(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestReplicaCommitsOnSuccess(t *testing.T) {
	h := writeHandler{key: []byte("k"), value: []byte("v")}
	rep := NewReplica("test-1", h, drip.NewQueryRouter(), tick(time.Unix(500, 0)), nil)

	tx := &driptest.Tx{Msg: &driptest.Msg{RoutePath: "test/write"}}
	_, err := rep.DeliverTx(tx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rep.Height())

	// committed data is visible to later transactions
	read := newReadHandler([]byte("k"))
	rep.handler = read
	_, err = rep.DeliverTx(tx)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), read.got())
}

func TestReplicaRollsBackOnError(t *testing.T) {
	boom := errors.Wrap(errors.ErrState, "boom")
	h := writeHandler{key: []byte("k"), value: []byte("v"), err: boom}
	rep := NewReplica("test-1", h, drip.NewQueryRouter(), tick(time.Unix(500, 0)), nil)

	tx := &driptest.Tx{Msg: &driptest.Msg{RoutePath: "test/write"}}
	_, err := rep.DeliverTx(tx)
	assert.True(t, errors.ErrState.Is(err))

	// the write must not have survived
	read := newReadHandler([]byte("k"))
	rep.handler = read
	_, err = rep.DeliverTx(tx)
	require.NoError(t, err)
	assert.Nil(t, read.got())
}

func TestReplicaCheckLeavesNoTrace(t *testing.T) {
	h := writeHandler{key: []byte("k"), value: []byte("v")}
	rep := NewReplica("test-1", h, drip.NewQueryRouter(), tick(time.Unix(500, 0)), nil)

	tx := &driptest.Tx{Msg: &driptest.Msg{RoutePath: "test/write"}}
	_, err := rep.CheckTx(tx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rep.Height())

	read := newReadHandler([]byte("k"))
	rep.handler = read
	_, err = rep.DeliverTx(tx)
	require.NoError(t, err)
	assert.Nil(t, read.got())
}

func TestReplicaContext(t *testing.T) {
	now := time.Unix(1234, 0).UTC()
	var captured struct {
		chainID string
		height  int64
		at      time.Time
	}
	h := inspectHandler{fn: func(ctx drip.Context) {
		captured.chainID = drip.GetChainID(ctx)
		captured.height, _ = drip.GetHeight(ctx)
		captured.at, _ = drip.BlockTime(ctx)
	}}
	rep := NewReplica("test-9", h, drip.NewQueryRouter(), tick(now), nil)

	_, err := rep.DeliverTx(&driptest.Tx{Msg: &driptest.Msg{RoutePath: "test/x"}})
	require.NoError(t, err)
	assert.Equal(t, "test-9", captured.chainID)
	assert.Equal(t, int64(1), captured.height)
	assert.Equal(t, now, captured.at)
}

func TestReplicaInitGenesis(t *testing.T) {
	rep := NewReplica("test-1", &driptest.Handler{}, drip.NewQueryRouter(), nil, nil)

	init := initFunc(func(opts drip.Options, db drip.KVStore) error {
		var value string
		if err := opts.ReadOptions("greeting", &value); err != nil {
			return err
		}
		db.Set([]byte("greeting"), []byte(value))
		return nil
	})
	opts := drip.Options{"greeting": json.RawMessage(`"hello"`)}
	require.NoError(t, rep.InitGenesis(opts, init))

	read := newReadHandler([]byte("greeting"))
	rep.handler = read
	_, err := rep.DeliverTx(&driptest.Tx{Msg: &driptest.Msg{RoutePath: "test/x"}})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), read.got())
}

// readHandler records the value found under key during Deliver.
type readHandler struct {
	key   []byte
	value *[]byte
}

func newReadHandler(key []byte) readHandler {
	return readHandler{key: key, value: new([]byte)}
}

func (h readHandler) got() []byte {
	if h.value == nil {
		return nil
	}
	return *h.value
}

func (h readHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	return &drip.CheckResult{}, nil
}

func (h readHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	*h.value = db.Get(h.key)
	return &drip.DeliverResult{}, nil
}

type inspectHandler struct {
	fn func(drip.Context)
}

func (h inspectHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	h.fn(ctx)
	return &drip.CheckResult{}, nil
}

func (h inspectHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	h.fn(ctx)
	return &drip.DeliverResult{}, nil
}

type initFunc func(drip.Options, drip.KVStore) error

func (f initFunc) FromGenesis(opts drip.Options, db drip.KVStore) error {
	return f(opts, db)
}
