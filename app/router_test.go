package app

import (
	"context"
	"testing"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/driptest"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterRegistration(t *testing.T) {
	r := NewRouter()

	assert.Panics(t, func() {
		r.Handle(&driptest.Msg{RoutePath: "not a path"}, &driptest.Handler{})
	})

	r.Handle(&driptest.Msg{RoutePath: "test/good"}, &driptest.Handler{})
	assert.Panics(t, func() {
		// a second registration for the same path must panic
		r.Handle(&driptest.Msg{RoutePath: "test/good"}, &driptest.Handler{})
	})
}

func TestRouterDispatch(t *testing.T) {
	r := NewRouter()
	h := &driptest.Handler{}
	r.Handle(&driptest.Msg{RoutePath: "test/good"}, h)

	db := store.MemStore()
	ctx := context.Background()

	tx := &driptest.Tx{Msg: &driptest.Msg{RoutePath: "test/good"}}
	_, err := r.Deliver(ctx, db, tx)
	require.NoError(t, err)
	_, err = r.Check(ctx, db, tx)
	require.NoError(t, err)
	assert.Equal(t, 1, h.DeliverCallCount())
	assert.Equal(t, 1, h.CheckCallCount())

	// unknown paths must be rejected
	miss := &driptest.Tx{Msg: &driptest.Msg{RoutePath: "test/missing"}}
	_, err = r.Deliver(ctx, db, miss)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestDecoratorChain(t *testing.T) {
	h := &driptest.Handler{}
	stack := ChainDecorators(
		NewRecovery(),
		nil, // nils are dropped
		NewLogging(),
	).WithHandler(h)

	db := store.MemStore()
	tx := &driptest.Tx{Msg: &driptest.Msg{RoutePath: "test/good"}}

	_, err := stack.Deliver(context.Background(), db, tx)
	require.NoError(t, err)
	assert.Equal(t, 1, h.DeliverCallCount())
}

func TestRecoveryTurnsPanicIntoError(t *testing.T) {
	stack := ChainDecorators(NewRecovery()).WithHandler(panicHandler{})

	db := store.MemStore()
	tx := &driptest.Tx{Msg: &driptest.Msg{RoutePath: "test/good"}}

	var err error
	assert.NotPanics(t, func() {
		_, err = stack.Deliver(context.Background(), db, tx)
	})
	assert.True(t, errors.ErrPanic.Is(err))
}

type panicHandler struct{}

func (panicHandler) Check(drip.Context, drip.KVStore, drip.Tx) (*drip.CheckResult, error) {
	panic("check")
}

func (panicHandler) Deliver(drip.Context, drip.KVStore, drip.Tx) (*drip.DeliverResult, error) {
	panic("deliver")
}
