/*
Package app assembles the runtime for a single replica: a message router,
a decorator chain and a serialized transaction loop over a cache wrapped
store.

Every delivered transaction runs against its own cache wrap. Only when the
handler succeeds is the cache written through. A failing transaction leaves
no trace in the state, no matter how far the handler got.
*/
package app

import (
	"context"
	"sync"
	"time"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/store"
	"github.com/sirupsen/logrus"
)

// Clock returns the current time for the replica. Tests and simulations
// plug in their own to warp time.
type Clock func() time.Time

// Replica executes transactions one at a time against a local store.
// The zero value is not usable, use NewReplica.
type Replica struct {
	mu      sync.Mutex
	chainID string
	db      store.CacheableKVStore
	handler drip.Handler
	queries drip.QueryRouter
	logger  logrus.FieldLogger
	clock   Clock
	height  int64
}

// NewReplica combines the pieces into a running replica. A nil clock
// defaults to the wall clock, a nil logger discards everything.
func NewReplica(chainID string, handler drip.Handler, queries drip.QueryRouter, clock Clock, logger logrus.FieldLogger) *Replica {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = drip.DefaultLogger
	}
	return &Replica{
		chainID: chainID,
		db:      store.MemStore(),
		handler: handler,
		queries: queries,
		logger:  logger,
		clock:   clock,
	}
}

// ChainID identifies this replica.
func (r *Replica) ChainID() string {
	return r.chainID
}

// InitGenesis runs every initializer against the raw store. Must be called
// before the first transaction.
func (r *Replica) InitGenesis(opts drip.Options, inits ...drip.Initializer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, init := range inits {
		if err := init.FromGenesis(opts, r.db); err != nil {
			return errors.Wrap(err, "init genesis")
		}
	}
	return nil
}

// CheckTx runs the handler chain in check mode against a throwaway cache.
// State is never modified, whatever the outcome.
func (r *Replica) CheckTx(tx drip.Tx) (*drip.CheckResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cache := r.db.CacheWrap()
	defer cache.Discard()

	return r.handler.Check(r.context(), cache, tx)
}

// DeliverTx executes one transaction. On success the state changes are
// committed as one unit, on error every change the handler made is thrown
// away.
func (r *Replica) DeliverTx(tx drip.Tx) (*drip.DeliverResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.height++
	cache := r.db.CacheWrap()

	res, err := r.handler.Deliver(r.context(), cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	cache.Write()
	return res, nil
}

// Query resolves a read-only query against committed state.
func (r *Replica) Query(path, mod string, data []byte) ([]drip.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.queries.Handler(path)
	if h == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no query handler for %q", path)
	}
	return h.Query(r.db, mod, data)
}

// Height returns the number of delivered transactions so far.
func (r *Replica) Height() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.height
}

func (r *Replica) context() drip.Context {
	ctx := context.Background()
	ctx = drip.WithChainID(ctx, r.chainID)
	ctx = drip.WithHeight(ctx, r.height)
	ctx = drip.WithBlockTime(ctx, r.clock())
	ctx = drip.WithLogger(ctx, r.logger.WithField("chain_id", r.chainID))
	return ctx
}
