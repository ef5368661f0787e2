package app

import (
	"fmt"
	"regexp"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
)

// isPath matches the message paths handlers register under, for
// example "accrual/mint".
var isPath = regexp.MustCompile(`^[a-z0-9_]+/[a-z0-9_]+$`).MatchString

// Router maps message paths to handlers. It implements both the
// drip.Registry interface used by extensions during setup and the
// drip.Handler interface used during execution.
type Router struct {
	handlers map[string]drip.Handler
}

var _ drip.Registry = (*Router)(nil)
var _ drip.Handler = (*Router)(nil)

// NewRouter initializes a router with no routes.
func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]drip.Handler),
	}
}

// Handle adds a new route to the router. This function panics if a message
// with an invalid path or an already registered message is used.
func (r *Router) Handle(m drip.Msg, h drip.Handler) {
	path := m.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid message path: %q", path))
	}
	if _, ok := r.handlers[path]; ok {
		panic(fmt.Sprintf("double registration of a handler for path %q", path))
	}
	r.handlers[path] = h
}

// handler returns the registered Handler for this message, or a notFound
// stub that errors on every call.
func (r *Router) handler(m drip.Msg) drip.Handler {
	if h, ok := r.handlers[m.Path()]; ok {
		return h
	}
	return notFoundHandler(m.Path())
}

// Check dispatches the message in the transaction upon its path.
func (r *Router) Check(ctx drip.Context, store drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot obtain message from transaction")
	}
	return r.handler(msg).Check(ctx, store, tx)
}

// Deliver dispatches the message in the transaction upon its path.
func (r *Router) Deliver(ctx drip.Context, store drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot obtain message from transaction")
	}
	return r.handler(msg).Deliver(ctx, store, tx)
}

// notFoundHandler always returns ErrNotFound for the path it was created
// with.
type notFoundHandler string

func (h notFoundHandler) Check(drip.Context, drip.KVStore, drip.Tx) (*drip.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(h))
}

func (h notFoundHandler) Deliver(drip.Context, drip.KVStore, drip.Tx) (*drip.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(h))
}
