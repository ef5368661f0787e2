package driptest

import "github.com/iov-one/drip"

// Handler is a mock implementation of drip.Handler, returning declared
// results and counting calls.
type Handler struct {
	checkCall   int
	CheckResult drip.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult drip.DeliverResult
	DeliverErr    error
}

var _ drip.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	h.deliverCall++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
