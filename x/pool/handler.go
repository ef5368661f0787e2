package pool

import (
	"strconv"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/gconf"
	"github.com/iov-one/drip/x"
)

const (
	sendCost         = 200
	receiveCost      = 200
	updateRouteCost  = 50
	updateConfigCost = 50
)

// PayloadTagKey is the tag under which an outbound transfer publishes its
// marshaled payload. A relay watches delivery results for this key.
const PayloadTagKey = "pool/payload"

// RiskControl lets an application veto inbound payloads before any funds
// are minted. The default accepts everything.
type RiskControl interface {
	Allow(p *Payload) error
}

// NoLimit accepts every inbound payload.
type NoLimit struct{}

var _ RiskControl = NoLimit{}

func (NoLimit) Allow(*Payload) error { return nil }

// RegisterRoutes will instantiate and register all handlers in this
// package. A nil risk control means no limit.
func RegisterRoutes(r drip.Registry, auth x.Authenticator, risk RiskControl) {
	if risk == nil {
		risk = NoLimit{}
	}
	control := NewController()
	r.Handle(&SendMsg{}, &sendHandler{auth: auth, control: control})
	r.Handle(&ReceiveMsg{}, &receiveHandler{auth: auth, control: control, risk: risk})
	r.Handle(&UpdateRouteMsg{}, &updateRouteHandler{auth: auth})
	r.Handle(&UpdateConfigurationMsg{}, &updateConfigHandler{auth: auth})
}

// RegisterQuery registers the route bucket for queries.
func RegisterQuery(qr drip.QueryRouter) {
	NewBucket().Register("routes", qr)
}

func blockNow(ctx drip.Context) (drip.UnixTime, error) {
	t, err := drip.BlockTime(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "block time")
	}
	return drip.AsUnixTime(t), nil
}

type sendHandler struct {
	auth    x.Authenticator
	control *Controller
}

var _ drip.Handler = (*sendHandler)(nil)

func (h *sendHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: sendCost}, nil
}

func (h *sendHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := h.control.Send(db, now, msg.Source, msg.Receiver, msg.Channel, msg.Amount)
	if err != nil {
		return nil, err
	}
	raw, err := payload.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal payload")
	}
	return &drip.DeliverResult{
		Data: []byte(strconv.FormatUint(payload.Amount, 10)),
		Tags: []drip.KVPair{
			{Key: []byte(PayloadTagKey), Value: raw},
		},
	}, nil
}

func (h *sendHandler) validate(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source did not sign")
	}
	return &msg, nil
}

type receiveHandler struct {
	auth    x.Authenticator
	control *Controller
	risk    RiskControl
}

var _ drip.Handler = (*receiveHandler)(nil)

func (h *receiveHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: receiveCost}, nil
}

func (h *receiveHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.control.Receive(db, now, msg.Payload); err != nil {
		return nil, err
	}
	return &drip.DeliverResult{
		Data: []byte(strconv.FormatUint(msg.Payload.Amount, 10)),
	}, nil
}

// validate requires the payload to be submitted by the configured relay.
// The sequence guard in the controller takes care of replays, but only the
// relay is trusted to have watched the source side.
func (h *receiveHandler) validate(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*ReceiveMsg, error) {
	var msg ReceiveMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Relay) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "relay did not sign")
	}
	if err := h.risk.Allow(msg.Payload); err != nil {
		return nil, errors.Wrap(err, "risk control")
	}
	return &msg, nil
}

type updateRouteHandler struct {
	auth x.Authenticator
}

var _ drip.Handler = (*updateRouteHandler)(nil)

func (h *updateRouteHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: updateRouteCost}, nil
}

func (h *updateRouteHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	bucket := NewBucket()
	route, err := bucket.GetRoute(db, msg.Channel)
	if err != nil {
		return nil, err
	}
	if route == nil {
		route = &Route{}
	}
	// the inbound sequence survives a token rename or a disable
	route.RemoteToken = msg.RemoteToken
	route.Enabled = msg.Enabled
	if err := bucket.SaveRoute(db, msg.Channel, route); err != nil {
		return nil, err
	}
	return &drip.DeliverResult{}, nil
}

func (h *updateRouteHandler) validate(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*UpdateRouteMsg, error) {
	var msg UpdateRouteMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner did not sign")
	}
	return &msg, nil
}

type updateConfigHandler struct {
	auth x.Authenticator
}

var _ drip.Handler = (*updateConfigHandler)(nil)

func (h *updateConfigHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: updateConfigCost}, nil
}

func (h *updateConfigHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := gconf.Save(db, "pool", msg.Patch); err != nil {
		return nil, err
	}
	return &drip.DeliverResult{}, nil
}

func (h *updateConfigHandler) validate(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*UpdateConfigurationMsg, error) {
	var msg UpdateConfigurationMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner did not sign")
	}
	return &msg, nil
}
