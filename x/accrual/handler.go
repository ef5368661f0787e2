package accrual

import (
	"strconv"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/x"
)

const (
	mintCost    = 100
	burnCost    = 100
	sendCost    = 100
	setRateCost = 50
	grantCost   = 50
)

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r drip.Registry, auth x.Authenticator) {
	control := NewController()
	r.Handle(&MintMsg{}, &mintHandler{auth: auth, control: control})
	r.Handle(&BurnMsg{}, &burnHandler{auth: auth, control: control})
	r.Handle(&SendMsg{}, &sendHandler{auth: auth, control: control})
	r.Handle(&SetRateMsg{}, &setRateHandler{auth: auth, control: control})
	r.Handle(&GrantRoleMsg{}, &grantRoleHandler{auth: auth})
}

// RegisterQuery registers the account bucket for queries.
func RegisterQuery(qr drip.QueryRouter) {
	NewBucket().Register("accounts", qr)
}

// blockNow extracts the current block time from the context.
func blockNow(ctx drip.Context) (drip.UnixTime, error) {
	t, err := drip.BlockTime(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "block time")
	}
	return drip.AsUnixTime(t), nil
}

type mintHandler struct {
	auth    x.Authenticator
	control *Controller
}

var _ drip.Handler = (*mintHandler)(nil)

func (h *mintHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: mintCost}, nil
}

func (h *mintHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	// zero is the sentinel for the current global rate
	rate := msg.Rate
	if rate == 0 {
		rate = conf.InterestRate
	}
	if err := h.control.Mint(db, now, msg.Recipient, msg.Amount, rate); err != nil {
		return nil, err
	}
	return &drip.DeliverResult{}, nil
}

func (h *mintHandler) validate(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*MintMsg, *Configuration, error) {
	var msg MintMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	if !hasMintAuthority(ctx, h.auth, conf) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "not a minter")
	}
	return &msg, conf, nil
}

type burnHandler struct {
	auth    x.Authenticator
	control *Controller
}

var _ drip.Handler = (*burnHandler)(nil)

func (h *burnHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: burnCost}, nil
}

func (h *burnHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	burned, err := h.control.Burn(db, now, msg.Account, msg.Amount)
	if err != nil {
		return nil, err
	}
	return &drip.DeliverResult{
		Data: []byte(strconv.FormatUint(burned, 10)),
	}, nil
}

func (h *burnHandler) validate(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*BurnMsg, error) {
	var msg BurnMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if !hasMintAuthority(ctx, h.auth, conf) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "not a minter")
	}
	return &msg, nil
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
	moved, err := h.control.Move(db, now, msg.Source, msg.Destination, msg.Amount)
	if err != nil {
		return nil, err
	}
	return &drip.DeliverResult{
		Data: []byte(strconv.FormatUint(moved, 10)),
	}, nil
}

func (h *sendHandler) validate(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	// the source must have signed, no matter who else did
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source did not sign")
	}
	return &msg, nil
}

type setRateHandler struct {
	auth    x.Authenticator
	control *Controller
}

var _ drip.Handler = (*setRateHandler)(nil)

func (h *setRateHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: setRateCost}, nil
}

func (h *setRateHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.SetRate(db, msg.Rate); err != nil {
		return nil, err
	}
	return &drip.DeliverResult{
		Tags: []drip.KVPair{
			{Key: []byte("accrual/rate"), Value: []byte(strconv.FormatUint(msg.Rate, 10))},
		},
	}, nil
}

func (h *setRateHandler) validate(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*SetRateMsg, error) {
	var msg SetRateMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Governor) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "governor did not sign")
	}
	return &msg, nil
}

type grantRoleHandler struct {
	auth x.Authenticator
}

var _ drip.Handler = (*grantRoleHandler)(nil)

func (h *grantRoleHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: grantCost}, nil
}

func (h *grantRoleHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if msg.Revoke {
		minters := conf.Minters[:0]
		for _, m := range conf.Minters {
			if !m.Equals(msg.Address) {
				minters = append(minters, m)
			}
		}
		conf.Minters = minters
	} else if !conf.IsMinter(msg.Address) {
		conf.Minters = append(conf.Minters, msg.Address)
	}
	if err := saveConf(db, conf); err != nil {
		return nil, err
	}
	return &drip.DeliverResult{}, nil
}

func (h *grantRoleHandler) validate(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*GrantRoleMsg, *Configuration, error) {
	var msg GrantRoleMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, nil, err
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, conf.Owner) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "owner did not sign")
	}
	return &msg, conf, nil
}

// hasMintAuthority returns true if any declared minter signed.
func hasMintAuthority(ctx drip.Context, auth x.Authenticator, conf *Configuration) bool {
	return x.AnyAddress(ctx, auth, conf.Minters)
}
