package vault

import (
	"strconv"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/gconf"
	"github.com/iov-one/drip/x"
	"github.com/iov-one/drip/x/accrual"
	"github.com/iov-one/drip/x/bank"
)

const (
	depositCost      = 200
	redeemCost       = 200
	updateConfigCost = 50
)

// ReserveAddress returns the address holding the base coins that back the
// circulating ledger units of the given currency. No key controls it.
func ReserveAddress(ticker string) drip.Address {
	return drip.NewCondition("vault", "reserve", []byte(ticker)).Address()
}

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r drip.Registry, auth x.Authenticator) {
	ledger := accrual.NewController()
	coins := bank.NewController()
	r.Handle(&DepositMsg{}, &depositHandler{auth: auth, ledger: ledger, coins: coins})
	r.Handle(&RedeemMsg{}, &redeemHandler{auth: auth, ledger: ledger, coins: coins})
	r.Handle(&UpdateConfigurationMsg{}, &updateConfigHandler{auth: auth})
}

func blockNow(ctx drip.Context) (drip.UnixTime, error) {
	t, err := drip.BlockTime(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "block time")
	}
	return drip.AsUnixTime(t), nil
}

type depositHandler struct {
	auth   x.Authenticator
	ledger *accrual.Controller
	coins  *bank.Controller
}

var _ drip.Handler = (*depositHandler)(nil)

func (h *depositHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: depositCost}, nil
}

func (h *depositHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}

	locked, err := coin.FromUnits(msg.Amount, conf.Ticker)
	if err != nil {
		return nil, err
	}
	if err := h.coins.MoveCoins(db, msg.Source, ReserveAddress(conf.Ticker), locked); err != nil {
		return nil, errors.Wrap(err, "lock coins")
	}

	rate, err := h.ledger.GlobalRate(db)
	if err != nil {
		return nil, err
	}
	if err := h.ledger.Mint(db, now, msg.Source, msg.Amount, rate); err != nil {
		return nil, errors.Wrap(err, "mint")
	}
	return &drip.DeliverResult{}, nil
}

func (h *depositHandler) validate(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*DepositMsg, *Configuration, error) {
	var msg DepositMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "source did not sign")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	return &msg, conf, nil
}

type redeemHandler struct {
	auth   x.Authenticator
	ledger *accrual.Controller
	coins  *bank.Controller
}

var _ drip.Handler = (*redeemHandler)(nil)

func (h *redeemHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{GasAllocated: redeemCost}, nil
}

func (h *redeemHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	msg, conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}

	burned, err := h.ledger.Burn(db, now, msg.Source, msg.Amount)
	if err != nil {
		return nil, errors.Wrap(err, "burn")
	}
	released, err := coin.FromUnits(burned, conf.Ticker)
	if err != nil {
		return nil, err
	}
	// If the reserve cannot pay out the whole transaction fails, which
	// rolls back the burn above.
	if err := h.coins.MoveCoins(db, ReserveAddress(conf.Ticker), msg.Source, released); err != nil {
		return nil, errors.Wrap(ErrReleaseTransfer, err.Error())
	}
	return &drip.DeliverResult{
		Data: []byte(strconv.FormatUint(burned, 10)),
	}, nil
}

func (h *redeemHandler) validate(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*RedeemMsg, *Configuration, error) {
	var msg RedeemMsg
	if err := drip.LoadMsg(tx, &msg); err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "source did not sign")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	return &msg, conf, nil
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
	if err := gconf.Save(db, "vault", msg.Patch); err != nil {
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
