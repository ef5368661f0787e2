package vault

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/fixed"
	"github.com/iov-one/drip/gconf"
)

// Message paths, used by the router.
const (
	pathDeposit      = "vault/deposit"
	pathRedeem       = "vault/redeem"
	pathUpdateConfig = "vault/update_configuration"
)

var (
	_ drip.Msg = (*DepositMsg)(nil)
	_ drip.Msg = (*RedeemMsg)(nil)
	_ drip.Msg = (*UpdateConfigurationMsg)(nil)
)

func (DepositMsg) Path() string {
	return pathDeposit
}

func (m *DepositMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if m.Amount == fixed.MaxAmount {
		errs = errors.Append(errs, errors.Field("Amount", errors.ErrAmount, "whole balance sentinel not allowed for deposit"))
	}
	return errs
}

func (RedeemMsg) Path() string {
	return pathRedeem
}

func (m *RedeemMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	return errs
}

func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfig
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Field("Patch", errors.ErrEmpty, "configuration required")
	}
	return errors.AppendField(nil, "Patch", m.Patch.Validate())
}

// Validate ensures the configuration names an owner and a valid ticker.
func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	if !coin.IsCC(c.Ticker) {
		errs = errors.Append(errs, errors.Field("Ticker", errors.ErrCurrency, "invalid ticker"))
	}
	return errs
}

var _ gconf.Configuration = (*Configuration)(nil)

func loadConf(db drip.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, "vault", &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
