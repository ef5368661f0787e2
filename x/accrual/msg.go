package accrual

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/fixed"
)

// Message paths, used by the router.
const (
	pathMint      = "accrual/mint"
	pathBurn      = "accrual/burn"
	pathSend      = "accrual/send"
	pathSetRate   = "accrual/set_rate"
	pathGrantRole = "accrual/grant_role"
)

var (
	_ drip.Msg = (*MintMsg)(nil)
	_ drip.Msg = (*BurnMsg)(nil)
	_ drip.Msg = (*SendMsg)(nil)
	_ drip.Msg = (*SetRateMsg)(nil)
	_ drip.Msg = (*GrantRoleMsg)(nil)
)

func (MintMsg) Path() string {
	return pathMint
}

// Validate ensures the mint message is schematically correct. A zero rate
// is allowed and stands for the current global rate.
func (m *MintMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Recipient", m.Recipient.Validate())
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if m.Amount == fixed.MaxAmount {
		errs = errors.Append(errs, errors.Field("Amount", errors.ErrAmount, "whole balance sentinel not allowed for mint"))
	}
	return errs
}

func (BurnMsg) Path() string {
	return pathBurn
}

func (m *BurnMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Account", m.Account.Validate())
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	return errs
}

func (SendMsg) Path() string {
	return pathSend
}

func (m *SendMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if m.Source.Equals(m.Destination) {
		errs = errors.Append(errs, errors.Field("Destination", errors.ErrInput, "same as source"))
	}
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	return errs
}

func (SetRateMsg) Path() string {
	return pathSetRate
}

// Validate accepts any rate value. Whether the rate is a strict decrease
// is checked against the state during processing, not here.
func (m *SetRateMsg) Validate() error {
	return nil
}

func (GrantRoleMsg) Path() string {
	return pathGrantRole
}

func (m *GrantRoleMsg) Validate() error {
	return errors.AppendField(nil, "Address", m.Address.Validate())
}
