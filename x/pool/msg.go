package pool

import (
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
)

// Message paths, used by the router.
const (
	pathSend         = "pool/send"
	pathReceive      = "pool/receive"
	pathUpdateRoute  = "pool/update_route"
	pathUpdateConfig = "pool/update_configuration"
)

var (
	_ drip.Msg = (*SendMsg)(nil)
	_ drip.Msg = (*ReceiveMsg)(nil)
	_ drip.Msg = (*UpdateRouteMsg)(nil)
	_ drip.Msg = (*UpdateConfigurationMsg)(nil)
)

func (SendMsg) Path() string {
	return pathSend
}

func (m *SendMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Receiver", m.Receiver.Validate())
	if !isChannel(m.Channel) {
		errs = errors.Append(errs, errors.Field("Channel", errors.ErrInput, "invalid channel name"))
	}
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	return errs
}

func (ReceiveMsg) Path() string {
	return pathReceive
}

func (m *ReceiveMsg) Validate() error {
	if m.Payload == nil {
		return errors.Field("Payload", errors.ErrEmpty, "payload required")
	}
	return errors.AppendField(nil, "Payload", m.Payload.Validate())
}

// Validate ensures a payload carries everything the inbound side needs.
func (p *Payload) Validate() error {
	var errs error
	if !isChannel(p.Channel) {
		errs = errors.Append(errs, errors.Field("Channel", errors.ErrInput, "invalid channel name"))
	}
	if p.Sequence == 0 {
		errs = errors.Append(errs, errors.Field("Sequence", errors.ErrInput, "sequence starts at 1"))
	}
	errs = errors.AppendField(errs, "Receiver", p.Receiver.Validate())
	if p.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if len(p.Data) != rateDataLen {
		errs = errors.Append(errs, errors.Field("Data", errors.ErrInput, "malformed rate data"))
	}
	return errs
}

func (UpdateRouteMsg) Path() string {
	return pathUpdateRoute
}

func (m *UpdateRouteMsg) Validate() error {
	var errs error
	if !isChannel(m.Channel) {
		errs = errors.Append(errs, errors.Field("Channel", errors.ErrInput, "invalid channel name"))
	}
	if m.RemoteToken == "" {
		errs = errors.Append(errs, errors.Field("RemoteToken", errors.ErrEmpty, "remote token required"))
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
