package pool

import (
	"encoding/binary"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/orm"
	"github.com/iov-one/drip/x/accrual"
)

// rateDataLen is the size of the opaque payload data. It carries the
// sender's personal interest rate as 8 bytes big endian.
const rateDataLen = 8

// EscrowAddress returns the deterministic address funds pass through on
// their way out of a channel. No key controls it, so once funds land there
// only the burn in the same transaction can take them out.
func EscrowAddress(channel string) drip.Address {
	return drip.NewCondition("pool", "escrow", []byte(channel)).Address()
}

// Controller moves value between replicas. An outbound transfer escrows
// and burns locally and produces a sequenced payload for the remote side.
// An inbound payload mints locally at the rate the sender enjoyed, after
// passing the per channel replay guard.
type Controller struct {
	routes Bucket
	ledger *accrual.Controller
}

// NewController returns a controller over the default route bucket and
// the accrual ledger.
func NewController() *Controller {
	return &Controller{
		routes: NewBucket(),
		ledger: accrual.NewController(),
	}
}

// Send burns the amount on this replica and returns the payload that must
// be relayed to the remote one. The fixed.MaxAmount sentinel sends the
// whole balance. The sender's personal rate is captured before the burn
// and travels with the payload, so interest terms survive the crossing.
func (c *Controller) Send(db drip.KVStore, now drip.UnixTime, src, receiver drip.Address, channel string, amount uint64) (*Payload, error) {
	route, err := c.routes.GetRoute(db, channel)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, errors.Wrap(ErrNoRoute, channel)
	}
	if !route.Enabled {
		return nil, errors.Wrapf(errors.ErrState, "route %q disabled", channel)
	}

	rate, err := c.ledger.UserRate(db, src)
	if err != nil {
		return nil, err
	}

	escrow := EscrowAddress(channel)
	moved, err := c.ledger.Move(db, now, src, escrow, amount)
	if err != nil {
		return nil, errors.Wrap(err, "escrow")
	}
	if _, err := c.ledger.Burn(db, now, escrow, moved); err != nil {
		return nil, errors.Wrap(err, "burn escrow")
	}

	seq := orm.NewSequence(BucketName, "out:"+channel)
	n := seq.NextInt(db)

	return &Payload{
		Channel:     channel,
		Sequence:    uint64(n),
		Receiver:    receiver,
		Amount:      moved,
		RemoteToken: route.RemoteToken,
		Data:        encodeRate(rate),
	}, nil
}

// Receive mints the payload amount on this replica. Payloads must arrive
// in channel order: a sequence at or below the last accepted one is a
// redelivery and fails with ErrDuplicate, a sequence further ahead is a
// gap and fails with ErrState. Either way no state changes, so the relay
// is free to deliver more than once.
func (c *Controller) Receive(db drip.KVStore, now drip.UnixTime, p *Payload) error {
	route, err := c.routes.GetRoute(db, p.Channel)
	if err != nil {
		return err
	}
	if route == nil {
		return errors.Wrap(ErrNoRoute, p.Channel)
	}
	if !route.Enabled {
		return errors.Wrapf(errors.ErrState, "route %q disabled", p.Channel)
	}
	if p.Sequence <= route.InSequence {
		return errors.Wrapf(errors.ErrDuplicate, "sequence %d already processed", p.Sequence)
	}
	if p.Sequence != route.InSequence+1 {
		return errors.Wrapf(errors.ErrState, "sequence gap: want %d, got %d", route.InSequence+1, p.Sequence)
	}

	rate, err := decodeRate(p.Data)
	if err != nil {
		return err
	}
	if err := c.ledger.Mint(db, now, p.Receiver, p.Amount, rate); err != nil {
		return errors.Wrap(err, "mint")
	}

	route.InSequence = p.Sequence
	return c.routes.SaveRoute(db, p.Channel, route)
}

func encodeRate(rate uint64) []byte {
	data := make([]byte, rateDataLen)
	binary.BigEndian.PutUint64(data, rate)
	return data
}

func decodeRate(data []byte) (uint64, error) {
	if len(data) != rateDataLen {
		return 0, errors.Wrapf(errors.ErrInput, "rate data must be %d bytes", rateDataLen)
	}
	return binary.BigEndian.Uint64(data), nil
}
