package pool

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/app"
	"github.com/iov-one/drip/driptest"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/fixed"
	"github.com/iov-one/drip/gconf"
	"github.com/iov-one/drip/store"
	"github.com/iov-one/drip/x/accrual"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 50_000_000_000

type fixture struct {
	db     drip.CacheableKVStore
	router *app.Router
	owner  drip.Condition
	minter drip.Condition
	relay  drip.Condition
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		db:     store.MemStore(),
		router: app.NewRouter(),
		owner:  driptest.NewCondition(),
		minter: driptest.NewCondition(),
		relay:  driptest.NewCondition(),
	}
	conf := accrual.Configuration{
		Owner:        f.owner.Address(),
		Governor:     driptest.NewCondition().Address(),
		Minters:      []drip.Address{f.minter.Address()},
		InterestRate: testRate,
	}
	require.NoError(t, gconf.Save(f.db, "accrual", &conf))
	require.NoError(t, gconf.Save(f.db, "pool", &Configuration{
		Owner: f.owner.Address(),
		Relay: f.relay.Address(),
	}))

	auth := &driptest.CtxAuth{Key: "auth"}
	accrual.RegisterRoutes(f.router, auth)
	RegisterRoutes(f.router, auth, nil)
	return f
}

func (f *fixture) ctx(now int64, signers ...drip.Condition) drip.Context {
	ctx := drip.WithBlockTime(context.Background(), time.Unix(now, 0))
	auth := &driptest.CtxAuth{Key: "auth"}
	return auth.SetConditions(ctx, signers...)
}

func (f *fixture) deliver(ctx drip.Context, msg drip.Msg) (*drip.DeliverResult, error) {
	return f.router.Deliver(ctx, f.db, &driptest.Tx{Msg: msg})
}

// openChannel registers an enabled route for the channel.
func (f *fixture) openChannel(t *testing.T, channel, token string) {
	t.Helper()
	_, err := f.deliver(f.ctx(0, f.owner), &UpdateRouteMsg{Channel: channel, RemoteToken: token, Enabled: true})
	require.NoError(t, err)
}

func (f *fixture) fund(t *testing.T, addr drip.Address, amount, rate uint64) {
	t.Helper()
	_, err := f.deliver(f.ctx(0, f.minter), &accrual.MintMsg{Recipient: addr, Amount: amount, Rate: rate})
	require.NoError(t, err)
}

// payloadFromTags extracts the emitted payload from a delivery result.
func payloadFromTags(t *testing.T, res *drip.DeliverResult) *Payload {
	t.Helper()
	for _, tag := range res.Tags {
		if string(tag.Key) == PayloadTagKey {
			var p Payload
			require.NoError(t, p.Unmarshal(tag.Value))
			return &p
		}
	}
	t.Fatal("no payload tag in result")
	return nil
}

func TestUpdateRouteAuth(t *testing.T) {
	f := newFixture(t)

	msg := &UpdateRouteMsg{Channel: "alpha", RemoteToken: "DRIP", Enabled: true}
	_, err := f.deliver(f.ctx(0, driptest.NewCondition()), msg)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	_, err = f.deliver(f.ctx(0, f.owner), msg)
	require.NoError(t, err)

	route, err := NewBucket().GetRoute(f.db, "alpha")
	require.NoError(t, err)
	require.NotNil(t, route)
	assert.Equal(t, "DRIP", route.RemoteToken)
	assert.True(t, route.Enabled)
}

func TestSendEmitsSequencedPayload(t *testing.T) {
	f := newFixture(t)
	f.openChannel(t, "alpha", "DRIP")
	alice := driptest.NewCondition()
	bob := driptest.NewCondition().Address()
	f.fund(t, alice.Address(), 1000, 7)

	res, err := f.deliver(f.ctx(0, alice), &SendMsg{
		Source: alice.Address(), Receiver: bob, Channel: "alpha", Amount: 300,
	})
	require.NoError(t, err)

	p := payloadFromTags(t, res)
	assert.Equal(t, "alpha", p.Channel)
	assert.Equal(t, uint64(1), p.Sequence)
	assert.Equal(t, bob, p.Receiver)
	assert.Equal(t, uint64(300), p.Amount)
	assert.Equal(t, "DRIP", p.RemoteToken)
	assert.Equal(t, uint64(7), binary.BigEndian.Uint64(p.Data))

	// the funds left the source and nothing remains in escrow
	ledger := accrual.NewController()
	balance, err := ledger.Balance(f.db, 0, alice.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(700), balance)
	escrowed, err := ledger.Balance(f.db, 0, EscrowAddress("alpha"))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), escrowed)

	// a second send continues the sequence
	res, err = f.deliver(f.ctx(0, alice), &SendMsg{
		Source: alice.Address(), Receiver: bob, Channel: "alpha", Amount: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), payloadFromTags(t, res).Sequence)
}

func TestSendWholeBalance(t *testing.T) {
	f := newFixture(t)
	f.openChannel(t, "alpha", "DRIP")
	alice := driptest.NewCondition()
	bob := driptest.NewCondition().Address()
	f.fund(t, alice.Address(), 1000, testRate)

	res, err := f.deliver(f.ctx(0, alice), &SendMsg{
		Source: alice.Address(), Receiver: bob, Channel: "alpha", Amount: fixed.MaxAmount,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), payloadFromTags(t, res).Amount)

	balance, err := accrual.NewController().Balance(f.db, 0, alice.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)
}

func TestSendWithoutRoute(t *testing.T) {
	f := newFixture(t)
	alice := driptest.NewCondition()
	f.fund(t, alice.Address(), 1000, testRate)

	_, err := f.deliver(f.ctx(0, alice), &SendMsg{
		Source: alice.Address(), Receiver: driptest.NewCondition().Address(),
		Channel: "alpha", Amount: 300,
	})
	assert.True(t, ErrNoRoute.Is(err))
}

func TestSendRequiresSourceSignature(t *testing.T) {
	f := newFixture(t)
	f.openChannel(t, "alpha", "DRIP")
	alice := driptest.NewCondition()
	f.fund(t, alice.Address(), 1000, testRate)

	_, err := f.deliver(f.ctx(0, driptest.NewCondition()), &SendMsg{
		Source: alice.Address(), Receiver: driptest.NewCondition().Address(),
		Channel: "alpha", Amount: 300,
	})
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestReceiveMintsAtCarriedRate(t *testing.T) {
	f := newFixture(t)
	f.openChannel(t, "alpha", "DRIP")
	bob := driptest.NewCondition().Address()

	p := &Payload{
		Channel: "alpha", Sequence: 1, Receiver: bob, Amount: 500,
		RemoteToken: "DRIP", Data: encodeRate(7),
	}
	_, err := f.deliver(f.ctx(0, f.relay), &ReceiveMsg{Payload: p})
	require.NoError(t, err)

	ledger := accrual.NewController()
	balance, err := ledger.Balance(f.db, 0, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), balance)
	rate, err := ledger.UserRate(f.db, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), rate)
}

func TestReceiveRedelivery(t *testing.T) {
	f := newFixture(t)
	f.openChannel(t, "alpha", "DRIP")
	bob := driptest.NewCondition().Address()

	p := &Payload{
		Channel: "alpha", Sequence: 1, Receiver: bob, Amount: 500,
		RemoteToken: "DRIP", Data: encodeRate(testRate),
	}
	_, err := f.deliver(f.ctx(0, f.relay), &ReceiveMsg{Payload: p})
	require.NoError(t, err)

	// an at least once relay may deliver again, nothing is minted twice
	_, err = f.deliver(f.ctx(0, f.relay), &ReceiveMsg{Payload: p})
	assert.True(t, errors.ErrDuplicate.Is(err))

	balance, err := accrual.NewController().Balance(f.db, 0, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), balance)
}

func TestReceiveSequenceGap(t *testing.T) {
	f := newFixture(t)
	f.openChannel(t, "alpha", "DRIP")
	bob := driptest.NewCondition().Address()

	p := &Payload{
		Channel: "alpha", Sequence: 3, Receiver: bob, Amount: 500,
		RemoteToken: "DRIP", Data: encodeRate(testRate),
	}
	_, err := f.deliver(f.ctx(0, f.relay), &ReceiveMsg{Payload: p})
	assert.True(t, errors.ErrState.Is(err))

	balance, err := accrual.NewController().Balance(f.db, 0, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)
}

func TestRouteRenameKeepsSequence(t *testing.T) {
	f := newFixture(t)
	f.openChannel(t, "alpha", "DRIP")
	bob := driptest.NewCondition().Address()

	_, err := f.deliver(f.ctx(0, f.relay), &ReceiveMsg{Payload: &Payload{
		Channel: "alpha", Sequence: 1, Receiver: bob, Amount: 500,
		RemoteToken: "DRIP", Data: encodeRate(testRate),
	}})
	require.NoError(t, err)

	f.openChannel(t, "alpha", "DRIP2")

	route, err := NewBucket().GetRoute(f.db, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "DRIP2", route.RemoteToken)
	assert.Equal(t, uint64(1), route.InSequence)
}

func TestReceiveRequiresRelaySignature(t *testing.T) {
	f := newFixture(t)
	f.openChannel(t, "alpha", "DRIP")
	mallory := driptest.NewCondition()

	// a well formed payload crediting the submitter, signed by anyone but
	// the configured relay
	p := &Payload{
		Channel: "alpha", Sequence: 1, Receiver: mallory.Address(),
		Amount: 1_000_000_000_000, RemoteToken: "DRIP", Data: encodeRate(testRate),
	}
	_, err := f.deliver(f.ctx(0, mallory), &ReceiveMsg{Payload: p})
	assert.True(t, errors.ErrUnauthorized.Is(err))

	_, err = f.deliver(f.ctx(0), &ReceiveMsg{Payload: p})
	assert.True(t, errors.ErrUnauthorized.Is(err))

	balance, err := accrual.NewController().Balance(f.db, 0, mallory.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)

	// the untouched sequence still accepts the genuine payload
	_, err = f.deliver(f.ctx(0, f.relay), &ReceiveMsg{Payload: p})
	require.NoError(t, err)
}

func TestDisabledRouteRejectsTransfers(t *testing.T) {
	f := newFixture(t)
	f.openChannel(t, "alpha", "DRIP")
	alice := driptest.NewCondition()
	bob := driptest.NewCondition().Address()
	f.fund(t, alice.Address(), 1000, testRate)

	_, err := f.deliver(f.ctx(0, f.owner), &UpdateRouteMsg{
		Channel: "alpha", RemoteToken: "DRIP", Enabled: false,
	})
	require.NoError(t, err)

	_, err = f.deliver(f.ctx(0, alice), &SendMsg{
		Source: alice.Address(), Receiver: bob, Channel: "alpha", Amount: 300,
	})
	assert.True(t, errors.ErrState.Is(err))

	_, err = f.deliver(f.ctx(0, f.relay), &ReceiveMsg{Payload: &Payload{
		Channel: "alpha", Sequence: 1, Receiver: bob, Amount: 500,
		RemoteToken: "DRIP", Data: encodeRate(testRate),
	}})
	assert.True(t, errors.ErrState.Is(err))

	// nothing left the source and nothing was minted
	ledger := accrual.NewController()
	balance, err := ledger.Balance(f.db, 0, alice.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance)
	balance, err = ledger.Balance(f.db, 0, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)

	// re-enabling picks up where the channel left off
	f.openChannel(t, "alpha", "DRIP")
	res, err := f.deliver(f.ctx(0, alice), &SendMsg{
		Source: alice.Address(), Receiver: bob, Channel: "alpha", Amount: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), payloadFromTags(t, res).Sequence)
}

func TestUpdateConfigurationAuth(t *testing.T) {
	f := newFixture(t)
	newRelay := driptest.NewCondition().Address()

	msg := &UpdateConfigurationMsg{Patch: &Configuration{
		Owner: f.owner.Address(),
		Relay: newRelay,
	}}
	_, err := f.deliver(f.ctx(0, driptest.NewCondition()), msg)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	_, err = f.deliver(f.ctx(0, f.owner), msg)
	require.NoError(t, err)

	conf, err := loadConf(f.db)
	require.NoError(t, err)
	assert.Equal(t, newRelay, conf.Relay)
}

func TestMsgValidate(t *testing.T) {
	addr := driptest.NewCondition().Address()

	cases := map[string]struct {
		msg     drip.Msg
		wantErr *errors.Error
	}{
		"valid send": {
			msg: &SendMsg{Source: addr, Receiver: addr, Channel: "alpha", Amount: 1},
		},
		"send without amount": {
			msg:     &SendMsg{Source: addr, Receiver: addr, Channel: "alpha"},
			wantErr: errors.ErrAmount,
		},
		"send with bad channel": {
			msg:     &SendMsg{Source: addr, Receiver: addr, Channel: "UPPER CASE", Amount: 1},
			wantErr: errors.ErrInput,
		},
		"receive without payload": {
			msg:     &ReceiveMsg{},
			wantErr: errors.ErrEmpty,
		},
		"receive with short rate data": {
			msg: &ReceiveMsg{Payload: &Payload{
				Channel: "alpha", Sequence: 1, Receiver: addr, Amount: 1, Data: []byte{1, 2},
			}},
			wantErr: errors.ErrInput,
		},
		"receive with zero sequence": {
			msg: &ReceiveMsg{Payload: &Payload{
				Channel: "alpha", Receiver: addr, Amount: 1, Data: encodeRate(1),
			}},
			wantErr: errors.ErrInput,
		},
		"valid route update": {
			msg: &UpdateRouteMsg{Channel: "alpha", RemoteToken: "DRIP"},
		},
		"route update without token": {
			msg:     &UpdateRouteMsg{Channel: "alpha"},
			wantErr: errors.ErrEmpty,
		},
		"valid configuration update": {
			msg: &UpdateConfigurationMsg{Patch: &Configuration{Owner: addr, Relay: addr}},
		},
		"configuration update without patch": {
			msg:     &UpdateConfigurationMsg{},
			wantErr: errors.ErrEmpty,
		},
		"configuration update without relay": {
			msg:     &UpdateConfigurationMsg{Patch: &Configuration{Owner: addr}},
			wantErr: errors.ErrEmpty,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
			}
		})
	}
}
