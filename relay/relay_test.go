package relay

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/app"
	"github.com/iov-one/drip/driptest"
	"github.com/iov-one/drip/x/accrual"
	"github.com/iov-one/drip/x/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 50_000_000_000

// testTx is a transaction that declares its signers. The authDecorator
// trusts the declaration, good enough for an in-process test.
type testTx struct {
	driptest.Tx
	signers []drip.Condition
}

type authDecorator struct {
	auth *driptest.CtxAuth
}

var _ drip.Decorator = authDecorator{}

func (d authDecorator) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx, next drip.Checker) (*drip.CheckResult, error) {
	return next.Check(d.withSigners(ctx, tx), db, tx)
}

func (d authDecorator) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx, next drip.Deliverer) (*drip.DeliverResult, error) {
	return next.Deliver(d.withSigners(ctx, tx), db, tx)
}

func (d authDecorator) withSigners(ctx drip.Context, tx drip.Tx) drip.Context {
	if t, ok := tx.(*testTx); ok {
		return d.auth.SetConditions(ctx, t.signers...)
	}
	return ctx
}

// node is one replica with its authorities.
type node struct {
	rep    *app.Replica
	owner  drip.Condition
	minter drip.Condition
	relay  drip.Condition
}

func newNode(t *testing.T, chainID string, clock app.Clock) *node {
	t.Helper()

	auth := &driptest.CtxAuth{Key: "auth"}
	router := app.NewRouter()
	accrual.RegisterRoutes(router, auth)
	pool.RegisterRoutes(router, auth, nil)
	queries := drip.NewQueryRouter()
	accrual.RegisterQuery(queries)
	pool.RegisterQuery(queries)
	handler := app.ChainDecorators(
		app.NewRecovery(),
		authDecorator{auth: auth},
	).WithHandler(router)

	n := &node{
		rep:    app.NewReplica(chainID, handler, queries, clock, nil),
		owner:  driptest.NewCondition(),
		minter: driptest.NewCondition(),
		relay:  driptest.NewCondition(),
	}
	conf := accrual.Configuration{
		Owner:        n.owner.Address(),
		Governor:     driptest.NewCondition().Address(),
		Minters:      []drip.Address{n.minter.Address()},
		InterestRate: testRate,
	}
	genesis := drip.Options{
		"conf": mustJSON(t, map[string]interface{}{
			"accrual": conf,
			"pool": pool.Configuration{
				Owner: n.owner.Address(),
				Relay: n.relay.Address(),
			},
		}),
		"genesis_time": mustJSON(t, 0),
	}
	require.NoError(t, n.rep.InitGenesis(genesis, accrual.Initializer{}, pool.Initializer{}))
	return n
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func (n *node) deliver(msg drip.Msg, signers ...drip.Condition) (*drip.DeliverResult, error) {
	return n.rep.DeliverTx(&testTx{Tx: driptest.Tx{Msg: msg}, signers: signers})
}

func (n *node) openRoute(t *testing.T, channel, token string) {
	t.Helper()
	_, err := n.deliver(&pool.UpdateRouteMsg{Channel: channel, RemoteToken: token, Enabled: true}, n.owner)
	require.NoError(t, err)
}

func (n *node) fund(t *testing.T, addr drip.Address, amount, rate uint64) {
	t.Helper()
	_, err := n.deliver(&accrual.MintMsg{Recipient: addr, Amount: amount, Rate: rate}, n.minter)
	require.NoError(t, err)
}

func (n *node) account(t *testing.T, addr drip.Address) *accrual.Account {
	t.Helper()
	models, err := n.rep.Query("/accounts", "", addr)
	require.NoError(t, err)
	if len(models) == 0 {
		return nil
	}
	var acct accrual.Account
	require.NoError(t, acct.Unmarshal(models[0].Value))
	return &acct
}

// sink returns a relay sink submitting to this node, signed by the node's
// configured relay condition.
func (n *node) sink() Sink {
	return func(msg drip.Msg) (*drip.DeliverResult, error) {
		return n.deliver(msg, n.relay)
	}
}

func fixedClock(sec int64) app.Clock {
	return func() time.Time { return time.Unix(sec, 0) }
}

func TestRelayDeliversInOrder(t *testing.T) {
	alpha := newNode(t, "alpha", fixedClock(100))
	beta := newNode(t, "beta", fixedClock(100))
	alpha.openRoute(t, "to-beta", "DRIP")
	beta.openRoute(t, "to-beta", "DRIP")

	alice := driptest.NewCondition()
	bob := driptest.NewCondition().Address()
	alpha.fund(t, alice.Address(), 1000, 7)

	r := New(nil)
	r.Connect("to-beta", beta.sink())

	for _, amount := range []uint64{300, 200} {
		res, err := alpha.deliver(&pool.SendMsg{
			Source: alice.Address(), Receiver: bob, Channel: "to-beta", Amount: amount,
		}, alice)
		require.NoError(t, err)
		r.Collect(res)
	}
	require.NoError(t, r.Flush())
	assert.Equal(t, 0, r.Pending())

	// both payloads landed, bob carries alice's rate
	acct := beta.account(t, bob)
	require.NotNil(t, acct)
	assert.Equal(t, uint64(500), acct.Principal)
	assert.Equal(t, uint64(7), acct.Rate)

	// value is conserved across the replicas
	remaining := alpha.account(t, alice.Address())
	require.NotNil(t, remaining)
	assert.Equal(t, uint64(500), remaining.Principal)
}

func TestRelayRedelivery(t *testing.T) {
	alpha := newNode(t, "alpha", fixedClock(100))
	beta := newNode(t, "beta", fixedClock(100))
	alpha.openRoute(t, "to-beta", "DRIP")
	beta.openRoute(t, "to-beta", "DRIP")

	alice := driptest.NewCondition()
	bob := driptest.NewCondition().Address()
	alpha.fund(t, alice.Address(), 1000, testRate)

	r := New(nil)
	r.Connect("to-beta", beta.sink())
	r.Redeliver(2)

	res, err := alpha.deliver(&pool.SendMsg{
		Source: alice.Address(), Receiver: bob, Channel: "to-beta", Amount: 300,
	}, alice)
	require.NoError(t, err)
	r.Collect(res)
	require.NoError(t, r.Flush())

	// delivered three times, minted once
	acct := beta.account(t, bob)
	require.NotNil(t, acct)
	assert.Equal(t, uint64(300), acct.Principal)
}

func TestRelayUnconnectedChannel(t *testing.T) {
	alpha := newNode(t, "alpha", fixedClock(100))
	alpha.openRoute(t, "to-beta", "DRIP")

	alice := driptest.NewCondition()
	alpha.fund(t, alice.Address(), 1000, testRate)

	r := New(nil)
	res, err := alpha.deliver(&pool.SendMsg{
		Source: alice.Address(), Receiver: driptest.NewCondition().Address(),
		Channel: "to-beta", Amount: 300,
	}, alice)
	require.NoError(t, err)
	r.Collect(res)

	// nowhere to go, the payload stays queued
	assert.Error(t, r.Flush())
	assert.Equal(t, 1, r.Pending())
}

func TestRelayHaltsChannelOnGap(t *testing.T) {
	beta := newNode(t, "beta", fixedClock(100))
	beta.openRoute(t, "to-beta", "DRIP")

	r := New(nil)
	r.Connect("to-beta", beta.sink())

	// a fabricated payload far ahead of the expected sequence
	p := &pool.Payload{
		Channel: "to-beta", Sequence: 5,
		Receiver: driptest.NewCondition().Address(), Amount: 100,
		RemoteToken: "DRIP", Data: make([]byte, 8),
	}
	raw, err := p.Marshal()
	require.NoError(t, err)
	r.Collect(&drip.DeliverResult{Tags: []drip.KVPair{
		{Key: []byte(pool.PayloadTagKey), Value: raw},
	}})

	assert.Error(t, r.Flush())
	assert.Equal(t, 1, r.Pending())

	// nothing was minted
	assert.Nil(t, beta.account(t, p.Receiver))
}
