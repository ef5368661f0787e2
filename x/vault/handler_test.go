package vault

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/app"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/driptest"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/fixed"
	"github.com/iov-one/drip/gconf"
	"github.com/iov-one/drip/store"
	"github.com/iov-one/drip/x/accrual"
	"github.com/iov-one/drip/x/bank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 50_000_000_000

type fixture struct {
	db     drip.CacheableKVStore
	router *app.Router
	owner  drip.Condition
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		db:     store.MemStore(),
		router: app.NewRouter(),
		owner:  driptest.NewCondition(),
	}
	aconf := accrual.Configuration{
		Owner:        f.owner.Address(),
		Governor:     driptest.NewCondition().Address(),
		InterestRate: testRate,
	}
	require.NoError(t, gconf.Save(f.db, "accrual", &aconf))
	vconf := Configuration{
		Owner:  f.owner.Address(),
		Ticker: "IOV",
	}
	require.NoError(t, gconf.Save(f.db, "vault", &vconf))

	auth := &driptest.CtxAuth{Key: "auth"}
	accrual.RegisterRoutes(f.router, auth)
	RegisterRoutes(f.router, auth)
	return f
}

func (f *fixture) ctx(now int64, signers ...drip.Condition) drip.Context {
	ctx := drip.WithBlockTime(context.Background(), time.Unix(now, 0))
	auth := &driptest.CtxAuth{Key: "auth"}
	return auth.SetConditions(ctx, signers...)
}

// deliver runs the message against a cache wrap, the way a replica does,
// so a failing transaction leaves no trace.
func (f *fixture) deliver(ctx drip.Context, msg drip.Msg) (*drip.DeliverResult, error) {
	cache := f.db.CacheWrap()
	res, err := f.router.Deliver(ctx, cache, &driptest.Tx{Msg: msg})
	if err != nil {
		cache.Discard()
		return nil, err
	}
	cache.Write()
	return res, nil
}

func (f *fixture) fundWallet(t *testing.T, addr drip.Address, c coin.Coin) {
	t.Helper()
	require.NoError(t, bank.NewController().IssueCoins(f.db, addr, c))
}

func TestDepositMintsAtGlobalRate(t *testing.T) {
	f := newFixture(t)
	alice := driptest.NewCondition()
	f.fundWallet(t, alice.Address(), coin.NewCoin(10, 0, "IOV"))

	const amount = 2_500_000_000 // 2.5 IOV in fractional units
	_, err := f.deliver(f.ctx(0, alice), &DepositMsg{Source: alice.Address(), Amount: amount})
	require.NoError(t, err)

	ledger := accrual.NewController()
	balance, err := ledger.Balance(f.db, 0, alice.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(amount), balance)
	rate, err := ledger.UserRate(f.db, alice.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(testRate), rate)

	// the coins moved into the reserve
	coins := bank.NewController()
	held, err := coins.Balance(f.db, alice.Address())
	require.NoError(t, err)
	assert.True(t, coin.NewCoin(7, 500_000_000, "IOV").Equals(held), "got %v", held)
	reserve, err := coins.Balance(f.db, ReserveAddress("IOV"))
	require.NoError(t, err)
	assert.True(t, coin.NewCoin(2, 500_000_000, "IOV").Equals(reserve), "got %v", reserve)
}

func TestDepositRequiresFunds(t *testing.T) {
	f := newFixture(t)
	alice := driptest.NewCondition()

	_, err := f.deliver(f.ctx(0, alice), &DepositMsg{Source: alice.Address(), Amount: 1000})
	assert.True(t, errors.ErrInsufficientAmount.Is(err))
}

func TestRedeemReleasesCoins(t *testing.T) {
	f := newFixture(t)
	alice := driptest.NewCondition()
	f.fundWallet(t, alice.Address(), coin.NewCoin(10, 0, "IOV"))

	const amount = 4_000_000_000
	_, err := f.deliver(f.ctx(0, alice), &DepositMsg{Source: alice.Address(), Amount: amount})
	require.NoError(t, err)

	res, err := f.deliver(f.ctx(0, alice), &RedeemMsg{Source: alice.Address(), Amount: 1_000_000_000})
	require.NoError(t, err)
	assert.Equal(t, []byte("1000000000"), res.Data)

	coins := bank.NewController()
	held, err := coins.Balance(f.db, alice.Address())
	require.NoError(t, err)
	assert.True(t, coin.NewCoin(7, 0, "IOV").Equals(held), "got %v", held)

	balance, err := accrual.NewController().Balance(f.db, 0, alice.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000_000_000), balance)
}

func TestRedeemWholeBalance(t *testing.T) {
	f := newFixture(t)
	alice := driptest.NewCondition()
	f.fundWallet(t, alice.Address(), coin.NewCoin(10, 0, "IOV"))

	const amount = 4_000_000_000
	_, err := f.deliver(f.ctx(0, alice), &DepositMsg{Source: alice.Address(), Amount: amount})
	require.NoError(t, err)

	// no time passed, so the whole balance is exactly the deposit
	_, err = f.deliver(f.ctx(0, alice), &RedeemMsg{Source: alice.Address(), Amount: fixed.MaxAmount})
	require.NoError(t, err)

	held, err := bank.NewController().Balance(f.db, alice.Address())
	require.NoError(t, err)
	assert.True(t, coin.NewCoin(10, 0, "IOV").Equals(held), "got %v", held)

	balance, err := accrual.NewController().Balance(f.db, 0, alice.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)
}

func TestRedeemFailureRollsBackBurn(t *testing.T) {
	f := newFixture(t)
	alice := driptest.NewCondition()
	f.fundWallet(t, alice.Address(), coin.NewCoin(1000, 0, "IOV"))

	const amount = 1_000_000_000_000 // 1000 IOV
	_, err := f.deliver(f.ctx(0, alice), &DepositMsg{Source: alice.Address(), Amount: amount})
	require.NoError(t, err)

	// after 100 seconds the balance includes interest the reserve does
	// not hold, so a whole balance redeem must fail
	_, err = f.deliver(f.ctx(100, alice), &RedeemMsg{Source: alice.Address(), Amount: fixed.MaxAmount})
	assert.True(t, ErrReleaseTransfer.Is(err))

	// the burn was rolled back together with the failed release
	balance, err := accrual.NewController().Balance(f.db, 100, alice.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(amount+5_000_000), balance)

	// redeeming only the backed part still works
	_, err = f.deliver(f.ctx(100, alice), &RedeemMsg{Source: alice.Address(), Amount: amount})
	require.NoError(t, err)
}

func TestUpdateConfigurationAuth(t *testing.T) {
	f := newFixture(t)

	msg := &UpdateConfigurationMsg{Patch: &Configuration{
		Owner:  f.owner.Address(),
		Ticker: "BTC",
	}}
	_, err := f.deliver(f.ctx(0, driptest.NewCondition()), msg)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	_, err = f.deliver(f.ctx(0, f.owner), msg)
	require.NoError(t, err)

	conf, err := loadConf(f.db)
	require.NoError(t, err)
	assert.Equal(t, "BTC", conf.Ticker)
}

func TestMsgValidate(t *testing.T) {
	addr := driptest.NewCondition().Address()

	assert.NoError(t, (&DepositMsg{Source: addr, Amount: 5}).Validate())
	assert.Error(t, (&DepositMsg{Source: addr}).Validate())
	assert.Error(t, (&DepositMsg{Source: addr, Amount: fixed.MaxAmount}).Validate())
	assert.NoError(t, (&RedeemMsg{Source: addr, Amount: fixed.MaxAmount}).Validate())
	assert.Error(t, (&UpdateConfigurationMsg{}).Validate())
}
