// Command dripsim runs two in-process replicas connected by a relay and
// walks through the full life cycle of the ledger: deposit base coins,
// accrue interest, move value to the other replica and redeem.
package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/app"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/driptest"
	"github.com/iov-one/drip/fixed"
	"github.com/iov-one/drip/relay"
	"github.com/iov-one/drip/x/accrual"
	"github.com/iov-one/drip/x/bank"
	"github.com/iov-one/drip/x/pool"
	"github.com/iov-one/drip/x/vault"
	"github.com/sirupsen/logrus"
)

const (
	channel = "alpha-beta"
	ticker  = "IOV"
	// 5*10^-8 per second, scaled by 10^18
	rate = 50_000_000_000
)

// simClock is a manually advanced clock shared by both replicas.
type simClock struct {
	now time.Time
}

func (c *simClock) read() time.Time { return c.now }

func (c *simClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// simTx declares its signers instead of carrying signatures. Good enough
// for an in-process simulation where nothing crosses a trust boundary.
type simTx struct {
	driptest.Tx
	signers []drip.Condition
}

func signedBy(msg drip.Msg, signers ...drip.Condition) *simTx {
	return &simTx{Tx: driptest.Tx{Msg: msg}, signers: signers}
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
	if t, ok := tx.(*simTx); ok {
		return d.auth.SetConditions(ctx, t.signers...)
	}
	return ctx
}

func newReplica(chainID string, clock *simClock, logger logrus.FieldLogger) *app.Replica {
	auth := &driptest.CtxAuth{Key: "auth"}
	router := app.NewRouter()
	accrual.RegisterRoutes(router, auth)
	pool.RegisterRoutes(router, auth, nil)
	vault.RegisterRoutes(router, auth)
	queries := drip.NewQueryRouter()
	accrual.RegisterQuery(queries)
	pool.RegisterQuery(queries)
	bank.RegisterQuery(queries)

	handler := app.ChainDecorators(
		app.NewRecovery(),
		app.NewLogging(),
		authDecorator{auth: auth},
	).WithHandler(router)

	return app.NewReplica(chainID, handler, queries, clock.read, logger)
}

func mustJSON(v interface{}) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}

// ledgerBalance reads the committed account and applies the interest
// accrued until now.
func ledgerBalance(rep *app.Replica, addr drip.Address, now time.Time) uint64 {
	models, err := rep.Query("/accounts", "", addr)
	if err != nil {
		logrus.WithError(err).Fatal("query account")
	}
	if len(models) == 0 {
		return 0
	}
	var acct accrual.Account
	if err := acct.Unmarshal(models[0].Value); err != nil {
		logrus.WithError(err).Fatal("parse account")
	}
	var elapsed uint64
	if at := drip.AsUnixTime(now); at > acct.Updated {
		elapsed = uint64(at - acct.Updated)
	}
	balance, err := fixed.Balance(acct.Principal, acct.Rate, elapsed)
	if err != nil {
		logrus.WithError(err).Fatal("compute balance")
	}
	return balance
}

func walletBalance(rep *app.Replica, addr drip.Address) coin.Coin {
	models, err := rep.Query("/wallets", "", addr)
	if err != nil {
		logrus.WithError(err).Fatal("query wallet")
	}
	if len(models) == 0 {
		return coin.Coin{Ticker: ticker}
	}
	var w bank.Wallet
	if err := w.Unmarshal(models[0].Value); err != nil {
		logrus.WithError(err).Fatal("parse wallet")
	}
	if w.Coin == nil {
		return coin.Coin{Ticker: ticker}
	}
	return *w.Coin
}

func deliver(rep *app.Replica, msg drip.Msg, signers ...drip.Condition) *drip.DeliverResult {
	res, err := rep.DeliverTx(signedBy(msg, signers...))
	if err != nil {
		logrus.WithError(err).WithField("chain_id", rep.ChainID()).Fatal("deliver")
	}
	return res
}

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)

	clock := &simClock{now: time.Unix(1_000_000, 0)}

	owner := driptest.NewCondition()
	governor := driptest.NewCondition()
	relayer := driptest.NewCondition()
	alice := driptest.NewCondition()
	bob := driptest.NewCondition()

	conf := accrual.Configuration{
		Owner:        owner.Address(),
		Governor:     governor.Address(),
		InterestRate: rate,
	}
	genesis := drip.Options{
		"genesis_time": mustJSON(drip.AsUnixTime(clock.now)),
		"conf": mustJSON(map[string]interface{}{
			"accrual": conf,
			"pool": pool.Configuration{
				Owner: owner.Address(),
				Relay: relayer.Address(),
			},
			"vault": vault.Configuration{
				Owner:  owner.Address(),
				Ticker: ticker,
			},
		}),
		"pool": mustJSON([]map[string]interface{}{
			{"channel": channel, "remote_token": "DRIP", "enabled": true},
		}),
		"bank": mustJSON([]map[string]interface{}{
			{"address": alice.Address(), "coin": coin.NewCoin(1000, 0, ticker)},
		}),
	}

	alpha := newReplica("alpha", clock, logger)
	beta := newReplica("beta", clock, logger)
	inits := []drip.Initializer{accrual.Initializer{}, pool.Initializer{}, vault.Initializer{}, bank.Initializer{}}
	if err := alpha.InitGenesis(genesis, inits...); err != nil {
		logger.WithError(err).Fatal("init alpha")
	}
	if err := beta.InitGenesis(genesis, inits...); err != nil {
		logger.WithError(err).Fatal("init beta")
	}

	wire := relay.New(logger)
	wire.Connect(channel, func(msg drip.Msg) (*drip.DeliverResult, error) {
		return beta.DeliverTx(signedBy(msg, relayer))
	})

	// Alice locks her coins and starts earning interest.
	const deposit = 1_000_000_000_000 // 1000 IOV in fractional units
	deliver(alpha, &vault.DepositMsg{Source: alice.Address(), Amount: deposit}, alice)
	depositWallet := walletBalance(alpha, alice.Address())
	logger.WithFields(logrus.Fields{
		"alice":  ledgerBalance(alpha, alice.Address(), clock.now),
		"wallet": depositWallet.String(),
	}).Info("deposited")

	clock.advance(100 * time.Second)
	logger.WithField("alice", ledgerBalance(alpha, alice.Address(), clock.now)).Info("accrued for 100s")

	// Half the holdings cross over to bob on the beta replica.
	res := deliver(alpha, &pool.SendMsg{
		Source:   alice.Address(),
		Receiver: bob.Address(),
		Channel:  channel,
		Amount:   deposit / 2,
	}, alice)
	wire.Collect(res)
	if err := wire.Flush(); err != nil {
		logger.WithError(err).Fatal("relay")
	}
	logger.WithFields(logrus.Fields{
		"alice@alpha": ledgerBalance(alpha, alice.Address(), clock.now),
		"bob@beta":    ledgerBalance(beta, bob.Address(), clock.now),
	}).Info("transferred across replicas")

	clock.advance(100 * time.Second)
	logger.WithFields(logrus.Fields{
		"alice@alpha": ledgerBalance(alpha, alice.Address(), clock.now),
		"bob@beta":    ledgerBalance(beta, bob.Address(), clock.now),
	}).Info("accrued for 100s more")

	// The governor tightens the faucet for future mints. Existing
	// accounts keep the rate they were funded at.
	deliver(alpha, &accrual.SetRateMsg{Rate: rate / 2}, governor)
	logger.WithField("rate", rate/2).Info("global rate lowered")

	// Alice cashes out the backed part of her remaining holdings.
	deliver(alpha, &vault.RedeemMsg{Source: alice.Address(), Amount: deposit / 2}, alice)
	redeemWallet := walletBalance(alpha, alice.Address())
	logger.WithFields(logrus.Fields{
		"alice":  ledgerBalance(alpha, alice.Address(), clock.now),
		"wallet": redeemWallet.String(),
	}).Info("redeemed")
}
