package bank

import (
	"testing"

	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/driptest"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndMove(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	alice := driptest.NewCondition().Address()
	bob := driptest.NewCondition().Address()

	require.NoError(t, control.IssueCoins(db, alice, coin.NewCoin(10, 0, "IOV")))
	require.NoError(t, control.MoveCoins(db, alice, bob, coin.NewCoin(3, 500, "IOV")))

	held, err := control.Balance(db, alice)
	require.NoError(t, err)
	assert.True(t, coin.NewCoin(6, coin.MaxFrac-499, "IOV").Equals(held), "got %v", held)

	held, err = control.Balance(db, bob)
	require.NoError(t, err)
	assert.True(t, coin.NewCoin(3, 500, "IOV").Equals(held))
}

func TestMoveInsufficient(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	alice := driptest.NewCondition().Address()
	bob := driptest.NewCondition().Address()

	require.NoError(t, control.IssueCoins(db, alice, coin.NewCoin(1, 0, "IOV")))

	// more than held
	err := control.MoveCoins(db, alice, bob, coin.NewCoin(2, 0, "IOV"))
	assert.True(t, errors.ErrInsufficientAmount.Is(err))

	// wrong currency
	err = control.MoveCoins(db, alice, bob, coin.NewCoin(1, 0, "BTC"))
	assert.True(t, errors.ErrInsufficientAmount.Is(err))

	// empty source
	err = control.MoveCoins(db, bob, alice, coin.NewCoin(1, 0, "IOV"))
	assert.True(t, errors.ErrInsufficientAmount.Is(err))
}

func TestIssueNegative(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	alice := driptest.NewCondition().Address()

	require.NoError(t, control.IssueCoins(db, alice, coin.NewCoin(5, 0, "IOV")))
	require.NoError(t, control.IssueCoins(db, alice, coin.NewCoin(-2, 0, "IOV")))

	held, err := control.Balance(db, alice)
	require.NoError(t, err)
	assert.True(t, coin.NewCoin(3, 0, "IOV").Equals(held))

	// cannot burn below zero
	err = control.IssueCoins(db, alice, coin.NewCoin(-4, 0, "IOV"))
	assert.True(t, errors.ErrInsufficientAmount.Is(err))
}

func TestEmptiedWalletIsRemoved(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	alice := driptest.NewCondition().Address()
	bob := driptest.NewCondition().Address()

	require.NoError(t, control.IssueCoins(db, alice, coin.NewCoin(1, 0, "IOV")))
	require.NoError(t, control.MoveCoins(db, alice, bob, coin.NewCoin(1, 0, "IOV")))

	wallet, err := NewBucket().GetWallet(db, alice)
	require.NoError(t, err)
	assert.Nil(t, wallet)
}
