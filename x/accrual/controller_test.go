package accrual

import (
	"testing"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/driptest"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/fixed"
	"github.com/iov-one/drip/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rate of 5*10^-8 per second, scaled
const testRate = 50_000_000_000

func TestMintAndBalance(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	user := driptest.NewCondition().Address()

	// 1000 units of 10^9 base units each
	require.NoError(t, control.Mint(db, 0, user, 1000_000_000_000, testRate))

	// immediately after the mint the balance is the principal
	balance, err := control.Balance(db, 0, user)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000_000_000_000), balance)

	// 100 seconds later exactly 0.005 units of interest accrued
	balance, err = control.Balance(db, 100, user)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000_005_000_000), balance)

	// reading the balance does not crystallize
	principal, err := control.Principal(db, user)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000_000_000_000), principal)

	// and reading twice gives the same result
	again, err := control.Balance(db, 100, user)
	require.NoError(t, err)
	assert.Equal(t, balance, again)
}

func TestMintCrystallizesAndOverwritesRate(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	user := driptest.NewCondition().Address()

	require.NoError(t, control.Mint(db, 0, user, 1000_000_000_000, testRate))
	// a second mint at a new rate first realizes the interest earned
	// under the old rate, then freezes the new rate onto everything
	require.NoError(t, control.Mint(db, 100, user, 500_000_000_000, testRate/2))

	principal, err := control.Principal(db, user)
	require.NoError(t, err)
	assert.Equal(t, uint64(1500_005_000_000), principal)

	rate, err := control.UserRate(db, user)
	require.NoError(t, err)
	assert.Equal(t, uint64(testRate/2), rate)
}

func TestBurnAll(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	user := driptest.NewCondition().Address()

	require.NoError(t, control.Mint(db, 0, user, 1000_000_000_000, testRate))

	// burning the sentinel zeroes the balance exactly, interest included
	burned, err := control.Burn(db, 100, user, fixed.MaxAmount)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000_005_000_000), burned)

	balance, err := control.Balance(db, 100, user)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)

	// the account record is gone
	acct, err := NewBucket().GetAccount(db, user)
	require.NoError(t, err)
	assert.Nil(t, acct)
}

func TestBurnInsufficient(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	user := driptest.NewCondition().Address()

	require.NoError(t, control.Mint(db, 0, user, 500, testRate))

	_, err := control.Burn(db, 0, user, 501)
	assert.True(t, errors.ErrInsufficientAmount.Is(err))

	// the failed burn left the account untouched
	principal, err := control.Principal(db, user)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), principal)

	// burning from a missing account fails as well
	_, err = control.Burn(db, 0, driptest.NewCondition().Address(), 1)
	assert.True(t, errors.ErrEmpty.Is(err))
}

func TestBurnPartial(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	user := driptest.NewCondition().Address()

	require.NoError(t, control.Mint(db, 0, user, 1000_000_000_000, testRate))

	burned, err := control.Burn(db, 100, user, 5_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000), burned)

	// the interest was crystallized before subtracting
	principal, err := control.Principal(db, user)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000_000_000_000), principal)

	// the personal rate survives a partial burn
	rate, err := control.UserRate(db, user)
	require.NoError(t, err)
	assert.Equal(t, uint64(testRate), rate)
}

func TestMoveConservesValue(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	alice := driptest.NewCondition().Address()
	bob := driptest.NewCondition().Address()

	require.NoError(t, control.Mint(db, 0, alice, 1000_000_000_000, testRate))
	require.NoError(t, control.Mint(db, 0, bob, 300_000_000_000, testRate/5))

	before := totalBalance(t, control, db, 100, alice, bob)
	_, err := control.Move(db, 100, alice, bob, 400_000_000_000)
	require.NoError(t, err)
	after := totalBalance(t, control, db, 100, alice, bob)

	assert.Equal(t, before, after)
}

func TestMoveRateInheritance(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	alice := driptest.NewCondition().Address()
	bob := driptest.NewCondition().Address()
	carl := driptest.NewCondition().Address()

	require.NoError(t, control.Mint(db, 0, alice, 1000, testRate))
	require.NoError(t, control.Mint(db, 0, bob, 1000, testRate/2))

	// an empty destination inherits the sender's rate
	_, err := control.Move(db, 0, alice, carl, 100)
	require.NoError(t, err)
	rate, err := control.UserRate(db, carl)
	require.NoError(t, err)
	assert.Equal(t, uint64(testRate), rate)

	// a funded destination keeps its own rate
	_, err = control.Move(db, 0, alice, bob, 100)
	require.NoError(t, err)
	rate, err = control.UserRate(db, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(testRate/2), rate)
}

func TestMoveAll(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	alice := driptest.NewCondition().Address()
	bob := driptest.NewCondition().Address()

	require.NoError(t, control.Mint(db, 0, alice, 1000_000_000_000, testRate))

	moved, err := control.Move(db, 100, alice, bob, fixed.MaxAmount)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000_005_000_000), moved)

	balance, err := control.Balance(db, 100, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)

	balance, err = control.Balance(db, 100, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000_005_000_000), balance)
}

func TestMoveRejectsSelfAndMissing(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	alice := driptest.NewCondition().Address()

	require.NoError(t, control.Mint(db, 0, alice, 1000, testRate))

	_, err := control.Move(db, 0, alice, alice, 10)
	assert.True(t, errors.ErrInput.Is(err))

	_, err = control.Move(db, 0, driptest.NewCondition().Address(), alice, 10)
	assert.True(t, errors.ErrEmpty.Is(err))
}

func TestDrainedAccountStartsFresh(t *testing.T) {
	db := store.MemStore()
	control := NewController()
	alice := driptest.NewCondition().Address()
	bob := driptest.NewCondition().Address()

	require.NoError(t, control.Mint(db, 0, alice, 1000, testRate))
	require.NoError(t, control.Mint(db, 0, bob, 1000, testRate/10))

	// drain bob completely, then refund from alice: the refund
	// inherits alice's rate, bob's old rate is gone
	_, err := control.Burn(db, 0, bob, fixed.MaxAmount)
	require.NoError(t, err)
	_, err = control.Move(db, 0, alice, bob, 500)
	require.NoError(t, err)

	rate, err := control.UserRate(db, bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(testRate), rate)
}

func totalBalance(t *testing.T, control *Controller, db drip.ReadOnlyKVStore, now drip.UnixTime, addrs ...drip.Address) uint64 {
	t.Helper()
	var sum uint64
	for _, a := range addrs {
		b, err := control.Balance(db, now, a)
		require.NoError(t, err)
		sum += b
	}
	return sum
}
