package fixed

import (
	"fmt"
	"math"
	"testing"

	"github.com/iov-one/drip/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulDiv(t *testing.T) {
	cases := map[string]struct {
		a, b, div uint64
		want      uint64
		wantErr   *errors.Error
	}{
		"simple":              {6, 7, 2, 21, nil},
		"truncates":           {10, 1, 3, 3, nil},
		"intermediate is big": {math.MaxUint64, math.MaxUint64, math.MaxUint64, math.MaxUint64, nil},
		"result too big":      {math.MaxUint64, 2, 1, 0, errors.ErrOverflow},
		"division by zero":    {1, 1, 0, 0, errors.ErrInput},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := MulDiv(tc.a, tc.b, tc.div)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBalance(t *testing.T) {
	// per second rate of 5*10^-8, scaled
	const rate = 50_000_000_000
	// one whole unit is 10^9 base units, so 1000 units
	const unit = 1_000_000_000
	const principal = 1000 * unit

	cases := map[string]struct {
		principal, rate uint64
		elapsed         uint64
		want            uint64
	}{
		"no time passed": {principal, rate, 0, principal},
		"zero rate":      {principal, 0, 100, principal},
		"zero principal": {0, rate, 100, 0},
		// 1000 units for 100s at 5*10^-8/s pays exactly 0.005 units
		"hundred seconds":  {principal, rate, 100, principal + 5_000_000},
		"one second":       {principal, rate, 1, principal + 50_000},
		"truncating to 0":  {1, rate, 1, 1},
		"full year":        {principal, rate, 365 * 24 * 3600, principal + 1_576_800_000_000},
		"tiny immediately": {7, rate, 1_000_000, 7},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Balance(tc.principal, tc.rate, tc.elapsed)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBalanceIdempotent(t *testing.T) {
	// recomputing for the same elapsed time must always yield the same
	// result, and growing elapsed time never shrinks the balance
	var prev uint64
	for _, elapsed := range []uint64{0, 1, 10, 100, 1000, 10000} {
		a, err := Balance(12345678, 50_000_000_000, elapsed)
		require.NoError(t, err)
		b, err := Balance(12345678, 50_000_000_000, elapsed)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.True(t, a >= prev, fmt.Sprintf("balance shrunk at %ds", elapsed))
		prev = a
	}
}

func TestBalanceOverflow(t *testing.T) {
	_, err := Balance(math.MaxUint64, Scale, 1000)
	assert.True(t, errors.ErrOverflow.Is(err))
}

func TestAddSub(t *testing.T) {
	sum, err := Add(5, 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), sum)

	_, err = Add(math.MaxUint64, 1)
	assert.True(t, errors.ErrOverflow.Is(err))

	diff, err := Sub(11, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), diff)

	_, err = Sub(5, 11)
	assert.True(t, errors.ErrInsufficientAmount.Is(err))
}
