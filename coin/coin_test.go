package coin

import (
	"testing"

	"github.com/iov-one/drip/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCoin(t *testing.T) {
	base := NewCoin(17, 2345566, "DEF")

	cases := map[string]struct {
		a, b    Coin
		want    Coin
		wantErr *errors.Error
	}{
		"plain addition": {
			a:    base,
			b:    base,
			want: NewCoin(34, 4691132, "DEF"),
		},
		"negative coins sum to zero": {
			a:    base,
			b:    base.Negative(),
			want: NewCoin(0, 0, "DEF"),
		},
		"a zero coin adopts the currency": {
			a:    NewCoin(0, 0, ""),
			b:    base,
			want: base,
		},
		"wrong currency": {
			a:       NewCoin(1, 2, "FOO"),
			b:       NewCoin(2, 3, "BAR"),
			wantErr: errors.ErrCurrency,
		},
		"overflow": {
			a:       NewCoin(MaxInt, 0, "DEF"),
			b:       NewCoin(2, 0, "DEF"),
			wantErr: errors.ErrOverflow,
		},
		"fractional carry": {
			a:    NewCoin(1, MaxFrac, "DEF"),
			b:    NewCoin(0, 2, "DEF"),
			want: NewCoin(2, 1, "DEF"),
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := tc.a.Add(tc.b)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equals(res), "got %v", res)
		})
	}
}

func TestSubtractNormalizesSign(t *testing.T) {
	a := NewCoin(2, 0, "DEF")
	b := NewCoin(0, 1, "DEF")

	res, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, NewCoin(1, MaxFrac, "DEF").Equals(res))
	assert.True(t, res.IsPositive())
}

func TestCompare(t *testing.T) {
	a := NewCoin(1, 500, "DEF")

	assert.Equal(t, 0, a.Compare(NewCoin(1, 500, "DEF")))
	assert.Equal(t, 1, a.Compare(NewCoin(1, 499, "DEF")))
	assert.Equal(t, -1, a.Compare(NewCoin(2, 0, "DEF")))
	assert.True(t, a.IsGTE(NewCoin(1, 500, "DEF")))
	assert.False(t, a.IsGTE(NewCoin(1, 501, "DEF")))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, NewCoin(1, 0, "DEF").Validate())
	assert.True(t, errors.ErrCurrency.Is(NewCoin(1, 0, "def").Validate()))
	assert.True(t, errors.ErrOverflow.Is(NewCoin(MaxInt+1, 0, "DEF").Validate()))
	assert.True(t, errors.ErrState.Is(NewCoin(1, -5, "DEF").Validate()))
}

func TestUnitsRoundTrip(t *testing.T) {
	c, err := FromUnits(uint64(3*FracUnit+7), "DEF")
	require.NoError(t, err)
	assert.True(t, NewCoin(3, 7, "DEF").Equals(c))

	units, err := c.Units()
	require.NoError(t, err)
	assert.Equal(t, uint64(3*FracUnit+7), units)

	_, err = c.Negative().Units()
	assert.True(t, errors.ErrAmount.Is(err))
}
