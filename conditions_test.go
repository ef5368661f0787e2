package drip

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/drip/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionParse(t *testing.T) {
	data := []byte{0xca, 0xfe, 0x00, 0x20, 0x01}
	c := NewCondition("pool", "escrow", data)

	ext, typ, got, err := c.Parse()
	require.NoError(t, err)
	assert.Equal(t, "pool", ext)
	assert.Equal(t, "escrow", typ)
	assert.Equal(t, data, got)

	assert.NoError(t, c.Validate())
	assert.Error(t, Condition("foobar").Validate())
	assert.Error(t, Condition("fo/ba/1").Validate())
}

func TestConditionAddressIsDeterministic(t *testing.T) {
	a := NewCondition("vault", "reserve", []byte("IOV"))
	b := NewCondition("vault", "reserve", []byte("IOV"))
	other := NewCondition("vault", "reserve", []byte("BTC"))

	assert.True(t, a.Equals(b))
	assert.True(t, a.Address().Equals(b.Address()))
	assert.False(t, a.Address().Equals(other.Address()))
	assert.Len(t, []byte(a.Address()), AddressLength)
	assert.NoError(t, a.Address().Validate())
}

func TestAddressValidate(t *testing.T) {
	assert.True(t, errors.ErrEmpty.Is(Address(nil).Validate()))
	assert.True(t, errors.ErrInput.Is(Address([]byte{1, 2, 3}).Validate()))
	assert.NoError(t, Address(make([]byte, AddressLength)).Validate())
}

func TestAddressJSONRoundTrip(t *testing.T) {
	addr := NewCondition("sigs", "ed25519", []byte("some-key")).Address()

	raw, err := json.Marshal(addr)
	require.NoError(t, err)

	var back Address
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, addr.Equals(back))
}

func TestAddressUnmarshalCondFormat(t *testing.T) {
	c := NewCondition("sigs", "ed25519", []byte{1, 2, 3})

	var addr Address
	raw := []byte(`"cond:sigs/ed25519/010203"`)
	require.NoError(t, json.Unmarshal(raw, &addr))
	assert.True(t, c.Address().Equals(addr))

	assert.Error(t, json.Unmarshal([]byte(`"base64:AAAA"`), &addr))
}
