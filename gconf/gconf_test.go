package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonConf is a test configuration using JSON for serialization
// instead of the protobuf that production configurations use.
type jsonConf struct {
	Name string `json:"name"`
}

func (c *jsonConf) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

func (c *jsonConf) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, c)
}

func (c *jsonConf) Validate() error {
	if c.Name == "" {
		return errors.Wrap(errors.ErrEmpty, "name")
	}
	return nil
}

func TestSaveLoad(t *testing.T) {
	db := store.MemStore()

	require.NoError(t, Save(db, "mypkg", &jsonConf{Name: "alpha"}))

	var got jsonConf
	require.NoError(t, Load(db, "mypkg", &got))
	assert.Equal(t, "alpha", got.Name)

	// loading from an unset package must fail
	err := Load(db, "otherpkg", &got)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestSaveRejectsInvalid(t *testing.T) {
	db := store.MemStore()
	err := Save(db, "mypkg", &jsonConf{})
	assert.True(t, errors.ErrEmpty.Is(err))
}

func TestInitConfig(t *testing.T) {
	db := store.MemStore()
	opts := drip.Options{
		"conf": json.RawMessage(`{"mypkg": {"name": "beta"}}`),
	}

	var conf jsonConf
	require.NoError(t, InitConfig(db, opts, "mypkg", &conf))
	assert.Equal(t, "beta", conf.Name)

	var got jsonConf
	require.NoError(t, Load(db, "mypkg", &got))
	assert.Equal(t, "beta", got.Name)

	// a package missing from genesis must fail
	err := InitConfig(db, opts, "ghost", &jsonConf{})
	assert.True(t, errors.ErrNotFound.Is(err))
}
