package drip

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnixTimeUnmarshal(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    UnixTime
		wantErr bool
	}{
		"number":          {raw: `1234567`, want: 1234567},
		"string time":     {raw: `"2019-04-04T11:35:40Z"`, want: 1554377740},
		"negative number": {raw: `-4`, wantErr: true},
		"garbage":         {raw: `"not a time"`, wantErr: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var got UnixTime
			err := json.Unmarshal([]byte(tc.raw), &got)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUnixTimeAdd(t *testing.T) {
	// sub-second durations are truncated
	assert.Equal(t, UnixTime(100), UnixTime(100).Add(999*time.Millisecond))
	assert.Equal(t, UnixTime(103), UnixTime(100).Add(3*time.Second))
	assert.Equal(t, UnixTime(97), UnixTime(100).Add(-3*time.Second))
}

func TestUnixTimeRoundTrip(t *testing.T) {
	now := time.Unix(1234567890, 0)
	assert.Equal(t, now, AsUnixTime(now).Time())
}
