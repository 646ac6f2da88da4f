package configsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStamped(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		timestamp uint64
		payload   string
		wantErr   bool
	}{
		{name: "simple", raw: "12,{}", timestamp: 12, payload: "{}"},
		{name: "payload with commas", raw: "7,a,b,c", timestamp: 7, payload: "a,b,c"},
		{name: "no payload", raw: "99", timestamp: 99, payload: ""},
		{name: "empty payload", raw: "3,", timestamp: 3, payload: ""},
		{name: "padded timestamp", raw: " 4 ,x", timestamp: 4, payload: "x"},
		{name: "empty", raw: "", wantErr: true},
		{name: "negative", raw: "-1,x", wantErr: true},
		{name: "not a number", raw: "abc,x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, payload, err := ParseStamped(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.timestamp, ts)
			assert.Equal(t, tt.payload, string(payload))
		})
	}
}

func TestFormatStamped(t *testing.T) {
	raw := FormatStamped(42, []byte(`{"a":1,"b":2}`))
	assert.Equal(t, `42,{"a":1,"b":2}`, raw)

	ts, payload, err := ParseStamped(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), ts)
	assert.Equal(t, `{"a":1,"b":2}`, string(payload))
}
