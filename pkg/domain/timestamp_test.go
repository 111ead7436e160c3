package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimestamp(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 3, 7, 14, 30, 5, 0, time.UTC))
	assert.Equal(t, "20240307-14:30:05", ts.String())
}

func TestTimestampRoundTrip(t *testing.T) {
	original := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)
	ts := NewTimestamp(original)

	decoded, err := ts.Time()
	require.NoError(t, err)
	assert.True(t, decoded.Equal(original))
}

func TestNewTimestampDropsSubsecond(t *testing.T) {
	withNanos := time.Date(2024, 3, 7, 14, 30, 5, 999999999, time.UTC)
	assert.Equal(t, NewTimestamp(withNanos.Truncate(time.Second)), NewTimestamp(withNanos))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "20240307-14:30:05"},
		{name: "empty", input: "", wantErr: true},
		{name: "missing separator", input: "2024030714:30:05", wantErr: true},
		{name: "iso format", input: "2024-03-07T14:30:05Z", wantErr: true},
		{name: "garbage", input: "not a timestamp", wantErr: true},
		{name: "month out of range", input: "20241307-14:30:05", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, ts.String())
		})
	}
}

// FuzzParseTimestamp checks that parsing never panics and that every
// accepted input round-trips through Time and back unchanged.
func FuzzParseTimestamp(f *testing.F) {
	f.Add("20240307-14:30:05")
	f.Add("")
	f.Add("00000000-00:00:00")
	f.Add("99999999-99:99:99")
	f.Add("20240307-14:30:05trailer")
	f.Add(string([]byte{0x00, 0x01}))

	f.Fuzz(func(t *testing.T, input string) {
		ts, err := ParseTimestamp(input)
		if err != nil {
			return
		}
		decoded, err := ts.Time()
		if err != nil {
			t.Fatalf("accepted timestamp failed to decode: %v", err)
		}
		if got := NewTimestamp(decoded); got != ts {
			t.Errorf("round-trip changed timestamp: %q -> %q", ts, got)
		}
	})
}
