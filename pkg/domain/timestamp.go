package domain

import (
	"fmt"
	"time"
)

// timestampLayout is the fixed wire format for operation timestamps.
// Second precision; round-trips losslessly through the ledger.
const timestampLayout = "20060102-15:04:05"

// Timestamp is an operation timestamp in its wire form.
type Timestamp string

// NewTimestamp formats t at second precision.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.Format(timestampLayout))
}

// ParseTimestamp validates a raw timestamp string.
func ParseTimestamp(raw string) (Timestamp, error) {
	if _, err := time.Parse(timestampLayout, raw); err != nil {
		return "", fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return Timestamp(raw), nil
}

// Time decodes the timestamp back to a time.Time.
func (ts Timestamp) Time() (time.Time, error) {
	t, err := time.Parse(timestampLayout, string(ts))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", string(ts), err)
	}
	return t, nil
}

func (ts Timestamp) String() string {
	return string(ts)
}
