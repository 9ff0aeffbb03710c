// Package isotime decodes backend timestamps, which arrive as ISO-8601 with
// or without millisecond precision.
package isotime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	// LayoutFractional is tried first.
	LayoutFractional = "2006-01-02T15:04:05.000Z07:00"
	// LayoutSeconds is the fallback without fractional seconds.
	LayoutSeconds = "2006-01-02T15:04:05Z07:00"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Parse reads s using LayoutFractional, then LayoutSeconds.
func Parse(s string) (time.Time, error) {
	if t, err := time.Parse(LayoutFractional, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(LayoutSeconds, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// Time is a time.Time that decodes with Parse.
type Time struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTimestamp, err)
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	t.Time = parsed

	return nil
}

// MarshalJSON implements json.Marshaler using LayoutFractional.
func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(LayoutFractional))
}
