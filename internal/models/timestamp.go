// internal/models/timestamp.go
package models

import (
	"fmt"
	"time"
)

// TimestampLayout is the only timestamp layout exchanged with the backend:
// YYYY-MM-DD HH:MM:SS.mmm, zero padded.
const TimestampLayout = "2006-01-02 15:04:05.000"

// FormatTimestamp renders t's wall clock in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp decodes s, which must be exactly in TimestampLayout.
// The result carries the backend's wall clock in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	// time.Parse tolerates unpadded hours and extra fraction digits
	// in some positions; only the canonical rendering is accepted.
	if t.Format(TimestampLayout) != s {
		return time.Time{}, fmt.Errorf("timestamp %q: not in layout %q", s, TimestampLayout)
	}
	return t, nil
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTimestamp(*t)
	return &s
}

func parseOptional(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := ParseTimestamp(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
