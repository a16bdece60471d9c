// internal/models/interval.go
package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// IntervalUnit is the unit an interval is shown and entered in.
type IntervalUnit string

const (
	UnitDays    IntervalUnit = "days"
	UnitHours   IntervalUnit = "hours"
	UnitMinutes IntervalUnit = "minutes"
	UnitSeconds IntervalUnit = "seconds"
)

// MaxIntervalSeconds is the longest interval a time.Duration can hold.
const MaxIntervalSeconds = int64(math.MaxInt64 / time.Second)

var unitSize = map[IntervalUnit]time.Duration{
	UnitDays:    24 * time.Hour,
	UnitHours:   time.Hour,
	UnitMinutes: time.Minute,
	UnitSeconds: time.Second,
}

// ParseIntervalUnit accepts a unit name, singular or plural.
func ParseIntervalUnit(s string) (IntervalUnit, error) {
	u := IntervalUnit(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") + "s")
	if _, ok := unitSize[u]; !ok {
		return "", fmt.Errorf("unknown interval unit %q", s)
	}
	return u, nil
}

// DisplayInterval picks the largest unit that divides d evenly, climbing
// seconds, minutes, hours, days. Exactly 24h shows as 1 day. Sub-second
// remainders are dropped; a zero interval shows as 0 days.
func DisplayInterval(d time.Duration) (int64, IntervalUnit) {
	secs := int64(d / time.Second)
	if secs == 0 {
		return 0, UnitDays
	}
	if secs%60 != 0 {
		return secs, UnitSeconds
	}
	mins := secs / 60
	if mins%60 != 0 {
		return mins, UnitMinutes
	}
	hours := mins / 60
	if hours%24 != 0 {
		return hours, UnitHours
	}
	return hours / 24, UnitDays
}

// ParseInterval converts a value entered in unit back into a duration.
func ParseInterval(value int64, unit IntervalUnit) (time.Duration, error) {
	size, ok := unitSize[unit]
	if !ok {
		return 0, fmt.Errorf("unknown interval unit %q", unit)
	}
	if value < 0 {
		return 0, fmt.Errorf("interval %d %s is negative", value, unit)
	}
	if value > int64(time.Duration(math.MaxInt64)/size) {
		return 0, fmt.Errorf("interval %d %s is too long", value, unit)
	}
	return time.Duration(value) * size, nil
}

// FormatInterval renders d for list columns, e.g. "2 hours" or "never".
func FormatInterval(d time.Duration) string {
	if d <= 0 {
		return "never"
	}
	n, unit := DisplayInterval(d)
	if n == 1 {
		return fmt.Sprintf("1 %s", strings.TrimSuffix(string(unit), "s"))
	}
	return fmt.Sprintf("%d %s", n, unit)
}
