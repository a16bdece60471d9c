package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayInterval(t *testing.T) {
	tests := []struct {
		in       time.Duration
		wantN    int64
		wantUnit IntervalUnit
	}{
		{0, 0, UnitDays},
		{45 * time.Second, 45, UnitSeconds},
		{90 * time.Second, 90, UnitSeconds},
		{2 * time.Minute, 2, UnitMinutes},
		{90 * time.Minute, 90, UnitMinutes},
		{3 * time.Hour, 3, UnitHours},
		{24 * time.Hour, 1, UnitDays},
		{36 * time.Hour, 36, UnitHours},
		{14 * 24 * time.Hour, 14, UnitDays},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			n, unit := DisplayInterval(tt.in)
			assert.Equal(t, tt.wantN, n)
			assert.Equal(t, tt.wantUnit, unit)
		})
	}
}

func TestParseInterval(t *testing.T) {
	d, err := ParseInterval(2, UnitDays)
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, d)

	d, err = ParseInterval(0, UnitMinutes)
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = ParseInterval(-1, UnitHours)
	assert.Error(t, err)

	_, err = ParseInterval(1, IntervalUnit("weeks"))
	assert.Error(t, err)
}

func TestParseInterval_RejectsOverflow(t *testing.T) {
	tests := []struct {
		value int64
		unit  IntervalUnit
	}{
		{200000, UnitDays},
		{MaxIntervalSeconds/3600 + 1, UnitHours},
		{MaxIntervalSeconds + 1, UnitSeconds},
	}

	for _, tt := range tests {
		d, err := ParseInterval(tt.value, tt.unit)
		assert.Error(t, err, "%d %s", tt.value, tt.unit)
		assert.Zero(t, d)
	}

	d, err := ParseInterval(MaxIntervalSeconds, UnitSeconds)
	require.NoError(t, err)
	assert.Positive(t, d)
}

func TestParseInterval_InvertsDisplay(t *testing.T) {
	for _, d := range []time.Duration{time.Second, 61 * time.Second, time.Hour, 25 * time.Hour, 72 * time.Hour} {
		n, unit := DisplayInterval(d)
		back, err := ParseInterval(n, unit)
		require.NoError(t, err)
		assert.Equal(t, d, back)
	}
}

func TestParseIntervalUnit(t *testing.T) {
	for in, want := range map[string]IntervalUnit{"day": UnitDays, "Hours": UnitHours, " minute ": UnitMinutes, "seconds": UnitSeconds} {
		got, err := ParseIntervalUnit(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseIntervalUnit("fortnight")
	assert.Error(t, err)
}

func TestFormatInterval(t *testing.T) {
	assert.Equal(t, "never", FormatInterval(0))
	assert.Equal(t, "1 day", FormatInterval(24*time.Hour))
	assert.Equal(t, "2 hours", FormatInterval(2*time.Hour))
	assert.Equal(t, "30 seconds", FormatInterval(30*time.Second))
}
