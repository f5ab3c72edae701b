package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokyo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	return loc
}

func TestNormalizeFutureSameYear(t *testing.T) {
	loc := tokyo(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, loc)

	got, err := Normalize("06-15 09:30", now, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 15, 9, 30, 0, 0, loc), got)
}

func TestNormalizeRollsOverPastDates(t *testing.T) {
	loc := tokyo(t)
	// February has already passed in March, so the request means next
	// year's February.
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, loc)

	got, err := Normalize("02-10 15:00", now, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 10, 15, 0, 0, 0, loc), got)
}

func TestNormalizeExactNowIsNotPast(t *testing.T) {
	loc := tokyo(t)
	now := time.Date(2025, 3, 1, 15, 0, 42, 0, loc)

	got, err := Normalize("03-01 15:00", now, loc)
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year(), "same-minute input must not roll over")
}

func TestNormalizeEarlierTodayRollsOver(t *testing.T) {
	loc := tokyo(t)
	now := time.Date(2025, 3, 1, 15, 1, 0, 0, loc)

	got, err := Normalize("03-01 15:00", now, loc)
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Year())
}

func TestNormalizeNeverBeforeNow(t *testing.T) {
	loc := tokyo(t)
	now := time.Date(2025, 7, 20, 8, 45, 0, 0, loc)

	for _, input := range []string{"01-01 00:00", "07-20 08:45", "07-20 08:44", "12-31 23:59"} {
		got, err := Normalize(input, now, loc)
		require.NoError(t, err, input)
		assert.False(t, got.Before(now.Truncate(time.Minute)), "normalize(%q) = %v is before now", input, got)
	}
}

func TestNormalizeRejectsMalformedInput(t *testing.T) {
	loc := tokyo(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, loc)

	cases := []string{
		"",
		"2-10 15:00",
		"02/10 15:00",
		"02-10 1500",
		"02-10  15:00",
		"02-10 15:00 ",
		"ab-cd ef:gh",
		"02-10T15:00",
		"2025-02-10 15:00",
	}

	for _, input := range cases {
		_, err := Normalize(input, now, loc)
		assert.ErrorIs(t, err, ErrInvalidFormat, "input %q", input)
	}
}

func TestNormalizeRejectsImpossibleMoments(t *testing.T) {
	loc := tokyo(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, loc)

	cases := []string{
		"13-01 10:00",
		"00-10 10:00",
		"02-30 10:00",
		"06-00 10:00",
		"02-10 24:00",
		"02-10 15:60",
	}

	for _, input := range cases {
		_, err := Normalize(input, now, loc)
		assert.ErrorIs(t, err, ErrInvalidFormat, "input %q", input)
	}
}

func TestNormalizeIdempotentOnOwnOutput(t *testing.T) {
	loc := tokyo(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, loc)

	first, err := Normalize("02-10 15:00", now, loc)
	require.NoError(t, err)

	// Re-normalizing the canonical rendering with the year stripped
	// must land on the same instant.
	rendered := FormatLocal(first, loc)
	second, err := Normalize(rendered[5:], now, loc)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestFormatLocalRendersInZone(t *testing.T) {
	loc := tokyo(t)
	instant := time.Date(2025, 2, 10, 6, 0, 0, 0, time.UTC)

	assert.Equal(t, "2025-02-10 15:00", FormatLocal(instant, loc))
}
