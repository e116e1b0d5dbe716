package logbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"malaskkn/lib/timezone"
)

func TestParseDatetimeRangeSameDay(t *testing.T) {
	start, end, ok := ParseDatetimeRange("2 Juli 2025 13:00 - 16:00")
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 7, 2, 13, 0, 0, 0, timezone.Location), start)
	require.Equal(t, time.Date(2025, 7, 2, 16, 0, 0, 0, timezone.Location), end)
}

func TestParseDatetimeRangeOvernight(t *testing.T) {
	start, end, ok := ParseDatetimeRange("8 Juli 2025 19:00 s.d 9 Juli 2025 00:00")
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 7, 8, 19, 0, 0, 0, timezone.Location), start)
	require.Equal(t, time.Date(2025, 7, 9, 0, 0, 0, 0, timezone.Location), end)
}

func TestParseDatetimeRangeTolerance(t *testing.T) {
	// the wib suffix and stray casing are stripped before matching
	start, _, ok := ParseDatetimeRange("  2 JULI 2025 13:00 - 16:00 WIB ")
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 7, 2, 13, 0, 0, 0, timezone.Location), start)
}

func TestParseDatetimeRangeUnrecognized(t *testing.T) {
	for _, input := range []string{
		"",
		"menyesuaikan",
		"2 July 2025 13:00 - 16:00", // english month name
		"13:00 - 16:00",
	} {
		start, end, ok := ParseDatetimeRange(input)
		require.False(t, ok, "input %q", input)
		require.True(t, start.IsZero())
		require.True(t, end.IsZero())
	}
}
