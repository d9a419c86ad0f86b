package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthKeyZeroPadsMonth(t *testing.T) {
	ref := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03", MonthKey(ref))

	dec := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-12", MonthKey(dec))
}

func TestMonthKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+13", 13*3600)
	// Local time is already January, UTC is still December.
	ref := time.Date(2026, 1, 1, 2, 0, 0, 0, loc)
	assert.Equal(t, "2025-12", MonthKey(ref))
}

func TestParseMonthKeyRoundTrip(t *testing.T) {
	start, err := ParseMonthKey("2025-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), start)

	_, err = ParseMonthKey("2025/03")
	assert.Error(t, err)
}

func TestMonthWindowIsHalfOpen(t *testing.T) {
	ref := time.Date(2025, 1, 20, 8, 0, 0, 0, time.UTC)
	w := Month(ref)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), w.End)

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, w.Contains(w.End))
}

func TestMonthWindowDecemberRollsOver(t *testing.T) {
	w := Month(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), w.End)
}

func TestTrailingWeek(t *testing.T) {
	ref := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	w := TrailingWeek(ref)

	assert.Equal(t, ref.Add(-7*24*time.Hour), w.Start)
	assert.Equal(t, ref, w.End)
	assert.True(t, w.Contains(ref.Add(-6*24*time.Hour)))
	assert.False(t, w.Contains(ref))
}
