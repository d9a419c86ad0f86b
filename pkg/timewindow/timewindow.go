package timewindow

import (
	"fmt"
	"time"
)

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// MonthKey formats the calendar month containing ref as "YYYY-MM".
func MonthKey(ref time.Time) string {
	ref = ref.UTC()
	return fmt.Sprintf("%04d-%02d", ref.Year(), int(ref.Month()))
}

// ParseMonthKey parses a "YYYY-MM" key back into the first instant of the month.
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse month key %q: %w", key, err)
	}
	return t.UTC(), nil
}

// Month returns the calendar month window containing ref:
// [first instant of the month, first instant of the next month).
func Month(ref time.Time) Window {
	ref = ref.UTC()
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// Trailing returns the window covering the last d of time ending at ref.
func Trailing(ref time.Time, d time.Duration) Window {
	ref = ref.UTC()
	return Window{Start: ref.Add(-d), End: ref}
}

// TrailingWeek returns the rolling 7-day window ending at ref.
func TrailingWeek(ref time.Time) Window {
	return Trailing(ref, 7*24*time.Hour)
}
