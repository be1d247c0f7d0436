// Package scheduling holds the pure booking rules for the reading room:
// interval arithmetic, day-level availability and slot resolution. Nothing
// here touches a clock, a database or a logger; callers supply every input,
// which keeps the rules deterministic and trivially testable.
package scheduling

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as whole minutes since midnight.
type TimeOfDay int

const MinutesPerDay = 24 * 60

// ParseTimeOfDay parses a zero-padded "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t <= MinutesPerDay
}

// DateOnly strips the clock from a timestamp, leaving midnight UTC. All
// date comparisons in this package go through it so that two values naming
// the same calendar day always compare equal.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "YYYY-MM-DD" calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOnly(t), nil
}

func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
