package scheduling

import (
	"errors"
	"time"
)

var ErrInvalidInterval = errors.New("invalid interval")

// Interval is a half-open [Start, End) time range on a single calendar
// date. Because Start and End are both times of day on the same date, an
// interval can never span midnight.
type Interval struct {
	Date  time.Time
	Start TimeOfDay
	End   TimeOfDay
}

// NewInterval builds an interval, rejecting malformed ranges up front so
// that the overlap and containment predicates never see one.
func NewInterval(date time.Time, start, end TimeOfDay) (Interval, error) {
	if !start.Valid() || !end.Valid() || start >= end {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Date: DateOnly(date), Start: start, End: end}, nil
}

// Overlaps reports whether a and b share the same date and their half-open
// ranges intersect. An interval ending at 10:00 does not conflict with one
// starting at 10:00.
func Overlaps(a, b Interval) bool {
	if !a.Date.Equal(b.Date) {
		return false
	}
	return a.Start < b.End && b.Start < a.End
}

// Within reports whether the interval lies entirely inside the window
// [winStart, winEnd].
func Within(iv Interval, winStart, winEnd TimeOfDay) bool {
	return iv.Start >= winStart && iv.End <= winEnd
}
