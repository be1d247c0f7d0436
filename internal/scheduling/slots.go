package scheduling

import (
	"fmt"
	"time"
)

// Window is the daily operating range of the room, e.g. 08:00-18:00.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Contains reports whether the interval fits entirely inside the window.
func (w Window) Contains(iv Interval) bool {
	return Within(iv, w.Start, w.End)
}

// Slot is one bookable subdivision of the operating window, with its
// computed occupancy. Slots are derived on demand and never persisted; the
// underlying bookings can change between calls.
type Slot struct {
	Interval  Interval `json:"-"`
	Date      string   `json:"date"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Available bool     `json:"available"`
	Label     string   `json:"label"`
}

// ResolveSlots partitions the operating window into consecutive slots of
// slotMinutes and marks each occupied iff it overlaps a blocked interval
// or an approved reservation on that date. Slots come out in ascending
// order and are disjoint by construction. The window length dividing
// evenly by slotMinutes is a configuration invariant checked at startup,
// not here.
func ResolveSlots(date time.Time, window Window, slotMinutes int, blocked, approved []Interval) []Slot {
	date = DateOnly(date)
	count := int(window.End-window.Start) / slotMinutes
	slots := make([]Slot, 0, count)

	for start := window.Start; start < window.End; start += TimeOfDay(slotMinutes) {
		end := start + TimeOfDay(slotMinutes)
		iv := Interval{Date: date, Start: start, End: end}

		available := true
		for _, b := range blocked {
			if Overlaps(iv, b) {
				available = false
				break
			}
		}
		if available {
			for _, a := range approved {
				if Overlaps(iv, a) {
					available = false
					break
				}
			}
		}

		slots = append(slots, Slot{
			Interval:  iv,
			Date:      FormatDate(date),
			StartTime: start.String(),
			EndTime:   end.String(),
			Available: available,
			Label:     fmt.Sprintf("%s - %s", start, end),
		})
	}

	return slots
}

// AlignedToGrid reports whether the interval starts and ends exactly on
// slot boundaries of the window. Submissions must claim whole slots.
func AlignedToGrid(iv Interval, window Window, slotMinutes int) bool {
	if !window.Contains(iv) {
		return false
	}
	return int(iv.Start-window.Start)%slotMinutes == 0 && int(iv.End-iv.Start)%slotMinutes == 0
}
