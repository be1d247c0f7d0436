package scheduling

import "time"

// WholeDayBlock marks a calendar date as entirely unavailable. Recurring
// blocks repeat every year on the same month and day (a fixed holiday);
// one-off blocks match their exact date only.
type WholeDayBlock struct {
	Date      time.Time
	Recurring bool
}

func (b WholeDayBlock) matches(date time.Time) bool {
	if b.Recurring {
		return b.Date.Month() == date.Month() && b.Date.Day() == date.Day()
	}
	return DateOnly(b.Date).Equal(date)
}

// IsDateBookable decides day-level eligibility. The rules apply in order
// and the first failing one wins: no past dates, no dates beyond the
// horizon, no closed weekdays, no whole-day blocks. The caller supplies
// today, so the decision is a pure function of its inputs.
func IsDateBookable(date, today time.Time, horizonDays int, closedWeekdays []time.Weekday, blocks []WholeDayBlock) bool {
	date = DateOnly(date)
	today = DateOnly(today)

	if date.Before(today) {
		return false
	}
	if date.After(today.AddDate(0, 0, horizonDays)) {
		return false
	}
	for _, wd := range closedWeekdays {
		if date.Weekday() == wd {
			return false
		}
	}
	for _, b := range blocks {
		if b.matches(date) {
			return false
		}
	}
	return true
}

// BookableDates enumerates every bookable date from today through the
// horizon, in ascending order.
func BookableDates(today time.Time, horizonDays int, closedWeekdays []time.Weekday, blocks []WholeDayBlock) []time.Time {
	today = DateOnly(today)
	dates := make([]time.Time, 0, horizonDays+1)
	for i := 0; i <= horizonDays; i++ {
		d := today.AddDate(0, 0, i)
		if IsDateBookable(d, today, horizonDays, closedWeekdays, blocks) {
			dates = append(dates, d)
		}
	}
	return dates
}
