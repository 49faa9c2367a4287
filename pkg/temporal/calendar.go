// Package temporal computes the calendar-aware quantities feeding forecast
// formulas: month bounds, the analysis "today", days observed and days
// remaining, all in a policy's declared timezone.
package temporal

import (
	"fmt"
	"time"
)

// Bounds describes one analysis month in a specific timezone.
type Bounds struct {
	// Location is the resolved IANA timezone.
	Location *time.Location

	// Start is the first calendar day of the month, at midnight.
	Start time.Time

	// End is the last calendar day of the month, at midnight. Month-end
	// detection is calendar-accurate (28/29/30/31 day months).
	End time.Time

	// Today is the analysis date, clamped into [Start, End] so a past
	// month can be re-evaluated reproducibly.
	Today time.Time

	// DaysObserved is the number of days from Start through Today,
	// inclusive.
	DaysObserved int

	// RemainingDays is the number of days after Today through End.
	RemainingDays int

	// IsMonthEnd reports whether Today is the last calendar day of the
	// month in this timezone.
	IsMonthEnd bool
}

// MonthBounds computes the bounds of the given month in the given timezone,
// with "now" as the reference instant. If now falls before the month it is
// clamped to the first day; if after, to the last day.
func MonthBounds(year int, month time.Month, now time.Time, tz string) (*Bounds, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	// First day of the next month, stepped back one day.
	end := start.AddDate(0, 1, 0).AddDate(0, 0, -1)

	today := midnight(now.In(loc))
	if today.Before(start) {
		today = start
	} else if today.After(end) {
		today = end
	}

	daysObserved := daysBetween(start, today) + 1
	remaining := daysBetween(today, end)

	return &Bounds{
		Location:      loc,
		Start:         start,
		End:           end,
		Today:         today,
		DaysObserved:  daysObserved,
		RemainingDays: remaining,
		IsMonthEnd:    today.Equal(end),
	}, nil
}

// CurrentMonthBounds computes bounds for the month containing now, in the
// given timezone.
func CurrentMonthBounds(now time.Time, tz string) (*Bounds, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	local := now.In(loc)
	return MonthBounds(local.Year(), local.Month(), now, tz)
}

// ParseMonth parses a "YYYY-MM" analysis-month value.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", s, err)
	}
	return t.Year(), t.Month(), nil
}

// midnight truncates t to the start of its calendar day.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b (both at midnight in the
// same location). Computed via calendar arithmetic rather than dividing a
// duration, so DST transitions cannot skew the count.
func daysBetween(a, b time.Time) int {
	days := 0
	for t := a; t.Before(b); t = t.AddDate(0, 0, 1) {
		days++
	}
	return days
}
