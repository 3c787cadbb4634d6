// Package recurrence computes next-occurrence dates for recurring transactions.
//
// Monthly and yearly steps clamp to the last day of the target month when the
// reference day does not exist there: Jan 31 + 1 month is Feb 28 (or 29), and
// Feb 29 + 1 year is Feb 28. Time of day and location are preserved.
package recurrence

import (
	"fmt"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
)

// NextOccurrence adds exactly one interval unit to ref.
func NextOccurrence(ref time.Time, interval domain.RecurringInterval) (time.Time, error) {
	switch interval {
	case domain.IntervalDaily:
		return ref.AddDate(0, 0, 1), nil
	case domain.IntervalWeekly:
		return ref.AddDate(0, 0, 7), nil
	case domain.IntervalMonthly:
		return addMonthsClamped(ref, 1), nil
	case domain.IntervalYearly:
		return addMonthsClamped(ref, 12), nil
	default:
		return time.Time{}, fmt.Errorf("NextOccurrence: %w: %q", domain.ErrInvalidInterval, interval)
	}
}

// NextRecurringDate computes the next-occurrence stamp for a transaction saved at now.
// One candidate is computed from ref; if it is strictly before now, it is
// discarded and recomputed once from now. There is no advance-until-future loop.
func NextRecurringDate(ref time.Time, interval domain.RecurringInterval, now time.Time) (time.Time, error) {
	next, err := NextOccurrence(ref, interval)
	if err != nil {
		return time.Time{}, err
	}
	if next.Before(now) {
		return NextOccurrence(now, interval)
	}
	return next, nil
}

// addMonthsClamped is AddDate(0, n, 0) without the overflow into the following month.
func addMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	target := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month(), t.Location()); day > last {
		day = last
	}

	return time.Date(target.Year(), target.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
