package report

import (
	"fmt"
	"time"
)

// PreviousMonth returns the first and last instant of the calendar month before
// now, in now's location.
func PreviousMonth(now time.Time) (start, end time.Time) {
	year, month, _ := now.Date()
	thisMonth := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	start = thisMonth.AddDate(0, -1, 0)
	end = thisMonth.Add(-time.Nanosecond)
	return start, end
}

// MonthlyTitle is the report title for a period starting at start.
func MonthlyTitle(start time.Time) string {
	return "Monthly Report - " + start.Format("January 2006")
}

// PeriodLabel renders a closed range for humans:
//
//	January 1 – 31, 2025
//	January 15 – February 14, 2025
//	December 15, 2024 – January 14, 2025
func PeriodLabel(start, end time.Time) string {
	switch {
	case start.Year() != end.Year():
		return fmt.Sprintf("%s – %s", start.Format("January 2, 2006"), end.Format("January 2, 2006"))
	case start.Month() != end.Month():
		return fmt.Sprintf("%s – %s, %d", start.Format("January 2"), end.Format("January 2"), end.Year())
	default:
		return fmt.Sprintf("%s %d – %d, %d", start.Format("January"), start.Day(), end.Day(), end.Year())
	}
}
