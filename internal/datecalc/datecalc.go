// internal/datecalc/datecalc.go

// Package datecalc computes the delivery-time figure shown in the injected
// summary: business days between hand-off and delivery.
package datecalc

import "time"

// BusinessDaysBetween counts the days from received to delivered, excluding
// Saturdays and Sundays, excluding the start date itself and including the end
// date. A delivery on or before the received date counts as zero.
func BusinessDaysBetween(received, delivered time.Time) int {
	start := truncateToDay(received)
	end := truncateToDay(delivered)
	if !end.After(start) {
		return 0
	}

	days := 0
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			days++
		}
	}
	return days
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
