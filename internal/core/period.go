package core

import "time"

// Period is the budgeting cadence of a category.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ParsePeriod validates and normalizes a period string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodMonthly:
		return PeriodMonthly, nil
	case PeriodYearly:
		return PeriodYearly, nil
	}
	return "", ErrInvalidPeriod
}

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	return p == PeriodMonthly || p == PeriodYearly
}

// PeriodKey maps a period and a date to the integer identifying that concrete
// period instance: YYYYMM for monthly (202602 = Feb 2026), YYYY for yearly.
// A date falls in the current period exactly when its key equals
// PeriodKey(p, now).
func PeriodKey(p Period, t time.Time) int {
	switch p {
	case PeriodMonthly:
		return t.Year()*100 + int(t.Month())
	default:
		return t.Year()
	}
}

// PeriodStartOf returns the first instant of the month or year containing t,
// in t's location.
func PeriodStartOf(p Period, t time.Time) time.Time {
	switch p {
	case PeriodMonthly:
		return MonthStart(t)
	default:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	}
}

// PeriodEndOf returns the first instant of the next month or year after t.
// Ranges over a period are half-open: [PeriodStartOf, PeriodEndOf).
func PeriodEndOf(p Period, t time.Time) time.Time {
	switch p {
	case PeriodMonthly:
		return MonthStart(t).AddDate(0, 1, 0)
	default:
		return time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, t.Location())
	}
}

// MonthStart returns the first instant of the calendar month containing t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthKey returns the YYYYMM bucket key for t.
func MonthKey(t time.Time) int {
	return t.Year()*100 + int(t.Month())
}
