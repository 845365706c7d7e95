package core

import (
	"sort"
	"time"
)

// MonthPoint is one bucket of the spending trend series. NetSpend is the
// month's signed sum clamped to a floor of zero for charting; NetTotal is the
// same sum unclamped and remains the numerically correct figure.
type MonthPoint struct {
	MonthStart time.Time
	NetSpend   Money
	NetTotal   Money
}

// MonthGroup is one calendar-month section of the ledger listing. Subtotal is
// the unclamped signed sum of the group's items.
type MonthGroup struct {
	MonthStart time.Time
	Items      []Transaction
	Subtotal   Money
}

// Progress describes how far spending has moved against a budget limit.
type Progress struct {
	Left      Money
	Overspent bool
	Fraction  float64
}

// SumInRange sums signed amounts for transactions with date in the half-open
// interval [start, end). A transaction dated exactly at end is excluded.
func SumInRange(txs []Transaction, start, end time.Time) Money {
	total := Zero()
	for _, t := range txs {
		if !t.Date.Before(start) && t.Date.Before(end) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// SumForCategory is SumInRange restricted to one category.
func SumForCategory(txs []Transaction, categoryID string, start, end time.Time) Money {
	total := Zero()
	for _, t := range txs {
		if t.CategoryID != categoryID {
			continue
		}
		if !t.Date.Before(start) && t.Date.Before(end) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// CurrentPeriodUsed sums the category's signed amounts over the period
// instance containing now, using the category's tracking granularity.
func CurrentPeriodUsed(txs []Transaction, cat Category, now time.Time) Money {
	start := PeriodStartOf(cat.Tracking, now)
	end := PeriodEndOf(cat.Tracking, now)
	return SumForCategory(txs, cat.ID, start, end)
}

// MonthSeries buckets transactions into calendar months and returns exactly
// monthsBack points, oldest first, ending at the month containing now. Months
// with no transactions are zero-filled.
func MonthSeries(txs []Transaction, monthsBack int, now time.Time) []MonthPoint {
	if monthsBack <= 0 {
		return nil
	}

	sums := make(map[int]Money)
	for _, t := range txs {
		k := MonthKey(t.Date)
		sums[k] = sums[k].Add(t.Amount)
	}

	thisMonth := MonthStart(now)
	points := make([]MonthPoint, 0, monthsBack)
	for offset := monthsBack - 1; offset >= 0; offset-- {
		mStart := thisMonth.AddDate(0, -offset, 0)
		net := sums[MonthKey(mStart)]
		points = append(points, MonthPoint{
			MonthStart: mStart,
			NetSpend:   net.ClampZero(),
			NetTotal:   net,
		})
	}
	return points
}

// MonthGroups groups transactions by the calendar month of their date.
// Groups are ordered most-recent-month-first and each group's items
// most-recent-first.
func MonthGroups(txs []Transaction) []MonthGroup {
	buckets := make(map[int][]Transaction)
	starts := make(map[int]time.Time)
	for _, t := range txs {
		k := MonthKey(t.Date)
		buckets[k] = append(buckets[k], t)
		if _, ok := starts[k]; !ok {
			starts[k] = MonthStart(t.Date)
		}
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	groups := make([]MonthGroup, 0, len(keys))
	for _, k := range keys {
		items := buckets[k]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Date.After(items[j].Date)
		})
		subtotal := Zero()
		for _, t := range items {
			subtotal = subtotal.Add(t.Amount)
		}
		groups = append(groups, MonthGroup{
			MonthStart: starts[k],
			Items:      items,
			Subtotal:   subtotal,
		})
	}
	return groups
}

// BudgetProgress computes the remaining-budget figures for one category:
// left = limit - max(0, used), overspent when left < 0, and a display
// fraction clamped to [0, 1] (0 when the limit is not positive).
func BudgetProgress(used, limit Money) Progress {
	usedClamped := used.ClampZero()
	left := limit.Sub(usedClamped)
	return Progress{
		Left:      left,
		Overspent: left.Sign() < 0,
		Fraction:  usedClamped.Ratio(limit),
	}
}

// Total sums all signed amounts in the snapshot.
func Total(txs []Transaction) Money {
	total := Zero()
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total
}
