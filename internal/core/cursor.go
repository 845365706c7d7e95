package core

import (
	"sort"
	"time"
)

// MonthCursor tracks the month filter of a ledger view: either "all months"
// or one of the distinct months that actually contain transactions, with
// older/newer stepping between them. It is plain navigation state over a
// snapshot; rebuild it after mutations.
type MonthCursor struct {
	months []time.Time // distinct month starts, newest first
	idx    int         // index into months, -1 = all
}

// NewMonthCursor builds a cursor over the distinct months present in the
// snapshot, starting in the "all" position.
func NewMonthCursor(txs []Transaction) MonthCursor {
	seen := make(map[int]time.Time)
	for _, t := range txs {
		k := MonthKey(t.Date)
		if _, ok := seen[k]; !ok {
			seen[k] = MonthStart(t.Date)
		}
	}
	months := make([]time.Time, 0, len(seen))
	for _, m := range seen {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].After(months[j]) })
	return MonthCursor{months: months, idx: -1}
}

// Months returns the selectable month starts, newest first.
func (c MonthCursor) Months() []time.Time {
	out := make([]time.Time, len(c.months))
	copy(out, c.months)
	return out
}

// Selected returns the selected month start, or false in the "all" position.
func (c MonthCursor) Selected() (time.Time, bool) {
	if c.idx < 0 || c.idx >= len(c.months) {
		return time.Time{}, false
	}
	return c.months[c.idx], true
}

// All resets the cursor to the unfiltered position.
func (c *MonthCursor) All() {
	c.idx = -1
}

// Select moves the cursor to the month containing t. Returns false if no
// transactions exist in that month.
func (c *MonthCursor) Select(t time.Time) bool {
	k := MonthKey(t)
	for i, m := range c.months {
		if MonthKey(m) == k {
			c.idx = i
			return true
		}
	}
	return false
}

// CanOlder reports whether an older month is available.
func (c MonthCursor) CanOlder() bool {
	return c.idx >= 0 && c.idx < len(c.months)-1
}

// CanNewer reports whether a newer month is available.
func (c MonthCursor) CanNewer() bool {
	return c.idx > 0
}

// Older steps to the next older month. No-op at the oldest month or in the
// "all" position.
func (c *MonthCursor) Older() bool {
	if !c.CanOlder() {
		return false
	}
	c.idx++
	return true
}

// Newer steps to the next newer month.
func (c *MonthCursor) Newer() bool {
	if !c.CanNewer() {
		return false
	}
	c.idx--
	return true
}
