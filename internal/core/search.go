package core

import (
	"sort"
	"strings"
)

// searchDateLayout matches the abbreviated date text shown in the ledger,
// e.g. "Feb 10, 2026".
const searchDateLayout = "Jan 2, 2006"

// SearchQuery is a normalized free-text ledger query. An empty or
// whitespace-only query is inactive: search returns nothing rather than
// everything, and callers use Active to tell "not searching" apart from
// "searching with no matches".
type SearchQuery struct {
	raw  string
	norm string
}

// NewSearchQuery trims and lower-cases raw query text.
func NewSearchQuery(raw string) SearchQuery {
	trimmed := strings.TrimSpace(raw)
	return SearchQuery{raw: trimmed, norm: strings.ToLower(trimmed)}
}

// Active reports whether the query should filter the ledger at all.
func (q SearchQuery) Active() bool {
	return q.norm != ""
}

// Raw returns the trimmed query text as entered.
func (q SearchQuery) Raw() string {
	return q.raw
}

// Search filters transactions by case-insensitive substring match against
// category name, category id, subcategory, note, the amount as plain decimal
// text and the abbreviated date text. Results are ordered date descending.
// An inactive query yields an empty result.
func Search(txs []Transaction, q SearchQuery) []Transaction {
	if !q.Active() {
		return nil
	}

	var out []Transaction
	for _, t := range txs {
		if matchesQuery(t, q.norm) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func matchesQuery(t Transaction, q string) bool {
	if strings.Contains(strings.ToLower(t.CategoryName), q) {
		return true
	}
	if strings.Contains(strings.ToLower(t.CategoryID), q) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Subcategory), q) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Note), q) {
		return true
	}
	// Amount search: allow "12.5", "-20", "300".
	if strings.Contains(strings.ToLower(t.Amount.String()), q) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Date.Format(searchDateLayout)), q) {
		return true
	}
	return false
}
