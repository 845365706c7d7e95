package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidDate     = errors.New("invalid date")
	ErrNotFound        = errors.New("not found")
)

const maxNoteLength = 200

// EntryKind distinguishes the two entry flows. An expense stores the amount
// as entered; a refund stores its negation.
type EntryKind string

const (
	KindExpense EntryKind = "expense"
	KindRefund  EntryKind = "refund"
)

// ParseEntryKind validates an entry kind string. Empty defaults to expense.
func ParseEntryKind(s string) (EntryKind, error) {
	switch EntryKind(s) {
	case KindExpense, "":
		return KindExpense, nil
	case KindRefund:
		return KindRefund, nil
	}
	return "", ErrInvalidAmount
}

// Signed applies the kind's sign to a positive entry amount.
func (k EntryKind) Signed(m Money) Money {
	if k == KindRefund {
		return m.Neg()
	}
	return m
}

// Transaction is one ledger row. Amount is signed: positive for expenses,
// negative for refunds, never zero once saved. CategoryName is a snapshot of
// the catalog name at write time and is deliberately not re-synced.
type Transaction struct {
	ID           string
	CreatedAt    time.Time
	Date         time.Time
	Amount       Money
	CategoryID   string
	CategoryName string
	Subcategory  string
	Note         string
}

// Validate checks the transaction against the write-time rules. It never
// mutates anything; stores call it before any write.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if err := ValidateCategory(t.CategoryID, t.Subcategory); err != nil {
		return err
	}
	if len(t.Note) > maxNoteLength {
		return errors.New("note too long (max 200 characters)")
	}
	return nil
}

// Budget is one stored budget row. At most one row may exist per
// (CategoryID, Period, PeriodKey); the storage layer enforces this on upsert.
// PeriodStart is kept for display and debugging, equality goes through
// PeriodKey alone.
type Budget struct {
	ID          string
	CreatedAt   time.Time
	CategoryID  string
	Period      Period
	PeriodStart time.Time
	PeriodKey   int
	Limit       Money
}

// Validate checks the budget against the write-time rules.
func (b Budget) Validate() error {
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	if _, ok := CategoryByID(b.CategoryID); !ok {
		return ErrInvalidCategory
	}
	if b.Limit.Sign() < 0 {
		return ErrInvalidAmount
	}
	if b.PeriodStart.IsZero() {
		return ErrInvalidDate
	}
	if b.PeriodKey != PeriodKey(b.Period, b.PeriodStart) {
		return errors.New("period key does not match period start")
	}
	return nil
}

// TrimNote normalizes user-entered note text.
func TrimNote(s string) string {
	return strings.TrimSpace(s)
}
