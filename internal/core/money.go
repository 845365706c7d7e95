// Package core holds the pure domain logic of the ledger: money arithmetic,
// period keying, the category catalog, aggregation and search. Nothing in
// this package performs I/O; callers hand it snapshots of stored data.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a signed fixed-point currency amount. Positive values are
// expenses, negative values are refunds. It wraps an arbitrary-precision
// decimal so that stored amounts and long sums never accumulate binary
// floating-point error.
type Money struct {
	dec decimal.Decimal
}

// Zero returns the zero amount.
func Zero() Money {
	return Money{}
}

// MoneyFromDecimal wraps an existing decimal value.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{dec: d}
}

// MoneyFromString parses a stored decimal string exactly, sign included.
// It is the inverse of String and is used when reading amounts back from
// the database.
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{dec: d}, nil
}

// ParseAmount parses user-entered amount text. It trims whitespace and
// accepts either dot or comma as the decimal separator. The value must be a
// strictly positive decimal; the caller applies the entry-kind sign.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount(" 2.50 ") -> 2.50
//	ParseAmount("0")      -> ErrInvalidAmount
//	ParseAmount("-5")     -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	m, err := parseDecimalInput(s)
	if err != nil {
		return Money{}, err
	}
	if m.dec.Sign() <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// ParseLimit parses user-entered budget limit text. Same format rules as
// ParseAmount, but zero is allowed.
func ParseLimit(s string) (Money, error) {
	m, err := parseDecimalInput(s)
	if err != nil {
		return Money{}, err
	}
	if m.dec.Sign() < 0 {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

func parseDecimalInput(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	// Normalize decimal comma to dot.
	s = strings.ReplaceAll(s, ",", ".")
	// Explicit signs are rejected; the entry kind decides the sign.
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{dec: d}, nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{dec: m.dec.Add(other.dec)}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{dec: m.dec.Sub(other.dec)}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{dec: m.dec.Neg()}
}

// Cmp compares two amounts: -1 if m < other, 0 if equal, +1 if m > other.
func (m Money) Cmp(other Money) int {
	return m.dec.Cmp(other.dec)
}

// Equal reports whether two amounts are numerically equal.
func (m Money) Equal(other Money) bool {
	return m.dec.Cmp(other.dec) == 0
}

// Sign returns -1, 0 or +1.
func (m Money) Sign() int {
	return m.dec.Sign()
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.dec.IsZero()
}

// ClampZero returns max(0, m). Chart display clamps refund-heavy totals so
// they never render as negative bars; numeric totals stay unclamped.
func (m Money) ClampZero() Money {
	if m.dec.Sign() < 0 {
		return Money{}
	}
	return m
}

// Ratio returns m/limit as a float64 clamped to [0, 1], or 0 when the limit
// is not positive. Display only; the result is never fed back into stored
// amounts.
func (m Money) Ratio(limit Money) float64 {
	if limit.dec.Sign() <= 0 {
		return 0
	}
	r, _ := m.dec.Div(limit.dec).Float64()
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// String renders the amount as plain decimal text with at least two
// fractional digits, e.g. "45.50" or "-20.00". This is the representation
// matched by ledger search and stored in the database.
func (m Money) String() string {
	if m.dec.Exponent() < -2 {
		return m.dec.String()
	}
	return m.dec.StringFixed(2)
}

// Decimal exposes the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.dec
}

// MarshalJSON renders the amount as a JSON string to keep exact precision
// across the API boundary.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount
	}
	m.dec = d
	return nil
}
