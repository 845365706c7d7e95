// Package services orchestrates validation, storage and the pure core logic
// behind the operations the presentation layer calls.
package services

import (
	"context"
	"fmt"
	"time"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/storage"

	"github.com/google/uuid"
)

// LedgerService owns the transaction collection workflows: add, edit, delete
// and the read-only listings derived from a ledger snapshot.
type LedgerService struct {
	repo   *storage.Repository
	logger *log.Logger
	now    func() time.Time
}

func NewLedgerService(repo *storage.Repository, logger *log.Logger) *LedgerService {
	return &LedgerService{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentLedger),
		now:    time.Now,
	}
}

// TransactionInput carries the user-entered fields of the add/edit flows.
// Amount is the raw text as typed; Kind decides the stored sign.
type TransactionInput struct {
	Date        time.Time
	Amount      string
	Kind        string
	CategoryID  string
	Subcategory string
	Note        string
}

// LedgerOverview is the unfiltered top-of-screen state: all-time total, row
// count and the distinct months available for filtering, newest first.
type LedgerOverview struct {
	AllTimeTotal core.Money
	Count        int
	Months       []time.Time
}

// LedgerListing is a grouped ledger view, either all-time or restricted to
// one calendar month.
type LedgerListing struct {
	Groups []core.MonthGroup
	Total  core.Money
	Month  *time.Time
}

// SearchResult is the outcome of a ledger search. Active distinguishes "not
// searching" (inactive query) from "searching with no matches"; Total is the
// unclamped signed sum of the matches.
type SearchResult struct {
	Query  string
	Active bool
	Items  []core.Transaction
	Count  int
	Total  core.Money
}

func (s *LedgerService) buildTransaction(id string, createdAt time.Time, in TransactionInput) (core.Transaction, error) {
	kind, err := core.ParseEntryKind(in.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := core.ValidateCategory(in.CategoryID, in.Subcategory); err != nil {
		return core.Transaction{}, err
	}
	cat, _ := core.CategoryByID(in.CategoryID)

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	return core.Transaction{
		ID:         id,
		CreatedAt:  createdAt,
		Date:       date,
		Amount:     kind.Signed(amount),
		CategoryID: cat.ID,
		// Snapshot of the catalog name at write time, kept even if the
		// catalog later renames the category.
		CategoryName: cat.Name,
		Subcategory:  in.Subcategory,
		Note:         core.TrimNote(in.Note),
	}, nil
}

// AddTransaction validates the input, applies the entry-kind sign and stores
// a new ledger row. Validation failures surface before anything is written.
func (s *LedgerService) AddTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	t, err := s.buildTransaction(uuid.NewString(), s.now(), in)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.repo.InsertTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction added",
		log.FieldTransactionID, t.ID,
		log.FieldAmount, t.Amount.String(),
		log.FieldCategory, t.CategoryID,
		log.FieldOperation, log.OpCreate)
	return t, nil
}

// EditTransaction replaces every editable field of an existing row. ID and
// creation timestamp are immutable; core.ErrNotFound surfaces when the id
// does not exist.
func (s *LedgerService) EditTransaction(ctx context.Context, id string, in TransactionInput) (core.Transaction, error) {
	existing, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	t, err := s.buildTransaction(id, existing.CreatedAt, in)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.repo.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}

	s.logger.InfoContext(ctx, "Transaction edited",
		log.FieldTransactionID, id,
		log.FieldOperation, log.OpUpdate)
	return t, nil
}

// DeleteTransaction permanently removes one row.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldTransactionID, id,
		log.FieldOperation, log.OpDelete)
	return nil
}

// Snapshot returns a copy of the full ledger ordered by date ascending. All
// aggregation and search below runs over such snapshots, never against live
// store state.
func (s *LedgerService) Snapshot(ctx context.Context) ([]core.Transaction, error) {
	return s.repo.ListTransactions(ctx)
}

// Overview computes the unfiltered ledger header state.
func (s *LedgerService) Overview(ctx context.Context) (LedgerOverview, error) {
	txs, err := s.Snapshot(ctx)
	if err != nil {
		return LedgerOverview{}, err
	}
	cursor := core.NewMonthCursor(txs)
	return LedgerOverview{
		AllTimeTotal: core.Total(txs),
		Count:        len(txs),
		Months:       cursor.Months(),
	}, nil
}

// ListLedger returns the grouped ledger. monthKey is a YYYYMM bucket key;
// zero means all months.
func (s *LedgerService) ListLedger(ctx context.Context, monthKey int) (LedgerListing, error) {
	txs, err := s.Snapshot(ctx)
	if err != nil {
		return LedgerListing{}, err
	}

	if monthKey == 0 {
		return LedgerListing{
			Groups: core.MonthGroups(txs),
			Total:  core.Total(txs),
		}, nil
	}

	monthStart := time.Date(monthKey/100, time.Month(monthKey%100), 1, 0, 0, 0, 0, time.Local)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var monthTxs []core.Transaction
	for _, t := range txs {
		if !t.Date.Before(monthStart) && t.Date.Before(monthEnd) {
			monthTxs = append(monthTxs, t)
		}
	}

	return LedgerListing{
		Groups: core.MonthGroups(monthTxs),
		Total:  core.Total(monthTxs),
		Month:  &monthStart,
	}, nil
}

// SearchLedger runs a free-text search over the full ledger. Search ignores
// any month filter; an inactive query returns an empty, inactive result.
func (s *LedgerService) SearchLedger(ctx context.Context, rawQuery string) (SearchResult, error) {
	q := core.NewSearchQuery(rawQuery)
	if !q.Active() {
		return SearchResult{Query: q.Raw()}, nil
	}

	txs, err := s.Snapshot(ctx)
	if err != nil {
		return SearchResult{}, err
	}
	items := core.Search(txs, q)

	s.logger.DebugContext(ctx, "Ledger searched",
		log.FieldQuery, q.Raw(),
		log.FieldCount, len(items),
		log.FieldOperation, log.OpSearch)

	return SearchResult{
		Query:  q.Raw(),
		Active: true,
		Items:  items,
		Count:  len(items),
		Total:  core.Total(items),
	}, nil
}

// MonthlySeries returns the spending trend for the last monthsBack calendar
// months, oldest first, ending at the current month.
func (s *LedgerService) MonthlySeries(ctx context.Context, monthsBack int) ([]core.MonthPoint, error) {
	txs, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return core.MonthSeries(txs, monthsBack, s.now()), nil
}
