package services

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/storage"
)

var testNow = time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

func testLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError, Component: "test"})
}

func newTestServices(t *testing.T) (*LedgerService, *BudgetService) {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := testLogger()
	ledger := NewLedgerService(repo, logger)
	ledger.now = func() time.Time { return testNow }
	budget := NewBudgetService(repo, logger)
	budget.now = func() time.Time { return testNow }
	return ledger, budget
}

func addTx(t *testing.T, s *LedgerService, date time.Time, amount, kind, category, sub, note string) core.Transaction {
	t.Helper()
	tx, err := s.AddTransaction(context.Background(), TransactionInput{
		Date:        date,
		Amount:      amount,
		Kind:        kind,
		CategoryID:  category,
		Subcategory: sub,
		Note:        note,
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	return tx
}

func TestAddTransactionAppliesSign(t *testing.T) {
	ledger, _ := newTestServices(t)
	ctx := context.Background()

	expense := addTx(t, ledger, testNow, "45.50", "expense", "Groceries", "Supermarket", "")
	if expense.Amount.Sign() <= 0 {
		t.Fatalf("expense should store positive, got %s", expense.Amount)
	}

	refund := addTx(t, ledger, testNow, "20,00", "refund", "Groceries", "", "return")
	if refund.Amount.Sign() >= 0 {
		t.Fatalf("refund should store negative, got %s", refund.Amount)
	}

	txs, err := ledger.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(txs))
	}
	if txs[0].CategoryName != "Groceries" {
		t.Fatalf("category name not denormalized: %+v", txs[0])
	}
}

func TestAddTransactionValidation(t *testing.T) {
	ledger, _ := newTestServices(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   TransactionInput
		want error
	}{
		{"zero amount", TransactionInput{Date: testNow, Amount: "0", CategoryID: "Groceries"}, core.ErrInvalidAmount},
		{"garbage amount", TransactionInput{Date: testNow, Amount: "abc", CategoryID: "Groceries"}, core.ErrInvalidAmount},
		{"unknown category", TransactionInput{Date: testNow, Amount: "10", CategoryID: "Nope"}, core.ErrInvalidCategory},
		{"foreign subcategory", TransactionInput{Date: testNow, Amount: "10", CategoryID: "Groceries", Subcategory: "Train"}, core.ErrInvalidCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ledger.AddTransaction(ctx, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	// Rejected inputs leave the ledger untouched.
	txs, _ := ledger.Snapshot(ctx)
	if len(txs) != 0 {
		t.Fatalf("expected empty ledger, got %d rows", len(txs))
	}
}

func TestEditTransaction(t *testing.T) {
	ledger, _ := newTestServices(t)
	ctx := context.Background()

	tx := addTx(t, ledger, testNow, "45.50", "expense", "Groceries", "Supermarket", "")

	edited, err := ledger.EditTransaction(ctx, tx.ID, TransactionInput{
		Date:        testNow.AddDate(0, 0, -1),
		Amount:      "12.00",
		Kind:        "refund",
		CategoryID:  "Transport",
		Subcategory: "Taxi",
		Note:        "edited",
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Amount.Sign() >= 0 || edited.CategoryName != "Transport" {
		t.Fatalf("edit not applied: %+v", edited)
	}
	// The original creation timestamp survives the edit.
	if edited.CreatedAt.IsZero() || !edited.CreatedAt.Equal(tx.CreatedAt) {
		t.Fatalf("created_at changed by edit: %v != %v", edited.CreatedAt, tx.CreatedAt)
	}

	if _, err := ledger.EditTransaction(ctx, "missing", TransactionInput{
		Date: testNow, Amount: "1", CategoryID: "Groceries",
	}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	ledger, _ := newTestServices(t)
	ctx := context.Background()

	tx := addTx(t, ledger, testNow, "45.50", "expense", "Groceries", "", "")
	if err := ledger.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := ledger.DeleteTransaction(ctx, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOverviewAndListing(t *testing.T) {
	ledger, _ := newTestServices(t)
	ctx := context.Background()

	addTx(t, ledger, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), "45.50", "expense", "Groceries", "", "")
	addTx(t, ledger, time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC), "20.00", "refund", "Groceries", "", "")
	addTx(t, ledger, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), "300.00", "expense", "Trips", "Hotel", "")

	overview, err := ledger.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.Count != 3 {
		t.Fatalf("count: got %d", overview.Count)
	}
	want, _ := core.MoneyFromString("325.50")
	if !overview.AllTimeTotal.Equal(want) {
		t.Fatalf("all-time total: got %s", overview.AllTimeTotal)
	}
	if len(overview.Months) != 2 {
		t.Fatalf("months: got %d", len(overview.Months))
	}

	all, err := ledger.ListLedger(ctx, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all.Groups) != 2 || all.Month != nil {
		t.Fatalf("all listing: %d groups, month %v", len(all.Groups), all.Month)
	}

	feb, err := ledger.ListLedger(ctx, 202602)
	if err != nil {
		t.Fatalf("list feb: %v", err)
	}
	if len(feb.Groups) != 1 {
		t.Fatalf("feb listing: %d groups", len(feb.Groups))
	}
	febTotal, _ := core.MoneyFromString("25.50")
	if !feb.Total.Equal(febTotal) {
		t.Fatalf("feb total: got %s", feb.Total)
	}
}

func TestSearchLedger(t *testing.T) {
	ledger, _ := newTestServices(t)
	ctx := context.Background()

	addTx(t, ledger, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), "12.50", "expense", "Transport", "Train", "")
	addTx(t, ledger, time.Date(2026, 2, 18, 0, 0, 0, 0, time.UTC), "8.00", "refund", "Transport", "", "train ticket refund")
	addTx(t, ledger, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), "45.50", "expense", "Groceries", "", "")

	empty, err := ledger.SearchLedger(ctx, "   ")
	if err != nil {
		t.Fatalf("empty search: %v", err)
	}
	if empty.Active || empty.Count != 0 {
		t.Fatalf("whitespace query should be inactive and empty: %+v", empty)
	}

	res, err := ledger.SearchLedger(ctx, "Train")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !res.Active || res.Count != 2 {
		t.Fatalf("expected 2 active matches, got %+v", res)
	}
	total, _ := core.MoneyFromString("4.50")
	if !res.Total.Equal(total) {
		t.Fatalf("search total should be unclamped sum, got %s", res.Total)
	}

	miss, err := ledger.SearchLedger(ctx, "zzz")
	if err != nil {
		t.Fatalf("miss search: %v", err)
	}
	if !miss.Active || miss.Count != 0 {
		t.Fatalf("real query with no matches stays active: %+v", miss)
	}
}

func TestMonthlySeries(t *testing.T) {
	ledger, _ := newTestServices(t)
	ctx := context.Background()

	addTx(t, ledger, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), "45.50", "expense", "Groceries", "", "")

	points, err := ledger.MonthlySeries(ctx, 6)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(points) != 6 {
		t.Fatalf("expected 6 points, got %d", len(points))
	}
	last := points[5]
	if last.MonthStart.Year() != 2026 || last.MonthStart.Month() != time.February {
		t.Fatalf("series should end at the current month, got %v", last.MonthStart)
	}
}
