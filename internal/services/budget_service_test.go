package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tally/internal/core"
)

func TestSetBudgetIdempotent(t *testing.T) {
	_, budgets := newTestServices(t)
	ctx := context.Background()

	first, err := budgets.SetBudget(ctx, "Groceries", "monthly", "100")
	if err != nil {
		t.Fatalf("first set: %v", err)
	}
	second, err := budgets.SetBudget(ctx, "Groceries", "monthly", "100")
	if err != nil {
		t.Fatalf("second set: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("repeat set created a second row")
	}

	third, err := budgets.SetBudget(ctx, "Groceries", "monthly", "150")
	if err != nil {
		t.Fatalf("third set: %v", err)
	}
	if third.ID != first.ID {
		t.Fatalf("limit change created a second row")
	}
	want, _ := core.ParseLimit("150")
	if !third.Limit.Equal(want) {
		t.Fatalf("limit: got %s", third.Limit)
	}
}

func TestSetBudgetConcurrent(t *testing.T) {
	_, budgets := newTestServices(t)
	ctx := context.Background()

	// Every concurrent caller must succeed: a lost insert race comes back
	// as a constraint violation and SetBudget retries it as an update.
	const writers = 8
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := budgets.SetBudget(ctx, "Groceries", "monthly", "400")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent set failed: %v", err)
		}
	}

	b, ok, err := budgets.Fetch(ctx, "Groceries", "monthly")
	if err != nil || !ok {
		t.Fatalf("fetch after concurrent sets: ok=%v err=%v", ok, err)
	}
	want, _ := core.ParseLimit("400")
	if !b.Limit.Equal(want) {
		t.Fatalf("limit: got %s", b.Limit)
	}
}

func TestSetBudgetValidation(t *testing.T) {
	_, budgets := newTestServices(t)
	ctx := context.Background()

	if _, err := budgets.SetBudget(ctx, "Groceries", "weekly", "100"); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := budgets.SetBudget(ctx, "Nope", "monthly", "100"); !errors.Is(err, core.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if _, err := budgets.SetBudget(ctx, "Groceries", "monthly", "-5"); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	// Zero is a valid limit.
	if _, err := budgets.SetBudget(ctx, "Groceries", "monthly", "0"); err != nil {
		t.Fatalf("zero limit: %v", err)
	}
}

func TestFetchBudget(t *testing.T) {
	_, budgets := newTestServices(t)
	ctx := context.Background()

	if _, ok, err := budgets.Fetch(ctx, "Groceries", "monthly"); err != nil || ok {
		t.Fatalf("expected no budget yet, ok=%v err=%v", ok, err)
	}

	if _, err := budgets.SetBudget(ctx, "Groceries", "monthly", "400"); err != nil {
		t.Fatalf("set: %v", err)
	}

	b, ok, err := budgets.Fetch(ctx, "Groceries", "monthly")
	if err != nil || !ok {
		t.Fatalf("fetch: ok=%v err=%v", ok, err)
	}
	if b.PeriodKey != core.PeriodKey(core.PeriodMonthly, testNow) {
		t.Fatalf("period key: got %d", b.PeriodKey)
	}
}

func TestBudgetSummary(t *testing.T) {
	ledger, budgets := newTestServices(t)
	ctx := context.Background()

	// Feb 2026 usage: 45.50 - 20.00 = 25.50 for Groceries.
	addTx(t, ledger, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), "45.50", "expense", "Groceries", "", "")
	addTx(t, ledger, time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC), "20.00", "refund", "Groceries", "", "")
	// Prior month spending must not count toward the current period.
	addTx(t, ledger, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), "99.00", "expense", "Groceries", "", "")
	// Yearly-tracked category spending in the same year.
	addTx(t, ledger, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), "300.00", "expense", "Trips", "Hotel", "")

	if _, err := budgets.SetBudget(ctx, "Groceries", "monthly", "400"); err != nil {
		t.Fatalf("set monthly: %v", err)
	}
	if _, err := budgets.SetBudget(ctx, "Trips", "yearly", "2000"); err != nil {
		t.Fatalf("set yearly: %v", err)
	}

	monthly, err := budgets.Summary(ctx, "monthly")
	if err != nil {
		t.Fatalf("monthly summary: %v", err)
	}
	if len(monthly.Rows) != 4 {
		t.Fatalf("expected 4 monthly rows, got %d", len(monthly.Rows))
	}

	var groceries *BudgetRow
	for i := range monthly.Rows {
		if monthly.Rows[i].Category.ID == "Groceries" {
			groceries = &monthly.Rows[i]
		}
	}
	if groceries == nil {
		t.Fatalf("Groceries row missing")
	}
	used, _ := core.MoneyFromString("25.50")
	if !groceries.Used.Equal(used) {
		t.Fatalf("used: expected 25.50, got %s", groceries.Used)
	}
	left, _ := core.MoneyFromString("374.50")
	if !groceries.Progress.Left.Equal(left) {
		t.Fatalf("left: expected 374.50, got %s", groceries.Progress.Left)
	}
	if groceries.Progress.Overspent {
		t.Fatalf("should not be overspent")
	}
	if !groceries.HasBudget {
		t.Fatalf("HasBudget should be true")
	}

	// Categories without a budget still appear with usage.
	for _, row := range monthly.Rows {
		if row.Category.ID != "Groceries" && row.HasBudget {
			t.Fatalf("%s should have no budget", row.Category.ID)
		}
	}

	limit, _ := core.ParseLimit("400")
	if !monthly.TotalLimit.Equal(limit) {
		t.Fatalf("total limit: got %s", monthly.TotalLimit)
	}
	if !monthly.TotalUsed.Equal(used) {
		t.Fatalf("total used: got %s", monthly.TotalUsed)
	}

	yearly, err := budgets.Summary(ctx, "yearly")
	if err != nil {
		t.Fatalf("yearly summary: %v", err)
	}
	tripsUsed, _ := core.MoneyFromString("300.00")
	if !yearly.TotalUsed.Equal(tripsUsed) {
		t.Fatalf("yearly used: got %s", yearly.TotalUsed)
	}
	if yearly.PeriodKey != 2026 {
		t.Fatalf("yearly key: got %d", yearly.PeriodKey)
	}
}
