// Package seed generates deterministic demo data: twelve months of
// transactions across every catalog category plus matching budgets for the
// current month and year. It exists for tests and the seeding CLI, not for
// the production write path.
package seed

import (
	"context"
	"fmt"
	"time"

	"tally/internal/core"
	"tally/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Seeder writes fixture data through the normal repository, so every seeded
// row passes the same validation as user input.
type Seeder struct {
	repo *storage.Repository
	now  func() time.Time
}

func New(repo *storage.Repository) *Seeder {
	return &Seeder{repo: repo, now: time.Now}
}

// WithClock fixes the reference time. Seeded data spans the twelve months
// ending at the clock's current month.
func (s *Seeder) WithClock(now func() time.Time) *Seeder {
	s.now = now
	return s
}

// SeedTransactions inserts the fixture ledger. When allowDuplicates is false
// and any transaction already exists, it is a no-op.
func (s *Seeder) SeedTransactions(ctx context.Context, allowDuplicates bool) (int, error) {
	if !allowDuplicates {
		n, err := s.repo.CountTransactions(ctx)
		if err != nil {
			return 0, fmt.Errorf("seed transactions: %w", err)
		}
		if n > 0 {
			return 0, nil
		}
	}

	now := s.now()
	inserted := 0

	add := func(monthOffset, day int, categoryID, sub string, amount int64) error {
		cat, ok := core.CategoryByID(categoryID)
		if !ok {
			return core.ErrInvalidCategory
		}
		monthDate := core.MonthStart(now).AddDate(0, -monthOffset, 0)
		if day > 28 {
			day = 28
		}
		date := time.Date(monthDate.Year(), monthDate.Month(), day, 18, 30, 0, 0, now.Location())

		t := core.Transaction{
			ID:           uuid.NewString(),
			CreatedAt:    now,
			Date:         date,
			Amount:       core.MoneyFromDecimal(decimal.NewFromInt(amount)),
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Subcategory:  sub,
			Note:         "Seed data",
		}
		if err := s.repo.InsertTransaction(ctx, t); err != nil {
			return err
		}
		inserted++
		return nil
	}

	for m := 0; m < 12; m++ {
		steps := []error{
			add(m, 5, "Groceries", "Supermarket", int64(120+m*5)),
			add(m, 10, "Eating Out", "Dinner", int64(60+m*3)),
			add(m, 15, "Transport", "Train", int64(80+m*2)),
			add(m, 18, "Self Care", "Skincare", int64(25+(m%4)*5)),
		}
		if m%3 == 0 {
			steps = append(steps, add(m, 20, "Shopping", "Clothes", int64(150+m*2)))
		}
		if m%4 == 0 {
			steps = append(steps, add(m, 22, "Gifts", "Birthday", 50))
		}
		if m == 1 || m == 6 || m == 10 {
			steps = append(steps, add(m, 25, "Trips", "Hotel", 300))
		}
		if m%6 == 0 {
			steps = append(steps, add(m, 26, "Electronics", "Gadgets", 200))
		}
		if m%5 == 0 {
			steps = append(steps, add(m, 27, "Groceries", "Supermarket", -20))
		}
		for _, err := range steps {
			if err != nil {
				return inserted, fmt.Errorf("seed transactions: %w", err)
			}
		}
	}

	return inserted, nil
}

// SeedBudgets upserts the fixture budgets for the current month and year.
// Safe to run repeatedly: the upsert keys keep it to one row per category.
func (s *Seeder) SeedBudgets(ctx context.Context) error {
	now := s.now()

	limits := []struct {
		categoryID string
		period     core.Period
		limit      int64
	}{
		{"Groceries", core.PeriodMonthly, 400},
		{"Eating Out", core.PeriodMonthly, 250},
		{"Transport", core.PeriodMonthly, 180},
		{"Self Care", core.PeriodMonthly, 120},
		{"Shopping", core.PeriodYearly, 1500},
		{"Trips", core.PeriodYearly, 2000},
		{"Electronics", core.PeriodYearly, 800},
		{"Gifts", core.PeriodYearly, 500},
	}

	for _, l := range limits {
		limit := core.MoneyFromDecimal(decimal.NewFromInt(l.limit))
		if _, err := s.repo.UpsertBudget(ctx, l.categoryID, l.period, core.PeriodStartOf(l.period, now), limit); err != nil {
			return fmt.Errorf("seed budgets: %w", err)
		}
	}
	return nil
}

// Reset permanently deletes every transaction and budget.
func (s *Seeder) Reset(ctx context.Context) error {
	if err := s.repo.DeleteAllTransactions(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := s.repo.DeleteAllBudgets(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}
