package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/storage"
)

// BudgetService owns budget upserts and the per-period budget summaries.
type BudgetService struct {
	repo   *storage.Repository
	logger *log.Logger
	now    func() time.Time
}

func NewBudgetService(repo *storage.Repository, logger *log.Logger) *BudgetService {
	return &BudgetService{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentBudget),
		now:    time.Now,
	}
}

// BudgetRow pairs one tracked category with its current-period limit, usage
// and progress. HasBudget is false when no limit has been set; Limit is then
// zero.
type BudgetRow struct {
	Category  core.Category
	HasBudget bool
	Limit     core.Money
	Used      core.Money
	Progress  core.Progress
}

// BudgetSummary is the full budget screen state for one period granularity:
// a row per tracked category plus totals across them.
type BudgetSummary struct {
	Period      core.Period
	PeriodKey   int
	PeriodStart time.Time
	Rows        []BudgetRow
	TotalLimit  core.Money
	TotalUsed   core.Money
	Overall     core.Progress
}

// SetBudget parses and stores a budget limit for the category's current
// period instance. The upsert is atomic in the store; if a concurrent writer
// still wins the insert race, the resulting constraint violation is resolved
// here by retrying once, which turns the loser into an update of the winner's
// row.
func (s *BudgetService) SetBudget(ctx context.Context, categoryID, periodStr, limitText string) (core.Budget, error) {
	period, err := core.ParsePeriod(periodStr)
	if err != nil {
		return core.Budget{}, err
	}
	limit, err := core.ParseLimit(limitText)
	if err != nil {
		return core.Budget{}, err
	}
	if err := core.ValidateCategory(categoryID, ""); err != nil {
		return core.Budget{}, err
	}

	periodStart := core.PeriodStartOf(period, s.now())

	b, err := s.repo.UpsertBudget(ctx, categoryID, period, periodStart, limit)
	if errors.Is(err, storage.ErrConstraintViolation) {
		s.logger.WarnContext(ctx, "Budget upsert lost an insert race, retrying",
			log.FieldCategory, categoryID,
			log.FieldPeriod, string(period))
		b, err = s.repo.UpsertBudget(ctx, categoryID, period, periodStart, limit)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}

	s.logger.InfoContext(ctx, "Budget set",
		log.FieldBudgetID, b.ID,
		log.FieldCategory, b.CategoryID,
		log.FieldPeriod, string(b.Period),
		log.FieldPeriodKey, b.PeriodKey,
		log.FieldLimit, b.Limit.String(),
		log.FieldOperation, log.OpUpsert)
	return b, nil
}

// Fetch returns the stored budget for the category's current period
// instance, if any. Used to prefill the edit form.
func (s *BudgetService) Fetch(ctx context.Context, categoryID, periodStr string) (core.Budget, bool, error) {
	period, err := core.ParsePeriod(periodStr)
	if err != nil {
		return core.Budget{}, false, err
	}
	if err := core.ValidateCategory(categoryID, ""); err != nil {
		return core.Budget{}, false, err
	}
	key := core.PeriodKey(period, s.now())
	return s.repo.FetchBudget(ctx, categoryID, period, key)
}

// Summary computes the budget screen state for one period granularity over
// the categories tracked at that granularity. Used figures come from a
// single ledger snapshot; budget limits from the current period's rows.
func (s *BudgetService) Summary(ctx context.Context, periodStr string) (BudgetSummary, error) {
	period, err := core.ParsePeriod(periodStr)
	if err != nil {
		return BudgetSummary{}, err
	}

	now := s.now()
	key := core.PeriodKey(period, now)

	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return BudgetSummary{}, err
	}
	budgets, err := s.repo.ListBudgets(ctx, period, key)
	if err != nil {
		return BudgetSummary{}, err
	}

	limits := make(map[string]core.Money, len(budgets))
	for _, b := range budgets {
		limits[b.CategoryID] = b.Limit
	}

	summary := BudgetSummary{
		Period:      period,
		PeriodKey:   key,
		PeriodStart: core.PeriodStartOf(period, now),
	}

	for _, cat := range core.CategoriesTracked(period) {
		used := core.CurrentPeriodUsed(txs, cat, now)
		limit, hasBudget := limits[cat.ID]

		summary.Rows = append(summary.Rows, BudgetRow{
			Category:  cat,
			HasBudget: hasBudget,
			Limit:     limit,
			Used:      used,
			Progress:  core.BudgetProgress(used, limit),
		})

		summary.TotalLimit = summary.TotalLimit.Add(limit)
		summary.TotalUsed = summary.TotalUsed.Add(used)
	}

	summary.Overall = core.BudgetProgress(summary.TotalUsed, summary.TotalLimit)
	return summary, nil
}
