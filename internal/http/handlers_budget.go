package http

import (
	"net/http"
	"time"

	"tally/internal/core"
	"tally/internal/services"
)

type budgetPayload struct {
	CategoryID string `json:"category_id"`
	Period     string `json:"period"`
	Limit      string `json:"limit"`
}

type budgetJSON struct {
	ID          string     `json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	CategoryID  string     `json:"category_id"`
	Period      string     `json:"period"`
	PeriodStart time.Time  `json:"period_start"`
	PeriodKey   int        `json:"period_key"`
	Limit       core.Money `json:"limit"`
}

type progressJSON struct {
	Left      core.Money `json:"left"`
	Overspent bool       `json:"overspent"`
	Fraction  float64    `json:"fraction"`
}

type budgetRowJSON struct {
	CategoryID   string       `json:"category_id"`
	CategoryName string       `json:"category_name"`
	Icon         string       `json:"icon"`
	HasBudget    bool         `json:"has_budget"`
	Limit        core.Money   `json:"limit"`
	Used         core.Money   `json:"used"`
	Progress     progressJSON `json:"progress"`
}

func renderBudget(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:          b.ID,
		CreatedAt:   b.CreatedAt,
		CategoryID:  b.CategoryID,
		Period:      string(b.Period),
		PeriodStart: b.PeriodStart,
		PeriodKey:   b.PeriodKey,
		Limit:       b.Limit,
	}
}

func renderProgress(p core.Progress) progressJSON {
	return progressJSON{Left: p.Left, Overspent: p.Overspent, Fraction: p.Fraction}
}

func renderRows(rows []services.BudgetRow) []budgetRowJSON {
	out := make([]budgetRowJSON, len(rows))
	for i, row := range rows {
		out[i] = budgetRowJSON{
			CategoryID:   row.Category.ID,
			CategoryName: row.Category.Name,
			Icon:         row.Category.Icon,
			HasBudget:    row.HasBudget,
			Limit:        row.Limit,
			Used:         row.Used,
			Progress:     renderProgress(row.Progress),
		}
	}
	return out
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var payload budgetPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	b, err := s.budgets.SetBudget(r.Context(), payload.CategoryID, payload.Period, payload.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderBudget(b))
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = string(core.PeriodMonthly)
	}

	summary, err := s.budgets.Summary(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"currency":     s.currency,
		"period":       string(summary.Period),
		"period_key":   summary.PeriodKey,
		"period_start": summary.PeriodStart,
		"rows":         renderRows(summary.Rows),
		"total_limit":  summary.TotalLimit,
		"total_used":   summary.TotalUsed,
		"overall":      renderProgress(summary.Overall),
	})
}

func (s *Server) handleFetchBudget(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = string(core.PeriodMonthly)
	}

	b, found, err := s.budgets.Fetch(r.Context(), r.PathValue("category"), period)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeError(w, core.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, renderBudget(b))
}
