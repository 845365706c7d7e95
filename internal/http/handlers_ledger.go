package http

import (
	"net/http"
	"strconv"
	"time"

	"tally/internal/core"
	"tally/internal/services"
)

// transactionPayload is the add/edit request body. Date is RFC 3339 and
// optional on add (defaults to now); amount is the raw user text so the core
// parser owns separator and sign rules.
type transactionPayload struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	CategoryID  string `json:"category_id"`
	Subcategory string `json:"subcategory"`
	Note        string `json:"note"`
}

type transactionJSON struct {
	ID           string     `json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	Date         time.Time  `json:"date"`
	Amount       core.Money `json:"amount"`
	CategoryID   string     `json:"category_id"`
	CategoryName string     `json:"category_name"`
	Subcategory  string     `json:"subcategory,omitempty"`
	Note         string     `json:"note,omitempty"`
}

type monthGroupJSON struct {
	MonthStart time.Time         `json:"month_start"`
	Subtotal   core.Money        `json:"subtotal"`
	Items      []transactionJSON `json:"items"`
}

func renderTransaction(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:           t.ID,
		CreatedAt:    t.CreatedAt,
		Date:         t.Date,
		Amount:       t.Amount,
		CategoryID:   t.CategoryID,
		CategoryName: t.CategoryName,
		Subcategory:  t.Subcategory,
		Note:         t.Note,
	}
}

func renderTransactions(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txs))
	for i, t := range txs {
		out[i] = renderTransaction(t)
	}
	return out
}

func (p transactionPayload) toInput() (services.TransactionInput, error) {
	in := services.TransactionInput{
		Amount:      p.Amount,
		Kind:        p.Kind,
		CategoryID:  p.CategoryID,
		Subcategory: p.Subcategory,
		Note:        p.Note,
	}
	if p.Date != "" {
		d, err := time.Parse(time.RFC3339, p.Date)
		if err != nil {
			return services.TransactionInput{}, core.ErrInvalidDate
		}
		in.Date = d
	}
	return in, nil
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	in, err := payload.toInput()
	if err != nil {
		writeError(w, err)
		return
	}

	t, err := s.ledger.AddTransaction(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, renderTransaction(t))
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	in, err := payload.toInput()
	if err != nil {
		writeError(w, err)
		return
	}

	t, err := s.ledger.EditTransaction(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderTransaction(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListLedger(w http.ResponseWriter, r *http.Request) {
	monthKey := 0
	if v := r.URL.Query().Get("month"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil || k < 100001 || k/100 > 9999 || k%100 < 1 || k%100 > 12 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "month must be YYYYMM"})
			return
		}
		monthKey = k
	}

	listing, err := s.ledger.ListLedger(r.Context(), monthKey)
	if err != nil {
		writeError(w, err)
		return
	}

	groups := make([]monthGroupJSON, len(listing.Groups))
	for i, g := range listing.Groups {
		groups[i] = monthGroupJSON{
			MonthStart: g.MonthStart,
			Subtotal:   g.Subtotal,
			Items:      renderTransactions(g.Items),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"currency": s.currency,
		"month":    listing.Month,
		"total":    listing.Total,
		"groups":   groups,
	})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.ledger.Overview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currency":       s.currency,
		"all_time_total": overview.AllTimeTotal,
		"count":          overview.Count,
		"months":         overview.Months,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	result, err := s.ledger.SearchLedger(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currency": s.currency,
		"query":    result.Query,
		"active":   result.Active,
		"count":    result.Count,
		"total":    result.Total,
		"items":    renderTransactions(result.Items),
	})
}

func (s *Server) handleMonthlySeries(w http.ResponseWriter, r *http.Request) {
	monthsBack := 6
	if v := r.URL.Query().Get("n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 120 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "n must be between 1 and 120"})
			return
		}
		monthsBack = n
	}

	points, err := s.ledger.MonthlySeries(r.Context(), monthsBack)
	if err != nil {
		writeError(w, err)
		return
	}

	type pointJSON struct {
		MonthStart time.Time  `json:"month_start"`
		NetSpend   core.Money `json:"net_spend"`
		NetTotal   core.Money `json:"net_total"`
	}
	out := make([]pointJSON, len(points))
	for i, p := range points {
		out[i] = pointJSON{MonthStart: p.MonthStart, NetSpend: p.NetSpend, NetTotal: p.NetTotal}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"currency": s.currency,
		"points":   out,
	})
}
