// Package http exposes the ledger and budget operations as a JSON API. It is
// a thin presentation adapter: all rules live in the services and core
// packages.
package http

import (
	"context"
	"net/http"
	"time"

	"tally/internal/log"
	"tally/internal/services"
)

type Server struct {
	http.Server

	ledger   *services.LedgerService
	budgets  *services.BudgetService
	logger   *log.Logger
	currency string
	limiter  *rateLimiter
}

// NewServer wires the API routes. currency is the display currency code
// passed through to responses; formatting is the client's job.
func NewServer(addr string, ledger *services.LedgerService, budgets *services.BudgetService, logger *log.Logger, currency string, ratePerMinute int) *Server {
	s := &Server{
		ledger:   ledger,
		budgets:  budgets,
		logger:   logger.WithComponent(log.ComponentHTTP),
		currency: currency,
		limiter:  newRateLimiter(ratePerMinute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /transactions", s.handleAddTransaction)
	mux.HandleFunc("PUT /transactions/{id}", s.handleEditTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /ledger", s.handleListLedger)
	mux.HandleFunc("GET /ledger/overview", s.handleOverview)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /insights/months", s.handleMonthlySeries)

	mux.HandleFunc("POST /budgets", s.handleSetBudget)
	mux.HandleFunc("GET /budgets", s.handleBudgetSummary)
	mux.HandleFunc("GET /budgets/{category}", s.handleFetchBudget)

	s.Server = http.Server{
		Addr:           addr,
		Handler:        s.withMiddleware(mux),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

// withMiddleware wraps the mux with request-id tagging, request logging and
// per-IP rate limiting.
func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()
		ip := clientIP(r)

		if !s.limiter.allow(ip) {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.logger.InfoContext(r.Context(), "Request handled",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.status,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, ip)
	})
}

// Shutdown stops the rate limiter and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusWriter captures the response status for logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
