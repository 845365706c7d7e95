// Package storage owns the durable transaction and budget collections,
// backed by an embedded sqlite database. Every mutation runs inside a
// database transaction: it either commits fully or leaves no trace.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tally/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrConstraintViolation is returned when a budget upsert loses a race
// against a concurrent writer for the same (category, period, period key).
// Callers resolve it by re-reading and retrying.
var ErrConstraintViolation = errors.New("constraint violation")

type Repository struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at dbPath and runs
// pending migrations.
func Open(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// Single connection so concurrent write transactions queue on the pool
	// instead of failing mid-transaction with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertTransaction durably stores a new transaction. The transaction must
// already carry an id and pass validation.
func (r *Repository) InsertTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (id, created_at, tx_date, amount, category_id, category_name, subcategory, note)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.CreatedAt, t.Date, t.Amount.String(), t.CategoryID, t.CategoryName, t.Subcategory, t.Note)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", t.ID,
		"amount", t.Amount.String(),
		"category_id", t.CategoryID)
	return nil
}

// UpdateTransaction replaces all editable fields of an existing transaction.
// Returns core.ErrNotFound when the id does not exist; nothing is written in
// that case.
func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE transactions
			SET tx_date = ?, amount = ?, category_id = ?, category_name = ?, subcategory = ?, note = ?
			WHERE id = ?`,
			t.Date, t.Amount.String(), t.CategoryID, t.CategoryName, t.Subcategory, t.Note, t.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return core.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ErrNotFound
		}
		return fmt.Errorf("update transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction updated", "transaction_id", t.ID)
	return nil
}

// DeleteTransaction permanently removes a transaction. There is no
// soft-delete.
func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return core.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ErrNotFound
		}
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id)
	return nil
}

// DeleteAllTransactions empties the ledger.
func (r *Repository) DeleteAllTransactions(ctx context.Context) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM transactions`)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete all transactions: %w", err)
	}
	return nil
}

// GetTransaction returns one transaction by id, core.ErrNotFound when it
// does not exist.
func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, tx_date, amount, category_id, category_name, subcategory, note
		FROM transactions
		WHERE id = ?`, id)

	var (
		t         core.Transaction
		amountStr string
	)
	if err := row.Scan(&t.ID, &t.CreatedAt, &t.Date, &amountStr, &t.CategoryID, &t.CategoryName, &t.Subcategory, &t.Note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	amount, err := core.MoneyFromString(amountStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored amount %q: %w", amountStr, err)
	}
	t.Amount = amount
	return t, nil
}

// ListTransactions returns the full ledger ordered by effective date
// ascending. The returned slice is a snapshot; aggregation and search run
// over it without touching the database again.
func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, tx_date, amount, category_id, category_name, subcategory, note
		FROM transactions
		ORDER BY tx_date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t         core.Transaction
			amountStr string
		)
		if err := rows.Scan(&t.ID, &t.CreatedAt, &t.Date, &amountStr, &t.CategoryID, &t.CategoryName, &t.Subcategory, &t.Note); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		amount, err := core.MoneyFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", amountStr, err)
		}
		t.Amount = amount
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// CountTransactions returns the number of ledger rows.
func (r *Repository) CountTransactions(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// UpsertBudget creates or updates the budget row for (categoryID, period,
// period key of periodStart). Read and write happen inside one database
// transaction, so concurrent upserts for the same key cannot both insert; the
// unique index on the key tuple backstops the transaction and a loser
// surfaces ErrConstraintViolation.
func (r *Repository) UpsertBudget(ctx context.Context, categoryID string, period core.Period, periodStart time.Time, limit core.Money) (core.Budget, error) {
	b := core.Budget{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		CategoryID:  categoryID,
		Period:      period,
		PeriodStart: core.PeriodStartOf(period, periodStart),
		PeriodKey:   core.PeriodKey(period, periodStart),
		Limit:       limit,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var existingID string
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM budgets
			WHERE category_id = ? AND period = ? AND period_key = ?`,
			b.CategoryID, string(b.Period), b.PeriodKey).Scan(&existingID)
		switch {
		case err == nil:
			b.ID = existingID
			_, err = tx.ExecContext(ctx, `
				UPDATE budgets SET limit_amount = ?, period_start = ? WHERE id = ?`,
				b.Limit.String(), b.PeriodStart, existingID)
			return err
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx, `
				INSERT INTO budgets (id, created_at, category_id, period, period_start, period_key, limit_amount)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				b.ID, b.CreatedAt, b.CategoryID, string(b.Period), b.PeriodStart, b.PeriodKey, b.Limit.String())
			if isUniqueViolation(err) {
				return ErrConstraintViolation
			}
			return err
		default:
			return err
		}
	})
	if err != nil {
		// A lost insert race and lock contention are both retryable: the
		// winner's row exists by the time the caller tries again.
		if errors.Is(err, ErrConstraintViolation) || isBusy(err) {
			return core.Budget{}, ErrConstraintViolation
		}
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget upserted",
		"budget_id", b.ID,
		"category_id", b.CategoryID,
		"period", string(b.Period),
		"period_key", b.PeriodKey,
		"limit", b.Limit.String())
	return b, nil
}

// FetchBudget looks up one budget row by its logical key. The boolean is
// false when no row exists.
func (r *Repository) FetchBudget(ctx context.Context, categoryID string, period core.Period, periodKey int) (core.Budget, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, category_id, period, period_start, period_key, limit_amount
		FROM budgets
		WHERE category_id = ? AND period = ? AND period_key = ?`,
		categoryID, string(period), periodKey)

	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("fetch budget: %w", err)
	}
	return b, true, nil
}

// ListBudgets returns all budget rows for one period instance.
func (r *Repository) ListBudgets(ctx context.Context, period core.Period, periodKey int) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, category_id, period, period_start, period_key, limit_amount
		FROM budgets
		WHERE period = ? AND period_key = ?
		ORDER BY category_id ASC`,
		string(period), periodKey)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return out, nil
}

// DeleteAllBudgets empties the budget collection.
func (r *Repository) DeleteAllBudgets(ctx context.Context) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM budgets`)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete all budgets: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b        core.Budget
		period   string
		limitStr string
	)
	if err := row.Scan(&b.ID, &b.CreatedAt, &b.CategoryID, &period, &b.PeriodStart, &b.PeriodKey, &limitStr); err != nil {
		return core.Budget{}, err
	}
	b.Period = core.Period(period)
	limit, err := core.MoneyFromString(limitStr)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse stored limit %q: %w", limitStr, err)
	}
	b.Limit = limit
	return b, nil
}

// withTx runs fn inside a database transaction, rolling back on any error so
// mutations are all-or-nothing.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed")
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "database is locked") ||
		strings.Contains(err.Error(), "SQLITE_BUSY")
}
