// Package storage persists transactions, budgets, bills, the savings goal
// and monthly rollups in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finboard/internal/core"

	_ "modernc.org/sqlite"
)

// occurredAtLayout keeps the clock when a transaction carries one;
// dateLayout is used for calendar-only values like bill due dates.
const (
	occurredAtLayout = time.RFC3339
	dateLayout       = "2006-01-02"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateTransaction stores a validated transaction.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, description, category, occurred_at, amount_cents, type)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Description, t.Category, t.Date.Format(occurredAtLayout), t.Amount.Cents, string(t.Type))
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"description", t.Description,
		"amount_cents", t.Amount.Cents,
		"type", string(t.Type))
	return nil
}

// DeleteTransaction removes a transaction by ID.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// ListTransactions returns the full snapshot ordered by occurrence time.
// Rows whose type tag is not a known transaction type are skipped with a
// warning instead of aborting the snapshot.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, category, occurred_at, amount_cents, type
		 FROM transactions ORDER BY occurred_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			t          core.Transaction
			occurredAt string
			typeTag    string
		)
		if err := rows.Scan(&t.ID, &t.Description, &t.Category, &occurredAt, &t.Amount.Cents, &typeTag); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		switch core.TransactionType(typeTag) {
		case core.Income, core.Expense:
			t.Type = core.TransactionType(typeTag)
		default:
			slog.WarnContext(ctx, "Skipping transaction with unknown type",
				"id", t.ID, "type", typeTag)
			continue
		}

		when, err := time.Parse(occurredAtLayout, occurredAt)
		if err != nil {
			slog.WarnContext(ctx, "Skipping transaction with malformed date",
				"id", t.ID, "occurred_at", occurredAt)
			continue
		}
		t.Date = core.Date{Time: when}

		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return txs, nil
}

// ListBudgets returns budget allocations ordered by category. Spent is left
// zero; callers derive it from the transaction snapshot.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.BudgetEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, allocated_cents FROM budgets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var entries []core.BudgetEntry
	for rows.Next() {
		var e core.BudgetEntry
		if err := rows.Scan(&e.Category, &e.Allocated.Cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}

	return entries, nil
}

// ReplaceBudgets writes the full budget set atomically.
func (r *SQLiteRepository) ReplaceBudgets(ctx context.Context, entries []core.BudgetEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin budgets transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM budgets`); err != nil {
		return fmt.Errorf("clear budgets: %w", err)
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (category, allocated_cents) VALUES (?, ?)`,
			e.Category, e.Allocated.Cents); err != nil {
			return fmt.Errorf("insert budget %s: %w", e.Category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budgets: %w", err)
	}
	return nil
}

// DeleteBudget removes one allocation by category.
func (r *SQLiteRepository) DeleteBudget(ctx context.Context, category string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE category = ?`, category)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("budget %s: %w", category, core.ErrNotFound)
	}
	return nil
}

// GetGoal returns the current savings goal, or (nil, nil) when none is set.
func (r *SQLiteRepository) GetGoal(ctx context.Context) (*core.SavingsGoal, error) {
	var (
		g          core.SavingsGoal
		targetDate sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT name, category, target_cents, current_cents, target_date
		 FROM savings_goal WHERE id = 1`).
		Scan(&g.Name, &g.Category, &g.Target.Cents, &g.Current.Cents, &targetDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}

	if targetDate.Valid {
		when, err := time.Parse(dateLayout, targetDate.String)
		if err != nil {
			return nil, fmt.Errorf("parse goal target date %q: %w", targetDate.String, err)
		}
		d := core.Date{Time: when}
		g.TargetDate = &d
	}
	return &g, nil
}

// SetGoal replaces the single current goal.
func (r *SQLiteRepository) SetGoal(ctx context.Context, g core.SavingsGoal) error {
	var targetDate any
	if g.TargetDate != nil {
		targetDate = g.TargetDate.Format(dateLayout)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goal (id, name, category, target_cents, current_cents, target_date)
		 VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   category = excluded.category,
		   target_cents = excluded.target_cents,
		   current_cents = excluded.current_cents,
		   target_date = excluded.target_date`,
		g.Name, g.Category, g.Target.Cents, g.Current.Cents, targetDate)
	if err != nil {
		return fmt.Errorf("set goal: %w", err)
	}
	return nil
}

// ClearGoal removes the current goal. Clearing an absent goal is a no-op.
func (r *SQLiteRepository) ClearGoal(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM savings_goal WHERE id = 1`); err != nil {
		return fmt.Errorf("clear goal: %w", err)
	}
	return nil
}

// ListBills returns all bills ordered by due date.
func (r *SQLiteRepository) ListBills(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, due_date, paid, category
		 FROM bills ORDER BY due_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		var (
			b       core.Bill
			dueDate string
		)
		if err := rows.Scan(&b.ID, &b.Description, &b.Amount.Cents, &dueDate, &b.Paid, &b.Category); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		when, err := time.Parse(dateLayout, dueDate)
		if err != nil {
			return nil, fmt.Errorf("parse bill due date %q: %w", dueDate, err)
		}
		b.DueDate = core.Date{Time: when}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}

	return bills, nil
}

// CreateBill stores a bill and returns its assigned ID.
func (r *SQLiteRepository) CreateBill(ctx context.Context, b core.Bill) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bills (description, amount_cents, due_date, paid, category)
		 VALUES (?, ?, ?, ?, ?)`,
		b.Description, b.Amount.Cents, b.DueDate.Format(dateLayout), b.Paid, b.Category)
	if err != nil {
		return 0, fmt.Errorf("create bill: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create bill id: %w", err)
	}
	return id, nil
}

// ToggleBillPaid flips the paid flag and returns the new value.
func (r *SQLiteRepository) ToggleBillPaid(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bills SET paid = NOT paid WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("toggle bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggle bill rows affected: %w", err)
	}
	if n == 0 {
		return false, fmt.Errorf("bill %d: %w", id, core.ErrNotFound)
	}

	var paid bool
	if err := r.db.QueryRowContext(ctx, `SELECT paid FROM bills WHERE id = ?`, id).Scan(&paid); err != nil {
		return false, fmt.Errorf("read toggled bill: %w", err)
	}
	return paid, nil
}

// DeleteBill removes a bill by ID.
func (r *SQLiteRepository) DeleteBill(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bill rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// MonthlyRollup is one persisted month slot of the rollup read model.
type MonthlyRollup struct {
	Month            int
	IncomeCents      int64
	ExpenseCents     int64
	BalanceCents     int64
	TransactionCount int
}

// ReplaceRollups overwrites the monthly rollup read model atomically.
func (r *SQLiteRepository) ReplaceRollups(ctx context.Context, rollups []MonthlyRollup) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rollups transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM monthly_rollups`); err != nil {
		return fmt.Errorf("clear rollups: %w", err)
	}
	for _, m := range rollups {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO monthly_rollups (month, income_cents, expense_cents, balance_cents, transaction_count, updated_at)
			 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
			m.Month, m.IncomeCents, m.ExpenseCents, m.BalanceCents, m.TransactionCount); err != nil {
			return fmt.Errorf("insert rollup month %d: %w", m.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rollups: %w", err)
	}
	return nil
}

// ListRollups returns the persisted rollup rows in month order.
func (r *SQLiteRepository) ListRollups(ctx context.Context) ([]MonthlyRollup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT month, income_cents, expense_cents, balance_cents, transaction_count
		 FROM monthly_rollups ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("list rollups: %w", err)
	}
	defer rows.Close()

	var rollups []MonthlyRollup
	for rows.Next() {
		var m MonthlyRollup
		if err := rows.Scan(&m.Month, &m.IncomeCents, &m.ExpenseCents, &m.BalanceCents, &m.TransactionCount); err != nil {
			return nil, fmt.Errorf("scan rollup: %w", err)
		}
		rollups = append(rollups, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rollups: %w", err)
	}

	return rollups, nil
}
