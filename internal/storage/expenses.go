package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hively/hively/internal/model"
	"github.com/shopspring/decimal"
)

// AddExpense inserts a new expense and assigns its key.
func (s *Store) AddExpense(ctx context.Context, e *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(e); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (title, amount, date, category_id, payment_mode)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Title, e.Amount.InexactFloat64(), e.Date, e.CategoryID, string(e.PaymentMode))
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get expense ID: %w", err)
	}
	e.ID = id

	slog.Debug("added expense", "id", id, "title", e.Title)
	s.notify()
	return nil
}

// AddExpenses inserts a batch of expenses in one transaction and publishes a
// single change notification for the whole batch.
func (s *Store) AddExpenses(ctx context.Context, expenses []model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(expenses) == 0 {
		return nil
	}
	if err := validateExpenses(expenses); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i := range expenses {
		e := &expenses[i]
		result, execErr := tx.ExecContext(ctx,
			`INSERT INTO expenses (title, amount, date, category_id, payment_mode)
			 VALUES (?, ?, ?, ?, ?)`,
			e.Title, e.Amount.InexactFloat64(), e.Date, e.CategoryID, string(e.PaymentMode))
		if execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert expense %q: %w", e.Title, execErr)
		}
		if e.ID, execErr = result.LastInsertId(); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to get expense ID: %w", execErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expenses: %w", err)
	}

	slog.Debug("added expenses", "count", len(expenses))
	s.notify()
	return nil
}

// GetExpense returns the expense with the given key, or nil if absent.
func (s *Store) GetExpense(ctx context.Context, id int64) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var e model.Expense
	var amount float64
	var mode string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, amount, date, category_id, payment_mode
		 FROM expenses WHERE id = ?`, id).
		Scan(&e.ID, &e.Title, &amount, &e.Date, &e.CategoryID, &mode)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query expense: %w", err)
	}

	e.Amount = decimal.NewFromFloat(amount)
	e.PaymentMode = model.PaymentMode(mode)
	return &e, nil
}

// GetExpenses returns all expenses in date-index order (oldest first).
func (s *Store) GetExpenses(ctx context.Context) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, amount, date, category_id, payment_mode
		 FROM expenses ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		var amount float64
		var mode string
		if err := rows.Scan(&e.ID, &e.Title, &amount, &e.Date, &e.CategoryID, &mode); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Amount = decimal.NewFromFloat(amount)
		e.PaymentMode = model.PaymentMode(mode)
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

// UpdateExpense replaces the expense with the given key, inserting it if the
// key does not exist.
func (s *Store) UpdateExpense(ctx context.Context, e *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(e); err != nil {
		return err
	}
	if e.ID <= 0 {
		return fmt.Errorf("%w: expense ID", ErrNilParameter)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO expenses (id, title, amount, date, category_id, payment_mode)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Amount.InexactFloat64(), e.Date, e.CategoryID, string(e.PaymentMode))
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	s.notify()
	return nil
}

// DeleteExpense removes an expense. Deleting a non-existent key is not an
// error.
func (s *Store) DeleteExpense(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	s.notify()
	return nil
}

// DeleteExpenses removes a set of expenses in one transaction, publishing a
// single change notification. IDs not present are silently ignored.
func (s *Store) DeleteExpenses(ctx context.Context, ids []int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to delete expense %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense deletes: %w", err)
	}

	slog.Debug("deleted expenses", "count", len(ids))
	s.notify()
	return nil
}

// ClearExpenses removes all expenses in one atomic operation.
func (s *Store) ClearExpenses(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("failed to clear expenses: %w", err)
	}

	s.notify()
	return nil
}
