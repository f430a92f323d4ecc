package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hively/hively/internal/model"
	"github.com/shopspring/decimal"
)

// AddReminder inserts a new reminder and assigns its key.
func (s *Store) AddReminder(ctx context.Context, r *model.Reminder) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReminder(r); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (title, amount, due_date) VALUES (?, ?, ?)`,
		r.Title, r.Amount.InexactFloat64(), r.DueDate)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get reminder ID: %w", err)
	}
	r.ID = id

	slog.Debug("added reminder", "id", id, "title", r.Title, "due", r.DueDate)
	s.notify()
	return nil
}

// GetReminders returns all reminders in due-date-index order (soonest first).
func (s *Store) GetReminders(ctx context.Context) ([]model.Reminder, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, amount, due_date FROM reminders ORDER BY due_date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		var r model.Reminder
		var amount float64
		if err := rows.Scan(&r.ID, &r.Title, &amount, &r.DueDate); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		r.Amount = decimal.NewFromFloat(amount)
		reminders = append(reminders, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}

	return reminders, nil
}

// DeleteReminder removes a reminder. Deleting a non-existent key is not an
// error.
func (s *Store) DeleteReminder(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	s.notify()
	return nil
}

// DeleteReminders removes a set of reminders in one transaction, publishing a
// single change notification. IDs not present are silently ignored.
func (s *Store) DeleteReminders(ctx context.Context, ids []int64) error {
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
		if _, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to delete reminder %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reminder deletes: %w", err)
	}

	slog.Debug("deleted reminders", "count", len(ids))
	s.notify()
	return nil
}
