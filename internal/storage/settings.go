package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hively/hively/internal/model"
	"github.com/shopspring/decimal"
)

// GetSettings returns the singleton settings record. A missing record (which
// should not happen after seeding) degrades to the default zero-budget value
// rather than an error.
func (s *Store) GetSettings(ctx context.Context) (model.Settings, error) {
	if err := validateContext(ctx); err != nil {
		return model.Settings{}, err
	}

	var budget float64
	err := s.db.QueryRowContext(ctx,
		`SELECT monthly_budget FROM settings WHERE id = ?`, model.SettingsID).
		Scan(&budget)
	if err == sql.ErrNoRows {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to query settings: %w", err)
	}

	return model.Settings{ID: model.SettingsID, MonthlyBudget: decimal.NewFromFloat(budget)}, nil
}

// UpdateSettings replaces the singleton settings record, inserting it if
// missing. The fixed key is enforced here regardless of the caller's value.
func (s *Store) UpdateSettings(ctx context.Context, settings *model.Settings) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSettings(settings); err != nil {
		return err
	}
	settings.ID = model.SettingsID

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (id, monthly_budget) VALUES (?, ?)`,
		model.SettingsID, settings.MonthlyBudget.InexactFloat64())
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	s.notify()
	return nil
}
