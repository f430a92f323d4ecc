package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hively/hively/internal/model"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. Migrations are strictly additive: upgrading never drops an
// existing collection.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: expenses, categories, settings",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS expenses (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					title TEXT NOT NULL,
					amount REAL NOT NULL,
					date DATETIME NOT NULL,
					category_id INTEGER NOT NULL,
					payment_mode TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_expenses_date ON expenses(date)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT UNIQUE NOT NULL,
					is_default BOOLEAN NOT NULL DEFAULT 0
				)`,

				`CREATE TABLE IF NOT EXISTS settings (
					id INTEGER PRIMARY KEY,
					monthly_budget REAL NOT NULL DEFAULT 0
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add reminders collection",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS reminders (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					title TEXT NOT NULL,
					amount REAL NOT NULL,
					due_date DATETIME NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_reminders_due_date ON reminders(due_date)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations and ensures the first-run
// seeds exist. It is idempotent: calling it on an already-migrated database
// changes nothing.
func (s *Store) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return s.ensureSeeds(ctx)
}

// ensureSeeds inserts the default categories and the settings singleton
// exactly once, on a fresh database. No change notification is published for
// seeding: it happens before any subscriber exists.
func (s *Store) ensureSeeds(ctx context.Context) error {
	var catCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&catCount); err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}

	if catCount == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin seed transaction: %w", err)
		}
		for _, name := range model.DefaultCategoryNames {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories (name, is_default) VALUES (?, 1)`, name); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to seed category %q: %w", name, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit category seeds: %w", err)
		}
		slog.Info("seeded default categories", "count", len(model.DefaultCategoryNames))
	}

	var settingsCount int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM settings WHERE id = ?`, model.SettingsID).Scan(&settingsCount); err != nil {
		return fmt.Errorf("failed to count settings: %w", err)
	}

	if settingsCount == 0 {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO settings (id, monthly_budget) VALUES (?, 0)`, model.SettingsID); err != nil {
			return fmt.Errorf("failed to seed settings: %w", err)
		}
		slog.Info("seeded settings singleton")
	}

	return nil
}
