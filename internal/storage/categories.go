package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hively/hively/internal/model"
)

// AddCategory inserts a new user-created category and assigns its key.
func (s *Store) AddCategory(ctx context.Context, c *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(c); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, is_default) VALUES (?, ?)`,
		c.Name, c.IsDefault)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category ID: %w", err)
	}
	c.ID = id

	slog.Info("created category", "name", c.Name, "id", id)
	s.notify()
	return nil
}

// GetCategory returns the category with the given key, or nil if absent.
func (s *Store) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var c model.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, is_default FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.IsDefault)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &c, nil
}

// GetCategories returns all categories in insertion order.
func (s *Store) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, is_default FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// DeleteCategory removes a user-created category. Seeded default categories
// cannot be deleted; deleting a non-existent key is not an error. Expenses
// referencing the deleted category keep their dangling reference and render
// as uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	existing, err := s.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if existing != nil && existing.IsDefault {
		return fmt.Errorf("%w: %q", ErrDefaultCategory, existing.Name)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.notify()
	return nil
}
