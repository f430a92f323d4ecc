package snapshot

import (
	"context"

	"github.com/hively/hively/internal/model"
)

// Mutating operations are pass-throughs to the store. None of them update the
// snapshot directly: the store's change notification drives the refresh, so
// every consumer observes the same state after any mutation.

// AddExpense records a new expense.
func (m *Manager) AddExpense(ctx context.Context, e *model.Expense) error {
	return m.store.AddExpense(ctx, e)
}

// AddExpenses records a batch of expenses with a single notification.
func (m *Manager) AddExpenses(ctx context.Context, expenses []model.Expense) error {
	return m.store.AddExpenses(ctx, expenses)
}

// UpdateExpense replaces an existing expense.
func (m *Manager) UpdateExpense(ctx context.Context, e *model.Expense) error {
	return m.store.UpdateExpense(ctx, e)
}

// DeleteExpense removes one expense.
func (m *Manager) DeleteExpense(ctx context.Context, id int64) error {
	return m.store.DeleteExpense(ctx, id)
}

// DeleteExpenses removes a set of expenses with a single notification.
func (m *Manager) DeleteExpenses(ctx context.Context, ids []int64) error {
	return m.store.DeleteExpenses(ctx, ids)
}

// ClearExpenses removes every expense.
func (m *Manager) ClearExpenses(ctx context.Context) error {
	return m.store.ClearExpenses(ctx)
}

// AddCategory creates a user category.
func (m *Manager) AddCategory(ctx context.Context, c *model.Category) error {
	return m.store.AddCategory(ctx, c)
}

// DeleteCategory removes a user category.
func (m *Manager) DeleteCategory(ctx context.Context, id int64) error {
	return m.store.DeleteCategory(ctx, id)
}

// AddReminder creates a reminder.
func (m *Manager) AddReminder(ctx context.Context, r *model.Reminder) error {
	return m.store.AddReminder(ctx, r)
}

// DeleteReminder removes a reminder.
func (m *Manager) DeleteReminder(ctx context.Context, id int64) error {
	return m.store.DeleteReminder(ctx, id)
}

// SaveSettings replaces the settings singleton.
func (m *Manager) SaveSettings(ctx context.Context, s *model.Settings) error {
	return m.store.UpdateSettings(ctx, s)
}
