package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hively/hively/internal/common"
	"github.com/hively/hively/internal/model"
)

// Validation errors. Malformed input is rejected here, before anything is
// written to the store.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrDefaultCategory = errors.New("default categories cannot be deleted")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateExpense validates a single expense.
func validateExpense(e *model.Expense) error {
	if e == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: expense missing title", common.ErrValidation)
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: expense amount must be greater than zero", common.ErrValidation)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: expense missing date", common.ErrValidation)
	}
	if e.CategoryID <= 0 {
		return fmt.Errorf("%w: expense missing category", common.ErrValidation)
	}
	if !model.ValidPaymentMode(e.PaymentMode) {
		return fmt.Errorf("%w: unknown payment mode %q", common.ErrValidation, e.PaymentMode)
	}
	return nil
}

// validateExpenses validates a slice of expenses.
func validateExpenses(expenses []model.Expense) error {
	for i := range expenses {
		if err := validateExpense(&expenses[i]); err != nil {
			return fmt.Errorf("expense at index %d: %w", i, err)
		}
	}
	return nil
}

// validateCategory validates a category.
func validateCategory(c *model.Category) error {
	if c == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category missing name", common.ErrValidation)
	}
	return nil
}

// validateReminder validates a reminder.
func validateReminder(r *model.Reminder) error {
	if r == nil {
		return fmt.Errorf("%w: reminder", ErrNilParameter)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: reminder missing title", common.ErrValidation)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: reminder amount must be greater than zero", common.ErrValidation)
	}
	if r.DueDate.IsZero() {
		return fmt.Errorf("%w: reminder missing due date", common.ErrValidation)
	}
	return nil
}

// validateSettings validates the settings record.
func validateSettings(s *model.Settings) error {
	if s == nil {
		return fmt.Errorf("%w: settings", ErrNilParameter)
	}
	if s.MonthlyBudget.IsNegative() {
		return fmt.Errorf("%w: monthly budget cannot be negative", common.ErrValidation)
	}
	return nil
}
