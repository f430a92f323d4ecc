// Package testutil provides test fixtures shared across packages.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/hively/hively/internal/bus"
	"github.com/hively/hively/internal/model"
	"github.com/hively/hively/internal/storage"
	"github.com/shopspring/decimal"
)

// SetupStore creates a migrated, seeded in-memory store with no change bus.
// Cleanup is registered automatically.
func SetupStore(t *testing.T) *storage.Store {
	t.Helper()
	return SetupStoreWithBus(t, nil)
}

// SetupStoreWithBus creates a migrated, seeded in-memory store publishing to
// the given bus.
func SetupStoreWithBus(t *testing.T, changes *bus.Bus) *storage.Store {
	t.Helper()

	store, err := storage.Open(":memory:", changes)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test store: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// Expense builds a valid expense for tests.
func Expense(title string, amount float64, date time.Time, categoryID int64) model.Expense {
	return model.Expense{
		Title:       title,
		Amount:      decimal.NewFromFloat(amount),
		Date:        date,
		CategoryID:  categoryID,
		PaymentMode: model.PaymentModeCash,
	}
}

// Reminder builds a valid reminder for tests.
func Reminder(title string, amount float64, due time.Time) model.Reminder {
	return model.Reminder{
		Title:   title,
		Amount:  decimal.NewFromFloat(amount),
		DueDate: due,
	}
}
