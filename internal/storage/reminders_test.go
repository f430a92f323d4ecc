package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hively/hively/internal/bus"
	"github.com/hively/hively/internal/model"
)

func testReminder(title string, amount float64, due time.Time) model.Reminder {
	return model.Reminder{
		Title:   title,
		Amount:  decimal.NewFromFloat(amount),
		DueDate: due,
	}
}

func TestAddAndListReminders(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	later := testReminder("Insurance", 300, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	sooner := testReminder("Rent", 1200, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, store.AddReminder(ctx, &later))
	require.NoError(t, store.AddReminder(ctx, &sooner))

	reminders, err := store.GetReminders(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	assert.Equal(t, "Rent", reminders[0].Title, "due-date index governs order")
	assert.Equal(t, "Insurance", reminders[1].Title)
}

func TestReminderValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	bad := testReminder("", 10, time.Now())
	assert.Error(t, store.AddReminder(ctx, &bad))

	bad = testReminder("Rent", 0, time.Now())
	assert.Error(t, store.AddReminder(ctx, &bad))
}

func TestDeleteRemindersBulk(t *testing.T) {
	ctx := context.Background()
	changes := bus.New()
	store := newTestStore(t, changes)

	var ids []int64
	for _, title := range []string{"a", "b", "c"} {
		r := testReminder(title, 10, time.Now().AddDate(0, 0, 1))
		require.NoError(t, store.AddReminder(ctx, &r))
		ids = append(ids, r.ID)
	}

	var notifications int
	changes.Subscribe(func() { notifications++ })

	require.NoError(t, store.DeleteReminders(ctx, ids[:2]))
	assert.Equal(t, 1, notifications)

	remaining, err := store.GetReminders(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "c", remaining[0].Title)
}
