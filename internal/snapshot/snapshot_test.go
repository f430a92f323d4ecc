package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hively/hively/internal/bus"
	"github.com/hively/hively/internal/model"
	"github.com/hively/hively/internal/testutil"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func startManager(t *testing.T) (*Manager, *bus.Bus) {
	t.Helper()

	changes := bus.New()
	store := testutil.SetupStoreWithBus(t, changes)

	m := New(store, changes)
	m.Start(context.Background())
	t.Cleanup(m.Close)

	return m, changes
}

func TestInitialLoad(t *testing.T) {
	m, _ := startManager(t)

	assert.False(t, m.Loading())

	snap := m.Snapshot()
	assert.Empty(t, snap.Expenses)
	assert.Len(t, snap.Categories, 8)
	assert.True(t, snap.Settings.MonthlyBudget.IsZero())
	assert.Empty(t, snap.Reminders)
}

func TestAddExpenseAppearsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m, _ := startManager(t)

	older := testutil.Expense("Lunch", 12, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 1)
	require.NoError(t, m.AddExpense(ctx, &older))

	coffee := testutil.Expense("Coffee", 4.50, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 1)
	require.NoError(t, m.AddExpense(ctx, &coffee))

	require.Eventually(t, func() bool {
		return len(m.Snapshot().Expenses) == 2
	}, waitFor, tick)

	snap := m.Snapshot()
	assert.Equal(t, "Coffee", snap.Expenses[0].Title, "newest first")
	assert.Equal(t, "Lunch", snap.Expenses[1].Title)
	assert.Len(t, snap.Categories, 8, "seeded data unaffected")
}

func TestAllConsumersConverge(t *testing.T) {
	ctx := context.Background()

	changes := bus.New()
	store := testutil.SetupStoreWithBus(t, changes)

	first := New(store, changes)
	first.Start(ctx)
	t.Cleanup(first.Close)

	second := New(store, changes)
	second.Start(ctx)
	t.Cleanup(second.Close)

	// Mutate through one consumer; both must converge via the bus round
	// trip, and both must match a fresh independent read.
	e := testutil.Expense("Groceries", 55, time.Now(), 1)
	require.NoError(t, first.AddExpense(ctx, &e))

	require.Eventually(t, func() bool {
		return len(first.Snapshot().Expenses) == 1 && len(second.Snapshot().Expenses) == 1
	}, waitFor, tick)

	direct, err := store.GetExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, direct, 1)
	assert.Equal(t, direct[0].ID, first.Snapshot().Expenses[0].ID)
	assert.Equal(t, direct[0].ID, second.Snapshot().Expenses[0].ID)
}

func TestPastReminderGarbageCollection(t *testing.T) {
	ctx := context.Background()

	changes := bus.New()
	store := testutil.SetupStoreWithBus(t, changes)

	yesterday := testutil.Reminder("Overdue bill", 100, time.Now().AddDate(0, 0, -1))
	today := testutil.Reminder("Due today", 50, time.Now())
	nextWeek := testutil.Reminder("Due next week", 75, time.Now().AddDate(0, 0, 7))
	require.NoError(t, store.AddReminder(ctx, &yesterday))
	require.NoError(t, store.AddReminder(ctx, &today))
	require.NoError(t, store.AddReminder(ctx, &nextWeek))

	m := New(store, changes)
	m.Start(ctx)
	t.Cleanup(m.Close)

	snap := m.Snapshot()
	require.Len(t, snap.Reminders, 2)
	for _, r := range snap.Reminders {
		assert.NotEqual(t, "Overdue bill", r.Title)
	}

	// The store itself must be clean too, not just the view.
	direct, err := store.GetReminders(ctx)
	require.NoError(t, err)
	require.Len(t, direct, 2)
}

func TestReminderGCOnLaterRefresh(t *testing.T) {
	ctx := context.Background()
	m, _ := startManager(t)

	// Adding a reminder that is already past triggers a refresh whose GC
	// removes it again.
	past := testutil.Reminder("Stale", 10, time.Now().AddDate(0, 0, -2))
	require.NoError(t, m.AddReminder(ctx, &past))

	require.Eventually(t, func() bool {
		snap := m.Snapshot()
		for _, r := range snap.Reminders {
			if r.Title == "Stale" {
				return false
			}
		}
		return !m.Loading()
	}, waitFor, tick)
}

func TestFailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()

	changes := bus.New()
	store := testutil.SetupStoreWithBus(t, changes)

	e := testutil.Expense("Kept", 10, time.Now(), 1)
	require.NoError(t, store.AddExpense(ctx, &e))

	m := New(store, changes)
	m.Start(ctx)
	t.Cleanup(m.Close)

	require.Len(t, m.Snapshot().Expenses, 1)

	// Make every subsequent read fail, then poke the bus.
	require.NoError(t, store.Close())
	changes.Publish()

	require.Eventually(t, func() bool {
		return !m.Loading()
	}, waitFor, tick)

	snap := m.Snapshot()
	require.Len(t, snap.Expenses, 1, "stale data shown, not a blank screen")
	assert.Equal(t, "Kept", snap.Expenses[0].Title)
}

func TestBulkDeleteConverges(t *testing.T) {
	ctx := context.Background()
	m, _ := startManager(t)

	var ids []int64
	batch := []model.Expense{
		testutil.Expense("a", 1, time.Now(), 1),
		testutil.Expense("b", 2, time.Now(), 1),
		testutil.Expense("c", 3, time.Now(), 1),
	}
	require.NoError(t, m.AddExpenses(ctx, batch))
	for _, e := range batch {
		ids = append(ids, e.ID)
	}

	require.Eventually(t, func() bool {
		return len(m.Snapshot().Expenses) == 3
	}, waitFor, tick)

	require.NoError(t, m.DeleteExpenses(ctx, ids[:2]))

	require.Eventually(t, func() bool {
		snap := m.Snapshot()
		return len(snap.Expenses) == 1 && snap.Expenses[0].Title == "c"
	}, waitFor, tick)
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, _ := startManager(t)

	s := model.Settings{MonthlyBudget: decimal.NewFromInt(500)}
	require.NoError(t, m.SaveSettings(ctx, &s))

	require.Eventually(t, func() bool {
		return m.Snapshot().Settings.MonthlyBudget.Equal(decimal.NewFromInt(500))
	}, waitFor, tick)
}
