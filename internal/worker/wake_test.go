package worker

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/hively/hively/internal/model"
	"github.com/hively/hively/internal/notify"
	"github.com/hively/hively/internal/storage"
	"github.com/hively/hively/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReminderDB(t *testing.T, reminders ...model.Reminder) StoreOpener {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "hively.db")
	store, err := storage.Open(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	for i := range reminders {
		require.NoError(t, store.AddReminder(context.Background(), &reminders[i]))
	}
	require.NoError(t, store.Close())

	return func() (*storage.Store, error) {
		return storage.Open(dbPath, nil)
	}
}

func TestReminderWake(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	clock := func() time.Time { return now }

	t.Run("notifies reminders due today and tomorrow", func(t *testing.T) {
		opener := seedReminderDB(t,
			testutil.Reminder("Rent", 1200, now),
			testutil.Reminder("Internet", 49.99, now.AddDate(0, 0, 1)),
			testutil.Reminder("Insurance", 300, now.AddDate(0, 0, 7)),
		)
		sender := &notify.FakeSender{}
		manager := notify.NewManager(notify.PermissionGranted, sender)
		waker := NewReminderWaker(opener, manager, WithWakeClock(clock))

		require.NoError(t, waker.Wake(context.Background()))

		require.Len(t, sender.Sent, 2)
		assert.Equal(t, "Upcoming Expense Reminder", sender.Sent[0].Title)
		assert.Contains(t, sender.Sent[0].Body, "Rent (1200.00) is due today")
		assert.Contains(t, sender.Sent[1].Body, "Internet (49.99) is due tomorrow")
		for _, n := range sender.Sent {
			assert.Equal(t, "/reminders", n.URL)
			assert.Equal(t, "/logo.svg", n.Icon)
		}
	})

	t.Run("repeated wake the same day shows nothing new", func(t *testing.T) {
		opener := seedReminderDB(t, testutil.Reminder("Rent", 1200, now))
		sender := &notify.FakeSender{}
		manager := notify.NewManager(notify.PermissionGranted, sender)
		waker := NewReminderWaker(opener, manager, WithWakeClock(clock))

		require.NoError(t, waker.Wake(context.Background()))
		require.NoError(t, waker.Wake(context.Background()))

		assert.Len(t, sender.Sent, 1)
	})

	t.Run("next day gets a fresh notification", func(t *testing.T) {
		day := now
		opener := seedReminderDB(t, testutil.Reminder("Rent", 1200, now.AddDate(0, 0, 1)))
		sender := &notify.FakeSender{}
		manager := notify.NewManager(notify.PermissionGranted, sender)
		waker := NewReminderWaker(opener, manager, WithWakeClock(func() time.Time { return day }))

		require.NoError(t, waker.Wake(context.Background()))
		day = day.AddDate(0, 0, 1)
		require.NoError(t, waker.Wake(context.Background()))

		require.Len(t, sender.Sent, 2)
		assert.Contains(t, sender.Sent[0].Body, "due tomorrow")
		assert.Contains(t, sender.Sent[1].Body, "due today")
		assert.NotEqual(t, sender.Sent[0].Tag, sender.Sent[1].Tag)
	})

	t.Run("store open failure aborts the cycle only", func(t *testing.T) {
		calls := 0
		opener := func() (*storage.Store, error) {
			calls++
			if calls == 1 {
				return nil, fmt.Errorf("database locked")
			}
			return seedReminderDB(t, testutil.Reminder("Rent", 1200, now))()
		}
		sender := &notify.FakeSender{}
		manager := notify.NewManager(notify.PermissionGranted, sender)
		waker := NewReminderWaker(opener, manager, WithWakeClock(clock))

		require.Error(t, waker.Wake(context.Background()))
		assert.Empty(t, sender.Sent)

		require.NoError(t, waker.Wake(context.Background()))
		assert.Len(t, sender.Sent, 1)
	})

	t.Run("denied permission shows nothing", func(t *testing.T) {
		opener := seedReminderDB(t, testutil.Reminder("Rent", 1200, now))
		sender := &notify.FakeSender{}
		manager := notify.NewManager(notify.PermissionDenied, sender)
		waker := NewReminderWaker(opener, manager, WithWakeClock(clock))

		require.NoError(t, waker.Wake(context.Background()))
		assert.Empty(t, sender.Sent)
	})

	t.Run("interval never drops below the floor", func(t *testing.T) {
		opener := seedReminderDB(t)
		manager := notify.NewManager(notify.PermissionGranted, &notify.FakeSender{})
		waker := NewReminderWaker(opener, manager, WithWakeInterval(time.Minute))

		assert.Equal(t, MinWakeInterval, waker.interval)
	})
}
