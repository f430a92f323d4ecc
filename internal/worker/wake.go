package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hively/hively/internal/model"
	"github.com/hively/hively/internal/notify"
	"github.com/hively/hively/internal/storage"
)

// WakeTag identifies the periodic reminder check registration.
const WakeTag = "check-reminders"

// MinWakeInterval is the floor on the periodic wake cadence. The platform
// may deliver wakes less often, never more.
const MinWakeInterval = 12 * time.Hour

// StoreOpener opens a fresh store handle for a single wake cycle. The
// waker never shares a handle with the foreground process.
type StoreOpener func() (*storage.Store, error)

// ReminderWaker runs the periodic reminder check: on each wake it opens
// the store, reads reminders due today or tomorrow, and shows one
// notification per reminder per day.
type ReminderWaker struct {
	openStore     StoreOpener
	notifications *notify.Manager
	now           func() time.Time
	interval      time.Duration
}

// WakerOption adjusts a ReminderWaker.
type WakerOption func(*ReminderWaker)

// WithWakeClock overrides the waker's clock. Tests use this to pin "today".
func WithWakeClock(now func() time.Time) WakerOption {
	return func(w *ReminderWaker) {
		w.now = now
	}
}

// WithWakeInterval sets the wake cadence, clamped to MinWakeInterval.
func WithWakeInterval(interval time.Duration) WakerOption {
	return func(w *ReminderWaker) {
		if interval < MinWakeInterval {
			interval = MinWakeInterval
		}
		w.interval = interval
	}
}

func NewReminderWaker(openStore StoreOpener, notifications *notify.Manager, opts ...WakerOption) *ReminderWaker {
	w := &ReminderWaker{
		openStore:     openStore,
		notifications: notifications,
		now:           time.Now,
		interval:      MinWakeInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Wake performs one reminder check cycle. A store that cannot be opened
// aborts this cycle only; the next wake tries again.
func (w *ReminderWaker) Wake(ctx context.Context) error {
	store, err := w.openStore()
	if err != nil {
		return fmt.Errorf("opening store for reminder check: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close reminder store", "error", closeErr)
		}
	}()

	reminders, err := store.GetReminders(ctx)
	if err != nil {
		return fmt.Errorf("reading reminders: %w", err)
	}

	now := w.now()
	for _, r := range reminders {
		if !r.DueToday(now) && !r.DueTomorrow(now) {
			continue
		}
		if err := w.notify(ctx, r, now); err != nil {
			slog.Warn("failed to show reminder notification", "reminder_id", r.ID, "error", err)
		}
	}
	return nil
}

// notify shows the notification for one reminder. The tag pins each
// reminder to one notification per calendar day; a repeated wake the same
// day is a silent no-op inside the notification manager.
func (w *ReminderWaker) notify(ctx context.Context, r model.Reminder, now time.Time) error {
	var when string
	if r.DueToday(now) {
		when = "today"
	} else {
		when = "tomorrow"
	}

	return w.notifications.Show(ctx, notify.Notification{
		Title: "Upcoming Expense Reminder",
		Body:  fmt.Sprintf("%s (%s) is due %s", r.Title, r.Amount.StringFixed(2), when),
		Icon:  "/logo.svg",
		Tag:   fmt.Sprintf("reminder-%d-%s", r.ID, now.Format("2006-01-02")),
		URL:   "/reminders",
	})
}

// Run wakes immediately, then on every interval tick until the context is
// cancelled. Individual cycle failures are logged and do not stop the loop.
func (w *ReminderWaker) Run(ctx context.Context) {
	slog.Info("periodic reminder check registered", "tag", WakeTag, "interval", w.interval)

	if err := w.Wake(ctx); err != nil {
		slog.Warn("reminder check failed", "tag", WakeTag, "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Wake(ctx); err != nil {
				slog.Warn("reminder check failed", "tag", WakeTag, "error", err)
			}
		}
	}
}
