// Package snapshot maintains the canonical in-memory read view of the four
// collections. It subscribes to the change bus and performs a full reload on
// every notification, so every consumer converges to the same state after any
// mutation, regardless of which consumer made it.
package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hively/hively/internal/common"
	"github.com/hively/hively/internal/model"
	"github.com/hively/hively/internal/storage"
)

// Snapshot is the full read view handed to consumers. Expenses are ordered
// newest first; reminders have already been garbage-collected.
type Snapshot struct {
	Settings   model.Settings
	Expenses   []model.Expense
	Categories []model.Category
	Reminders  []model.Reminder
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for reminder garbage collection.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager owns the snapshot and the refresh loop. Mutating methods are thin
// pass-throughs to the store; they never touch the snapshot directly and rely
// on the change-notification round trip instead.
type Manager struct {
	store       *storage.Store
	now         func() time.Time
	refreshCh   chan struct{}
	done        chan struct{}
	unsubscribe func()
	snap        Snapshot
	mu          sync.RWMutex
	loading     bool
	started     bool
}

// New creates a Manager over the given store. The store must publish to the
// bus passed here, otherwise mutations will never be observed.
func New(store *storage.Store, changes Publisher, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		now:       time.Now,
		refreshCh: make(chan struct{}, 1),
		done:      make(chan struct{}),
		loading:   true,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.unsubscribe = changes.Subscribe(m.requestRefresh)
	return m
}

// Publisher is the subset of the change bus the manager needs.
type Publisher interface {
	Subscribe(fn func()) func()
}

// Start performs the initial load and begins servicing change notifications.
// Notifications that arrive before the initial load completes are dropped:
// the initial load already reflects any state they would announce.
func (m *Manager) Start(ctx context.Context) {
	m.refresh(ctx)

	m.mu.Lock()
	m.started = true
	m.mu.Unlock()

	go m.loop(ctx)
}

// Close stops the refresh loop and detaches from the bus.
func (m *Manager) Close() {
	m.unsubscribe()
	close(m.done)
}

// Snapshot returns the current read view. The returned value shares backing
// slices with the manager's copy; callers must treat it as read-only.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Loading reports whether a refresh cycle is in flight.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// requestRefresh enqueues a refresh, coalescing bursts. Refreshes requested
// before Start's initial load has finished are no-ops.
func (m *Manager) requestRefresh() {
	m.mu.RLock()
	started := m.started
	m.mu.RUnlock()
	if !started {
		return
	}

	select {
	case m.refreshCh <- struct{}{}:
	default:
	}
}

func (m *Manager) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-m.refreshCh:
			m.refresh(ctx)
		}
	}
}

// refresh performs one full cycle: four parallel reads, reminder garbage
// collection with a single re-read, then an atomic snapshot swap. Any read
// failure aborts the cycle and keeps the previous snapshot available.
func (m *Manager) refresh(ctx context.Context) {
	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	var (
		wg         sync.WaitGroup
		expenses   []model.Expense
		categories []model.Category
		settings   model.Settings
		reminders  []model.Reminder
		errs       [4]error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		expenses, errs[0] = m.store.GetExpenses(ctx)
	}()
	go func() {
		defer wg.Done()
		categories, errs[1] = m.store.GetCategories(ctx)
	}()
	go func() {
		defer wg.Done()
		settings, errs[2] = m.store.GetSettings(ctx)
	}()
	go func() {
		defer wg.Done()
		reminders, errs[3] = m.store.GetReminders(ctx)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			common.LogError(err, "refresh aborted, keeping previous snapshot", nil)
			return
		}
	}

	cleaned, err := m.collectPastReminders(ctx, reminders)
	if err != nil {
		common.LogError(err, "refresh aborted, keeping previous snapshot", nil)
		return
	}

	// Newest first for display; the store returns date-index order.
	reversed := make([]model.Expense, len(expenses))
	for i, e := range expenses {
		reversed[len(expenses)-1-i] = e
	}

	m.mu.Lock()
	m.snap = Snapshot{
		Expenses:   reversed,
		Categories: categories,
		Settings:   settings,
		Reminders:  cleaned,
	}
	m.mu.Unlock()
}

// collectPastReminders deletes reminders whose due date is strictly before
// today and re-reads the collection once to pick up the post-delete state.
// Reminders due today or later are never touched.
func (m *Manager) collectPastReminders(ctx context.Context, reminders []model.Reminder) ([]model.Reminder, error) {
	now := m.now()

	var pastIDs []int64
	for i := range reminders {
		if reminders[i].Past(now) {
			pastIDs = append(pastIDs, reminders[i].ID)
		}
	}

	if len(pastIDs) == 0 {
		return reminders, nil
	}

	slog.Debug("garbage collecting past reminders", "count", len(pastIDs))
	if err := m.store.DeleteReminders(ctx, pastIDs); err != nil {
		return nil, err
	}

	return m.store.GetReminders(ctx)
}
