// Package notify delivers local reminder notifications through a pluggable
// sender, gated by a browser-style permission state.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/hively/hively/internal/common"
)

// Permission mirrors the three-state notification permission model.
type Permission string

const (
	// PermissionDefault means the user has not been asked yet.
	PermissionDefault Permission = "default"
	// PermissionGranted allows notifications.
	PermissionGranted Permission = "granted"
	// PermissionDenied is terminal until the user changes it outside the
	// application.
	PermissionDenied Permission = "denied"
)

// Notification is the payload handed to the sender.
type Notification struct {
	Title string
	Body  string
	Icon  string
	Tag   string
	URL   string
}

// Sender displays a notification. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Manager gates and deduplicates notifications. Notifications sharing a tag
// are shown at most once; re-triggering an already-shown tag is a silent
// no-op rather than a duplicate.
type Manager struct {
	sender     Sender
	shown      map[string]Notification
	permission Permission
	mu         sync.Mutex
}

// NewManager creates a manager with the given starting permission.
func NewManager(permission Permission, sender Sender) *Manager {
	return &Manager{
		permission: permission,
		sender:     sender,
		shown:      make(map[string]Notification),
	}
}

// Permission returns the current permission state.
func (m *Manager) Permission() Permission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.permission
}

// RequestPermission asks the user only when the state is still default.
// Granted and denied are both sticky: the prompt must never repeat.
func (m *Manager) RequestPermission(ask func() Permission) Permission {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.permission != PermissionDefault {
		return m.permission
	}
	m.permission = ask()
	return m.permission
}

// Show displays a notification if permission is granted and its tag has not
// been shown before.
func (m *Manager) Show(ctx context.Context, n Notification) error {
	m.mu.Lock()
	if m.permission != PermissionGranted {
		m.mu.Unlock()
		return common.ErrPermissionDenied
	}
	if _, dup := m.shown[n.Tag]; dup {
		m.mu.Unlock()
		return nil
	}
	m.shown[n.Tag] = n
	m.mu.Unlock()

	if err := m.sender.Send(ctx, n); err != nil {
		// Allow a retry on the next trigger; the send never happened.
		m.mu.Lock()
		delete(m.shown, n.Tag)
		m.mu.Unlock()
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// Shown returns the visible notification for a tag, if any.
func (m *Manager) Shown(tag string) (Notification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.shown[tag]
	return n, ok
}

// Close dismisses a visible notification by tag.
func (m *Manager) Close(tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.shown, tag)
}
