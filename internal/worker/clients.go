package worker

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/hively/hively/internal/notify"
)

// Client is an open window or tab controlled by the worker.
type Client interface {
	// Route returns the path the client is currently showing.
	Route() string
	// Focus brings the client to the foreground, optionally navigating it
	// to a new route first.
	Focus(ctx context.Context, route string) error
}

// Opener creates a new client at a route when none exists to focus.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// ExecOpener shells out to the platform opener (xdg-open and friends).
type ExecOpener struct {
	Command string
}

func (o *ExecOpener) Open(ctx context.Context, url string) error {
	command := o.Command
	if command == "" {
		command = "xdg-open"
	}
	if err := exec.CommandContext(ctx, command, url).Run(); err != nil {
		return fmt.Errorf("opening %s: %w", url, err)
	}
	return nil
}

// Registry tracks the worker's known clients.
type Registry struct {
	clients []Client
	mu      sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a client and returns a function that removes it again when
// the window closes.
func (r *Registry) Register(c Client) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients = append(r.clients, c)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, existing := range r.clients {
			if existing == c {
				r.clients = append(r.clients[:i], r.clients[i+1:]...)
				return
			}
		}
	}
}

// List returns a snapshot of the registered clients.
func (r *Registry) List() []Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Client(nil), r.clients...)
}

// FocusOrOpen brings an existing client to the target route, preferring one
// already there, and opens a fresh one only when no client exists at all.
// Exactly one window ends up focused at the route either way.
func (r *Registry) FocusOrOpen(ctx context.Context, opener Opener, origin, route string) error {
	clients := r.List()

	for _, c := range clients {
		if c.Route() == route {
			return c.Focus(ctx, route)
		}
	}
	if len(clients) > 0 {
		return clients[0].Focus(ctx, route)
	}
	if opener == nil {
		return fmt.Errorf("no clients registered and no opener configured")
	}
	return opener.Open(ctx, origin+route)
}

// ClickHandler reacts to a notification activation: dismiss the
// notification, then surface one client at its target route.
type ClickHandler struct {
	notifications *notify.Manager
	registry      *Registry
	opener        Opener
	origin        string
}

func NewClickHandler(notifications *notify.Manager, registry *Registry, opener Opener, origin string) *ClickHandler {
	return &ClickHandler{
		notifications: notifications,
		registry:      registry,
		opener:        opener,
		origin:        origin,
	}
}

// HandleClick processes an activation of the notification with the given
// tag. Unknown tags are ignored; the notification may already be dismissed.
func (h *ClickHandler) HandleClick(ctx context.Context, tag string) error {
	n, ok := h.notifications.Shown(tag)
	if !ok {
		return nil
	}
	h.notifications.Close(tag)

	route := n.URL
	if route == "" {
		route = "/"
	}
	return h.registry.FocusOrOpen(ctx, h.opener, h.origin, route)
}
