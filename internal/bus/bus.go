// Package bus provides the process-wide change notification channel that
// decouples the storage layer from snapshot consumers. Notifications carry no
// payload; every subscriber is expected to reload whatever state it needs.
package bus

import "sync"

// Bus is an in-memory publish/subscribe channel. Subscribers receive each
// publish in subscription order. There is no replay: a subscriber registered
// after a publish never sees it.
type Bus struct {
	subscribers map[int]func()
	order       []int
	nextID      int
	mu          sync.Mutex
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subscribers: make(map[int]func())}
}

// Subscribe registers fn and returns a function that removes the
// subscription. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subscribers[id]; !ok {
			return
		}
		delete(b.subscribers, id)
		for i, existing := range b.order {
			if existing == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish notifies every current subscriber, in subscription order. The
// subscriber list is snapshotted under the lock so a callback may subscribe
// or unsubscribe without deadlocking.
func (b *Bus) Publish() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subscribers))
	for _, id := range b.order {
		if fn, ok := b.subscribers[id]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
