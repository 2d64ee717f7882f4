// Package event provides a small fan-out pub/sub bus used to notify
// map clients about filter commits and layer-registry changes.
package event

import "sync"

// Action describes what happened to a resource.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionRemoved Action = "removed"
)

// Event is a filter or layer mutation notification.
type Event struct {
	Resource string         // e.g. "maplayers", "filter", "geometries"
	Action   Action
	ID       string         // layer kind, mode, or geometry id
	Detail   map[string]any // optional extra payload for the SSE stream
}

// Bus fans events out to subscribers without blocking publishers.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

// Publish delivers e to every subscriber. Slow subscribers are skipped.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe returns a buffered channel receiving future events.
func (b *Bus) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}
