package realtime

import (
	"context"
	"sync"
)

// Event names pushed to connected clients.
const (
	EventReservationNew      = "reservation:new"
	EventReservationsChanged = "reservations:changed"
	EventHappyUpdate         = "happy:update"
)

type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Publisher delivers an event to every current listener. Delivery is
// at-most-once with no ordering guarantee between listeners.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Hub fans events out to in-process subscribers. A subscriber whose buffer is
// full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	buffer int
	closed bool
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[chan Event]struct{}), buffer: buffer}
}

// Subscribe registers a listener. The returned cancel func must be called
// once the listener goes away; it closes the channel. After Close the
// returned channel is already closed.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() { h.remove(ch) }
}

func (h *Hub) remove(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Close disconnects every listener. Publishing afterwards is a no-op.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
