// Package events provides in-process pub/sub for domain events.
// Subscribers are best-effort: a failing handler never affects the state
// change that produced the event.
package events

import (
	"sync"
	"time"
)

// Event type names.
const (
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
	ReviewCreated        = "review.created"
)

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   interface{}
	CreatedAt time.Time
}

// Handler reacts to an event.
type Handler func(event Event)

// Bus provides in-process pub/sub for events.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run
// synchronously; the caller decides the concurrency model.
func (b *Bus) Publish(evType string, payload interface{}) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[evType]...)
	b.mu.RUnlock()

	event := Event{Type: evType, Payload: payload, CreatedAt: time.Now()}
	for _, handler := range handlers {
		handler(event)
	}
}
