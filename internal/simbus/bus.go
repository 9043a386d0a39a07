// Package simbus implements the synchronous, single-threaded publish/
// subscribe registry that is the determinism substrate of a run: call
// ordering is entirely decided by the publishing site and subscription
// order, never by a scheduler.
package simbus

import (
	"fmt"

	"mmrl/internal/events"
)

// Handler reacts to a published event. A returned error propagates
// synchronously out of Publish — the bus never swallows it.
type Handler func(events.Event) error

// Subscription is the handle returned by Subscribe. It is not required for
// normal operation (the bus has no unsubscribe operation in this spec) but
// identifies the registration for diagnostics.
type Subscription struct {
	EventType events.Type
	index     int
}

// Bus is a synchronous typed pub/sub registry. It has no internal queue or
// scheduler; Publish invokes every handler registered for the event's type,
// in subscription order, on the caller's goroutine.
type Bus struct {
	handlers map[events.Type][]Handler
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{handlers: make(map[events.Type][]Handler)}
}

// Subscribe appends handler to the list for eventType. eventType must be
// non-empty.
func (b *Bus) Subscribe(eventType events.Type, handler Handler) Subscription {
	if eventType == "" {
		panic("simbus: empty event type is invalid")
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return Subscription{EventType: eventType, index: len(b.handlers[eventType]) - 1}
}

// Publish invokes every handler registered for event.EventType, in
// subscription order, synchronously on the caller's goroutine. Re-entrant
// publishes (a handler publishing another event) are permitted and run to
// completion depth-first before this call returns. The first handler error
// aborts the remaining handlers for this publish and is returned wrapped
// with the event type (errors.Is still matches the original error).
func (b *Bus) Publish(event events.Event) error {
	for _, h := range b.handlers[event.EventType] {
		if err := h(event); err != nil {
			return fmt.Errorf("simbus: handler for %s: %w", event.EventType, err)
		}
	}
	return nil
}

// HandlerCount returns the number of handlers registered for eventType,
// for tests and diagnostics.
func (b *Bus) HandlerCount(eventType events.Type) int {
	return len(b.handlers[eventType])
}
