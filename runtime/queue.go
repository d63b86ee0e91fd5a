package runtime

import (
	"chirp-hub/domain/event"
	"chirp-hub/errors"
	"context"
	"sync"
)

// EventQueue is the single-consumer queue between committed state changes and the dispatcher.
// Publish blocks while the queue is full: events are never dropped.
type EventQueue struct {
	events chan event.DomainEvent
	done   chan struct{}
	once   sync.Once
}

func NewEventQueue(size int) *EventQueue {
	return &EventQueue{
		events: make(chan event.DomainEvent, size),
		done:   make(chan struct{}),
	}
}

func (q *EventQueue) Publish(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-q.done:
		return errors.ErrHubStopped
	default:
	}
	select {
	case q.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return errors.ErrHubStopped
	}
}

func (q *EventQueue) Events() <-chan event.DomainEvent {
	return q.events
}

// Close rejects further publishes. The channel itself stays open so a
// publisher racing with Close never panics.
func (q *EventQueue) Close() {
	q.once.Do(func() { close(q.done) })
}

func (q *EventQueue) Len() int {
	return len(q.events)
}

func (q *EventQueue) Cap() int {
	return cap(q.events)
}
