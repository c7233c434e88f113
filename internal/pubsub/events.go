// Package pubsub fans events out to subscribers without blocking the
// publisher. The interpreter publishes mode changes and register writes
// on it; the logger publishes every written line.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened.
type EventType string

const (
	LoggedEvent          EventType = "logged"
	ModeChangedEvent     EventType = "mode_changed"
	RegisterWrittenEvent EventType = "register_written"
	SearchUpdatedEvent   EventType = "search_updated"
)

// Event carries a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out subscription channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher accepts events.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
