package interfaces

import (
	"context"

	"contestbot/domain/events"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher queues events until the surrounding transaction resolves
type TransactionalEventPublisher interface {
	EventPublisher
	// Flush publishes every queued event; call after commit
	Flush(ctx context.Context) error
	// Discard drops every queued event; call after rollback
	Discard()
}
