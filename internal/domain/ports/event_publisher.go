package ports

import (
	"context"

	"github.com/crewhq/backend/internal/domain/events"
)

// EventHandler handles a published event payload.
type EventHandler func(ctx context.Context, payload interface{}) error

// EventPublisher decouples services that emit events from the bus that
// dispatches them.
type EventPublisher interface {
	Publish(ctx context.Context, eventType events.EventType, payload interface{}) error
	PublishAsync(eventType events.EventType, payload interface{})
}
