package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/crewhq/backend/internal/domain/events"
	"github.com/crewhq/backend/internal/domain/models"
	"github.com/crewhq/backend/internal/domain/ports"
)

// EventType is an alias to the domain type
type EventType = events.EventType

// TransitionEventPayload carries a committed workflow transition.
type TransitionEventPayload struct {
	Instance *models.WorkflowInstance `json:"instance"`
	Event    *models.AuditEvent       `json:"event"`
}

// ApprovalEventPayload carries a decided PTO request.
type ApprovalEventPayload struct {
	Request *models.ApprovalRequest `json:"request"`
}

// ObligationEventPayload carries an overdue compliance obligation.
type ObligationEventPayload struct {
	Obligation *models.ComplianceObligation `json:"obligation"`
}

// LeadEventPayload carries a routed lead.
type LeadEventPayload struct {
	Lead *models.LeadRecord `json:"lead"`
}

// PlatformEvent represents a platform event
type PlatformEvent struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp int64       `json:"timestamp"`
}

// EventHandler is a function that handles an event.
// Using the type from ports to ensure interface compatibility.
type EventHandler = ports.EventHandler

// EventBus manages publish-subscribe event system.
// It implements ports.EventPublisher interface.
type EventBus struct {
	handlers map[EventType][]EventHandler
	mu       sync.RWMutex
}

// Ensure EventBus implements ports.EventPublisher at compile time
var _ ports.EventPublisher = (*EventBus)(nil)

// NewEventBus creates a new EventBus instance
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]EventHandler),
	}
}

// Subscribe registers a handler for a specific event type
func (eb *EventBus) Subscribe(eventType EventType, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
}

// Publish publishes an event to all registered handlers
func (eb *EventBus) Publish(ctx context.Context, eventType EventType, payload interface{}) error {
	eb.mu.RLock()
	handlers := eb.handlers[eventType]
	eb.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	event := PlatformEvent{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	}

	// Execute handlers in sequence
	for _, handler := range handlers {
		if err := eb.invoke(ctx, handler, event.Payload); err != nil {
			return fmt.Errorf("EventBus handler error for %s: %w", eventType, err)
		}
	}

	return nil
}

// invoke runs one handler, converting a panic into an error so a bad
// subscriber cannot take down the publisher's goroutine.
func (eb *EventBus) invoke(ctx context.Context, handler EventHandler, payload interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, payload)
}

// PublishAsync publishes an event asynchronously
func (eb *EventBus) PublishAsync(eventType EventType, payload interface{}) {
	go func() {
		// Use background context for async events as they are decoupled from the request
		if err := eb.Publish(context.Background(), eventType, payload); err != nil {
			log.Printf("EventBus async publish error: %v", err)
		}
	}()
}

// Clear removes all handlers (useful for testing)
func (eb *EventBus) Clear() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers = make(map[EventType][]EventHandler)
}
