package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewhq/backend/internal/domain/events"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()
	var received []interface{}

	bus.Subscribe(events.LeadAssigned, func(_ context.Context, payload interface{}) error {
		received = append(received, payload)
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), events.LeadAssigned, "payload"))
	require.Len(t, received, 1)
	assert.Equal(t, "payload", received[0])
}

func TestPublishPropagatesHandlerError(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe(events.LeadAssigned, func(_ context.Context, _ interface{}) error {
		return errors.New("boom")
	})

	err := bus.Publish(context.Background(), events.LeadAssigned, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestPublishRecoversHandlerPanic(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe(events.LeadAssigned, func(_ context.Context, _ interface{}) error {
		panic("handler bug")
	})

	err := bus.Publish(context.Background(), events.LeadAssigned, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")

	// The bus stays usable after the panic
	delivered := false
	bus.Subscribe(events.ApprovalDecided, func(_ context.Context, _ interface{}) error {
		delivered = true
		return nil
	})
	require.NoError(t, bus.Publish(context.Background(), events.ApprovalDecided, nil))
	assert.True(t, delivered)
}

func TestPublishAsyncSurvivesPanickingHandler(t *testing.T) {
	bus := NewEventBus()
	done := make(chan struct{})

	bus.Subscribe(events.LeadAssigned, func(_ context.Context, _ interface{}) error {
		defer close(done)
		panic("handler bug")
	})

	bus.PublishAsync(events.LeadAssigned, nil)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never ran")
	}
}

func TestClearRemovesHandlers(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	bus.Subscribe(events.LeadAssigned, func(_ context.Context, _ interface{}) error {
		calls++
		return nil
	})

	bus.Clear()
	require.NoError(t, bus.Publish(context.Background(), events.LeadAssigned, nil))
	assert.Zero(t, calls)
}
