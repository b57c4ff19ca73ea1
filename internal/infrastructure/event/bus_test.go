package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/himfirm/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newTestEvent(eventType string) shared.DomainEvent {
	evt := shared.NewBaseDomainEvent(eventType, "Invoice", uuid.New())
	return &evt
}

func newStartedBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	return bus
}

func TestPublishDispatchesToSubscribedHandler(t *testing.T) {
	bus := newStartedBus(t)
	handler := &recordingHandler{types: []string{"invoice.paid"}}
	bus.Subscribe(handler)

	evt := newTestEvent("invoice.paid")
	require.NoError(t, bus.Publish(context.Background(), evt))

	require.Len(t, handler.received, 1)
	assert.Equal(t, evt.EventID(), handler.received[0].EventID())
}

func TestPublishSkipsUnrelatedEventTypes(t *testing.T) {
	bus := newStartedBus(t)
	handler := &recordingHandler{types: []string{"invoice.paid"}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("payment.bounced")))
	assert.Empty(t, handler.received)
}

func TestPublishWildcardHandlerReceivesEverything(t *testing.T) {
	bus := newStartedBus(t)
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("invoice.paid"),
		newTestEvent("payment.bounced"),
	))
	assert.Len(t, handler.received, 2)
}

func TestPublishHandlerErrorDoesNotPropagate(t *testing.T) {
	bus := newStartedBus(t)
	failing := &recordingHandler{types: []string{"expense.paid"}, err: errors.New("boom")}
	healthy := &recordingHandler{types: []string{"expense.paid"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("expense.paid")))
	assert.Len(t, healthy.received, 1)
}

func TestPublishHandlerPanicIsRecovered(t *testing.T) {
	bus := newStartedBus(t)
	bus.Subscribe(&recordingHandler{types: []string{"expense.paid"}, panics: true})

	require.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("expense.paid"))
	})
}

func TestPublishDropsEventsWhenStopped(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"invoice.paid"}}
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("invoice.paid")))
	assert.Empty(t, handler.received)
}

func TestUnsubscribe(t *testing.T) {
	bus := newStartedBus(t)
	handler := &recordingHandler{types: []string{"invoice.paid"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("invoice.paid")))
	assert.Empty(t, handler.received)
}

func TestStop(t *testing.T) {
	bus := newStartedBus(t)
	require.NoError(t, bus.Stop(context.Background()))
}
