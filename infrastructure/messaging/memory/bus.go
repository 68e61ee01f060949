package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	"github.com/pranavrajput12/PRSNL-sub011/domain/events"
)

// AllEvents subscribes a handler to every event type.
const AllEvents = "*"

// EventBus delivers events synchronously to in-process handlers.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]ports.EventHandler
	logger   *zap.Logger
}

// NewEventBus creates an empty bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]ports.EventHandler),
		logger:   logger,
	}
}

var _ ports.EventBus = (*EventBus)(nil)

// Subscribe registers a handler for an event type
func (b *EventBus) Subscribe(eventType string, handler ports.EventHandler) error {
	if handler == nil {
		return fmt.Errorf("nil handler for %s", eventType)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// Unsubscribe removes a handler
func (b *EventBus) Unsubscribe(eventType string, handler ports.EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.handlers[eventType]
	for i, h := range list {
		if h == handler {
			b.handlers[eventType] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("handler not subscribed to %s", eventType)
}

// Publish sends a single event
func (b *EventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	return b.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch delivers events in order. A failing handler does not stop
// delivery to the others; the failures are reported together.
func (b *EventBus) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}

	start := time.Now()
	failed := 0
	for _, event := range evts {
		for _, handler := range b.handlersFor(event.GetEventType()) {
			if !handler.CanHandle(event.GetEventType()) {
				continue
			}
			if err := handler.Handle(ctx, event); err != nil {
				failed++
				b.logger.Warn("Event handler failed",
					zap.String("eventType", event.GetEventType()),
					zap.String("aggregateID", event.GetAggregateID()),
					zap.Error(err),
				)
			}
		}
	}

	b.logger.Debug("Events dispatched locally",
		zap.Int("count", len(evts)),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)),
	)
	if failed > 0 {
		return fmt.Errorf("%d event handler invocations failed", failed)
	}
	return nil
}

func (b *EventBus) handlersFor(eventType string) []ports.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]ports.EventHandler, 0, len(b.handlers[eventType])+len(b.handlers[AllEvents]))
	out = append(out, b.handlers[eventType]...)
	return append(out, b.handlers[AllEvents]...)
}
