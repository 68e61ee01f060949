package messaging

import (
	"context"

	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	"github.com/pranavrajput12/PRSNL-sub011/domain/events"
)

// Dispatcher publishes events to an external broker and also hands them to
// the local bus, so in-process projections run whichever broker is
// configured. Local handler failures are logged and never reported.
type Dispatcher struct {
	external ports.EventPublisher
	local    ports.EventBus
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. external may be nil when the local bus
// is the only destination.
func NewDispatcher(external ports.EventPublisher, local ports.EventBus, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{external: external, local: local, logger: logger}
}

var _ ports.EventPublisher = (*Dispatcher)(nil)

// Publish sends a single event
func (d *Dispatcher) Publish(ctx context.Context, event events.DomainEvent) error {
	return d.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch sends events to both destinations
func (d *Dispatcher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}

	if d.local != nil {
		if err := d.local.PublishBatch(ctx, evts); err != nil {
			d.logger.Warn("Failed to dispatch events locally",
				zap.Int("count", len(evts)),
				zap.Error(err),
			)
		}
	}

	if d.external == nil {
		return nil
	}
	return d.external.PublishBatch(ctx, evts)
}
