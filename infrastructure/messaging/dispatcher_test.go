package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/domain/events"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/messaging/memory"
	"github.com/pranavrajput12/PRSNL-sub011/internal/testutil/mocks"
)

type failingHandler struct{}

func (failingHandler) Handle(context.Context, events.DomainEvent) error { return errors.New("boom") }
func (failingHandler) CanHandle(string) bool                           { return true }

func TestDispatcher_LocalFailureDoesNotBlockExternal(t *testing.T) {
	bus := memory.NewEventBus(zap.NewNop())
	_ = bus.Subscribe(memory.AllEvents, failingHandler{})

	external := new(mocks.MockEventPublisher)
	external.On("PublishBatch", mock.Anything, mock.Anything).Return(nil)

	d := NewDispatcher(external, bus, zap.NewNop())
	err := d.Publish(context.Background(), events.NewEntityDeleted("a", nil, 1))

	assert.NoError(t, err)
	external.AssertExpectations(t)
}

func TestDispatcher_ExternalErrorIsReturned(t *testing.T) {
	external := new(mocks.MockEventPublisher)
	external.On("PublishBatch", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	d := NewDispatcher(external, memory.NewEventBus(zap.NewNop()), zap.NewNop())
	assert.Error(t, d.Publish(context.Background(), events.NewEntityDeleted("a", nil, 1)))
}

func TestDispatcher_LocalOnly(t *testing.T) {
	d := NewDispatcher(nil, memory.NewEventBus(zap.NewNop()), zap.NewNop())
	assert.NoError(t, d.Publish(context.Background(), events.NewEntityDeleted("a", nil, 1)))
}
