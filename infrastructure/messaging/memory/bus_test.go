package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/domain/events"
	"github.com/pranavrajput12/PRSNL-sub011/internal/testutil"
)

type recordingHandler struct {
	types []string
	seen  []string
	err   error
}

func (h *recordingHandler) Handle(ctx context.Context, event events.DomainEvent) error {
	h.seen = append(h.seen, event.GetEventType())
	return h.err
}

func (h *recordingHandler) CanHandle(eventType string) bool {
	for _, t := range h.types {
		if t == eventType || t == AllEvents {
			return true
		}
	}
	return false
}

func TestEventBus_Dispatch(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	entityOnly := &recordingHandler{types: []string{events.TypeEntityDeleted}}
	everything := &recordingHandler{types: []string{AllEvents}}
	require.NoError(t, bus.Subscribe(events.TypeEntityDeleted, entityOnly))
	require.NoError(t, bus.Subscribe(AllEvents, everything))

	upserted := events.NewEntityUpserted(testutil.NewEntityBuilder("a").Build(), true, 1)
	deleted := events.NewEntityDeleted("a", nil, 2)
	require.NoError(t, bus.PublishBatch(context.Background(), []events.DomainEvent{upserted, deleted}))

	assert.Equal(t, []string{events.TypeEntityDeleted}, entityOnly.seen)
	assert.Equal(t, []string{events.TypeEntityUpserted, events.TypeEntityDeleted}, everything.seen)
}

func TestEventBus_FailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	failing := &recordingHandler{types: []string{AllEvents}, err: errors.New("neo4j down")}
	healthy := &recordingHandler{types: []string{AllEvents}}
	require.NoError(t, bus.Subscribe(AllEvents, failing))
	require.NoError(t, bus.Subscribe(AllEvents, healthy))

	err := bus.Publish(context.Background(), events.NewEntityDeleted("a", nil, 1))
	assert.Error(t, err)
	assert.Len(t, healthy.seen, 1)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{AllEvents}}
	require.NoError(t, bus.Subscribe(AllEvents, h))
	require.NoError(t, bus.Unsubscribe(AllEvents, h))
	assert.Error(t, bus.Unsubscribe(AllEvents, h))

	require.NoError(t, bus.Publish(context.Background(), events.NewEntityDeleted("a", nil, 1)))
	assert.Empty(t, h.seen)
}
