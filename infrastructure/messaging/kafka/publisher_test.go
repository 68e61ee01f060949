package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/events"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestPublisher_KeysByAggregate(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w, "prsnl.graph.events", zap.NewNop())

	key := entities.RelationshipKey{SourceID: "a", TargetID: "b", Type: entities.RelationshipExtends}
	err := p.PublishBatch(context.Background(), []events.DomainEvent{
		events.NewEntityDeleted("a", nil, 1),
		events.NewRelationshipDeleted(key, 2),
	})
	require.NoError(t, err)

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "a", string(w.msgs[0].Key))
	assert.Equal(t, key.String(), string(w.msgs[1].Key))
	assert.Equal(t, "event_type", w.msgs[1].Headers[0].Key)
	assert.Equal(t, events.TypeRelationshipDeleted, string(w.msgs[1].Headers[0].Value))
}

func TestPublisher_WriteError(t *testing.T) {
	p := NewPublisher(&fakeWriter{err: errors.New("leader not available")}, "t", zap.NewNop())
	err := p.Publish(context.Background(), events.NewEntityDeleted("a", nil, 1))
	assert.ErrorContains(t, err, "leader not available")
}

func TestPublisher_EmptyBatch(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisher(w, "t", zap.NewNop())
	assert.NoError(t, p.PublishBatch(context.Background(), nil))
	assert.Empty(t, w.msgs)
}
