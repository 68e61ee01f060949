package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	"github.com/pranavrajput12/PRSNL-sub011/domain/events"
)

// MessageWriter is the part of kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes graph events to a Kafka topic keyed by aggregate id, so
// changes to one entity or relationship stay ordered within a partition.
type Publisher struct {
	writer MessageWriter
	topic  string
	logger *zap.Logger
}

// NewWriter builds the kafka-go writer for the events topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	})
}

// NewPublisher wraps a writer
func NewPublisher(writer MessageWriter, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{writer: writer, topic: topic, logger: logger}
}

var _ ports.EventPublisher = (*Publisher)(nil)

// Publish sends a single event
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch writes all events in one call
func (p *Publisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(domainEvents))
	for _, event := range domainEvents {
		value, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal %s event: %w", event.GetEventType(), err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(event.GetAggregateID()),
			Value: value,
			Time:  event.GetTimestamp(),
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(event.GetEventType())},
				{Key: "source", Value: []byte(events.SourceGraphEngine)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	p.logger.Debug("Events written to Kafka",
		zap.String("topic", p.topic),
		zap.Int("count", len(msgs)),
	)
	return nil
}

// Close flushes and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
