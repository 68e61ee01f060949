package ports

import (
	"context"
	"time"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/events"
)

// GraphStore is the authoritative knowledge graph. Writes are atomic per
// call; Snapshot returns a consistent read-only view for analytics.
type GraphStore interface {
	// UpsertEntity creates or updates an entity and reports whether it was created.
	UpsertEntity(ctx context.Context, e *entities.Entity) (bool, error)

	// DeleteEntity removes an entity and returns the relationships removed with it.
	DeleteEntity(ctx context.Context, id string) ([]entities.RelationshipKey, error)

	// UpsertRelationship creates an edge or updates the existing triple in place.
	UpsertRelationship(ctx context.Context, r *entities.Relationship) (*entities.Relationship, bool, error)

	// DeleteRelationship removes one edge by identity.
	DeleteRelationship(ctx context.Context, key entities.RelationshipKey) error

	// Snapshot returns the current state.
	Snapshot(ctx context.Context) (*aggregates.Snapshot, error)
}

// GraphState is the persisted form of the graph.
type GraphState struct {
	Version       uint64
	Entities      []*entities.Entity
	Relationships []*entities.Relationship
}

// GraphRepository persists graph changes durably. The store enforces the
// graph invariants; repositories only record accepted changes.
type GraphRepository interface {
	// Load reads the full persisted graph.
	Load(ctx context.Context) (*GraphState, error)

	// SaveEntity writes an entity and the new store version.
	SaveEntity(ctx context.Context, e *entities.Entity, version uint64) error

	// DeleteEntity removes an entity together with the given relationships.
	DeleteEntity(ctx context.Context, id string, removed []entities.RelationshipKey, version uint64) error

	// SaveRelationship writes a relationship and the new store version.
	SaveRelationship(ctx context.Context, r *entities.Relationship, version uint64) error

	// DeleteRelationship removes a relationship.
	DeleteRelationship(ctx context.Context, key entities.RelationshipKey, version uint64) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus defines the interface for publishing domain events
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error

	// Unsubscribe removes a handler
	Unsubscribe(eventType string, handler EventHandler) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// Cache stores encoded analytics results.
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with a TTL; zero means no expiry
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error
}

// EmbeddingProvider turns entity text into a vector.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// RelevanceProvider supplies per-entity relevance multipliers used only to
// order results for presentation. Missing ids default to 1.
type RelevanceProvider interface {
	Relevance(ctx context.Context, entityIDs []string) (map[string]float64, error)
}

// MetricsRecorder receives timings for dispatched commands and queries.
type MetricsRecorder interface {
	RecordCommand(name string, duration time.Duration, err error)
	RecordQuery(name string, duration time.Duration, err error)
	RecordTruncation(operation string)
}
