package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
)

// SourceGraphEngine identifies events emitted by this service.
const SourceGraphEngine = "prsnl.knowledge-graph"

const (
	TypeEntityUpserted       = "entity.upserted"
	TypeEntityDeleted        = "entity.deleted"
	TypeRelationshipUpserted = "relationship.upserted"
	TypeRelationshipDeleted  = "relationship.deleted"
)

// DomainEvent is the base interface for all domain events
type DomainEvent interface {
	GetEventID() string
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() uint64
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventID     string    `json:"event_id"`
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     uint64    `json:"version"`
}

func (e BaseEvent) GetEventID() string      { return e.EventID }
func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() uint64      { return e.Version }

func newBase(aggregateID, eventType string, version uint64) BaseEvent {
	return BaseEvent{
		EventID:     uuid.NewString(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   time.Now().UTC(),
		Version:     version,
	}
}

// EntityUpserted is raised when an entity is created or updated.
type EntityUpserted struct {
	BaseEvent
	Entity  entities.Entity `json:"entity"`
	Created bool            `json:"created"`
}

// NewEntityUpserted creates an EntityUpserted event.
func NewEntityUpserted(e *entities.Entity, created bool, version uint64) EntityUpserted {
	c := e.Clone()
	// Embeddings stay out of the event payload
	c.Embedding = nil
	return EntityUpserted{
		BaseEvent: newBase(e.ID, TypeEntityUpserted, version),
		Entity:    *c,
		Created:   created,
	}
}

// EntityDeleted is raised when an entity and its relationships are removed.
type EntityDeleted struct {
	BaseEvent
	EntityID             string                     `json:"entity_id"`
	RemovedRelationships []entities.RelationshipKey `json:"removed_relationships"`
}

// NewEntityDeleted creates an EntityDeleted event.
func NewEntityDeleted(entityID string, removed []entities.RelationshipKey, version uint64) EntityDeleted {
	return EntityDeleted{
		BaseEvent:            newBase(entityID, TypeEntityDeleted, version),
		EntityID:             entityID,
		RemovedRelationships: removed,
	}
}

// RelationshipUpserted is raised when an edge is created or its mutable fields change.
type RelationshipUpserted struct {
	BaseEvent
	Relationship entities.Relationship `json:"relationship"`
	Created      bool                  `json:"created"`
}

// NewRelationshipUpserted creates a RelationshipUpserted event.
func NewRelationshipUpserted(r *entities.Relationship, created bool, version uint64) RelationshipUpserted {
	return RelationshipUpserted{
		BaseEvent:    newBase(r.Key().String(), TypeRelationshipUpserted, version),
		Relationship: *r,
		Created:      created,
	}
}

// RelationshipDeleted is raised when an edge is removed explicitly.
type RelationshipDeleted struct {
	BaseEvent
	Key entities.RelationshipKey `json:"key"`
}

// NewRelationshipDeleted creates a RelationshipDeleted event.
func NewRelationshipDeleted(key entities.RelationshipKey, version uint64) RelationshipDeleted {
	return RelationshipDeleted{
		BaseEvent: newBase(key.String(), TypeRelationshipDeleted, version),
		Key:       key,
	}
}
