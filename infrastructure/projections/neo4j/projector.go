package neo4j

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/events"
)

const (
	cypherConstraint = `CREATE CONSTRAINT entity_id IF NOT EXISTS FOR (e:Entity) REQUIRE e.id IS UNIQUE`

	cypherUpsertEntities = `
UNWIND $rows AS row
MERGE (e:Entity {id: row.id})
SET e += row`

	cypherDeleteEntity = `
MATCH (e:Entity {id: $id})
DETACH DELETE e`

	cypherUpsertRelationships = `
UNWIND $rows AS row
MATCH (s:Entity {id: row.source_id})
MATCH (t:Entity {id: row.target_id})
MERGE (s)-[r:RELATES {type: row.type}]->(t)
SET r.confidence = row.confidence,
    r.strength = row.strength,
    r.context = row.context,
    r.origin = row.origin,
    r.synced_at = row.synced_at`

	cypherDeleteRelationship = `
MATCH (:Entity {id: $source_id})-[r:RELATES {type: $type}]->(:Entity {id: $target_id})
DELETE r`
)

// Projector mirrors graph events into Neo4j. The mirror is read-only for
// this service; the graph store stays authoritative.
type Projector struct {
	writer Writer
	logger *zap.Logger
}

// NewProjector creates a projector writing through w
func NewProjector(w Writer, logger *zap.Logger) *Projector {
	return &Projector{writer: w, logger: logger}
}

var _ ports.EventHandler = (*Projector)(nil)

// EnsureSchema creates the uniqueness constraint on entity ids
func (p *Projector) EnsureSchema(ctx context.Context) error {
	return p.writer.Write(ctx, Statement{Cypher: cypherConstraint})
}

// CanHandle reports whether the event changes the mirror
func (p *Projector) CanHandle(eventType string) bool {
	switch eventType {
	case events.TypeEntityUpserted, events.TypeEntityDeleted,
		events.TypeRelationshipUpserted, events.TypeRelationshipDeleted:
		return true
	}
	return false
}

// Handle applies one event
func (p *Projector) Handle(ctx context.Context, event events.DomainEvent) error {
	stmt, err := statementFor(event)
	if err != nil {
		return err
	}
	if err := p.writer.Write(ctx, stmt); err != nil {
		return err
	}
	p.logger.Debug("Projected event to Neo4j",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
	)
	return nil
}

// Resync pushes a whole snapshot, used to seed an empty mirror
func (p *Projector) Resync(ctx context.Context, snap *aggregates.Snapshot) error {
	ents := snap.Entities()
	rows := make([]map[string]any, 0, len(ents))
	for _, e := range ents {
		rows = append(rows, entityRow(e))
	}
	rels := snap.Relationships()
	relRows := make([]map[string]any, 0, len(rels))
	for _, r := range rels {
		relRows = append(relRows, relationshipRow(r))
	}

	stmts := []Statement{{Cypher: cypherUpsertEntities, Params: map[string]any{"rows": rows}}}
	if len(relRows) > 0 {
		stmts = append(stmts, Statement{Cypher: cypherUpsertRelationships, Params: map[string]any{"rows": relRows}})
	}
	if err := p.writer.Write(ctx, stmts...); err != nil {
		return err
	}

	p.logger.Info("Neo4j mirror resynced",
		zap.Uint64("version", snap.Version()),
		zap.Int("entities", len(rows)),
		zap.Int("relationships", len(relRows)),
	)
	return nil
}

func statementFor(event events.DomainEvent) (Statement, error) {
	switch e := event.(type) {
	case events.EntityUpserted:
		return Statement{
			Cypher: cypherUpsertEntities,
			Params: map[string]any{"rows": []map[string]any{entityRow(&e.Entity)}},
		}, nil
	case events.EntityDeleted:
		return Statement{Cypher: cypherDeleteEntity, Params: map[string]any{"id": e.EntityID}}, nil
	case events.RelationshipUpserted:
		return Statement{
			Cypher: cypherUpsertRelationships,
			Params: map[string]any{"rows": []map[string]any{relationshipRow(&e.Relationship)}},
		}, nil
	case events.RelationshipDeleted:
		return Statement{Cypher: cypherDeleteRelationship, Params: map[string]any{
			"source_id": e.Key.SourceID,
			"target_id": e.Key.TargetID,
			"type":      string(e.Key.Type),
		}}, nil
	default:
		return Statement{}, fmt.Errorf("unsupported event %s", event.GetEventType())
	}
}

// entityRow holds only Neo4j property types; embeddings stay out of the mirror.
func entityRow(e *entities.Entity) map[string]any {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":           e.ID,
		"title":        e.Title,
		"content_type": string(e.ContentType),
		"domain":       e.Domain,
		"tags":         tags,
		"importance":   e.Importance,
		"updated_at":   e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func relationshipRow(r *entities.Relationship) map[string]any {
	return map[string]any{
		"source_id":  r.SourceID,
		"target_id":  r.TargetID,
		"type":       string(r.Type),
		"confidence": r.Confidence,
		"strength":   r.Strength,
		"context":    r.Context,
		"origin":     string(r.Origin),
		"synced_at":  time.Now().UTC().Format(time.RFC3339),
	}
}
