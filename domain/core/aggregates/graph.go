package aggregates

import (
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/events"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// Graph is the write-side aggregate of the knowledge graph. It enforces
// referential integrity and triple uniqueness, and records domain events
// for every change. Graph is not safe for concurrent use; stores guard it.
type Graph struct {
	entities      map[string]*entities.Entity
	relationships map[entities.RelationshipKey]*entities.Relationship
	incident      map[string]map[entities.RelationshipKey]struct{}
	version       uint64
	events        []events.DomainEvent
}

// NewGraph creates an empty graph at version 0.
func NewGraph() *Graph {
	return &Graph{
		entities:      make(map[string]*entities.Entity),
		relationships: make(map[entities.RelationshipKey]*entities.Relationship),
		incident:      make(map[string]map[entities.RelationshipKey]struct{}),
	}
}

// ReconstructGraph rebuilds a graph from persisted state. Relationships that
// reference missing entities are skipped.
func ReconstructGraph(version uint64, ents []*entities.Entity, rels []*entities.Relationship) *Graph {
	g := NewGraph()
	g.version = version
	for _, e := range ents {
		g.entities[e.ID] = e.Clone()
	}
	for _, r := range rels {
		if g.entities[r.SourceID] == nil || g.entities[r.TargetID] == nil {
			continue
		}
		g.link(r.Clone())
	}
	return g
}

// Version returns the number of committed mutations.
func (g *Graph) Version() uint64 {
	return g.version
}

// EntityCount returns the number of entities.
func (g *Graph) EntityCount() int {
	return len(g.entities)
}

// HasEntity reports whether the entity exists.
func (g *Graph) HasEntity(id string) bool {
	_, ok := g.entities[id]
	return ok
}

// GetEntity returns a copy of the entity.
func (g *Graph) GetEntity(id string) (*entities.Entity, error) {
	e, ok := g.entities[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("entity " + id)
	}
	return e.Clone(), nil
}

// GetRelationship returns a copy of the relationship with the given identity.
func (g *Graph) GetRelationship(key entities.RelationshipKey) (*entities.Relationship, error) {
	r, ok := g.relationships[key]
	if !ok {
		return nil, apperrors.NewNotFoundError("relationship " + key.String())
	}
	return r.Clone(), nil
}

// UpsertEntity inserts or replaces the mutable fields of an entity.
// The id and creation time of an existing entity are preserved.
func (g *Graph) UpsertEntity(e *entities.Entity) (bool, error) {
	e.Normalize()
	if err := e.Validate(); err != nil {
		return false, err
	}

	stored := e.Clone()
	existing, found := g.entities[e.ID]
	if found {
		stored.CreatedAt = existing.CreatedAt
		if !stored.HasEmbedding() {
			stored.Embedding = existing.Embedding
		}
	}
	g.entities[e.ID] = stored
	g.version++
	g.addEvent(events.NewEntityUpserted(stored, !found, g.version))
	return !found, nil
}

// DeleteEntity removes the entity and every relationship referencing it.
func (g *Graph) DeleteEntity(id string) ([]entities.RelationshipKey, error) {
	if _, ok := g.entities[id]; !ok {
		return nil, apperrors.NewNotFoundError("entity " + id)
	}

	removed := make([]entities.RelationshipKey, 0, len(g.incident[id]))
	for key := range g.incident[id] {
		removed = append(removed, key)
	}
	for _, key := range removed {
		g.unlink(key)
	}
	delete(g.entities, id)
	delete(g.incident, id)

	g.version++
	g.addEvent(events.NewEntityDeleted(id, removed, g.version))
	return removed, nil
}

// UpsertRelationship creates the edge or, when the triple already exists,
// merges the update into it in place (see Relationship.MergeInto).
func (g *Graph) UpsertRelationship(r *entities.Relationship) (*entities.Relationship, bool, error) {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return nil, false, err
	}
	if !g.HasEntity(r.SourceID) {
		return nil, false, apperrors.NewValidationErrorf("source entity %s does not exist", r.SourceID)
	}
	if !g.HasEntity(r.TargetID) {
		return nil, false, apperrors.NewValidationErrorf("target entity %s does not exist", r.TargetID)
	}

	key := r.Key()
	created := false
	stored, ok := g.relationships[key]
	if ok {
		// snapshots share relationship pointers, so updates never mutate in place
		stored = stored.Clone()
		r.MergeInto(stored)
		g.relationships[key] = stored
	} else {
		stored = r.Clone()
		g.link(stored)
		created = true
	}

	g.version++
	g.addEvent(events.NewRelationshipUpserted(stored, created, g.version))
	return stored.Clone(), created, nil
}

// DeleteRelationship removes one edge by identity.
func (g *Graph) DeleteRelationship(key entities.RelationshipKey) error {
	if _, ok := g.relationships[key]; !ok {
		return apperrors.NewNotFoundError("relationship " + key.String())
	}
	g.unlink(key)
	g.version++
	g.addEvent(events.NewRelationshipDeleted(key, g.version))
	return nil
}

// Snapshot returns an immutable copy of the current state.
func (g *Graph) Snapshot() *Snapshot {
	ents := make([]*entities.Entity, 0, len(g.entities))
	for _, e := range g.entities {
		ents = append(ents, e)
	}
	rels := make([]*entities.Relationship, 0, len(g.relationships))
	for _, r := range g.relationships {
		rels = append(rels, r)
	}
	return NewSnapshot(g.version, ents, rels)
}

// GetUncommittedEvents returns events recorded since the last commit.
func (g *Graph) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(g.events))
	copy(out, g.events)
	return out
}

// MarkEventsAsCommitted clears the recorded events.
func (g *Graph) MarkEventsAsCommitted() {
	g.events = g.events[:0]
}

func (g *Graph) addEvent(event events.DomainEvent) {
	g.events = append(g.events, event)
}

func (g *Graph) link(r *entities.Relationship) {
	key := r.Key()
	g.relationships[key] = r
	for _, id := range []string{r.SourceID, r.TargetID} {
		if g.incident[id] == nil {
			g.incident[id] = make(map[entities.RelationshipKey]struct{})
		}
		g.incident[id][key] = struct{}{}
	}
}

func (g *Graph) unlink(key entities.RelationshipKey) {
	delete(g.relationships, key)
	delete(g.incident[key.SourceID], key)
	delete(g.incident[key.TargetID], key)
}
