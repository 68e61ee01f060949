package testutil

import (
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
)

// EntityBuilder helps create test entities with default values
type EntityBuilder struct {
	entity *entities.Entity
}

func NewEntityBuilder(id string) *EntityBuilder {
	e := entities.NewEntity(id, "Entity "+id, entities.ContentTypeArticle)
	return &EntityBuilder{entity: e}
}

func (b *EntityBuilder) WithTitle(title string) *EntityBuilder {
	b.entity.Title = title
	return b
}

func (b *EntityBuilder) WithSummary(summary string) *EntityBuilder {
	b.entity.Summary = summary
	return b
}

func (b *EntityBuilder) WithContentType(ct entities.ContentType) *EntityBuilder {
	b.entity.ContentType = ct
	return b
}

func (b *EntityBuilder) WithDomain(domain string) *EntityBuilder {
	b.entity.Domain = domain
	return b
}

func (b *EntityBuilder) WithTags(tags ...string) *EntityBuilder {
	b.entity.Tags = tags
	return b
}

func (b *EntityBuilder) WithEmbedding(v ...float32) *EntityBuilder {
	b.entity.Embedding = v
	return b
}

func (b *EntityBuilder) WithImportance(importance float64) *EntityBuilder {
	b.entity.Importance = importance
	return b
}

func (b *EntityBuilder) Build() *entities.Entity {
	return b.entity.Clone()
}

// NewRelationship returns a manual relationship with strength 1.
func NewRelationship(source, target string, typ entities.RelationshipType, confidence float64) *entities.Relationship {
	return &entities.Relationship{
		SourceID:   source,
		TargetID:   target,
		Type:       typ,
		Confidence: confidence,
		Strength:   1.0,
		Origin:     entities.OriginManual,
	}
}

// GraphBuilder accumulates entities and relationships into a graph aggregate
type GraphBuilder struct {
	entities      []*entities.Entity
	relationships []*entities.Relationship
}

func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{}
}

// WithEntities adds default entities for each id.
func (b *GraphBuilder) WithEntities(ids ...string) *GraphBuilder {
	for _, id := range ids {
		b.entities = append(b.entities, NewEntityBuilder(id).Build())
	}
	return b
}

func (b *GraphBuilder) WithEntity(e *entities.Entity) *GraphBuilder {
	b.entities = append(b.entities, e)
	return b
}

func (b *GraphBuilder) WithEdge(source, target string, typ entities.RelationshipType, confidence float64) *GraphBuilder {
	b.relationships = append(b.relationships, NewRelationship(source, target, typ, confidence))
	return b
}

// MustBuild applies every entity and relationship through the aggregate so
// the graph invariants hold. It panics on invalid fixtures.
func (b *GraphBuilder) MustBuild() *aggregates.Graph {
	g := aggregates.NewGraph()
	for _, e := range b.entities {
		if _, err := g.UpsertEntity(e.Clone()); err != nil {
			panic(err)
		}
	}
	for _, r := range b.relationships {
		if _, _, err := g.UpsertRelationship(r.Clone()); err != nil {
			panic(err)
		}
	}
	g.MarkEventsAsCommitted()
	return g
}

// Snapshot builds the graph and returns its snapshot.
func (b *GraphBuilder) Snapshot() *aggregates.Snapshot {
	return b.MustBuild().Snapshot()
}
