package aggregates

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/events"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

func seedGraph(t *testing.T, ids ...string) *Graph {
	t.Helper()
	g := NewGraph()
	for _, id := range ids {
		_, err := g.UpsertEntity(entities.NewEntity(id, "Entity "+id, entities.ContentTypeArticle))
		require.NoError(t, err)
	}
	return g
}

func rel(src, dst string, typ entities.RelationshipType, conf float64) *entities.Relationship {
	return &entities.Relationship{SourceID: src, TargetID: dst, Type: typ, Confidence: conf, Strength: conf}
}

func TestGraph_UpsertEntity(t *testing.T) {
	g := NewGraph()
	e := entities.NewEntity("a", "Go Concurrency", entities.ContentTypeArticle)
	e.Embedding = []float32{0.1, 0.2}

	created, err := g.UpsertEntity(e)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint64(1), g.Version())

	first, err := g.GetEntity("a")
	require.NoError(t, err)

	update := entities.NewEntity("a", "Go Concurrency Patterns", entities.ContentTypeArticle)
	created, err = g.UpsertEntity(update)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := g.GetEntity("a")
	require.NoError(t, err)
	assert.Equal(t, "Go Concurrency Patterns", got.Title)
	assert.Equal(t, first.CreatedAt, got.CreatedAt)
	assert.Equal(t, []float32{0.1, 0.2}, got.Embedding, "missing embedding keeps the stored one")
	assert.Equal(t, uint64(2), g.Version())
}

func TestGraph_UpsertEntity_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		entity *entities.Entity
	}{
		{"empty id", &entities.Entity{Title: "x"}},
		{"empty title", &entities.Entity{ID: "a"}},
		{"unknown content type", &entities.Entity{ID: "a", Title: "x", ContentType: "podcast"}},
		{"negative importance", &entities.Entity{ID: "a", Title: "x", Importance: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			_, err := g.UpsertEntity(tt.entity)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, uint64(0), g.Version())
		})
	}
}

func TestGraph_UpsertRelationship_Idempotent(t *testing.T) {
	g := seedGraph(t, "a", "b")

	_, created, err := g.UpsertRelationship(rel("a", "b", entities.RelationshipExtends, 0.5))
	require.NoError(t, err)
	assert.True(t, created)

	stored, created, err := g.UpsertRelationship(rel("a", "b", entities.RelationshipExtends, 0.9))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 0.9, stored.Confidence)

	snap := g.Snapshot()
	assert.Equal(t, 1, snap.RelationshipCount())
}

func TestGraph_UpsertRelationship_ResubmitKeepsStrengthAndOrigin(t *testing.T) {
	g := seedGraph(t, "a", "b")

	first := &entities.Relationship{SourceID: "a", TargetID: "b", Type: entities.RelationshipExtends, Confidence: 0.8, Strength: 0.3, Origin: entities.OriginManual}
	_, _, err := g.UpsertRelationship(first)
	require.NoError(t, err)

	resubmit := (&entities.Relationship{SourceID: "a", TargetID: "b", Type: entities.RelationshipExtends, Confidence: 0.9, Origin: entities.OriginManual}).WithDefaultStrength(1)
	stored, created, err := g.UpsertRelationship(resubmit)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 0.9, stored.Confidence)
	assert.Equal(t, 0.3, stored.Strength)

	suggestion := (&entities.Relationship{SourceID: "a", TargetID: "b", Type: entities.RelationshipExtends, Confidence: 0.61, Context: "overlapping topics", Origin: entities.OriginAISuggested}).WithDefaultStrength(0.61)
	stored, _, err = g.UpsertRelationship(suggestion)
	require.NoError(t, err)
	assert.Equal(t, entities.OriginManual, stored.Origin)
	assert.Equal(t, 0.3, stored.Strength)
	assert.Equal(t, 0.61, stored.Confidence)
	assert.Equal(t, "overlapping topics", stored.Context)

	assert.Equal(t, 1, g.Snapshot().RelationshipCount())
}

func TestGraph_UpsertRelationship_DistinctTypesCoexist(t *testing.T) {
	g := seedGraph(t, "a", "b")

	_, _, err := g.UpsertRelationship(rel("a", "b", entities.RelationshipExtends, 0.5))
	require.NoError(t, err)
	_, _, err = g.UpsertRelationship(rel("a", "b", entities.RelationshipReferences, 0.5))
	require.NoError(t, err)
	_, _, err = g.UpsertRelationship(rel("b", "a", entities.RelationshipExtends, 0.5))
	require.NoError(t, err)

	assert.Equal(t, 3, g.Snapshot().RelationshipCount())
}

func TestGraph_UpsertRelationship_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rel  *entities.Relationship
	}{
		{"self loop", rel("a", "a", entities.RelationshipRelatedTo, 0.5)},
		{"missing source", rel("x", "b", entities.RelationshipRelatedTo, 0.5)},
		{"missing target", rel("a", "x", entities.RelationshipRelatedTo, 0.5)},
		{"unknown type", rel("a", "b", "inspires", 0.5)},
		{"confidence above one", rel("a", "b", entities.RelationshipRelatedTo, 1.5)},
		{"negative confidence", rel("a", "b", entities.RelationshipRelatedTo, -0.1)},
		{"unknown origin", &entities.Relationship{SourceID: "a", TargetID: "b", Type: entities.RelationshipRelatedTo, Origin: "imported"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := seedGraph(t, "a", "b")
			_, _, err := g.UpsertRelationship(tt.rel)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
			assert.Equal(t, 0, g.Snapshot().RelationshipCount())
		})
	}
}

func TestGraph_DeleteEntity_Cascades(t *testing.T) {
	g := seedGraph(t, "a", "b", "c")
	_, _, err := g.UpsertRelationship(rel("a", "b", entities.RelationshipRelatedTo, 0.8))
	require.NoError(t, err)
	_, _, err = g.UpsertRelationship(rel("c", "a", entities.RelationshipPrerequisite, 0.8))
	require.NoError(t, err)
	_, _, err = g.UpsertRelationship(rel("b", "c", entities.RelationshipRelatedTo, 0.8))
	require.NoError(t, err)

	removed, err := g.DeleteEntity("a")
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	snap := g.Snapshot()
	assert.Equal(t, 2, snap.EntityCount())
	require.Equal(t, 1, snap.RelationshipCount())
	for _, r := range snap.Relationships() {
		assert.False(t, r.Touches("a"))
	}

	_, err = g.DeleteEntity("a")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGraph_DeleteRelationship(t *testing.T) {
	g := seedGraph(t, "a", "b")
	r, _, err := g.UpsertRelationship(rel("a", "b", entities.RelationshipRelatedTo, 0.8))
	require.NoError(t, err)

	require.NoError(t, g.DeleteRelationship(r.Key()))
	assert.True(t, apperrors.IsNotFound(g.DeleteRelationship(r.Key())))
	assert.Equal(t, 2, g.Snapshot().EntityCount())
}

func TestGraph_Events(t *testing.T) {
	g := seedGraph(t, "a", "b")
	_, _, err := g.UpsertRelationship(rel("a", "b", entities.RelationshipRelatedTo, 0.8))
	require.NoError(t, err)
	_, err = g.DeleteEntity("b")
	require.NoError(t, err)

	evts := g.GetUncommittedEvents()
	require.Len(t, evts, 4)
	assert.Equal(t, events.TypeEntityUpserted, evts[0].GetEventType())
	assert.Equal(t, events.TypeRelationshipUpserted, evts[2].GetEventType())
	assert.Equal(t, events.TypeEntityDeleted, evts[3].GetEventType())
	assert.Equal(t, uint64(4), evts[3].GetVersion())

	g.MarkEventsAsCommitted()
	assert.Empty(t, g.GetUncommittedEvents())
}

func TestReconstructGraph_SkipsDanglingRelationships(t *testing.T) {
	ents := []*entities.Entity{
		entities.NewEntity("a", "A", entities.ContentTypeArticle),
		entities.NewEntity("b", "B", entities.ContentTypeArticle),
	}
	rels := []*entities.Relationship{
		rel("a", "b", entities.RelationshipRelatedTo, 0.5),
		rel("a", "ghost", entities.RelationshipRelatedTo, 0.5),
	}

	g := ReconstructGraph(7, ents, rels)

	assert.Equal(t, uint64(7), g.Version())
	assert.Equal(t, 1, g.Snapshot().RelationshipCount())
}

func TestSnapshot_IsolatedFromWrites(t *testing.T) {
	g := seedGraph(t, "a", "b")
	snap := g.Snapshot()

	_, _, err := g.UpsertRelationship(rel("a", "b", entities.RelationshipRelatedTo, 0.8))
	require.NoError(t, err)

	assert.Equal(t, 0, snap.RelationshipCount())
	assert.Equal(t, uint64(2), snap.Version())
	assert.False(t, snap.Connected("a", "b"))
	assert.True(t, g.Snapshot().Connected("b", "a"))
}

func TestSnapshot_Subgraph(t *testing.T) {
	g := seedGraph(t, "seed", "n1", "n2", "n3", "far")
	for _, r := range []*entities.Relationship{
		rel("seed", "n1", entities.RelationshipRelatedTo, 0.4),
		rel("n2", "seed", entities.RelationshipPrerequisite, 0.9),
		rel("seed", "n3", entities.RelationshipRelatedTo, 0.1),
		rel("n1", "far", entities.RelationshipExtends, 0.7),
	} {
		_, _, err := g.UpsertRelationship(r)
		require.NoError(t, err)
	}
	snap := g.Snapshot()

	t.Run("ranks by hop then confidence", func(t *testing.T) {
		view, err := snap.Subgraph("seed", 2, 10, 0.2)
		require.NoError(t, err)

		ids := make([]string, len(view.Nodes))
		for i, n := range view.Nodes {
			ids[i] = n.ID
		}
		assert.Equal(t, []string{"seed", "n2", "n1", "far"}, ids)
		assert.Equal(t, 2, view.Metadata.HopDistance["far"])
		assert.False(t, view.Metadata.Truncated)
		for _, e := range view.Edges {
			assert.GreaterOrEqual(t, e.Confidence, 0.2)
		}
	})

	t.Run("truncates at limit", func(t *testing.T) {
		view, err := snap.Subgraph("seed", 2, 2, 0)
		require.NoError(t, err)
		assert.Len(t, view.Nodes, 2)
		assert.True(t, view.Metadata.Truncated)
	})

	t.Run("depth zero returns the seed only", func(t *testing.T) {
		view, err := snap.Subgraph("seed", 0, 10, 0)
		require.NoError(t, err)
		assert.Len(t, view.Nodes, 1)
		assert.Empty(t, view.Edges)
	})

	t.Run("unknown seed", func(t *testing.T) {
		_, err := snap.Subgraph("missing", 1, 10, 0)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestSnapshot_FullGraph(t *testing.T) {
	g := NewGraph()
	for i := 0; i < 5; i++ {
		e := entities.NewEntity(fmt.Sprintf("e%d", i), fmt.Sprintf("Entity %d", i), entities.ContentTypeArticle)
		e.Importance = float64(i + 1)
		if i%2 == 0 {
			e.ContentType = entities.ContentTypeCode
		}
		_, err := g.UpsertEntity(e)
		require.NoError(t, err)
	}
	_, _, err := g.UpsertRelationship(rel("e4", "e3", entities.RelationshipRelatedTo, 0.9))
	require.NoError(t, err)
	_, _, err = g.UpsertRelationship(rel("e0", "e4", entities.RelationshipRelatedTo, 0.9))
	require.NoError(t, err)
	snap := g.Snapshot()

	view, err := snap.FullGraph(GraphFilter{}, 2, 0)
	require.NoError(t, err)
	require.Len(t, view.Nodes, 2)
	assert.Equal(t, "e4", view.Nodes[0].ID)
	assert.Equal(t, "e3", view.Nodes[1].ID)
	assert.Len(t, view.Edges, 1, "only edges between included nodes")
	assert.True(t, view.Metadata.Truncated)
	assert.Equal(t, 5, view.Metadata.TotalNodes)

	view, err = snap.FullGraph(GraphFilter{ContentType: entities.ContentTypeCode}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, view.Nodes, 3)
	assert.Len(t, view.Edges, 1)
	assert.False(t, view.Metadata.Truncated)
}
