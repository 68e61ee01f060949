package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/valueobjects"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

type graphFixture struct {
	t *testing.T
	g *aggregates.Graph
}

func newGraphFixture(t *testing.T) *graphFixture {
	return &graphFixture{t: t, g: aggregates.NewGraph()}
}

func (f *graphFixture) entity(id, title string, mutate ...func(*entities.Entity)) *graphFixture {
	f.t.Helper()
	e := entities.NewEntity(id, title, entities.ContentTypeArticle)
	for _, m := range mutate {
		m(e)
	}
	_, err := f.g.UpsertEntity(e)
	require.NoError(f.t, err)
	return f
}

func (f *graphFixture) edge(src, dst string, typ entities.RelationshipType, conf float64) *graphFixture {
	f.t.Helper()
	_, _, err := f.g.UpsertRelationship(&entities.Relationship{
		SourceID: src, TargetID: dst, Type: typ, Confidence: conf, Strength: conf,
	})
	require.NoError(f.t, err)
	return f
}

func (f *graphFixture) snapshot() *aggregates.Snapshot {
	return f.g.Snapshot()
}

func chainSnapshot(t *testing.T) *aggregates.Snapshot {
	return newGraphFixture(t).
		entity("a", "Intro to Go").
		entity("b", "Go Concurrency").
		entity("c", "Concurrency Patterns").
		entity("d", "Unrelated").
		edge("a", "b", entities.RelationshipPrerequisite, 0.9).
		edge("b", "c", entities.RelationshipExtends, 0.8).
		snapshot()
}

func TestPathFinder_Discover_Chain(t *testing.T) {
	pf := NewPathFinder(DefaultPathConfig())

	result, err := pf.Discover(chainSnapshot(t), PathQuery{StartID: "a", EndID: "c", MaxDepth: 3})

	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	p := result.Paths[0]
	assert.Equal(t, 2, p.PathLength)
	assert.InDelta(t, 0.72, p.TotalConfidence, 1e-9)
	assert.Equal(t, "a", p.Nodes[0].EntityID)
	assert.Equal(t, "c", p.Nodes[2].EntityID)
	assert.Equal(t, valueobjects.DifficultyMedium, p.LearningDifficulty)
	assert.False(t, result.Truncated)
}

func TestPathFinder_Discover_SymmetricPairYieldsOnePath(t *testing.T) {
	snap := newGraphFixture(t).
		entity("a", "Intro to Go").
		entity("b", "Go Concurrency").
		entity("c", "Concurrency Patterns").
		edge("a", "b", entities.RelationshipRelatedTo, 0.9).
		edge("b", "a", entities.RelationshipRelatedTo, 0.7).
		edge("b", "c", entities.RelationshipExtends, 0.8).
		snapshot()

	result, err := NewPathFinder(DefaultPathConfig()).Discover(snap, PathQuery{StartID: "a", EndID: "c", MaxDepth: 2, K: 5})

	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	p := result.Paths[0]
	assert.InDelta(t, 0.72, p.TotalConfidence, 1e-9)
	assert.False(t, p.Edges[0].Reversed, "the more confident forward edge is kept")
}

func TestDistinctMoves(t *testing.T) {
	steps := []traversal{
		{PathEdge: PathEdge{Type: entities.RelationshipRelatedTo, Confidence: 0.6}, next: "b"},
		{PathEdge: PathEdge{Type: entities.RelationshipExtends, Confidence: 0.5}, next: "b"},
		{PathEdge: PathEdge{Type: entities.RelationshipRelatedTo, Confidence: 0.9, Reversed: true}, next: "b"},
		{PathEdge: PathEdge{Type: entities.RelationshipRelatedTo, Confidence: 0.4}, next: "c"},
	}

	moves := distinctMoves(steps)

	require.Len(t, moves, 3)
	assert.Equal(t, 0.9, moves[0].Confidence)
	assert.True(t, moves[0].Reversed)
	assert.Equal(t, entities.RelationshipExtends, moves[1].Type)
	assert.Equal(t, "c", moves[2].next)
}

func TestPathFinder_Discover_WalksReversedEdges(t *testing.T) {
	pf := NewPathFinder(DefaultPathConfig())

	result, err := pf.Discover(chainSnapshot(t), PathQuery{StartID: "c", EndID: "a", MaxDepth: 3})

	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	edges := result.Paths[0].Edges
	require.Len(t, edges, 2)
	assert.True(t, edges[0].Reversed)
	assert.Equal(t, "c", edges[0].SourceID)
	assert.Equal(t, entities.RelationshipRelatedTo, edges[0].Type)
	assert.Equal(t, entities.RelationshipEnables, edges[1].Type)
}

func TestPathFinder_Discover_NoPath(t *testing.T) {
	pf := NewPathFinder(DefaultPathConfig())

	tests := []struct {
		name  string
		query PathQuery
	}{
		{"disconnected", PathQuery{StartID: "a", EndID: "d", MaxDepth: 5}},
		{"depth too small", PathQuery{StartID: "a", EndID: "c", MaxDepth: 1}},
		{"confidence floor", PathQuery{StartID: "a", EndID: "c", MaxDepth: 3, MinConfidence: 0.85}},
		{"type filter", PathQuery{StartID: "a", EndID: "c", MaxDepth: 3, RelationshipTypes: []entities.RelationshipType{entities.RelationshipExtends}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := pf.Discover(chainSnapshot(t), tt.query)
			require.NoError(t, err)
			assert.Empty(t, result.Paths)
		})
	}
}

func TestPathFinder_Discover_RanksByConfidence(t *testing.T) {
	snap := newGraphFixture(t).
		entity("a", "A").entity("b", "B").entity("c", "C").entity("x", "X").
		edge("a", "b", entities.RelationshipRelatedTo, 0.9).
		edge("b", "c", entities.RelationshipRelatedTo, 0.8).
		edge("a", "c", entities.RelationshipRelatedTo, 0.5).
		edge("a", "x", entities.RelationshipRelatedTo, 0.95).
		edge("x", "c", entities.RelationshipRelatedTo, 0.95).
		snapshot()
	pf := NewPathFinder(DefaultPathConfig())

	result, err := pf.Discover(snap, PathQuery{StartID: "a", EndID: "c", MaxDepth: 3, K: 10})

	require.NoError(t, err)
	require.GreaterOrEqual(t, len(result.Paths), 3)
	for i := 1; i < len(result.Paths); i++ {
		assert.GreaterOrEqual(t, result.Paths[i-1].TotalConfidence, result.Paths[i].TotalConfidence)
	}
	assert.InDelta(t, 0.9025, result.Paths[0].TotalConfidence, 1e-9)
	for _, p := range result.Paths {
		seen := make(map[string]bool)
		for _, n := range p.Nodes {
			assert.False(t, seen[n.EntityID], "path revisits %s", n.EntityID)
			seen[n.EntityID] = true
		}
		assert.LessOrEqual(t, p.PathLength, 3)
	}
}

func TestPathFinder_Discover_Budget(t *testing.T) {
	cfg := DefaultPathConfig()
	cfg.MaxNodesExpanded = 1
	pf := NewPathFinder(cfg)

	result, err := pf.Discover(chainSnapshot(t), PathQuery{StartID: "a", EndID: "c", MaxDepth: 3})

	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Empty(t, result.Paths)
	assert.Equal(t, 1, result.NodesExpanded)
}

func TestPathFinder_Discover_Validation(t *testing.T) {
	pf := NewPathFinder(DefaultPathConfig())
	snap := chainSnapshot(t)

	_, err := pf.Discover(snap, PathQuery{StartID: "missing", EndID: "c", MaxDepth: 3})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = pf.Discover(snap, PathQuery{StartID: "a", EndID: "a", MaxDepth: 3})
	assert.True(t, apperrors.IsValidation(err))

	_, err = pf.Discover(snap, PathQuery{StartID: "a", EndID: "c", MaxDepth: 0})
	assert.True(t, apperrors.IsValidation(err))

	_, err = pf.Discover(snap, PathQuery{StartID: "a", EndID: "c", MaxDepth: 11})
	assert.True(t, apperrors.IsValidation(err))
}

func TestPathFinder_Difficulty(t *testing.T) {
	pf := NewPathFinder(DefaultPathConfig())
	edge := func(typ entities.RelationshipType) PathEdge { return PathEdge{Type: typ} }

	assert.Equal(t, valueobjects.DifficultyEasy, pf.Difficulty(0.9, []PathEdge{edge(entities.RelationshipRelatedTo)}))
	assert.Equal(t, valueobjects.DifficultyHard, pf.Difficulty(0.5, []PathEdge{edge(entities.RelationshipRelatedTo)}))
	long := []PathEdge{
		edge(entities.RelationshipRelatedTo), edge(entities.RelationshipRelatedTo),
		edge(entities.RelationshipRelatedTo), edge(entities.RelationshipRelatedTo),
	}
	assert.Equal(t, valueobjects.DifficultyMedium, pf.Difficulty(0.85, long))
}
