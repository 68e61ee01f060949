package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

func withDomain(domain string, tags ...string) func(*entities.Entity) {
	return func(e *entities.Entity) {
		e.Domain = domain
		e.Tags = tags
	}
}

func withEmbedding(v ...float32) func(*entities.Entity) {
	return func(e *entities.Entity) { e.Embedding = v }
}

func withType(ct entities.ContentType) func(*entities.Entity) {
	return func(e *entities.Entity) { e.ContentType = ct }
}

func suggesterSnapshot(t *testing.T) *aggregates.Snapshot {
	return newGraphFixture(t).
		entity("go-1", "Go channels", withDomain("Technology", "go", "concurrency")).
		entity("go-2", "Go channels deep dive", withDomain("Technology", "go", "concurrency")).
		entity("go-3", "Goroutine scheduling", withDomain("Technology", "go")).
		entity("bread", "Sourdough starter", withDomain("Cooking", "baking"), withType(entities.ContentTypeRecipe)).
		edge("go-1", "go-3", entities.RelationshipRelatedTo, 0.7).
		snapshot()
}

func newTestSuggester() *RelationshipSuggester {
	return NewRelationshipSuggester(NewSimilarityScorer(DefaultSimilarityConfig(), nil), DefaultSuggesterConfig())
}

func TestRelationshipSuggester_NeverSuggestsConnectedPairs(t *testing.T) {
	snap := suggesterSnapshot(t)
	s := newTestSuggester()

	for _, focus := range []string{"", "go-1", "go-3"} {
		result, err := s.Suggest(snap, SuggestionQuery{EntityID: focus, Limit: 50})
		require.NoError(t, err)
		for _, sug := range result.Suggestions {
			assert.False(t, snap.Connected(sug.SourceID, sug.TargetID), "suggested existing pair %s-%s", sug.SourceID, sug.TargetID)
			assert.NotEqual(t, sug.SourceID, sug.TargetID)
		}
	}
}

func TestRelationshipSuggester_RanksSameDomainFirst(t *testing.T) {
	s := newTestSuggester()

	result, err := s.Suggest(suggesterSnapshot(t), SuggestionQuery{EntityID: "go-1", Limit: 10})

	require.NoError(t, err)
	require.Len(t, result.Suggestions, 2)
	top := result.Suggestions[0]
	assert.ElementsMatch(t, []string{"go-1", "go-2"}, []string{top.SourceID, top.TargetID})
	assert.Equal(t, entities.RelationshipRelatedTo, top.SuggestedType)
	assert.Contains(t, top.Reasoning, suggestionReasons[entities.RelationshipRelatedTo])
	assert.Contains(t, top.Reasoning, "semantic similarity:")
	assert.Greater(t, top.ConfidenceScore, result.Suggestions[1].ConfidenceScore)
	for _, sug := range result.Suggestions {
		assert.GreaterOrEqual(t, sug.ConfidenceScore, 0.0)
		assert.LessOrEqual(t, sug.ConfidenceScore, 1.0)
	}
}

func TestRelationshipSuggester_MinConfidenceAndLimit(t *testing.T) {
	s := newTestSuggester()
	snap := suggesterSnapshot(t)

	result, err := s.Suggest(snap, SuggestionQuery{MinConfidence: 0.5, Limit: 10})
	require.NoError(t, err)
	for _, sug := range result.Suggestions {
		assert.GreaterOrEqual(t, sug.ConfidenceScore, 0.5)
	}

	result, err = s.Suggest(snap, SuggestionQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, result.Suggestions, 1)
	assert.True(t, result.Truncated)
}

func TestRelationshipSuggester_Deterministic(t *testing.T) {
	s := newTestSuggester()
	snap := suggesterSnapshot(t)

	first, err := s.Suggest(snap, SuggestionQuery{Limit: 20})
	require.NoError(t, err)
	second, err := s.Suggest(snap, SuggestionQuery{Limit: 20})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRelationshipSuggester_Duplicate(t *testing.T) {
	snap := newGraphFixture(t).
		entity("x", "Binary search in Go", withType(entities.ContentTypeCode), withEmbedding(0.2, 0.4, 0.4)).
		entity("y", "Binary search snippet", withType(entities.ContentTypeCode), withEmbedding(0.2, 0.4, 0.4)).
		snapshot()

	result, err := newTestSuggester().Suggest(snap, SuggestionQuery{EntityID: "x", Limit: 5})

	require.NoError(t, err)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, entities.RelationshipDuplicate, result.Suggestions[0].SuggestedType)
	assert.InDelta(t, 1.0, result.Suggestions[0].SemanticSimilarity, 1e-6)
}

func TestRelationshipSuggester_Validation(t *testing.T) {
	s := newTestSuggester()
	snap := suggesterSnapshot(t)

	_, err := s.Suggest(snap, SuggestionQuery{EntityID: "ghost", Limit: 5})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = s.Suggest(snap, SuggestionQuery{Limit: 0})
	assert.True(t, apperrors.IsValidation(err))

	_, err = s.Suggest(snap, SuggestionQuery{Limit: 5, MinConfidence: 2})
	assert.True(t, apperrors.IsValidation(err))
}
