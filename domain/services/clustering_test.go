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

func newTestClustering() *ClusteringEngine {
	return NewClusteringEngine(NewSimilarityScorer(DefaultSimilarityConfig(), nil), DefaultClusteringConfig())
}

func clusteringSnapshot(t *testing.T) *aggregates.Snapshot {
	return newGraphFixture(t).
		entity("a", "Kubernetes operators", withEmbedding(1, 0, 0)).
		entity("b", "Kubernetes controllers", withEmbedding(0.9, 0.1, 0)).
		entity("c", "Writing Kubernetes operators", withEmbedding(0.95, 0.05, 0)).
		entity("d", "Sourdough hydration", withEmbedding(0, 1, 0)).
		entity("e", "Sourdough shaping", withEmbedding(0.1, 0.9, 0)).
		entity("f", "Tax returns", withEmbedding(0, 0, 1)).
		edge("a", "b", entities.RelationshipRelatedTo, 0.8).
		edge("b", "c", entities.RelationshipRelatedTo, 0.8).
		edge("d", "e", entities.RelationshipRelatedTo, 0.8).
		snapshot()
}

func assertPartition(t *testing.T, snap *aggregates.Snapshot, result *ClusterResult, minSize int) {
	t.Helper()
	seen := make(map[string]int)
	for _, c := range result.Clusters {
		assert.GreaterOrEqual(t, len(c.Members), minSize)
		assert.Contains(t, c.Members, c.CentralEntity)
		assert.GreaterOrEqual(t, c.CohesionScore, 0.0)
		assert.LessOrEqual(t, c.CohesionScore, 1.0)
		for _, m := range c.Members {
			seen[m]++
		}
	}
	for _, id := range result.Unclustered {
		seen[id]++
	}
	for _, e := range snap.Entities() {
		assert.Equal(t, 1, seen[e.ID], "entity %s must appear exactly once", e.ID)
	}
}

func TestClusteringEngine_Algorithms(t *testing.T) {
	snap := clusteringSnapshot(t)
	engine := newTestClustering()

	tests := []struct {
		algorithm   valueobjects.ClusterAlgorithm
		wantCentral string
	}{
		{valueobjects.ClusterSemantic, "c"},
		{valueobjects.ClusterStructural, "b"},
		{valueobjects.ClusterHybrid, "b"},
	}

	for _, tt := range tests {
		t.Run(string(tt.algorithm), func(t *testing.T) {
			result, err := engine.Cluster(snap, ClusterQuery{Algorithm: tt.algorithm, MinClusterSize: 2, MaxClusters: 10})
			require.NoError(t, err)

			assertPartition(t, snap, result, 2)
			require.Len(t, result.Clusters, 2)
			assert.ElementsMatch(t, []string{"a", "b", "c"}, result.Clusters[0].Members)
			assert.ElementsMatch(t, []string{"d", "e"}, result.Clusters[1].Members)
			assert.Equal(t, []string{"f"}, result.Unclustered)
			assert.Equal(t, tt.wantCentral, result.Clusters[0].CentralEntity)
			assert.Equal(t, tt.algorithm, result.Clusters[0].Type)
		})
	}
}

func TestClusteringEngine_MaxClusters(t *testing.T) {
	snap := clusteringSnapshot(t)

	result, err := newTestClustering().Cluster(snap, ClusterQuery{
		Algorithm: valueobjects.ClusterStructural, MinClusterSize: 2, MaxClusters: 1,
	})

	require.NoError(t, err)
	require.Len(t, result.Clusters, 1)
	assert.True(t, result.Metadata.Truncated)
	assert.ElementsMatch(t, []string{"d", "e", "f"}, result.Unclustered)
	assertPartition(t, snap, result, 2)
}

func TestClusteringEngine_Deterministic(t *testing.T) {
	snap := clusteringSnapshot(t)
	engine := newTestClustering()
	q := ClusterQuery{Algorithm: valueobjects.ClusterHybrid, MinClusterSize: 2, MaxClusters: 5}

	first, err := engine.Cluster(snap, q)
	require.NoError(t, err)
	second, err := engine.Cluster(snap, q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.Clusters[0].ID)
}

func TestClusteringEngine_EntityTypeFilterAndNaming(t *testing.T) {
	snap := newGraphFixture(t).
		entity("s1", "Sourdough bread basics", withType(entities.ContentTypeRecipe)).
		entity("s2", "Sourdough bread scoring", withType(entities.ContentTypeRecipe)).
		entity("v1", "Sourdough bread video", withType(entities.ContentTypeVideo)).
		edge("s1", "s2", entities.RelationshipRelatedTo, 0.9).
		edge("s2", "v1", entities.RelationshipRelatedTo, 0.9).
		snapshot()

	result, err := newTestClustering().Cluster(snap, ClusterQuery{
		Algorithm:      valueobjects.ClusterStructural,
		MinClusterSize: 2,
		MaxClusters:    5,
		EntityTypes:    []entities.ContentType{entities.ContentTypeRecipe},
	})

	require.NoError(t, err)
	require.Len(t, result.Clusters, 1)
	c := result.Clusters[0]
	assert.ElementsMatch(t, []string{"s1", "s2"}, c.Members)
	assert.Equal(t, 2, result.Metadata.EntitiesAnalyzed)
	assert.Equal(t, DomainGeneral, c.Domain)
	assert.Contains(t, c.Name, "Sourdough")
	assert.Contains(t, c.Description, "Small cluster containing")
}

func TestClusteringEngine_Validation(t *testing.T) {
	engine := newTestClustering()
	snap := clusteringSnapshot(t)

	_, err := engine.Cluster(snap, ClusterQuery{Algorithm: valueobjects.ClusterSemantic, MinClusterSize: 0, MaxClusters: 5})
	assert.True(t, apperrors.IsValidation(err))

	_, err = engine.Cluster(snap, ClusterQuery{Algorithm: "spectral", MinClusterSize: 2, MaxClusters: 5})
	assert.True(t, apperrors.IsValidation(err))
}

func TestClusteringEngine_EmptyGraph(t *testing.T) {
	result, err := newTestClustering().Cluster(aggregates.NewGraph().Snapshot(), ClusterQuery{
		Algorithm: valueobjects.ClusterSemantic, MinClusterSize: 2, MaxClusters: 5,
	})

	require.NoError(t, err)
	assert.Empty(t, result.Clusters)
	assert.Empty(t, result.Unclustered)
}
