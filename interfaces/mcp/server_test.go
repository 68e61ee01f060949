package mcp

import (
	"context"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/commands"
	"github.com/pranavrajput12/PRSNL-sub011/application/queries"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/services"
	"github.com/pranavrajput12/PRSNL-sub011/internal/testutil/mocks"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

func connect(t *testing.T, m *mocks.MockMediator) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	srv := NewServer(m, "test", zap.NewNop())

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	_, err := srv.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func call(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text, result.IsError
}

func TestServer_ListTools(t *testing.T) {
	session := connect(t, new(mocks.MockMediator))

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"analyze_gaps",
		"apply_suggestion",
		"cluster_entities",
		"discover_paths",
		"get_subgraph",
		"graph_stats",
		"suggest_relationships",
	}, names)
}

func TestServer_DiscoverPathsAppliesDefaults(t *testing.T) {
	m := new(mocks.MockMediator)
	want := queries.NewDiscoverPathsQuery("a", "c")
	want.MaxDepth = 2
	m.On("Query", mock.Anything, want).Return(&services.PathResult{
		Paths: []services.Path{{PathLength: 2, TotalConfidence: 0.72}},
	}, nil)

	text, isErr := call(t, connect(t, m), "discover_paths", map[string]any{
		"start_entity_id": "a",
		"end_entity_id":   "c",
		"max_depth":       2,
	})
	assert.False(t, isErr)
	assert.Contains(t, text, `"total_confidence": 0.72`)
	m.AssertExpectations(t)
}

func TestServer_ApplySuggestionReadsBackRelationship(t *testing.T) {
	m := new(mocks.MockMediator)
	m.On("Send", mock.Anything, commands.ApplySuggestionCommand{
		SourceID: "a", TargetID: "b", Type: "prerequisite", Confidence: 0.9,
	}).Return(nil)
	m.On("Query", mock.Anything, queries.GetRelationshipQuery{SourceID: "a", TargetID: "b", Type: "prerequisite"}).
		Return(&entities.Relationship{SourceID: "a", TargetID: "b", Type: entities.RelationshipPrerequisite, Confidence: 0.9}, nil)

	text, isErr := call(t, connect(t, m), "apply_suggestion", map[string]any{
		"source_entity_id":  "a",
		"target_entity_id":  "b",
		"relationship_type": "prerequisite",
		"confidence":        0.9,
	})
	assert.False(t, isErr)
	assert.Contains(t, text, `"prerequisite"`)
	m.AssertExpectations(t)
}

func TestServer_ApplicationErrorsBecomeToolErrors(t *testing.T) {
	m := new(mocks.MockMediator)
	m.On("Query", mock.Anything, queries.NewGetSubgraphQuery("ghost")).
		Return(nil, apperrors.NewNotFoundError("entity ghost"))

	text, isErr := call(t, connect(t, m), "get_subgraph", map[string]any{"entity_id": "ghost"})
	assert.True(t, isErr)
	assert.Contains(t, text, "NOT_FOUND")
}

func TestServer_GraphStats(t *testing.T) {
	m := new(mocks.MockMediator)
	m.On("Query", mock.Anything, queries.GetGraphStatsQuery{}).
		Return(&services.GraphStats{TotalEntities: 3}, nil)

	text, isErr := call(t, connect(t, m), "graph_stats", map[string]any{})
	assert.False(t, isErr)
	assert.Contains(t, text, `"total_entities": 3`)
}
