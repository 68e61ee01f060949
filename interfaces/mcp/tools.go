package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/commands"
	"github.com/pranavrajput12/PRSNL-sub011/application/mediator"
	"github.com/pranavrajput12/PRSNL-sub011/application/queries"
	querybus "github.com/pranavrajput12/PRSNL-sub011/application/queries/bus"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// GraphTools exposes the graph analytics as MCP tool handlers.
type GraphTools struct {
	Mediator mediator.IMediator
	Logger   *zap.Logger
}

type DiscoverPathsInput struct {
	StartEntityID     string   `json:"start_entity_id" jsonschema:"Entity the path starts from"`
	EndEntityID       string   `json:"end_entity_id" jsonschema:"Entity the path ends at"`
	MaxDepth          int      `json:"max_depth,omitempty" jsonschema:"Maximum number of hops (1-10, default 5)"`
	MinConfidence     *float64 `json:"min_confidence,omitempty" jsonschema:"Minimum edge confidence (0-1, default 0.5)"`
	K                 int      `json:"k,omitempty" jsonschema:"Number of paths to return (1-20, default 5)"`
	RelationshipTypes []string `json:"relationship_types,omitempty" jsonschema:"Only traverse these relationship types"`
}

type SuggestRelationshipsInput struct {
	EntityID          string   `json:"entity_id,omitempty" jsonschema:"Entity to suggest around; omit for graph-wide suggestions"`
	MinConfidence     *float64 `json:"min_confidence,omitempty" jsonschema:"Minimum suggestion confidence (0-1, default 0.6)"`
	Limit             int      `json:"limit,omitempty" jsonschema:"Maximum suggestions (1-50, default 10)"`
	RelationshipTypes []string `json:"relationship_types,omitempty" jsonschema:"Only suggest these relationship types"`
}

type ApplySuggestionInput struct {
	SourceEntityID   string  `json:"source_entity_id" jsonschema:"Source of the suggested relationship"`
	TargetEntityID   string  `json:"target_entity_id" jsonschema:"Target of the suggested relationship"`
	RelationshipType string  `json:"relationship_type" jsonschema:"Relationship type, e.g. prerequisite or extends"`
	Confidence       float64 `json:"confidence" jsonschema:"Confidence of the suggestion (0-1)"`
	Reasoning        string  `json:"reasoning,omitempty" jsonschema:"Why the relationship holds"`
}

type ClusterEntitiesInput struct {
	Algorithm      string   `json:"algorithm,omitempty" jsonschema:"semantic, structural or hybrid (default hybrid)"`
	MinClusterSize int      `json:"min_cluster_size,omitempty" jsonschema:"Smallest cluster kept (2-20, default 3)"`
	MaxClusters    int      `json:"max_clusters,omitempty" jsonschema:"Most clusters returned (3-25, default 10)"`
	MinConfidence  *float64 `json:"min_confidence,omitempty" jsonschema:"Minimum edge confidence for structural grouping (default 0.5)"`
	EntityTypes    []string `json:"entity_types,omitempty" jsonschema:"Only cluster these content types"`
}

type AnalyzeGapsInput struct {
	AnalysisDepth string   `json:"analysis_depth,omitempty" jsonschema:"quick, standard or comprehensive (default standard)"`
	MinSeverity   string   `json:"min_severity,omitempty" jsonschema:"low, medium, high or critical (default low)"`
	FocusDomains  []string `json:"focus_domains,omitempty" jsonschema:"Only report these domains"`
}

type GraphStatsInput struct{}

type GetSubgraphInput struct {
	EntityID      string   `json:"entity_id" jsonschema:"Entity at the centre of the subgraph"`
	Depth         int      `json:"depth,omitempty" jsonschema:"Hops to expand (1-5, default 2)"`
	Limit         int      `json:"limit,omitempty" jsonschema:"Maximum nodes (1-500, default 50)"`
	MinConfidence *float64 `json:"min_confidence,omitempty" jsonschema:"Minimum edge confidence (default 0)"`
}

func (t *GraphTools) DiscoverPaths(ctx context.Context, _ *mcp.CallToolRequest, input DiscoverPathsInput) (*mcp.CallToolResult, any, error) {
	q := queries.NewDiscoverPathsQuery(input.StartEntityID, input.EndEntityID)
	if input.MaxDepth > 0 {
		q.MaxDepth = input.MaxDepth
	}
	if input.MinConfidence != nil {
		q.MinConfidence = *input.MinConfidence
	}
	if input.K > 0 {
		q.K = input.K
	}
	q.RelationshipTypes = input.RelationshipTypes
	return t.query(ctx, "discover_paths", q)
}

func (t *GraphTools) SuggestRelationships(ctx context.Context, _ *mcp.CallToolRequest, input SuggestRelationshipsInput) (*mcp.CallToolResult, any, error) {
	q := queries.NewSuggestRelationshipsQuery(input.EntityID)
	if input.MinConfidence != nil {
		q.MinConfidence = *input.MinConfidence
	}
	if input.Limit > 0 {
		q.Limit = input.Limit
	}
	q.RelationshipTypes = input.RelationshipTypes
	return t.query(ctx, "suggest_relationships", q)
}

func (t *GraphTools) ApplySuggestion(ctx context.Context, _ *mcp.CallToolRequest, input ApplySuggestionInput) (*mcp.CallToolResult, any, error) {
	cmd := commands.ApplySuggestionCommand{
		SourceID:   input.SourceEntityID,
		TargetID:   input.TargetEntityID,
		Type:       input.RelationshipType,
		Confidence: input.Confidence,
		Reasoning:  input.Reasoning,
	}
	if err := t.Mediator.Send(ctx, cmd); err != nil {
		return t.failed("apply_suggestion", err), nil, nil
	}
	return t.query(ctx, "apply_suggestion", queries.GetRelationshipQuery{
		SourceID: cmd.SourceID,
		TargetID: cmd.TargetID,
		Type:     cmd.Type,
	})
}

func (t *GraphTools) ClusterEntities(ctx context.Context, _ *mcp.CallToolRequest, input ClusterEntitiesInput) (*mcp.CallToolResult, any, error) {
	q := queries.NewClusterEntitiesQuery()
	if input.Algorithm != "" {
		q.Algorithm = input.Algorithm
	}
	if input.MinClusterSize > 0 {
		q.MinClusterSize = input.MinClusterSize
	}
	if input.MaxClusters > 0 {
		q.MaxClusters = input.MaxClusters
	}
	if input.MinConfidence != nil {
		q.MinConfidence = *input.MinConfidence
	}
	q.EntityTypes = input.EntityTypes
	return t.query(ctx, "cluster_entities", q)
}

func (t *GraphTools) AnalyzeGaps(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeGapsInput) (*mcp.CallToolResult, any, error) {
	q := queries.NewAnalyzeGapsQuery()
	if input.AnalysisDepth != "" {
		q.Depth = input.AnalysisDepth
	}
	if input.MinSeverity != "" {
		q.MinSeverity = input.MinSeverity
	}
	q.FocusDomains = input.FocusDomains
	return t.query(ctx, "analyze_gaps", q)
}

func (t *GraphTools) GraphStats(ctx context.Context, _ *mcp.CallToolRequest, _ GraphStatsInput) (*mcp.CallToolResult, any, error) {
	return t.query(ctx, "graph_stats", queries.GetGraphStatsQuery{})
}

func (t *GraphTools) GetSubgraph(ctx context.Context, _ *mcp.CallToolRequest, input GetSubgraphInput) (*mcp.CallToolResult, any, error) {
	q := queries.NewGetSubgraphQuery(input.EntityID)
	if input.Depth > 0 {
		q.Depth = input.Depth
	}
	if input.Limit > 0 {
		q.Limit = input.Limit
	}
	if input.MinConfidence != nil {
		q.MinConfidence = *input.MinConfidence
	}
	return t.query(ctx, "get_subgraph", q)
}

// query runs q and renders the result. Application errors become tool
// errors the model can read, never protocol errors.
func (t *GraphTools) query(ctx context.Context, tool string, q querybus.Query) (*mcp.CallToolResult, any, error) {
	result, err := t.Mediator.Query(ctx, q)
	if err != nil {
		return t.failed(tool, err), nil, nil
	}
	return toolJSON(result)
}

func (t *GraphTools) failed(tool string, err error) *mcp.CallToolResult {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		if appErr.HTTPStatus >= 500 {
			t.Logger.Error("Tool failed", zap.String("tool", tool), zap.Error(err))
		}
		return toolError("%s: %s", appErr.Type, appErr.Message)
	}
	t.Logger.Error("Tool failed", zap.String("tool", tool), zap.Error(err))
	return toolError("internal error: %v", err)
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
