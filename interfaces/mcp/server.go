// Package mcp exposes the knowledge graph analytics to assistants over the
// Model Context Protocol.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/mediator"
)

// ServerName is advertised to MCP clients
const ServerName = "prsnl-knowledge-graph"

// NewServer creates an MCP server with every graph tool registered.
func NewServer(m mediator.IMediator, version string, logger *zap.Logger) *mcp.Server {
	gt := &GraphTools{Mediator: m, Logger: logger}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version,
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "discover_paths",
		Description: "Find ranked learning paths between two entities in the knowledge graph",
	}, gt.DiscoverPaths)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "suggest_relationships",
		Description: "Suggest new relationships for one entity, or across the graph when no entity is given",
	}, gt.SuggestRelationships)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "apply_suggestion",
		Description: "Accept a suggested relationship into the graph (idempotent per source, target and type)",
	}, gt.ApplySuggestion)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "cluster_entities",
		Description: "Group entities into semantic, structural or hybrid clusters",
	}, gt.ClusterEntities)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "analyze_gaps",
		Description: "Report knowledge gaps, per-domain completeness and recommendations",
	}, gt.AnalyzeGaps)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Aggregate counts of the knowledge graph",
	}, gt.GraphStats)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_subgraph",
		Description: "Read the neighbourhood of one entity",
	}, gt.GetSubgraph)

	return srv
}
