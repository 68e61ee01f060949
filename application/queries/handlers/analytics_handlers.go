package handlers

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	"github.com/pranavrajput12/PRSNL-sub011/application/queries"
	appservices "github.com/pranavrajput12/PRSNL-sub011/application/services"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/valueobjects"
	"github.com/pranavrajput12/PRSNL-sub011/domain/services"
)

// SuggestRelationshipsHandler proposes new relationships
type SuggestRelationshipsHandler struct {
	store     ports.GraphStore
	registry  *appservices.EngineRegistry
	relevance ports.RelevanceProvider
	metrics   ports.MetricsRecorder
	logger    *zap.Logger
}

// NewSuggestRelationshipsHandler creates a new suggestion handler.
// relevance is optional.
func NewSuggestRelationshipsHandler(
	store ports.GraphStore,
	registry *appservices.EngineRegistry,
	relevance ports.RelevanceProvider,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) *SuggestRelationshipsHandler {
	return &SuggestRelationshipsHandler{
		store:     store,
		registry:  registry,
		relevance: relevance,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle executes the suggestion query
func (h *SuggestRelationshipsHandler) Handle(ctx context.Context, query queries.SuggestRelationshipsQuery) (result *services.SuggestionResult, err error) {
	ctx, span := startSpan(ctx, "suggest_relationships",
		attribute.String("entity_id", query.EntityID),
		attribute.Int("limit", query.Limit),
	)
	defer func() { finishSpan(span, err, result != nil && result.Truncated) }()

	types, err := queries.ParseRelationshipTypes(query.RelationshipTypes)
	if err != nil {
		return nil, err
	}
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	result, err = h.registry.Engines().Suggester.Suggest(snap, services.SuggestionQuery{
		EntityID:          query.EntityID,
		MinConfidence:     query.MinConfidence,
		Limit:             query.Limit,
		RelationshipTypes: types,
	})
	if err != nil {
		return nil, err
	}

	h.applyRelevance(ctx, result.Suggestions)
	recordTruncation(h.metrics, "suggest_relationships", result.Truncated)
	return result, nil
}

// applyRelevance reorders suggestions by confidence times target relevance.
// Scores are left untouched; a failing provider keeps the confidence order.
func (h *SuggestRelationshipsHandler) applyRelevance(ctx context.Context, suggestions []services.Suggestion) {
	if h.relevance == nil || len(suggestions) < 2 {
		return
	}

	ids := make([]string, len(suggestions))
	for i, s := range suggestions {
		ids[i] = s.TargetID
	}
	weights, err := h.relevance.Relevance(ctx, ids)
	if err != nil {
		h.logger.Warn("Relevance provider unavailable, keeping confidence order", zap.Error(err))
		return
	}
	if len(weights) == 0 {
		return
	}

	weight := func(s services.Suggestion) float64 {
		if w, ok := weights[s.TargetID]; ok {
			return s.ConfidenceScore * w
		}
		return s.ConfidenceScore
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return weight(suggestions[i]) > weight(suggestions[j])
	})
}

// DiscoverPathsHandler finds ranked learning paths between two entities
type DiscoverPathsHandler struct {
	store    ports.GraphStore
	registry *appservices.EngineRegistry
	metrics  ports.MetricsRecorder
	logger   *zap.Logger
}

// NewDiscoverPathsHandler creates a new path discovery handler
func NewDiscoverPathsHandler(store ports.GraphStore, registry *appservices.EngineRegistry, metrics ports.MetricsRecorder, logger *zap.Logger) *DiscoverPathsHandler {
	return &DiscoverPathsHandler{store: store, registry: registry, metrics: metrics, logger: logger}
}

// Handle executes the path discovery query
func (h *DiscoverPathsHandler) Handle(ctx context.Context, query queries.DiscoverPathsQuery) (result *services.PathResult, err error) {
	ctx, span := startSpan(ctx, "discover_paths",
		attribute.String("start_id", query.StartID),
		attribute.String("end_id", query.EndID),
		attribute.Int("max_depth", query.MaxDepth),
	)
	defer func() { finishSpan(span, err, result != nil && result.Truncated) }()

	types, err := queries.ParseRelationshipTypes(query.RelationshipTypes)
	if err != nil {
		return nil, err
	}
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	result, err = h.registry.Engines().Paths.Discover(snap, services.PathQuery{
		StartID:           query.StartID,
		EndID:             query.EndID,
		MaxDepth:          query.MaxDepth,
		MinConfidence:     query.MinConfidence,
		K:                 query.K,
		RelationshipTypes: types,
	})
	if err != nil {
		return nil, err
	}

	recordTruncation(h.metrics, "discover_paths", result.Truncated)
	h.logger.Debug("Paths discovered",
		zap.Int("paths", len(result.Paths)),
		zap.Int("nodesExpanded", result.NodesExpanded),
		zap.Int64("searchTimeMs", result.SearchTimeMs),
	)
	return result, nil
}

// ClusterEntitiesHandler groups entities into clusters
type ClusterEntitiesHandler struct {
	store    ports.GraphStore
	registry *appservices.EngineRegistry
	cache    *appservices.AnalyticsCache
	metrics  ports.MetricsRecorder
	logger   *zap.Logger
}

// NewClusterEntitiesHandler creates a new clustering handler
func NewClusterEntitiesHandler(
	store ports.GraphStore,
	registry *appservices.EngineRegistry,
	cache *appservices.AnalyticsCache,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) *ClusterEntitiesHandler {
	return &ClusterEntitiesHandler{store: store, registry: registry, cache: cache, metrics: metrics, logger: logger}
}

// Handle executes the clustering query
func (h *ClusterEntitiesHandler) Handle(ctx context.Context, query queries.ClusterEntitiesQuery) (result *services.ClusterResult, err error) {
	ctx, span := startSpan(ctx, "cluster_entities", attribute.String("algorithm", query.Algorithm))
	defer func() { finishSpan(span, err, result != nil && result.Metadata.Truncated) }()

	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	engine := h.registry.Engines().Clustering

	result, err = appservices.Cached(ctx, h.cache, "clustering", snap.Version(), query, func() (*services.ClusterResult, error) {
		return engine.Cluster(snap, services.ClusterQuery{
			Algorithm:      valueobjects.ClusterAlgorithm(query.Algorithm),
			MinClusterSize: query.MinClusterSize,
			MaxClusters:    query.MaxClusters,
			MinConfidence:  query.MinConfidence,
			EntityTypes:    query.ContentTypes(),
		})
	})
	if err != nil {
		return nil, err
	}

	recordTruncation(h.metrics, "cluster_entities", result.Metadata.Truncated)
	h.logger.Debug("Entities clustered",
		zap.String("algorithm", query.Algorithm),
		zap.Int("clusters", len(result.Clusters)),
		zap.Int("unclustered", len(result.Unclustered)),
	)
	return result, nil
}

// AnalyzeGapsHandler runs knowledge gap analysis
type AnalyzeGapsHandler struct {
	store    ports.GraphStore
	registry *appservices.EngineRegistry
	cache    *appservices.AnalyticsCache
	logger   *zap.Logger
}

// NewAnalyzeGapsHandler creates a new gap analysis handler
func NewAnalyzeGapsHandler(store ports.GraphStore, registry *appservices.EngineRegistry, cache *appservices.AnalyticsCache, logger *zap.Logger) *AnalyzeGapsHandler {
	return &AnalyzeGapsHandler{store: store, registry: registry, cache: cache, logger: logger}
}

// Handle executes the gap analysis query
func (h *AnalyzeGapsHandler) Handle(ctx context.Context, query queries.AnalyzeGapsQuery) (result *services.GapAnalysis, err error) {
	ctx, span := startSpan(ctx, "analyze_gaps",
		attribute.String("depth", query.Depth),
		attribute.String("min_severity", query.MinSeverity),
	)
	defer func() { finishSpan(span, err, false) }()

	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	analyzer := h.registry.Engines().Gaps

	result, err = appservices.Cached(ctx, h.cache, "gaps", snap.Version(), query, func() (*services.GapAnalysis, error) {
		return analyzer.Analyze(snap, services.GapQuery{
			Depth:        valueobjects.AnalysisDepth(query.Depth),
			MinSeverity:  valueobjects.Severity(query.MinSeverity),
			FocusDomains: query.FocusDomains,
		}), nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Debug("Gap analysis completed",
		zap.Int("gaps", len(result.Gaps)),
		zap.Float64("overallCompleteness", result.OverallCompleteness),
	)
	return result, nil
}
