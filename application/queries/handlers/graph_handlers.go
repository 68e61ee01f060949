package handlers

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	"github.com/pranavrajput12/PRSNL-sub011/application/queries"
	appservices "github.com/pranavrajput12/PRSNL-sub011/application/services"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/services"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// GetFullGraphHandler handles full graph reads for visualisation
type GetFullGraphHandler struct {
	store   ports.GraphStore
	metrics ports.MetricsRecorder
	logger  *zap.Logger
}

// NewGetFullGraphHandler creates a new full graph handler
func NewGetFullGraphHandler(store ports.GraphStore, metrics ports.MetricsRecorder, logger *zap.Logger) *GetFullGraphHandler {
	return &GetFullGraphHandler{store: store, metrics: metrics, logger: logger}
}

// Handle executes the full graph query
func (h *GetFullGraphHandler) Handle(ctx context.Context, query queries.GetFullGraphQuery) (view *aggregates.GraphView, err error) {
	ctx, span := startSpan(ctx, "full_graph", attribute.Int("limit", query.Limit))
	defer func() { finishSpan(span, err, view != nil && view.Metadata.Truncated) }()

	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	filter := aggregates.GraphFilter{
		ContentType: entities.ContentType(query.ContentType),
		Domain:      query.Domain,
	}
	if query.RelationshipType != "" {
		if filter.RelationshipType, err = entities.ParseRelationshipType(query.RelationshipType); err != nil {
			return nil, err
		}
	}
	view, err = snap.FullGraph(filter, query.Limit, query.MinConfidence)
	if err != nil {
		return nil, err
	}

	recordTruncation(h.metrics, "full_graph", view.Metadata.Truncated)
	h.logger.Debug("Full graph read",
		zap.Int("nodes", view.Metadata.NodeCount),
		zap.Int("edges", view.Metadata.EdgeCount),
		zap.Bool("truncated", view.Metadata.Truncated),
	)
	return view, nil
}

// GetSubgraphHandler handles neighbourhood reads around one entity
type GetSubgraphHandler struct {
	store   ports.GraphStore
	metrics ports.MetricsRecorder
	logger  *zap.Logger
}

// NewGetSubgraphHandler creates a new subgraph handler
func NewGetSubgraphHandler(store ports.GraphStore, metrics ports.MetricsRecorder, logger *zap.Logger) *GetSubgraphHandler {
	return &GetSubgraphHandler{store: store, metrics: metrics, logger: logger}
}

// Handle executes the subgraph query
func (h *GetSubgraphHandler) Handle(ctx context.Context, query queries.GetSubgraphQuery) (view *aggregates.GraphView, err error) {
	ctx, span := startSpan(ctx, "subgraph",
		attribute.String("entity_id", query.EntityID),
		attribute.Int("depth", query.Depth),
	)
	defer func() { finishSpan(span, err, view != nil && view.Metadata.Truncated) }()

	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	view, err = snap.Subgraph(query.EntityID, query.Depth, query.Limit, query.MinConfidence)
	if err != nil {
		return nil, err
	}
	recordTruncation(h.metrics, "subgraph", view.Metadata.Truncated)
	return view, nil
}

// GetEntityHandler reads a single entity
type GetEntityHandler struct {
	store ports.GraphStore
}

// NewGetEntityHandler creates a new get entity handler
func NewGetEntityHandler(store ports.GraphStore) *GetEntityHandler {
	return &GetEntityHandler{store: store}
}

// Handle executes the get entity query
func (h *GetEntityHandler) Handle(ctx context.Context, query queries.GetEntityQuery) (*entities.Entity, error) {
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := snap.Entity(query.ID)
	if !ok {
		return nil, apperrors.NewNotFoundError("entity " + query.ID)
	}
	return e.Clone(), nil
}

// GetRelationshipHandler reads a single relationship by its triple
type GetRelationshipHandler struct {
	store ports.GraphStore
}

// NewGetRelationshipHandler creates a new get relationship handler
func NewGetRelationshipHandler(store ports.GraphStore) *GetRelationshipHandler {
	return &GetRelationshipHandler{store: store}
}

// Handle executes the get relationship query
func (h *GetRelationshipHandler) Handle(ctx context.Context, query queries.GetRelationshipQuery) (*entities.Relationship, error) {
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	typ, err := entities.ParseRelationshipType(query.Type)
	if err != nil {
		return nil, err
	}
	key := entities.RelationshipKey{SourceID: query.SourceID, TargetID: query.TargetID, Type: typ}
	for _, r := range snap.Outgoing(query.SourceID) {
		if r.Key() == key {
			return r.Clone(), nil
		}
	}
	return nil, apperrors.NewNotFoundError("relationship " + key.String())
}

// GetGraphStatsHandler computes aggregate counts
type GetGraphStatsHandler struct {
	store    ports.GraphStore
	registry *appservices.EngineRegistry
	cache    *appservices.AnalyticsCache
}

// NewGetGraphStatsHandler creates a new stats handler
func NewGetGraphStatsHandler(store ports.GraphStore, registry *appservices.EngineRegistry, cache *appservices.AnalyticsCache) *GetGraphStatsHandler {
	return &GetGraphStatsHandler{store: store, registry: registry, cache: cache}
}

// Handle executes the stats query
func (h *GetGraphStatsHandler) Handle(ctx context.Context, query queries.GetGraphStatsQuery) (stats *services.GraphStats, err error) {
	ctx, span := startSpan(ctx, "stats")
	defer func() { finishSpan(span, err, false) }()

	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	analyzer := h.registry.Engines().Scorer.Analyzer()
	return appservices.Cached(ctx, h.cache, "stats", snap.Version(), query, func() (*services.GraphStats, error) {
		return services.ComputeStats(snap, analyzer), nil
	})
}
