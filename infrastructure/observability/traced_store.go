package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
)

// TracedGraphStore decorates a GraphStore with a span and metrics per call.
type TracedGraphStore struct {
	next    ports.GraphStore
	tracer  trace.Tracer
	metrics *Collector
}

// NewTracedGraphStore wraps next. metrics may be nil.
func NewTracedGraphStore(next ports.GraphStore, metrics *Collector) *TracedGraphStore {
	return &TracedGraphStore{
		next:    next,
		tracer:  otel.Tracer("github.com/pranavrajput12/PRSNL-sub011/infrastructure/store"),
		metrics: metrics,
	}
}

var _ ports.GraphStore = (*TracedGraphStore)(nil)

func (s *TracedGraphStore) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	began := time.Now()
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if s.metrics != nil {
			s.metrics.RecordStoreOperation(op, time.Since(began), err)
		}
	}
}

// UpsertEntity creates or updates an entity
func (s *TracedGraphStore) UpsertEntity(ctx context.Context, e *entities.Entity) (created bool, err error) {
	ctx, end := s.start(ctx, "upsert_entity", attribute.String("entity.id", e.ID))
	defer func() { end(err) }()
	return s.next.UpsertEntity(ctx, e)
}

// DeleteEntity removes an entity and its relationships
func (s *TracedGraphStore) DeleteEntity(ctx context.Context, id string) (removed []entities.RelationshipKey, err error) {
	ctx, end := s.start(ctx, "delete_entity", attribute.String("entity.id", id))
	defer func() { end(err) }()
	return s.next.DeleteEntity(ctx, id)
}

// UpsertRelationship creates or updates an edge
func (s *TracedGraphStore) UpsertRelationship(ctx context.Context, r *entities.Relationship) (stored *entities.Relationship, created bool, err error) {
	ctx, end := s.start(ctx, "upsert_relationship",
		attribute.String("relationship.source", r.SourceID),
		attribute.String("relationship.target", r.TargetID),
		attribute.String("relationship.type", string(r.Type)),
	)
	defer func() { end(err) }()
	return s.next.UpsertRelationship(ctx, r)
}

// DeleteRelationship removes an edge
func (s *TracedGraphStore) DeleteRelationship(ctx context.Context, key entities.RelationshipKey) (err error) {
	ctx, end := s.start(ctx, "delete_relationship", attribute.String("relationship.key", key.String()))
	defer func() { end(err) }()
	return s.next.DeleteRelationship(ctx, key)
}

// Snapshot returns the current view
func (s *TracedGraphStore) Snapshot(ctx context.Context) (snap *aggregates.Snapshot, err error) {
	ctx, end := s.start(ctx, "snapshot")
	defer func() {
		if snap != nil && s.metrics != nil {
			s.metrics.GraphEntities.Set(float64(snap.EntityCount()))
		}
		end(err)
	}()
	return s.next.Snapshot(ctx)
}
