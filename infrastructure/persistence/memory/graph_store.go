package memory

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/events"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// GraphStore is the authoritative in-process graph. Writes are serialised by
// a mutex and, when a repository is configured, written through before they
// become visible. Readers share an immutable snapshot that is rebuilt lazily
// after each write.
type GraphStore struct {
	mu          sync.RWMutex
	graph       *aggregates.Graph
	snapshot    *aggregates.Snapshot
	repo        ports.GraphRepository
	publisher   ports.EventPublisher
	maxEntities int
	logger      *zap.Logger
}

// NewGraphStore creates an empty store. repo and publisher may be nil;
// maxEntities <= 0 disables the capacity check.
func NewGraphStore(repo ports.GraphRepository, publisher ports.EventPublisher, maxEntities int, logger *zap.Logger) *GraphStore {
	return &GraphStore{
		graph:       aggregates.NewGraph(),
		repo:        repo,
		publisher:   publisher,
		maxEntities: maxEntities,
		logger:      logger,
	}
}

// Load replaces the in-memory state with the repository contents.
func (s *GraphStore) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	state, err := s.repo.Load(ctx)
	if err != nil {
		return apperrors.Wrapf(err, "load graph from %T", s.repo)
	}

	s.mu.Lock()
	s.graph = aggregates.ReconstructGraph(state.Version, state.Entities, state.Relationships)
	s.snapshot = nil
	s.mu.Unlock()

	s.logger.Info("Graph loaded from repository",
		zap.Uint64("version", state.Version),
		zap.Int("entities", len(state.Entities)),
		zap.Int("relationships", len(state.Relationships)),
	)
	return nil
}

// UpsertEntity creates or updates an entity
func (s *GraphStore) UpsertEntity(ctx context.Context, e *entities.Entity) (bool, error) {
	var created bool
	err := s.write(ctx, func(g *aggregates.Graph) (func(context.Context) error, error) {
		if s.maxEntities > 0 && !g.HasEntity(e.ID) && g.EntityCount() >= s.maxEntities {
			return nil, apperrors.NewResourceExhaustedError("entities", s.maxEntities)
		}
		var err error
		if created, err = g.UpsertEntity(e); err != nil {
			return nil, err
		}
		stored, _ := g.GetEntity(e.ID)
		version := g.Version()
		return func(ctx context.Context) error {
			return s.repo.SaveEntity(ctx, stored, version)
		}, nil
	})
	return created, err
}

// DeleteEntity removes an entity together with its relationships
func (s *GraphStore) DeleteEntity(ctx context.Context, id string) ([]entities.RelationshipKey, error) {
	var removed []entities.RelationshipKey
	err := s.write(ctx, func(g *aggregates.Graph) (func(context.Context) error, error) {
		var err error
		if removed, err = g.DeleteEntity(id); err != nil {
			return nil, err
		}
		version := g.Version()
		return func(ctx context.Context) error {
			return s.repo.DeleteEntity(ctx, id, removed, version)
		}, nil
	})
	return removed, err
}

// UpsertRelationship creates an edge or updates the existing triple
func (s *GraphStore) UpsertRelationship(ctx context.Context, r *entities.Relationship) (*entities.Relationship, bool, error) {
	var (
		stored  *entities.Relationship
		created bool
	)
	err := s.write(ctx, func(g *aggregates.Graph) (func(context.Context) error, error) {
		var err error
		if stored, created, err = g.UpsertRelationship(r); err != nil {
			return nil, err
		}
		version := g.Version()
		return func(ctx context.Context) error {
			return s.repo.SaveRelationship(ctx, stored, version)
		}, nil
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// DeleteRelationship removes one edge by identity
func (s *GraphStore) DeleteRelationship(ctx context.Context, key entities.RelationshipKey) error {
	return s.write(ctx, func(g *aggregates.Graph) (func(context.Context) error, error) {
		if err := g.DeleteRelationship(key); err != nil {
			return nil, err
		}
		version := g.Version()
		return func(ctx context.Context) error {
			return s.repo.DeleteRelationship(ctx, key, version)
		}, nil
	})
}

// Snapshot returns the current consistent view
func (s *GraphStore) Snapshot(ctx context.Context) (*aggregates.Snapshot, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSnapshot(), nil
}

// currentSnapshot must be called with the write lock held.
func (s *GraphStore) currentSnapshot() *aggregates.Snapshot {
	if s.snapshot == nil {
		s.snapshot = s.graph.Snapshot()
	}
	return s.snapshot
}

// write applies mutate under the lock, persists the change and publishes the
// resulting events. A failed persist restores the previous state so callers
// never observe a change the repository did not accept.
func (s *GraphStore) write(ctx context.Context, mutate func(*aggregates.Graph) (func(context.Context) error, error)) error {
	s.mu.Lock()

	var before *aggregates.Snapshot
	if s.repo != nil {
		before = s.currentSnapshot()
	}

	persist, err := mutate(s.graph)
	if err != nil {
		s.graph.MarkEventsAsCommitted()
		s.mu.Unlock()
		return err
	}

	if s.repo != nil {
		if err := persist(ctx); err != nil {
			s.graph = aggregates.ReconstructGraph(before.Version(), before.Entities(), before.Relationships())
			s.snapshot = before
			s.mu.Unlock()
			s.logger.Error("Graph write rolled back", zap.Error(err))
			if apperrors.GetAppError(err) != nil {
				return err
			}
			return apperrors.NewDatabaseError("persist graph change", err)
		}
	}

	pending := s.graph.GetUncommittedEvents()
	s.graph.MarkEventsAsCommitted()
	s.snapshot = nil
	s.mu.Unlock()

	s.publish(ctx, pending)
	return nil
}

// publish delivers committed events. The write has already succeeded, so
// delivery failures are logged only.
func (s *GraphStore) publish(ctx context.Context, pending []events.DomainEvent) {
	if s.publisher == nil || len(pending) == 0 {
		return
	}
	if err := s.publisher.PublishBatch(ctx, pending); err != nil {
		s.logger.Warn("Failed to publish graph events",
			zap.Int("count", len(pending)),
			zap.String("firstType", pending[0].GetEventType()),
			zap.Error(err),
		)
	}
}

// String is used in logs.
func (s *GraphStore) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("memory.GraphStore{version=%d, entities=%d}", s.graph.Version(), s.graph.EntityCount())
}
