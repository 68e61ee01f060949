package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	commandbus "github.com/pranavrajput12/PRSNL-sub011/application/commands/bus"
	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	querybus "github.com/pranavrajput12/PRSNL-sub011/application/queries/bus"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/events"
)

// MockGraphStore is a mock implementation of ports.GraphStore
type MockGraphStore struct {
	mock.Mock
}

func (m *MockGraphStore) UpsertEntity(ctx context.Context, e *entities.Entity) (bool, error) {
	args := m.Called(ctx, e)
	return args.Bool(0), args.Error(1)
}

func (m *MockGraphStore) DeleteEntity(ctx context.Context, id string) ([]entities.RelationshipKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.RelationshipKey), args.Error(1)
}

func (m *MockGraphStore) UpsertRelationship(ctx context.Context, r *entities.Relationship) (*entities.Relationship, bool, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.Relationship), args.Bool(1), args.Error(2)
}

func (m *MockGraphStore) DeleteRelationship(ctx context.Context, key entities.RelationshipKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockGraphStore) Snapshot(ctx context.Context) (*aggregates.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aggregates.Snapshot), args.Error(1)
}

// MockGraphRepository is a mock implementation of ports.GraphRepository
type MockGraphRepository struct {
	mock.Mock
}

func (m *MockGraphRepository) Load(ctx context.Context) (*ports.GraphState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.GraphState), args.Error(1)
}

func (m *MockGraphRepository) SaveEntity(ctx context.Context, e *entities.Entity, version uint64) error {
	args := m.Called(ctx, e, version)
	return args.Error(0)
}

func (m *MockGraphRepository) DeleteEntity(ctx context.Context, id string, removed []entities.RelationshipKey, version uint64) error {
	args := m.Called(ctx, id, removed, version)
	return args.Error(0)
}

func (m *MockGraphRepository) SaveRelationship(ctx context.Context, r *entities.Relationship, version uint64) error {
	args := m.Called(ctx, r, version)
	return args.Error(0)
}

func (m *MockGraphRepository) DeleteRelationship(ctx context.Context, key entities.RelationshipKey, version uint64) error {
	args := m.Called(ctx, key, version)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

// MockCache is a mock implementation of ports.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, bool) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]byte), args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockEmbeddingProvider is a mock implementation of ports.EmbeddingProvider
type MockEmbeddingProvider struct {
	mock.Mock
}

func (m *MockEmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockRelevanceProvider is a mock implementation of ports.RelevanceProvider
type MockRelevanceProvider struct {
	mock.Mock
}

func (m *MockRelevanceProvider) Relevance(ctx context.Context, entityIDs []string) (map[string]float64, error) {
	args := m.Called(ctx, entityIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

// MockMetricsRecorder is a mock implementation of ports.MetricsRecorder
type MockMetricsRecorder struct {
	mock.Mock
}

func (m *MockMetricsRecorder) RecordCommand(name string, duration time.Duration, err error) {
	m.Called(name, duration, err)
}

func (m *MockMetricsRecorder) RecordQuery(name string, duration time.Duration, err error) {
	m.Called(name, duration, err)
}

func (m *MockMetricsRecorder) RecordTruncation(operation string) {
	m.Called(operation)
}

// MockMediator is a mock implementation of mediator.IMediator
type MockMediator struct {
	mock.Mock
}

func (m *MockMediator) Send(ctx context.Context, command commandbus.Command) error {
	args := m.Called(ctx, command)
	return args.Error(0)
}

func (m *MockMediator) Query(ctx context.Context, query querybus.Query) (interface{}, error) {
	args := m.Called(ctx, query)
	return args.Get(0), args.Error(1)
}
