//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideMetrics,
	ProvideMetricsRecorder,
	ProvideTracing,
	ProvideEventBus,
	ProvideEventPublisher,
	ProvideGraphRepository,
	ProvideMemoryStore,
	ProvideGraphStore,
	ProvideNeo4jClient,
	ProvideProjector,
	ProvideRedisClient,
	ProvideCache,
	ProvideRelevance,
	ProvideEmbeddingProvider,
	ProvideEngineRegistry,
	ProvideAnalyticsCache,
	ProvideConfigWatcher,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideMediator,
	ProvideReadinessChecks,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
