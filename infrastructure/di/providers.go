package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pranavrajput12/PRSNL-sub011/application/commands"
	"github.com/pranavrajput12/PRSNL-sub011/application/commands/bus"
	cmdhandlers "github.com/pranavrajput12/PRSNL-sub011/application/commands/handlers"
	"github.com/pranavrajput12/PRSNL-sub011/application/mediator"
	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	"github.com/pranavrajput12/PRSNL-sub011/application/queries"
	querybus "github.com/pranavrajput12/PRSNL-sub011/application/queries/bus"
	queryhandlers "github.com/pranavrajput12/PRSNL-sub011/application/queries/handlers"
	appservices "github.com/pranavrajput12/PRSNL-sub011/application/services"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/cache"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/config"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/embedding"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/messaging"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/messaging/eventbridge"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/messaging/kafka"
	memorybus "github.com/pranavrajput12/PRSNL-sub011/infrastructure/messaging/memory"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/observability"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/persistence/dynamodb"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/persistence/memory"
	sqlstore "github.com/pranavrajput12/PRSNL-sub011/infrastructure/persistence/sql"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/projections/neo4j"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/relevance"
	"github.com/pranavrajput12/PRSNL-sub011/interfaces/http/rest"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, nil, err
	}
	logger = logger.With(zap.String("service", cfg.ServiceName), zap.String("environment", cfg.Environment))
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.DynamoDB.Region),
	)
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("prsnl_graph")
}

// ProvideMetricsRecorder exposes the collector to the application layer
func ProvideMetricsRecorder(collector *observability.Collector) ports.MetricsRecorder {
	return collector
}

// ProvideTracing installs the OTLP tracer provider when tracing is enabled.
// A nil provider leaves the global no-op tracer in place.
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.Observability.EnableTracing {
		return nil, func() {}, nil
	}
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.Observability.OTLPEndpoint,
		SampleRate:  cfg.Observability.SampleRate,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideEventBus creates the in-process bus that feeds local projections
func ProvideEventBus(logger *zap.Logger) *memorybus.EventBus {
	return memorybus.NewEventBus(logger)
}

// ProvideEventPublisher creates the publisher the store hands committed
// events to. Local subscribers always run; the external broker is chosen
// by EVENT_BACKEND.
func ProvideEventPublisher(cfg *config.Config, awsCfg aws.Config, local *memorybus.EventBus, logger *zap.Logger) (ports.EventPublisher, func(), error) {
	var external ports.EventPublisher
	cleanup := func() {}

	switch cfg.Events.Backend {
	case config.EventsEventBridge:
		client := awseventbridge.NewFromConfig(awsCfg)
		external = eventbridge.NewPublisher(client, cfg.Events.EventBusName, logger)
	case config.EventsKafka:
		writer := kafka.NewWriter(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic)
		publisher := kafka.NewPublisher(writer, cfg.Events.KafkaTopic, logger)
		external = publisher
		cleanup = func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("Kafka writer close failed", zap.Error(err))
			}
		}
	case config.EventsMemory:
	default:
		return nil, nil, fmt.Errorf("unknown event backend %q", cfg.Events.Backend)
	}

	logger.Info("Event publisher configured", zap.String("backend", cfg.Events.Backend))
	return messaging.NewDispatcher(external, local, logger), cleanup, nil
}

// ProvideGraphRepository opens the durable backend behind the store. The
// memory backend has none and returns nil.
func ProvideGraphRepository(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) (ports.GraphRepository, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return nil, func() {}, nil

	case config.StoreDynamoDB:
		client := awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
			if cfg.DynamoDB.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
			}
		})
		return dynamodb.NewGraphRepository(client, cfg.DynamoDB.Table, logger), func() {}, nil

	case config.StoreSQL:
		db, err := sqlstore.Open(cfg.SQL.Driver, cfg.SQL.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		repo, err := sqlstore.NewGraphRepository(db, logger)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return repo, func() { _ = sqlDB.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// ProvideMemoryStore builds the authoritative in-memory graph and loads it
// from the repository when one is configured.
func ProvideMemoryStore(ctx context.Context, cfg *config.Config, repo ports.GraphRepository, publisher ports.EventPublisher, logger *zap.Logger) (*memory.GraphStore, error) {
	store := memory.NewGraphStore(repo, publisher, cfg.Store.MaxEntities, logger)
	if repo != nil {
		if err := store.Load(ctx); err != nil {
			return nil, fmt.Errorf("failed to load graph: %w", err)
		}
	}
	return store, nil
}

// ProvideGraphStore wraps the store with spans and store metrics
func ProvideGraphStore(store *memory.GraphStore, collector *observability.Collector) ports.GraphStore {
	return observability.NewTracedGraphStore(store, collector)
}

// ProvideNeo4jClient connects to the graph mirror when it is enabled
func ProvideNeo4jClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*neo4j.Client, func(), error) {
	if !cfg.Neo4j.Enabled {
		return nil, func() {}, nil
	}
	client, err := neo4j.NewClient(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Close(ctx)
	}
	return client, cleanup, nil
}

// ProvideProjector subscribes the Neo4j projector to the local bus and
// resyncs the mirror from the loaded graph.
func ProvideProjector(ctx context.Context, client *neo4j.Client, bus *memorybus.EventBus, store ports.GraphStore, logger *zap.Logger) (*neo4j.Projector, error) {
	if client == nil {
		return nil, nil
	}
	projector := neo4j.NewProjector(client, logger)
	if err := projector.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	snap, err := store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if err := projector.Resync(ctx, snap); err != nil {
		// the mirror catches up on the next writes
		logger.Warn("Neo4j resync failed", zap.Error(err))
	}
	if err := bus.Subscribe(memorybus.AllEvents, projector); err != nil {
		return nil, err
	}
	return projector, nil
}

// ProvideRedisClient connects to Redis when an address is configured
func ProvideRedisClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redis.Client, func(), error) {
	if cfg.Cache.RedisAddr == "" {
		return nil, func() {}, nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Connected to Redis", zap.String("addr", cfg.Cache.RedisAddr))
	return client, func() { _ = client.Close() }, nil
}

// ProvideCache uses Redis when available and an in-process LRU otherwise
func ProvideCache(cfg *config.Config, client *redis.Client, logger *zap.Logger) (ports.Cache, func()) {
	if client != nil {
		return cache.NewRedisCache(client, logger), func() {}
	}
	lru := cache.NewInMemoryCache(cfg.Cache.MemorySize)
	return lru, lru.Stop
}

// ProvideRelevance reads persona relevance from Redis. Without Redis the
// suggester ranks on confidence alone.
func ProvideRelevance(client *redis.Client, logger *zap.Logger) ports.RelevanceProvider {
	if client == nil {
		return nil
	}
	return relevance.NewRedisProvider(client, relevance.DefaultHashKey, logger)
}

// ProvideEmbeddingProvider creates the Ollama client when backfill is enabled
func ProvideEmbeddingProvider(cfg *config.Config, logger *zap.Logger) ports.EmbeddingProvider {
	if !cfg.Embedding.Enabled {
		return nil
	}
	breaker := embedding.DefaultBreakerConfig()
	if cfg.Embedding.BreakerTimeout > 0 {
		breaker.Timeout = cfg.Embedding.BreakerTimeout
	}
	if cfg.Embedding.BreakerMaxFailed > 0 {
		breaker.MinRequests = cfg.Embedding.BreakerMaxFailed
	}
	return embedding.NewOllamaProvider(cfg.Embedding.BaseURL, cfg.Embedding.Model, cfg.Embedding.Timeout, breaker, logger)
}

// ProvideEngineRegistry creates the hot-swappable analytics engines
func ProvideEngineRegistry(cfg *config.Config, logger *zap.Logger) *appservices.EngineRegistry {
	return appservices.NewEngineRegistry(cfg.Analytics, logger)
}

// ProvideAnalyticsCache creates the version-keyed analytics result cache.
// The memory backend restarts its version at zero, so its keys carry a
// boot id.
func ProvideAnalyticsCache(cfg *config.Config, c ports.Cache, registry *appservices.EngineRegistry, logger *zap.Logger) *appservices.AnalyticsCache {
	analytics := appservices.NewAnalyticsCache(c, registry, cfg.Cache.TTL, logger)
	if cfg.Store.Backend == config.StoreMemory {
		bootID := uuid.NewString()
		logger.Debug("Scoping analytics cache to this process", zap.String("bootId", bootID))
		analytics.WithScope(bootID)
	}
	return analytics
}

// ProvideConfigWatcher reloads analytics tunables from the config file.
// Without a file there is nothing to watch.
func ProvideConfigWatcher(cfg *config.Config, registry *appservices.EngineRegistry, logger *zap.Logger) (*config.ConfigWatcher, func(), error) {
	if cfg.ConfigFile == "" {
		return nil, func() {}, nil
	}
	watcher, err := config.NewConfigWatcher(cfg.ConfigFile, cfg.Analytics, logger)
	if err != nil {
		return nil, nil, err
	}
	watcher.OnChange(registry.Apply)
	watcher.Start()
	return watcher, watcher.Stop, nil
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(store ports.GraphStore, embedder ports.EmbeddingProvider, logger *zap.Logger) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()

	upsertEntity := cmdhandlers.NewUpsertEntityHandler(store, embedder, logger)
	deleteEntity := cmdhandlers.NewDeleteEntityHandler(store, logger)
	upsertRelationship := cmdhandlers.NewUpsertRelationshipHandler(store, logger)
	deleteRelationship := cmdhandlers.NewDeleteRelationshipHandler(store, logger)
	applySuggestion := cmdhandlers.NewApplySuggestionHandler(store, logger)

	registrations := []struct {
		cmd     bus.Command
		handler func(context.Context, bus.Command) error
	}{
		{commands.UpsertEntityCommand{}, func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.UpsertEntityCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return upsertEntity.Handle(ctx, c)
		}},
		{commands.DeleteEntityCommand{}, func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.DeleteEntityCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteEntity.Handle(ctx, c)
		}},
		{commands.UpsertRelationshipCommand{}, func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.UpsertRelationshipCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return upsertRelationship.Handle(ctx, c)
		}},
		{commands.DeleteRelationshipCommand{}, func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.DeleteRelationshipCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteRelationship.Handle(ctx, c)
		}},
		{commands.ApplySuggestionCommand{}, func(ctx context.Context, cmd bus.Command) error {
			c, ok := cmd.(commands.ApplySuggestionCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return applySuggestion.Handle(ctx, c)
		}},
	}

	for _, r := range registrations {
		if err := commandBus.Register(r.cmd, &CommandHandlerAdapter{handler: r.handler}); err != nil {
			return nil, err
		}
	}
	return commandBus, nil
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// typedQuery builds an adapter for a handler of one concrete query type.
func typedQuery[Q querybus.Query, R any](handle func(context.Context, Q) (R, error)) *QueryHandlerAdapter {
	return &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(Q)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return handle(ctx, q)
		},
	}
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	store ports.GraphStore,
	registry *appservices.EngineRegistry,
	analyticsCache *appservices.AnalyticsCache,
	relevanceProvider ports.RelevanceProvider,
	metrics ports.MetricsRecorder,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	registrations := []struct {
		query   querybus.Query
		adapter *QueryHandlerAdapter
	}{
		{queries.GetFullGraphQuery{}, typedQuery(queryhandlers.NewGetFullGraphHandler(store, metrics, logger).Handle)},
		{queries.GetSubgraphQuery{}, typedQuery(queryhandlers.NewGetSubgraphHandler(store, metrics, logger).Handle)},
		{queries.GetEntityQuery{}, typedQuery(queryhandlers.NewGetEntityHandler(store).Handle)},
		{queries.GetRelationshipQuery{}, typedQuery(queryhandlers.NewGetRelationshipHandler(store).Handle)},
		{queries.GetGraphStatsQuery{}, typedQuery(queryhandlers.NewGetGraphStatsHandler(store, registry, analyticsCache).Handle)},
		{queries.SuggestRelationshipsQuery{}, typedQuery(queryhandlers.NewSuggestRelationshipsHandler(store, registry, relevanceProvider, metrics, logger).Handle)},
		{queries.DiscoverPathsQuery{}, typedQuery(queryhandlers.NewDiscoverPathsHandler(store, registry, metrics, logger).Handle)},
		{queries.ClusterEntitiesQuery{}, typedQuery(queryhandlers.NewClusterEntitiesHandler(store, registry, analyticsCache, metrics, logger).Handle)},
		{queries.AnalyzeGapsQuery{}, typedQuery(queryhandlers.NewAnalyzeGapsHandler(store, registry, analyticsCache, logger).Handle)},
	}

	for _, r := range registrations {
		if err := queryBus.Register(r.query, r.adapter); err != nil {
			return nil, err
		}
	}
	return queryBus, nil
}

// ProvideMediator creates the mediator with its pipeline behaviors
func ProvideMediator(cfg *config.Config, commandBus *bus.CommandBus, queryBus *querybus.QueryBus, metrics ports.MetricsRecorder, logger *zap.Logger) *mediator.Mediator {
	m := mediator.NewMediator(commandBus, queryBus, logger)
	m.AddBehavior(mediator.NewLoggingBehavior(logger))
	m.AddBehavior(mediator.NewValidationBehavior(logger))
	if cfg.Observability.EnableMetrics {
		m.AddBehavior(mediator.NewMetricsBehavior(metrics))
	}
	m.AddBehavior(mediator.NewPerformanceBehavior(logger,
		time.Duration(cfg.Observability.SlowCommandMs)*time.Millisecond,
		time.Duration(cfg.Observability.SlowQueryMs)*time.Millisecond,
	))
	return m
}

// ProvideReadinessChecks lists the dependencies /ready checks
func ProvideReadinessChecks(store ports.GraphStore, redisClient *redis.Client, neo4jClient *neo4j.Client) []rest.ReadinessCheck {
	checks := []rest.ReadinessCheck{{
		Name: "store",
		Check: func(ctx context.Context) error {
			_, err := store.Snapshot(ctx)
			return err
		},
	}}
	if redisClient != nil {
		checks = append(checks, rest.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	if neo4jClient != nil {
		checks = append(checks, rest.ReadinessCheck{Name: "neo4j", Check: neo4jClient.Ping})
	}
	return checks
}

// ProvideRouter builds the HTTP surface shared by the server and Lambda
func ProvideRouter(cfg *config.Config, m *mediator.Mediator, collector *observability.Collector, checks []rest.ReadinessCheck, logger *zap.Logger) *chi.Mux {
	var metrics *observability.Collector
	if cfg.Observability.EnableMetrics {
		metrics = collector
	}
	return rest.NewRouter(m, metrics, checks, rest.RouterConfig{
		ServiceName:    cfg.ServiceName,
		EnableCORS:     cfg.Server.EnableCORS,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Debug:          cfg.IsDevelopment(),
		RequestTimeout: cfg.Server.WriteTimeout,
	}, logger).Setup()
}
