package services

import (
	"sync/atomic"

	"go.uber.org/zap"

	domainservices "github.com/pranavrajput12/PRSNL-sub011/domain/services"
)

// EngineRegistry holds the analytics engines built from the current
// configuration. Handlers read it on every call so a reload takes effect
// for the next request without blocking in-flight ones.
type EngineRegistry struct {
	current    atomic.Pointer[domainservices.Engines]
	generation atomic.Uint64
	logger     *zap.Logger
}

// NewEngineRegistry creates a registry seeded with config.
func NewEngineRegistry(config domainservices.AnalyticsConfig, logger *zap.Logger) *EngineRegistry {
	r := &EngineRegistry{logger: logger}
	r.current.Store(domainservices.NewEngines(config))
	return r
}

// Engines returns the active engine set.
func (r *EngineRegistry) Engines() *domainservices.Engines {
	return r.current.Load()
}

// Generation counts configuration swaps. It is part of every analytics
// cache key.
func (r *EngineRegistry) Generation() uint64 {
	return r.generation.Load()
}

// Apply swaps in engines built from config.
func (r *EngineRegistry) Apply(config domainservices.AnalyticsConfig) {
	r.current.Store(domainservices.NewEngines(config))
	gen := r.generation.Add(1)
	r.logger.Info("Analytics configuration applied",
		zap.Uint64("generation", gen),
		zap.Float64("semanticWeight", config.Similarity.SemanticWeight),
		zap.Int("maxClusterEntities", config.Clustering.MaxEntities),
	)
}
