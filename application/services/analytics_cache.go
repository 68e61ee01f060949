package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
)

// AnalyticsCache memoises analytics results. Keys embed the store version
// and the engine generation, so any write or config reload makes older
// entries unreachable and they simply expire.
type AnalyticsCache struct {
	cache    ports.Cache
	registry *EngineRegistry
	ttl      time.Duration
	scope    string
	logger   *zap.Logger
}

// NewAnalyticsCache creates a cache helper. A nil cache disables caching.
func NewAnalyticsCache(cache ports.Cache, registry *EngineRegistry, ttl time.Duration, logger *zap.Logger) *AnalyticsCache {
	return &AnalyticsCache{cache: cache, registry: registry, ttl: ttl, logger: logger}
}

// WithScope prefixes every key with scope. A store whose version restarts
// at zero on boot must pass a per-process value so a shared cache never
// serves results computed over another graph.
func (c *AnalyticsCache) WithScope(scope string) *AnalyticsCache {
	c.scope = scope
	return c
}

// Key builds the cache key of one analytics call.
func (c *AnalyticsCache) Key(operation string, storeVersion uint64, params any) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key params: %w", err)
	}
	sum := sha256.Sum256(raw)
	var gen uint64
	if c.registry != nil {
		gen = c.registry.Generation()
	}
	key := fmt.Sprintf("%s:v%d:g%d:%s", operation, storeVersion, gen, hex.EncodeToString(sum[:8]))
	if c.scope != "" {
		return "analytics:" + c.scope + ":" + key, nil
	}
	return "analytics:" + key, nil
}

// Cached returns the cached result for the call or computes and stores it.
// Cache failures never fail the call.
func Cached[T any](ctx context.Context, c *AnalyticsCache, operation string, storeVersion uint64, params any, compute func() (T, error)) (T, error) {
	if c == nil || c.cache == nil {
		return compute()
	}

	key, err := c.Key(operation, storeVersion, params)
	if err != nil {
		c.logger.Warn("Skipping analytics cache", zap.String("operation", operation), zap.Error(err))
		return compute()
	}

	if raw, ok := c.cache.Get(ctx, key); ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			c.logger.Debug("Analytics cache hit", zap.String("key", key))
			return cached, nil
		}
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
	}

	result, err := compute()
	if err != nil {
		return result, err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("Failed to encode analytics result", zap.String("operation", operation), zap.Error(err))
		return result, nil
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("Failed to store analytics result", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}
