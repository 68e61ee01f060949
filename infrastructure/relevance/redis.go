package relevance

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
)

// DefaultHashKey is the Redis hash the persona service writes
// entity-id -> relevance multiplier pairs into.
const DefaultHashKey = "prsnl:persona:relevance"

// HashReader is the Redis command the provider uses.
type HashReader interface {
	HMGet(ctx context.Context, key string, fields ...string) *redis.SliceCmd
}

// RedisProvider reads relevance multipliers from a Redis hash. Missing or
// unparsable fields are left out so callers fall back to a weight of 1.
type RedisProvider struct {
	client  HashReader
	hashKey string
	logger  *zap.Logger
}

// NewRedisProvider creates a provider reading hashKey
func NewRedisProvider(client HashReader, hashKey string, logger *zap.Logger) *RedisProvider {
	if hashKey == "" {
		hashKey = DefaultHashKey
	}
	return &RedisProvider{client: client, hashKey: hashKey, logger: logger}
}

var _ ports.RelevanceProvider = (*RedisProvider)(nil)

// Relevance returns the multipliers known for entityIDs
func (p *RedisProvider) Relevance(ctx context.Context, entityIDs []string) (map[string]float64, error) {
	if len(entityIDs) == 0 {
		return map[string]float64{}, nil
	}

	vals, err := p.client.HMGet(ctx, p.hashKey, entityIDs...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading relevance weights: %w", err)
	}

	out := make(map[string]float64, len(entityIDs))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		w, err := strconv.ParseFloat(s, 64)
		if err != nil || w < 0 {
			p.logger.Debug("Ignoring invalid relevance weight",
				zap.String("entityID", entityIDs[i]),
				zap.String("value", s),
			)
			continue
		}
		out[entityIDs[i]] = w
	}
	return out, nil
}
