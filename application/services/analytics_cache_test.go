package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainservices "github.com/pranavrajput12/PRSNL-sub011/domain/services"
	"github.com/pranavrajput12/PRSNL-sub011/internal/testutil/mocks"
)

type sample struct {
	Count int `json:"count"`
}

func TestAnalyticsCache_KeyTracksVersionAndGeneration(t *testing.T) {
	registry := NewEngineRegistry(domainservices.DefaultAnalyticsConfig(), zap.NewNop())
	c := NewAnalyticsCache(new(mocks.MockCache), registry, time.Minute, zap.NewNop())
	params := map[string]int{"limit": 10}

	k1, err := c.Key("gaps", 1, params)
	require.NoError(t, err)
	k2, _ := c.Key("gaps", 2, params)
	assert.NotEqual(t, k1, k2)

	registry.Apply(domainservices.DefaultAnalyticsConfig())
	k3, _ := c.Key("gaps", 1, params)
	assert.NotEqual(t, k1, k3)
	assert.Contains(t, k3, "analytics:gaps:v1:g1:")
}

func TestAnalyticsCache_ScopePrefixesKey(t *testing.T) {
	params := map[string]int{"limit": 10}

	tests := []struct {
		name   string
		scope  string
		prefix string
	}{
		{name: "unscoped", scope: "", prefix: "analytics:gaps:v3:g0:"},
		{name: "scoped", scope: "boot-1", prefix: "analytics:boot-1:gaps:v3:g0:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewEngineRegistry(domainservices.DefaultAnalyticsConfig(), zap.NewNop())
			c := NewAnalyticsCache(new(mocks.MockCache), registry, time.Minute, zap.NewNop()).WithScope(tt.scope)

			key, err := c.Key("gaps", 3, params)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(key, tt.prefix), key)
		})
	}

	t.Run("restarted processes do not share keys", func(t *testing.T) {
		first := NewAnalyticsCache(nil, nil, time.Minute, zap.NewNop()).WithScope("boot-1")
		second := NewAnalyticsCache(nil, nil, time.Minute, zap.NewNop()).WithScope("boot-2")

		k1, _ := first.Key("gaps", 0, params)
		k2, _ := second.Key("gaps", 0, params)
		assert.NotEqual(t, k1, k2)
	})
}

func TestCached_ComputeErrorIsNotStored(t *testing.T) {
	cache := new(mocks.MockCache)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, false)
	c := NewAnalyticsCache(cache, nil, time.Minute, zap.NewNop())

	_, err := Cached(context.Background(), c, "clustering", 1, "q", func() (*sample, error) {
		return nil, errors.New("boom")
	})

	assert.Error(t, err)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCached_SetFailureStillReturnsResult(t *testing.T) {
	cache := new(mocks.MockCache)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, false)
	cache.On("Set", mock.Anything, mock.Anything, []byte(`{"count":3}`), time.Minute).Return(errors.New("redis down"))
	c := NewAnalyticsCache(cache, nil, time.Minute, zap.NewNop())

	got, err := Cached(context.Background(), c, "stats", 7, "q", func() (*sample, error) {
		return &sample{Count: 3}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, got.Count)
	cache.AssertExpectations(t)
}

func TestCached_NilCacheComputes(t *testing.T) {
	got, err := Cached(context.Background(), nil, "stats", 1, nil, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestEngineRegistry_ApplySwapsEngines(t *testing.T) {
	registry := NewEngineRegistry(domainservices.DefaultAnalyticsConfig(), zap.NewNop())
	before := registry.Engines()

	cfg := domainservices.DefaultAnalyticsConfig()
	cfg.Clustering.MaxEntities = 42
	registry.Apply(cfg)

	assert.NotSame(t, before, registry.Engines())
	assert.Equal(t, 42, registry.Engines().Config.Clustering.MaxEntities)
	assert.Equal(t, uint64(1), registry.Generation())
}
