package relevance

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeHash struct {
	vals []interface{}
	err  error
	key  string
}

func (f *fakeHash) HMGet(ctx context.Context, key string, fields ...string) *redis.SliceCmd {
	f.key = key
	return redis.NewSliceResult(f.vals, f.err)
}

func TestRedisProvider_Relevance(t *testing.T) {
	hash := &fakeHash{vals: []interface{}{"1.5", nil, "bogus", "-2", "0.25"}}
	p := NewRedisProvider(hash, "", zap.NewNop())

	got, err := p.Relevance(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Equal(t, DefaultHashKey, hash.key)
	assert.Equal(t, map[string]float64{"a": 1.5, "e": 0.25}, got)
}

func TestRedisProvider_Error(t *testing.T) {
	p := NewRedisProvider(&fakeHash{err: errors.New("timeout")}, "k", zap.NewNop())
	_, err := p.Relevance(context.Background(), []string{"a"})
	assert.Error(t, err)
}

func TestRedisProvider_NoIDs(t *testing.T) {
	hash := &fakeHash{}
	got, err := NewRedisProvider(hash, "k", zap.NewNop()).Relevance(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, hash.key)
}
