package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

func TestOllamaProvider_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "graph theory", req.Prompt)

		_ = json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "", time.Second, DefaultBreakerConfig(), zap.NewNop())
	got, err := p.Embed(context.Background(), "graph theory")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got)
}

func TestOllamaProvider_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "m", time.Second, DefaultBreakerConfig(), zap.NewNop())
	_, err := p.Embed(context.Background(), "x")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestOllamaProvider_BreakerOpens(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := DefaultBreakerConfig()
	cfg.MinRequests = 2
	cfg.FailureThreshold = 0.5
	p := NewOllamaProvider(server.URL, "m", time.Second, cfg, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, _ = p.Embed(context.Background(), "x")
	}
	assert.Equal(t, gobreaker.StateOpen, p.State())

	_, err := p.Embed(context.Background(), "x")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
	assert.Equal(t, 2, calls)
}
