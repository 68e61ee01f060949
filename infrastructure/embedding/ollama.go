package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// BreakerConfig holds configuration for the provider's circuit breaker
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig trips at 80% failures over at least 5 calls and
// retries after a minute.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// OllamaProvider produces embeddings through the Ollama HTTP API.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaProvider creates a provider. Empty baseURL and model fall back to
// a local Ollama with nomic-embed-text.
func NewOllamaProvider(baseURL, model string, timeout time.Duration, cfg BreakerConfig, logger *zap.Logger) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	p := &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ollama-embeddings",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// a cancelled caller says nothing about the provider's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return p
}

var _ ports.EmbeddingProvider = (*OllamaProvider)(nil)

// Embed returns the embedding for text
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := p.breaker.Execute(func() (interface{}, error) {
		return p.embed(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperrors.NewUnavailableError("embedding provider").WithCause(err)
		}
		return nil, apperrors.NewExternalError("ollama", err)
	}
	return out.([]float32), nil
}

// State exposes the breaker state for readiness reporting.
func (p *OllamaProvider) State() gobreaker.State {
	return p.breaker.State()
}

func (p *OllamaProvider) embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, errors.New("ollama returned an empty embedding")
	}

	p.logger.Debug("Embedding generated",
		zap.String("model", p.model),
		zap.Int("dimensions", len(parsed.Embedding)),
		zap.Duration("duration", time.Since(start)),
	)
	return parsed.Embedding, nil
}
