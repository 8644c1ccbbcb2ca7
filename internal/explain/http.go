// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package explain

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/merchantry/merchantry/internal/cache"
	"github.com/merchantry/merchantry/internal/metrics"
	"github.com/merchantry/merchantry/internal/recommend"
	"github.com/merchantry/merchantry/internal/store"
)

// HTTPConfig holds settings for the external explanation service.
type HTTPConfig struct {
	// Endpoint is the URL the explanation request is POSTed to.
	Endpoint string `json:"endpoint" koanf:"endpoint"`

	// Timeout bounds each request to the service. Default: 2s.
	Timeout time.Duration `json:"timeout" koanf:"timeout"`

	// RequestsPerSecond caps outbound request rate. Default: 10.
	RequestsPerSecond float64 `json:"requests_per_second" koanf:"requests_per_second"`

	// Burst is the rate limiter burst size. Default: 20.
	Burst int `json:"burst" koanf:"burst"`
}

// DefaultHTTPConfig returns the default service settings.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:           2 * time.Second,
		RequestsPerSecond: 10,
		Burst:             20,
	}
}

// HTTPExplainer asks an external text-generation service for explanations.
// Calls are protected by a circuit breaker and a client-side rate limiter,
// and successful responses are cached. Any failure, including an open
// circuit or an exhausted rate limit, falls back to a static template so
// the caller always receives usable text.
type HTTPExplainer struct {
	cfg     HTTPConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[string]
	limiter *rate.Limiter
	texts   *cache.Cache[string]
	logger  zerolog.Logger
}

// explainRequest is the wire format sent to the explanation service.
type explainRequest struct {
	UserID    string  `json:"user_id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Strategy  string  `json:"strategy"`
}

// explainResponse is the wire format returned by the explanation service.
type explainResponse struct {
	Explanation string `json:"explanation"`
}

// NewHTTPExplainer creates an explainer backed by an external service.
// The texts cache stores generated explanations keyed by user, product,
// and strategy.
func NewHTTPExplainer(cfg HTTPConfig, texts *cache.Cache[string], logger zerolog.Logger) (*HTTPExplainer, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("explain: endpoint is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultHTTPConfig().Timeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultHTTPConfig().RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultHTTPConfig().Burst
	}
	if texts == nil {
		return nil, fmt.Errorf("explain: texts cache is required")
	}

	log := logger.With().Str("component", "explain").Logger()

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			log.Warn().
				Str("breaker", name).
				Str("from", breakerStateString(from)).
				Str("to", breakerStateString(to)).
				Msg("Explanation service circuit breaker state changed")
		},
	})

	return &HTTPExplainer{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		texts:   texts,
		logger:  log,
	}, nil
}

// Explain returns generated text for the recommendation, or a static
// fallback when the service cannot be reached.
func (e *HTTPExplainer) Explain(ctx context.Context, userID string, product store.Product, strategy recommend.Strategy) string {
	key := cache.GenerateKey("explanation", struct {
		UserID    string `json:"user_id"`
		ProductID string `json:"product_id"`
		Strategy  string `json:"strategy"`
	}{UserID: userID, ProductID: product.ID, Strategy: string(strategy)})

	if text, ok := e.texts.Get(key); ok {
		return text
	}

	if !e.limiter.Allow() {
		e.logger.Debug().Str("product_id", product.ID).Msg("Explanation rate limit exhausted, using static fallback")
		return staticReason(product, strategy)
	}

	text, err := e.breaker.Execute(func() (string, error) {
		return e.generate(ctx, userID, product, strategy)
	})
	if err != nil {
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, breakerResult(err)).Inc()
		e.logger.Debug().Err(err).Str("product_id", product.ID).Msg("Explanation service unavailable, using static fallback")
		return staticReason(product, strategy)
	}
	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()

	if err := e.texts.Set(key, text); err != nil {
		e.logger.Debug().Err(err).Msg("Failed to cache explanation")
	}
	return text
}

// generate performs one request against the explanation service.
func (e *HTTPExplainer) generate(ctx context.Context, userID string, product store.Product, strategy recommend.Strategy) (string, error) {
	body, err := json.Marshal(explainRequest{
		UserID:    userID,
		ProductID: product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Price:     product.Price,
		Strategy:  string(strategy),
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("explanation service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // drain for connection reuse
		return "", fmt.Errorf("explanation service returned status %d", resp.StatusCode)
	}

	var out explainResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Explanation == "" {
		return "", fmt.Errorf("explanation service returned empty text")
	}
	return out.Explanation, nil
}

// BreakerState reports the current circuit breaker state for status endpoints.
func (e *HTTPExplainer) BreakerState() string {
	return breakerStateString(e.breaker.State())
}

const breakerName = "explanation-service"

func breakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func breakerResult(err error) string {
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return "rejected"
	}
	return "failure"
}

var _ recommend.Explainer = (*HTTPExplainer)(nil)
