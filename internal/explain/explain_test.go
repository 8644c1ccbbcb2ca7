// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package explain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchantry/merchantry/internal/cache"
	"github.com/merchantry/merchantry/internal/recommend"
	"github.com/merchantry/merchantry/internal/store"
)

var testProduct = store.Product{
	ID:         "prod_a",
	Name:       "Trail Runner",
	Category:   "footwear",
	Price:      89.99,
	Popularity: 80,
}

func newTextCache(t *testing.T) *cache.Cache[string] {
	t.Helper()
	return cache.New[string](100, time.Hour)
}

func TestStaticExplainer_ReasonPerStrategy(t *testing.T) {
	e := NewStaticExplainer()
	ctx := context.Background()

	cold := e.Explain(ctx, "user_1", testProduct, recommend.StrategyColdStart)
	warm := e.Explain(ctx, "user_1", testProduct, recommend.StrategyWarmStart)
	hybrid := e.Explain(ctx, "user_1", testProduct, recommend.StrategyHybrid)

	assert.Contains(t, cold, "popular")
	assert.Contains(t, warm, "similar to products you've purchased")
	assert.Contains(t, hybrid, "similar taste")
	for _, text := range []string{cold, warm, hybrid} {
		assert.Contains(t, text, testProduct.Name)
	}
}

func TestHTTPExplainer_UsesServiceResponse(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req explainRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user_1", req.UserID)
		assert.Equal(t, "prod_a", req.ProductID)
		assert.Equal(t, "hybrid", req.Strategy)

		json.NewEncoder(w).Encode(explainResponse{Explanation: "Because you love running."}) //nolint:errcheck
	}))
	defer srv.Close()

	e, err := NewHTTPExplainer(HTTPConfig{Endpoint: srv.URL}, newTextCache(t), zerolog.Nop())
	require.NoError(t, err)

	text := e.Explain(context.Background(), "user_1", testProduct, recommend.StrategyHybrid)
	assert.Equal(t, "Because you love running.", text)
	assert.Equal(t, int64(1), calls.Load())
}

func TestHTTPExplainer_CachesGeneratedText(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(explainResponse{Explanation: "Generated once."}) //nolint:errcheck
	}))
	defer srv.Close()

	e, err := NewHTTPExplainer(HTTPConfig{Endpoint: srv.URL}, newTextCache(t), zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		assert.Equal(t, "Generated once.", e.Explain(ctx, "user_1", testProduct, recommend.StrategyHybrid))
	}
	assert.Equal(t, int64(1), calls.Load(), "repeat explanations should be served from cache")

	// A different strategy is a different cache entry.
	e.Explain(ctx, "user_1", testProduct, recommend.StrategyColdStart)
	assert.Equal(t, int64(2), calls.Load())
}

func TestHTTPExplainer_FallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e, err := NewHTTPExplainer(HTTPConfig{Endpoint: srv.URL}, newTextCache(t), zerolog.Nop())
	require.NoError(t, err)

	text := e.Explain(context.Background(), "user_1", testProduct, recommend.StrategyWarmStart)
	assert.Equal(t, staticReason(testProduct, recommend.StrategyWarmStart), text)
}

func TestHTTPExplainer_FallsBackOnEmptyExplanation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(explainResponse{}) //nolint:errcheck
	}))
	defer srv.Close()

	e, err := NewHTTPExplainer(HTTPConfig{Endpoint: srv.URL}, newTextCache(t), zerolog.Nop())
	require.NoError(t, err)

	text := e.Explain(context.Background(), "user_1", testProduct, recommend.StrategyHybrid)
	assert.Equal(t, staticReason(testProduct, recommend.StrategyHybrid), text)
}

func TestHTTPExplainer_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	e, err := NewHTTPExplainer(HTTPConfig{
		Endpoint:          srv.URL,
		RequestsPerSecond: 1000,
		Burst:             1000,
	}, newTextCache(t), zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	products := []store.Product{
		{ID: "prod_1", Name: "A", Category: "x"},
		{ID: "prod_2", Name: "B", Category: "x"},
		{ID: "prod_3", Name: "C", Category: "x"},
		{ID: "prod_4", Name: "D", Category: "x"},
		{ID: "prod_5", Name: "E", Category: "x"},
	}
	for _, p := range products {
		text := e.Explain(ctx, "user_1", p, recommend.StrategyHybrid)
		assert.Equal(t, staticReason(p, recommend.StrategyHybrid), text)
	}
	assert.Equal(t, "open", e.BreakerState())

	// With the circuit open, the service is no longer contacted.
	before := calls.Load()
	e.Explain(ctx, "user_1", store.Product{ID: "prod_6", Name: "F", Category: "x"}, recommend.StrategyHybrid)
	assert.Equal(t, before, calls.Load())
}

func TestHTTPExplainer_RateLimitFallsBackToStatic(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(explainResponse{Explanation: "Generated."}) //nolint:errcheck
	}))
	defer srv.Close()

	e, err := NewHTTPExplainer(HTTPConfig{
		Endpoint:          srv.URL,
		RequestsPerSecond: 0.001,
		Burst:             1,
	}, newTextCache(t), zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	first := e.Explain(ctx, "user_1", store.Product{ID: "prod_1", Name: "A", Category: "x"}, recommend.StrategyHybrid)
	assert.Equal(t, "Generated.", first)

	second := store.Product{ID: "prod_2", Name: "B", Category: "x"}
	text := e.Explain(ctx, "user_1", second, recommend.StrategyHybrid)
	assert.Equal(t, staticReason(second, recommend.StrategyHybrid), text)
	assert.Equal(t, int64(1), calls.Load())
}

func TestNewHTTPExplainer_Validation(t *testing.T) {
	_, err := NewHTTPExplainer(HTTPConfig{}, newTextCache(t), zerolog.Nop())
	assert.Error(t, err, "endpoint is required")

	_, err = NewHTTPExplainer(HTTPConfig{Endpoint: "http://localhost:9"}, nil, zerolog.Nop())
	assert.Error(t, err, "texts cache is required")
}
