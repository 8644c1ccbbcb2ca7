// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/merchantry/merchantry/internal/metrics"
	"github.com/merchantry/merchantry/internal/middleware"
)

// RouterConfig holds the HTTP-surface settings the router needs.
type RouterConfig struct {
	// CORSOrigins lists allowed origins. ["*"] allows all.
	CORSOrigins []string

	// RateLimitRequests caps requests per client IP per window.
	RateLimitRequests int

	// RateLimitWindow is the rate limit interval.
	RateLimitWindow time.Duration
}

// Router assembles the middleware chain and routes.
type Router struct {
	handler *Handler
	config  RouterConfig
}

// NewRouter creates the API router.
func NewRouter(handler *Handler, config RouterConfig) *Router {
	if config.RateLimitRequests <= 0 {
		config.RateLimitRequests = 100
	}
	if config.RateLimitWindow <= 0 {
		config.RateLimitWindow = time.Minute
	}
	if len(config.CORSOrigins) == 0 {
		config.CORSOrigins = []string{"*"}
	}

	return &Router{
		handler: handler,
		config:  config,
	}
}

// Routes builds the chi handler tree.
func (router *Router) Routes() http.Handler {
	r := chi.NewRouter()

	// Global middleware, outermost first.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Unthrottled operational endpoints.
	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.Limit(
			router.config.RateLimitRequests,
			router.config.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(rateLimitExceeded),
		))

		r.Get("/status", router.handler.Status)

		r.Get("/recommendations/{userID}", router.handler.Recommendations)
		r.Get("/users/{userID}/profile", router.handler.Profile)

		r.Get("/products/popular", router.handler.Popular)
		r.Get("/products/{productID}/similar", router.handler.Similar)

		r.Get("/search", router.handler.Search)

		r.Route("/coldstart", func(r chi.Router) {
			r.Post("/sessions", router.handler.StartColdStart)
			r.Post("/sessions/{sessionID}/refine", router.handler.RefineColdStart)
		})
	})

	return r
}

// rateLimitExceeded writes the JSON envelope for throttled requests.
func rateLimitExceeded(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			endpoint = pattern
		}
	}
	metrics.APIRateLimitHits.WithLabelValues(endpoint).Inc()

	NewResponseWriter(w, r).Error(http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded, retry later")
}
