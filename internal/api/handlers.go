// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package api

import (
	"net/http"
	"time"

	"github.com/merchantry/merchantry/internal/cache"
	"github.com/merchantry/merchantry/internal/coldstart"
	"github.com/merchantry/merchantry/internal/recommend"
	"github.com/merchantry/merchantry/internal/search"
	"github.com/merchantry/merchantry/internal/store"
)

// Handler bundles the serving components behind the HTTP endpoints.
type Handler struct {
	engine    *recommend.Engine
	search    *search.Service
	coldstart *coldstart.Service
	catalog   *store.Store
	index     *search.Index

	// breakerState reports the explanation service breaker when the
	// HTTP explainer is configured; nil with the static explainer.
	breakerState func() string

	version   string
	startTime time.Time
}

// HandlerOptions bundles the handler's collaborators.
type HandlerOptions struct {
	Engine    *recommend.Engine
	Search    *search.Service
	ColdStart *coldstart.Service
	Catalog   *store.Store
	Index     *search.Index

	BreakerState func() string
	Version      string
}

// NewHandler creates the endpoint handler set.
func NewHandler(opts HandlerOptions) *Handler {
	return &Handler{
		engine:       opts.Engine,
		search:       opts.Search,
		coldstart:    opts.ColdStart,
		catalog:      opts.Catalog,
		index:        opts.Index,
		breakerState: opts.BreakerState,
		version:      opts.Version,
		startTime:    time.Now(),
	}
}

// Health handles GET /health. Always 200 when the process serves.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"status":  "ok",
		"version": h.version,
	})
}

// statusResponse is the GET /api/v1/status payload.
type statusResponse struct {
	State          recommend.State        `json:"state"`
	Version        string                 `json:"version"`
	UptimeSeconds  int64                  `json:"uptime_seconds"`
	Products       int                    `json:"products"`
	IndexedVectors int                    `json:"indexed_vectors"`
	Engine         recommend.Metrics      `json:"engine"`
	Caches         map[string]cache.Stats `json:"caches"`
	ExplainBreaker string                 `json:"explain_breaker,omitempty"`
}

// Status handles GET /api/v1/status. It reports engine readiness,
// counters, and per-cache statistics, serving even when degraded.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		State:          h.engine.State(),
		Version:        h.version,
		UptimeSeconds:  int64(time.Since(h.startTime).Seconds()),
		Products:       len(h.catalog.Products()),
		IndexedVectors: h.index.Len(),
		Engine:         h.engine.Metrics(),
		Caches:         h.engine.CacheStats(),
	}
	if h.breakerState != nil {
		resp.ExplainBreaker = h.breakerState()
	}

	NewResponseWriter(w, r).Success(resp)
}
