// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/merchantry/merchantry/internal/metrics"
	"github.com/merchantry/merchantry/internal/recommend"
)

// metricsService periodically pushes gauge metrics that have no natural
// recording point on the request path: uptime and per-cache entry
// counts. Implements suture.Service.
type metricsService struct {
	engine   *recommend.Engine
	logger   zerolog.Logger
	interval time.Duration
	started  time.Time
}

func newMetricsService(engine *recommend.Engine, logger zerolog.Logger) *metricsService {
	return &metricsService{
		engine:   engine,
		logger:   logger.With().Str("component", "metrics-updater").Logger(),
		interval: 15 * time.Second,
		started:  time.Now(),
	}
}

func (m *metricsService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.update()
		}
	}
}

func (m *metricsService) update() {
	metrics.AppUptime.Set(time.Since(m.started).Seconds())

	for name, stats := range m.engine.CacheStats() {
		metrics.UpdateCacheGauges(name, stats.Size)
	}
}

func (m *metricsService) String() string {
	return "metrics-updater"
}
