// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package artifact

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/merchantry/merchantry/internal/metrics"
)

// Refresher is a supervised service that watches the artifact
// directory and hot-reloads changed artifacts.
//
// It polls modification times on an interval; when anything changed,
// it re-runs the bootstrap load and invalidates the engine caches so
// new model state takes effect immediately. Implements suture.Service.
type Refresher struct {
	bootstrap *Bootstrap
	interval  time.Duration
	logger    zerolog.Logger

	lastSeen map[string]time.Time
}

// NewRefresher creates a refresher polling at the given interval.
func NewRefresher(bootstrap *Bootstrap, interval time.Duration, logger zerolog.Logger) *Refresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Refresher{
		bootstrap: bootstrap,
		interval:  interval,
		logger:    logger.With().Str("component", "artifact-refresher").Logger(),
		lastSeen:  bootstrap.Loader.ModTimes(),
	}
}

// Serve implements suture.Service. It blocks until the context is
// canceled, reloading artifacts whenever their files change on disk.
func (r *Refresher) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("artifact refresher started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.checkAndReload()
		}
	}
}

// checkAndReload reloads everything when any artifact file changed.
func (r *Refresher) checkAndReload() {
	current := r.bootstrap.Loader.ModTimes()
	if !r.changed(current) {
		return
	}

	r.logger.Info().Msg("artifact change detected, reloading")

	err := r.bootstrap.Load()
	metrics.RecordArtifactReload(err)
	if err != nil {
		// Keep serving the previous state; the next tick retries.
		r.logger.Error().Err(err).Msg("artifact reload failed, keeping previous state")
		return
	}

	r.bootstrap.Engine.InvalidateCaches()
	r.lastSeen = current
	r.logger.Info().Msg("artifacts reloaded")
}

// changed compares mod times against the last successful load.
func (r *Refresher) changed(current map[string]time.Time) bool {
	if len(current) != len(r.lastSeen) {
		return true
	}
	for name, mt := range current {
		if prev, ok := r.lastSeen[name]; !ok || !mt.Equal(prev) {
			return true
		}
	}
	return false
}

// String names the service in supervisor logs.
func (r *Refresher) String() string {
	return "artifact-refresher"
}
