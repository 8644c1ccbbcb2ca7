// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

// Package signal contains the scoring signals blended by the
// recommendation engine.
//
// A signal maps a user to candidate product scores. Signals never
// panic on missing model state; they return ErrModelNotLoaded and let
// the engine decide how to degrade.
package signal

import (
	"context"
	"errors"
	"sort"
)

// ErrModelNotLoaded indicates a signal's model artifact has not been
// loaded (or failed to load). Callers fall back to other signals.
var ErrModelNotLoaded = errors.New("model not loaded")

// Signal scores candidate products for a user.
type Signal interface {
	// Name returns the signal's identifier for logs and metrics.
	Name() string

	// Score returns up to n candidate products mapped to raw scores.
	// Scores are only comparable within the returned map. Products
	// the user has already purchased are never candidates.
	Score(ctx context.Context, userID string, n int) (map[string]float64, error)
}

// ranked pairs a product with a score for sorting.
type ranked struct {
	id    string
	score float64
}

// topN sorts candidates by descending score and keeps the first n.
// Ties are broken by ascending catalog rank so repeated calls always
// produce the same cut.
func topN(candidates []ranked, rank func(string) int, n int) map[string]float64 {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return rank(candidates[i].id) < rank(candidates[j].id)
	})

	if n > 0 && n < len(candidates) {
		candidates = candidates[:n]
	}

	out := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		out[c.id] = c.score
	}
	return out
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
