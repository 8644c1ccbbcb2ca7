// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package recommend

import (
	"github.com/merchantry/merchantry/internal/store"
)

// Strategy identifies which recommendation tier served a request.
type Strategy string

const (
	// StrategyColdStart serves users with no purchase history.
	// Rankings come from catalog popularity alone.
	StrategyColdStart Strategy = "cold_start"

	// StrategyWarmStart serves users with some history but too little
	// for the collaborative model to be reliable. Content similarity
	// dominates the blend.
	StrategyWarmStart Strategy = "warm_start"

	// StrategyHybrid serves established users with the configured
	// blend of collaborative and content scores.
	StrategyHybrid Strategy = "hybrid"
)

// State describes the engine's readiness.
type State string

const (
	// StateUninitialized means the engine has not completed startup.
	StateUninitialized State = "uninitialized"

	// StateReady means all signals are loaded and serving.
	StateReady State = "ready"

	// StateDegraded means at least one signal failed to load; the
	// engine serves from whatever remains.
	StateDegraded State = "degraded"
)

// Request describes a recommendation query.
type Request struct {
	// UserID identifies the user to recommend for.
	UserID string `json:"user_id" validate:"required"`

	// TopK is the maximum number of recommendations to return.
	// Zero means the configured default; values above the configured
	// maximum are clamped.
	TopK int `json:"top_k" validate:"gte=0,lte=100"`

	// ExcludePurchased removes already-bought products from results.
	// nil means true.
	ExcludePurchased *bool `json:"exclude_purchased,omitempty"`

	// Explain attaches generated reason text to each item.
	Explain bool `json:"explain,omitempty"`
}

// excludePurchased resolves the pointer with its default.
func (r *Request) excludePurchased() bool {
	if r.ExcludePurchased == nil {
		return true
	}
	return *r.ExcludePurchased
}

// Recommendation is a single ranked product with its blended score.
type Recommendation struct {
	// Product is the enriched catalog entry.
	Product store.Product `json:"product"`

	// Score is the blended relevance score. Scores are comparable
	// within a single response, not across responses.
	Score float64 `json:"score"`

	// Reason is optional explanation text. Populated only when the
	// request asked for explanations.
	Reason string `json:"reason,omitempty"`
}

// Response is a complete recommendation result.
type Response struct {
	// UserID echoes the request.
	UserID string `json:"user_id"`

	// Items are the ranked recommendations, best first.
	Items []Recommendation `json:"items"`

	// Strategy is the tier that produced the ranking.
	Strategy Strategy `json:"strategy"`

	// Degraded is true when one or more signals failed and the
	// ranking was produced from a reduced blend.
	Degraded bool `json:"degraded,omitempty"`

	// Reason explains a degraded or empty result.
	Reason string `json:"reason,omitempty"`

	// FromCache marks responses served from the response cache.
	FromCache bool `json:"from_cache,omitempty"`
}

// Profile summarizes a user's purchasing behavior.
type Profile struct {
	UserID        string   `json:"user_id"`
	PurchaseCount int      `json:"purchase_count"`
	Strategy      Strategy `json:"strategy"`
	TopCategories []string `json:"top_categories"`
	AveragePrice  float64  `json:"average_price"`
	TotalSpend    float64  `json:"total_spend"`
}

// Metrics is a snapshot of engine counters.
type Metrics struct {
	Requests       int64 `json:"requests"`
	CacheHits      int64 `json:"cache_hits"`
	CacheMisses    int64 `json:"cache_misses"`
	SignalFailures int64 `json:"signal_failures"`
}
