// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package recommend

import "fmt"

// Config contains all configuration for the recommendation engine.
type Config struct {
	// ContentWeight is the content signal's share of the hybrid
	// blend. Default: 0.4
	ContentWeight float64 `json:"content_weight" koanf:"content_weight"`

	// CollaborativeWeight is the collaborative signal's share of the
	// hybrid blend. Default: 0.6
	CollaborativeWeight float64 `json:"collaborative_weight" koanf:"collaborative_weight"`

	// MinPurchases is the purchase count at which a user graduates
	// from the warm-start tier to the full hybrid blend. Default: 5
	MinPurchases int `json:"min_purchases" koanf:"min_purchases"`

	// DefaultTopK is the result count when a request does not set
	// one. Default: 10
	DefaultTopK int `json:"default_top_k" koanf:"default_top_k"`

	// MaxTopK caps requested result counts. Default: 50
	MaxTopK int `json:"max_top_k" koanf:"max_top_k"`

	// CandidateMultiplier controls how many candidates each signal
	// produces relative to TopK before blending. Default: 2
	CandidateMultiplier int `json:"candidate_multiplier" koanf:"candidate_multiplier"`
}

// Warm-start weights are fixed, not configured: with only a handful of
// purchases the latent-factor model has almost nothing to go on, so
// content similarity must dominate regardless of the hybrid weights.
const (
	warmContentWeight       = 0.7
	warmCollaborativeWeight = 0.3
)

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		ContentWeight:       0.4,
		CollaborativeWeight: 0.6,
		MinPurchases:        5,
		DefaultTopK:         10,
		MaxTopK:             50,
		CandidateMultiplier: 2,
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.ContentWeight < 0 || c.CollaborativeWeight < 0 {
		return fmt.Errorf("blend weights must be non-negative, got content=%f collaborative=%f",
			c.ContentWeight, c.CollaborativeWeight)
	}
	if c.ContentWeight+c.CollaborativeWeight <= 0 {
		return fmt.Errorf("blend weights must not both be zero")
	}
	if c.MinPurchases < 1 {
		return fmt.Errorf("min_purchases must be at least 1, got %d", c.MinPurchases)
	}
	if c.DefaultTopK < 1 {
		return fmt.Errorf("default_top_k must be at least 1, got %d", c.DefaultTopK)
	}
	if c.MaxTopK < c.DefaultTopK {
		return fmt.Errorf("max_top_k (%d) must be at least default_top_k (%d)", c.MaxTopK, c.DefaultTopK)
	}
	if c.CandidateMultiplier < 1 {
		return fmt.Errorf("candidate_multiplier must be at least 1, got %d", c.CandidateMultiplier)
	}
	return nil
}

// hybridWeights returns the configured blend weights keyed by signal
// name.
func (c *Config) hybridWeights() map[string]float64 {
	return map[string]float64{
		"content":       c.ContentWeight,
		"collaborative": c.CollaborativeWeight,
	}
}

// warmWeights returns the fixed warm-start blend weights.
func warmWeights() map[string]float64 {
	return map[string]float64{
		"content":       warmContentWeight,
		"collaborative": warmCollaborativeWeight,
	}
}
