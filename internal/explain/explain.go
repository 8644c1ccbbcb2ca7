// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

// Package explain produces human-readable explanations for recommended
// products. Two implementations are provided: StaticExplainer renders
// templated reasons locally, and HTTPExplainer delegates to an external
// text-generation service behind a circuit breaker and rate limiter,
// falling back to static text whenever the service is unavailable.
//
// Explanations are decorative. No code path in this package can fail a
// recommendation request; the worst outcome is a templated fallback.
package explain

import (
	"context"
	"fmt"

	"github.com/merchantry/merchantry/internal/recommend"
	"github.com/merchantry/merchantry/internal/store"
)

// StaticExplainer renders explanations from fixed templates keyed by
// recommendation strategy. It needs no network access and never fails.
type StaticExplainer struct{}

// NewStaticExplainer creates a template-based explainer.
func NewStaticExplainer() *StaticExplainer {
	return &StaticExplainer{}
}

// Explain returns a templated reason for recommending the product.
func (e *StaticExplainer) Explain(_ context.Context, _ string, product store.Product, strategy recommend.Strategy) string {
	return staticReason(product, strategy)
}

func staticReason(product store.Product, strategy recommend.Strategy) string {
	switch strategy {
	case recommend.StrategyColdStart:
		return fmt.Sprintf("%s is popular with shoppers in %s right now.", product.Name, product.Category)
	case recommend.StrategyWarmStart:
		return fmt.Sprintf("%s is similar to products you've purchased in %s.", product.Name, product.Category)
	case recommend.StrategyHybrid:
		return fmt.Sprintf("Shoppers with similar taste bought %s, and it matches your interest in %s.", product.Name, product.Category)
	default:
		return fmt.Sprintf("%s is recommended for you.", product.Name)
	}
}

var _ recommend.Explainer = (*StaticExplainer)(nil)
