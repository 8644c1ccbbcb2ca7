// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package signal

import (
	"context"
	"sync"

	"github.com/merchantry/merchantry/internal/store"
)

// FactorModel holds the latent-factor state trained offline.
//
// Predicted affinity for a (user, product) pair is the biased dot
// product mu + bu + bi + p·q. Unknown users or products contribute
// zero baseline and zero factors, so predictions gracefully reduce to
// the global mean.
type FactorModel struct {
	// GlobalMean is the mean purchase affinity across all pairs.
	GlobalMean float64 `json:"global_mean"`

	// UserBaseline holds per-user bias terms.
	UserBaseline map[string]float64 `json:"user_baseline"`

	// ItemBaseline holds per-product bias terms.
	ItemBaseline map[string]float64 `json:"item_baseline"`

	// UserFactors holds per-user latent vectors.
	UserFactors map[string][]float64 `json:"user_factors"`

	// ItemFactors holds per-product latent vectors.
	ItemFactors map[string][]float64 `json:"item_factors"`
}

// Collaborative scores products with a latent-factor model.
//
// Products the user has purchased are excluded from every result,
// regardless of any request-level exclusion flag: recommending an
// item the model knows the user already owns is never useful.
type Collaborative struct {
	mu      sync.RWMutex
	model   *FactorModel
	catalog store.CatalogProvider
	history store.HistoryProvider
}

// NewCollaborative creates a collaborative signal with no model
// loaded. Score returns ErrModelNotLoaded until SetModel is called.
func NewCollaborative(catalog store.CatalogProvider, history store.HistoryProvider) *Collaborative {
	return &Collaborative{
		catalog: catalog,
		history: history,
	}
}

// SetModel installs or replaces the factor model. Passing nil unloads
// the model, returning the signal to its not-loaded state.
func (c *Collaborative) SetModel(m *FactorModel) {
	c.mu.Lock()
	c.model = m
	c.mu.Unlock()
}

// Loaded reports whether a model is installed.
func (c *Collaborative) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model != nil
}

// Name implements Signal.
func (c *Collaborative) Name() string {
	return "collaborative"
}

// Score implements Signal. It ranks every non-purchased catalog
// product by predicted affinity and returns the top n.
func (c *Collaborative) Score(ctx context.Context, userID string, n int) (map[string]float64, error) {
	c.mu.RLock()
	model := c.model
	c.mu.RUnlock()

	if model == nil {
		return nil, ErrModelNotLoaded
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	purchased := c.history.PurchasedSet(userID)
	products := c.catalog.Products()

	candidates := make([]ranked, 0, len(products))
	for _, p := range products {
		if _, owned := purchased[p.ID]; owned {
			continue
		}
		candidates = append(candidates, ranked{
			id:    p.ID,
			score: model.predict(userID, p.ID),
		})
	}

	return topN(candidates, c.catalog.Rank, n), nil
}

// predict computes mu + bu + bi + p·q for a (user, product) pair.
func (m *FactorModel) predict(userID, productID string) float64 {
	score := m.GlobalMean
	score += m.UserBaseline[userID]
	score += m.ItemBaseline[productID]

	p, hasUser := m.UserFactors[userID]
	q, hasItem := m.ItemFactors[productID]
	if hasUser && hasItem && len(p) == len(q) {
		score += dot(p, q)
	}
	return score
}

// Verify interface implementation at compile time
var _ Signal = (*Collaborative)(nil)
