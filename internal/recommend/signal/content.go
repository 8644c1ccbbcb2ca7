// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package signal

import (
	"context"
	"fmt"
	"sync"

	"github.com/merchantry/merchantry/internal/store"
)

// SimilarityModel is a precomputed item-item similarity matrix.
//
// Rows and columns follow ProductIDs order. Values are cosine
// similarities of product embeddings in [0, 1], computed offline by the
// catalog pipeline.
type SimilarityModel struct {
	// ProductIDs gives the matrix row/column order.
	ProductIDs []string `json:"product_ids"`

	// Matrix is the square similarity matrix.
	Matrix [][]float64 `json:"matrix"`

	index map[string]int
}

// Validate checks matrix shape and builds the row index.
func (m *SimilarityModel) Validate() error {
	if len(m.Matrix) != len(m.ProductIDs) {
		return fmt.Errorf("similarity matrix has %d rows for %d products", len(m.Matrix), len(m.ProductIDs))
	}
	for i, row := range m.Matrix {
		if len(row) != len(m.ProductIDs) {
			return fmt.Errorf("similarity matrix row %d has %d columns, want %d", i, len(row), len(m.ProductIDs))
		}
	}

	m.index = make(map[string]int, len(m.ProductIDs))
	for i, id := range m.ProductIDs {
		m.index[id] = i
	}
	return nil
}

// row returns the similarity row for a product, if known.
func (m *SimilarityModel) row(productID string) ([]float64, bool) {
	i, ok := m.index[productID]
	if !ok {
		return nil, false
	}
	return m.Matrix[i], true
}

// Content scores products by similarity to the user's purchases.
//
// A candidate's score is its mean similarity to the purchased set.
// Users with no usable history fall back to catalog popularity scaled
// to [0, 1], so the signal always has an answer once the catalog is
// loaded.
type Content struct {
	mu      sync.RWMutex
	model   *SimilarityModel
	catalog store.CatalogProvider
	history store.HistoryProvider
}

// NewContent creates a content signal with no similarity model loaded.
func NewContent(catalog store.CatalogProvider, history store.HistoryProvider) *Content {
	return &Content{
		catalog: catalog,
		history: history,
	}
}

// SetModel installs or replaces the similarity model.
func (c *Content) SetModel(m *SimilarityModel) {
	c.mu.Lock()
	c.model = m
	c.mu.Unlock()
}

// Loaded reports whether a similarity model is installed.
func (c *Content) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model != nil
}

// Name implements Signal.
func (c *Content) Name() string {
	return "content"
}

// Score implements Signal.
//
// Purchased products that are unknown to the similarity model are
// skipped; when none remain the popularity fallback applies, same as
// for an empty history. A user with history but no loaded model gets
// ErrModelNotLoaded so the engine can degrade explicitly.
func (c *Content) Score(ctx context.Context, userID string, n int) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	purchased := c.history.Purchases(userID)
	if len(purchased) == 0 {
		return c.popularityScores(n), nil
	}

	c.mu.RLock()
	model := c.model
	c.mu.RUnlock()

	if model == nil {
		return nil, ErrModelNotLoaded
	}

	rows := make([][]float64, 0, len(purchased))
	owned := make(map[string]struct{}, len(purchased))
	for _, p := range purchased {
		owned[p.ProductID] = struct{}{}
		if row, ok := model.row(p.ProductID); ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return c.popularityScores(n), nil
	}

	candidates := make([]ranked, 0, len(model.ProductIDs))
	for i, id := range model.ProductIDs {
		if _, skip := owned[id]; skip {
			continue
		}
		var sum float64
		for _, row := range rows {
			sum += row[i]
		}
		candidates = append(candidates, ranked{
			id:    id,
			score: sum / float64(len(rows)),
		})
	}

	return topN(candidates, c.catalog.Rank, n), nil
}

// SimilarTo returns up to n products most similar to the given
// product, descending, excluding the product itself.
func (c *Content) SimilarTo(productID string, n int) (map[string]float64, error) {
	c.mu.RLock()
	model := c.model
	c.mu.RUnlock()

	if model == nil {
		return nil, ErrModelNotLoaded
	}

	row, ok := model.row(productID)
	if !ok {
		return nil, fmt.Errorf("product %q not in similarity model", productID)
	}

	candidates := make([]ranked, 0, len(model.ProductIDs))
	for i, id := range model.ProductIDs {
		if id == productID {
			continue
		}
		candidates = append(candidates, ranked{id: id, score: row[i]})
	}

	return topN(candidates, c.catalog.Rank, n), nil
}

// popularityScores ranks the catalog by popularity scaled to [0, 1].
func (c *Content) popularityScores(n int) map[string]float64 {
	top := c.catalog.Popular(n)
	out := make(map[string]float64, len(top))
	for _, p := range top {
		out[p.ID] = p.Popularity / 100.0
	}
	return out
}

// Verify interface implementation at compile time
var _ Signal = (*Content)(nil)
