// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package search

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/merchantry/merchantry/internal/cache"
	"github.com/merchantry/merchantry/internal/store"
)

// Embedder turns free text into a vector in the index's space.
type Embedder interface {
	// Embed returns the embedding for a text. Implementations must be
	// deterministic for equal inputs.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding dimension.
	Dimension() int
}

// Query is a semantic search request with optional criteria filters.
type Query struct {
	// Text is the free-text query.
	Text string `json:"query" validate:"required,min=1,max=500"`

	// Category filters results to an exact category when set.
	Category string `json:"category,omitempty"`

	// MinPrice filters out cheaper products when set.
	MinPrice *float64 `json:"min_price,omitempty" validate:"omitempty,gte=0"`

	// MaxPrice filters out pricier products when set.
	MaxPrice *float64 `json:"max_price,omitempty" validate:"omitempty,gte=0"`

	// Limit caps the result count. Zero means the service default.
	Limit int `json:"limit,omitempty" validate:"gte=0,lte=100"`
}

// Result is one search hit with its relevance score.
type Result struct {
	Product   store.Product `json:"product"`
	Relevance float64       `json:"relevance"`
}

// Service runs semantic queries against the product index.
//
// Query embeddings are cached so repeated searches skip the embedder.
// Criteria filters apply after the vector search, so the service
// over-fetches candidates to keep filtered result sets full.
type Service struct {
	index      *Index
	embedder   Embedder
	catalog    store.CatalogProvider
	embeddings *cache.Cache[[]float32]
	logger     zerolog.Logger

	defaultLimit int
}

// NewService creates a search service. defaultLimit is used for queries
// that do not set one; values below 1 fall back to 10.
func NewService(index *Index, embedder Embedder, catalog store.CatalogProvider, embeddings *cache.Cache[[]float32], defaultLimit int, logger zerolog.Logger) (*Service, error) {
	if index == nil || embedder == nil || catalog == nil || embeddings == nil {
		return nil, fmt.Errorf("search service requires index, embedder, catalog, and embedding cache")
	}
	if embedder.Dimension() != index.Dimension() {
		return nil, &DimensionError{Want: index.Dimension(), Got: embedder.Dimension()}
	}
	if defaultLimit <= 0 {
		defaultLimit = 10
	}

	return &Service{
		index:        index,
		embedder:     embedder,
		catalog:      catalog,
		embeddings:   embeddings,
		logger:       logger.With().Str("component", "search").Logger(),
		defaultLimit: defaultLimit,
	}, nil
}

// Search embeds the query text, finds nearest products, and applies
// criteria filters.
func (s *Service) Search(ctx context.Context, q Query) ([]Result, error) {
	if q.Text == "" {
		return nil, fmt.Errorf("query text is required")
	}
	if q.Limit <= 0 {
		q.Limit = s.defaultLimit
	}

	vec, err := s.embedQuery(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Over-fetch so post-filtering can still fill the limit.
	matches, err := s.index.Search(vec, q.Limit*3)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	results := make([]Result, 0, q.Limit)
	for _, m := range matches {
		product, ok := s.catalog.Product(m.ID)
		if !ok {
			s.logger.Debug().Str("product_id", m.ID).Msg("dropping unknown product from search results")
			continue
		}
		if !q.accepts(product) {
			continue
		}

		results = append(results, Result{
			Product:   product,
			Relevance: Relevance(m.Distance),
		})
		if len(results) == q.Limit {
			break
		}
	}

	return results, nil
}

// Similar returns catalog products most similar to a given product.
func (s *Service) Similar(ctx context.Context, productID string, limit int) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	matches, err := s.index.SimilarTo(productID, limit*2)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, limit)
	for _, m := range matches {
		product, ok := s.catalog.Product(m.ID)
		if !ok {
			continue
		}
		results = append(results, Result{
			Product:   product,
			Relevance: Relevance(m.Distance),
		})
		if len(results) == limit {
			break
		}
	}

	return results, nil
}

// embedQuery returns the query embedding, consulting the cache first.
func (s *Service) embedQuery(ctx context.Context, text string) ([]float32, error) {
	key := cache.GenerateKey("embedding", text)
	if vec, ok := s.embeddings.Get(key); ok {
		return vec, nil
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) != s.index.Dimension() {
		return nil, &DimensionError{Want: s.index.Dimension(), Got: len(vec)}
	}

	if err := s.embeddings.Set(key, vec); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache query embedding")
	}
	return vec, nil
}

// accepts applies the query's criteria filters to a product.
func (q *Query) accepts(p store.Product) bool {
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	return true
}
