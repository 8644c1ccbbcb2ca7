// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package artifact

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/merchantry/merchantry/internal/recommend"
	"github.com/merchantry/merchantry/internal/recommend/signal"
	"github.com/merchantry/merchantry/internal/search"
	"github.com/merchantry/merchantry/internal/store"
)

// Bootstrap wires loaded artifacts into the serving components.
type Bootstrap struct {
	Loader        *Loader
	Store         *store.Store
	Collaborative *signal.Collaborative
	Content       *signal.Content
	Index         *search.Index
	Engine        *recommend.Engine
	Logger        zerolog.Logger
}

// Load reads all artifacts and publishes them to the store, signals,
// and index, then sets the engine state.
//
// The catalog is the one hard requirement: without it nothing can be
// served and Load returns an error. Missing model artifacts log a
// warning and leave the engine degraded. Corrupt files of any kind
// are returned as errors.
func (b *Bootstrap) Load() error {
	logger := b.Logger.With().Str("component", "artifact").Logger()

	products, err := b.Loader.Catalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	purchases, err := b.Loader.Purchases()
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("load purchases: %w", err)
		}
		// A shop with no recorded purchases yet is a valid launch
		// state; every user simply cold-starts.
		logger.Warn().Err(err).Msg("purchase histories missing, all users cold-start")
		purchases = nil
	}

	b.Store.Replace(store.NewSnapshot(products, purchases))
	logger.Info().
		Int("products", len(products)).
		Int("users", len(purchases)).
		Msg("catalog snapshot published")

	degraded := false

	factors, err := b.Loader.Factors()
	switch {
	case err == nil:
		b.Collaborative.SetModel(factors)
	case errors.Is(err, ErrNotFound):
		logger.Warn().Err(err).Msg("factor model missing, collaborative signal disabled")
		b.Collaborative.SetModel(nil)
		degraded = true
	default:
		return fmt.Errorf("load factor model: %w", err)
	}

	similarity, err := b.Loader.Similarity()
	switch {
	case err == nil:
		b.Content.SetModel(similarity)
	case errors.Is(err, ErrNotFound):
		logger.Warn().Err(err).Msg("similarity matrix missing, content signal serves popularity only")
		b.Content.SetModel(nil)
		degraded = true
	default:
		return fmt.Errorf("load similarity matrix: %w", err)
	}

	embeddings, err := b.Loader.ProductEmbeddings()
	switch {
	case err == nil:
		if err := b.indexEmbeddings(products, embeddings); err != nil {
			return fmt.Errorf("index embeddings: %w", err)
		}
		logger.Info().Int("vectors", b.Index.Len()).Msg("embedding index built")
	case errors.Is(err, ErrNotFound):
		logger.Warn().Err(err).Msg("embeddings missing, semantic search unavailable")
		degraded = true
	default:
		return fmt.Errorf("load embeddings: %w", err)
	}

	if degraded {
		b.Engine.SetState(recommend.StateDegraded)
	} else {
		b.Engine.SetState(recommend.StateReady)
	}
	return nil
}

// indexEmbeddings adds vectors to the index in catalog order so
// distance ties always resolve the same way.
func (b *Bootstrap) indexEmbeddings(products []store.Product, emb *Embeddings) error {
	if emb.Dimension != b.Index.Dimension() {
		return &search.DimensionError{Want: b.Index.Dimension(), Got: emb.Dimension}
	}

	for _, p := range products {
		vec, ok := emb.Vectors[p.ID]
		if !ok {
			continue
		}
		if err := b.Index.Add(p.ID, vec); err != nil {
			return fmt.Errorf("add %s: %w", p.ID, err)
		}
	}
	return nil
}
