// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

// Package artifact loads the model files produced by the offline
// training pipeline: the product catalog, purchase histories, the
// latent-factor model, the item similarity matrix, and product
// embeddings.
//
// A missing model artifact is a degraded state, not a crash: the
// server starts and serves from whatever loaded. A present but
// undecodable artifact is corrupt and treated as fatal.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/merchantry/merchantry/internal/recommend/signal"
	"github.com/merchantry/merchantry/internal/store"
)

// ErrNotFound indicates an artifact file does not exist. Check with
// errors.Is; the wrapped message names the path.
var ErrNotFound = errors.New("artifact not found")

// Artifact file names within the artifact directory.
const (
	catalogFile    = "catalog.json"
	purchasesFile  = "purchases.json"
	factorsFile    = "factors.json"
	similarityFile = "similarity.json"
	embeddingsFile = "embeddings.json"
)

// Embeddings is the product embedding artifact.
type Embeddings struct {
	// Dimension is the vector dimension all entries share.
	Dimension int `json:"dimension"`

	// Vectors maps product IDs to embedding vectors.
	Vectors map[string][]float32 `json:"vectors"`
}

// Validate checks that every vector matches the declared dimension.
func (e *Embeddings) Validate() error {
	if e.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", e.Dimension)
	}
	for id, vec := range e.Vectors {
		if len(vec) != e.Dimension {
			return fmt.Errorf("embedding for %q has dimension %d, want %d", id, len(vec), e.Dimension)
		}
	}
	return nil
}

// Loader reads artifacts from a directory.
type Loader struct {
	dir string
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Catalog loads the product catalog in its canonical order.
func (l *Loader) Catalog() ([]store.Product, error) {
	var products []store.Product
	if err := l.readJSON(catalogFile, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Purchases loads per-user purchase histories.
func (l *Loader) Purchases() (map[string][]store.Purchase, error) {
	var purchases map[string][]store.Purchase
	if err := l.readJSON(purchasesFile, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

// Factors loads the latent-factor model.
func (l *Loader) Factors() (*signal.FactorModel, error) {
	var model signal.FactorModel
	if err := l.readJSON(factorsFile, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

// Similarity loads and validates the item similarity matrix.
func (l *Loader) Similarity() (*signal.SimilarityModel, error) {
	var model signal.SimilarityModel
	if err := l.readJSON(similarityFile, &model); err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", similarityFile, err)
	}
	return &model, nil
}

// ProductEmbeddings loads and validates the embedding artifact.
func (l *Loader) ProductEmbeddings() (*Embeddings, error) {
	var emb Embeddings
	if err := l.readJSON(embeddingsFile, &emb); err != nil {
		return nil, err
	}
	if err := emb.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", embeddingsFile, err)
	}
	return &emb, nil
}

// ModTimes returns the modification time of each artifact that exists,
// keyed by file name. Used by the refresh service to detect changes.
func (l *Loader) ModTimes() map[string]time.Time {
	out := make(map[string]time.Time, 5)
	for _, name := range []string{catalogFile, purchasesFile, factorsFile, similarityFile, embeddingsFile} {
		if info, err := os.Stat(filepath.Join(l.dir, name)); err == nil {
			out[name] = info.ModTime()
		}
	}
	return out
}

// readJSON decodes one artifact file into v.
func (l *Loader) readJSON(name string, v interface{}) error {
	path := filepath.Join(l.dir, name)

	data, err := os.ReadFile(path) //nolint:gosec // path is config-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
