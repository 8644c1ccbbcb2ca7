// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

// Package search provides semantic product search over a flat vector
// index of product embeddings.
package search

import (
	"fmt"
	"sort"
	"sync"
)

// DimensionError reports a vector whose length does not match the
// index dimension. Embedding artifacts with inconsistent dimensions
// are corrupt, so startup treats this error as fatal.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector dimension %d does not match index dimension %d", e.Got, e.Want)
}

// Match is a single nearest-neighbor result.
type Match struct {
	// ID is the stored vector's identifier.
	ID string `json:"id"`

	// Distance is the squared Euclidean distance to the query.
	Distance float64 `json:"distance"`
}

// Index is a flat (exhaustive) nearest-neighbor index using squared
// Euclidean distance.
//
// Exhaustive scan is deliberate: catalogs at this scale are tens of
// thousands of vectors, where a flat scan is both exact and fast
// enough, and results are fully deterministic.
type Index struct {
	mu   sync.RWMutex
	dim  int
	ids  []string
	vecs [][]float32
	byID map[string]int
}

// NewIndex creates an empty index for vectors of the given dimension.
func NewIndex(dim int) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dim)
	}
	return &Index{
		dim:  dim,
		byID: make(map[string]int),
	}, nil
}

// Dimension returns the index's vector dimension.
func (ix *Index) Dimension() int {
	return ix.dim
}

// Len returns the number of stored vectors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

// Add stores a vector under an ID. Adding an existing ID replaces its
// vector in place, keeping the original insertion order.
func (ix *Index) Add(id string, vec []float32) error {
	if len(vec) != ix.dim {
		return &DimensionError{Want: ix.dim, Got: len(vec)}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if i, exists := ix.byID[id]; exists {
		ix.vecs[i] = vec
		return nil
	}

	ix.byID[id] = len(ix.ids)
	ix.ids = append(ix.ids, id)
	ix.vecs = append(ix.vecs, vec)
	return nil
}

// Search returns the k nearest stored vectors to the query, ordered by
// ascending squared distance. Distance ties keep insertion order.
func (ix *Index) Search(vec []float32, k int) ([]Match, error) {
	if len(vec) != ix.dim {
		return nil, &DimensionError{Want: ix.dim, Got: len(vec)}
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return ix.scan(vec, k, -1), nil
}

// SimilarTo returns the k stored vectors nearest to an existing entry,
// excluding the entry itself.
func (ix *Index) SimilarTo(id string, k int) ([]Match, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	i, ok := ix.byID[id]
	if !ok {
		return nil, fmt.Errorf("id %q not in index", id)
	}

	return ix.scan(ix.vecs[i], k, i), nil
}

// scan is the exhaustive search core. exclude is the position to skip,
// or -1. Callers hold at least a read lock.
func (ix *Index) scan(vec []float32, k int, exclude int) []Match {
	matches := make([]Match, 0, len(ix.ids))
	for i, stored := range ix.vecs {
		if i == exclude {
			continue
		}
		matches = append(matches, Match{
			ID:       ix.ids[i],
			Distance: squaredDistance(vec, stored),
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Distance < matches[b].Distance
	})

	if k > 0 && k < len(matches) {
		matches = matches[:k]
	}
	return matches
}

// squaredDistance computes the squared Euclidean distance between two
// equal-length vectors, accumulating in float64 for precision.
func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Relevance converts a squared distance into a bounded relevance score
// in [0, 1]. Distances of 10 or more clamp to zero.
func Relevance(distance float64) float64 {
	r := 1.0 - distance/10.0
	if r < 0 {
		return 0
	}
	return r
}
