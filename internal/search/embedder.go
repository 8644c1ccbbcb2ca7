// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package search

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashEmbedder is a deterministic feature-hashing embedder.
//
// It exists for deployments without an embedding service: product
// artifact embeddings and query embeddings are both produced by the
// same hashing scheme, so distances remain meaningful. Quality is far
// below a learned model, but behavior is fully reproducible and needs
// no network or model files.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hashing embedder with the given dimension.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 384
	}
	return &HashEmbedder{dim: dim}
}

// Dimension implements Embedder.
func (h *HashEmbedder) Dimension() int {
	return h.dim
}

// Embed implements Embedder. Each token hashes to one bucket with a
// hash-derived sign; the result is L2-normalized so squared distances
// stay within [0, 4].
func (h *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, h.dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		hasher := fnv.New64a()
		_, _ = hasher.Write([]byte(token))
		sum := hasher.Sum64()

		bucket := int(sum % uint64(h.dim)) //nolint:gosec // dim is small and positive
		sign := float32(1)
		if (sum>>63)&1 == 1 {
			sign = -1
		}
		vec[bucket] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec, nil
}

// Verify interface implementation at compile time
var _ Embedder = (*HashEmbedder)(nil)
