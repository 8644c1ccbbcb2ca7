// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/merchantry/merchantry/internal/cache"
	"github.com/merchantry/merchantry/internal/store"
)

// fixedEmbedder maps known texts to fixed vectors.
type fixedEmbedder struct {
	dim     int
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fixedEmbedder) Dimension() int { return f.dim }

func (f *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return make([]float32, f.dim), nil
}

func newTestService(t *testing.T) (*Service, *fixedEmbedder) {
	t.Helper()

	products := []store.Product{
		{ID: "prod_a", Name: "Trail Pack", Category: "outdoor", Price: 89.99},
		{ID: "prod_b", Name: "Steel Bottle", Category: "outdoor", Price: 24.50},
		{ID: "prod_c", Name: "Desk Lamp", Category: "home", Price: 40.00},
	}
	st := store.New(store.NewSnapshot(products, nil))

	ix, err := NewIndex(2)
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}
	for id, vec := range map[string][]float32{
		"prod_a": {0, 0},
		"prod_b": {1, 0},
		"prod_c": {0, 3},
	} {
		if err := ix.Add(id, vec); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	emb := &fixedEmbedder{
		dim: 2,
		vectors: map[string][]float32{
			"hiking gear": {0.1, 0},
		},
	}

	svc, err := NewService(ix, emb, st, cache.New[[]float32](100, time.Minute), 0, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc, emb
}

func TestServiceSearch(t *testing.T) {
	svc, _ := newTestService(t)

	results, err := svc.Search(context.Background(), Query{Text: "hiking gear", Limit: 2})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Product.ID != "prod_a" {
		t.Errorf("top result = %s, want prod_a", results[0].Product.ID)
	}
	if results[0].Relevance <= results[1].Relevance {
		t.Error("results should be ordered by descending relevance")
	}
}

func TestServiceSearchCategoryFilter(t *testing.T) {
	svc, _ := newTestService(t)

	results, err := svc.Search(context.Background(), Query{
		Text:     "hiking gear",
		Category: "home",
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Product.ID != "prod_c" {
		t.Errorf("result = %s, want prod_c", results[0].Product.ID)
	}
}

func TestServiceSearchPriceFilters(t *testing.T) {
	svc, _ := newTestService(t)

	min, max := 20.0, 50.0
	results, err := svc.Search(context.Background(), Query{
		Text:     "hiking gear",
		MinPrice: &min,
		MaxPrice: &max,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	for _, r := range results {
		if r.Product.Price < min || r.Product.Price > max {
			t.Errorf("product %s price %f outside [%f, %f]",
				r.Product.ID, r.Product.Price, min, max)
		}
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestServiceSearchCachesEmbeddings(t *testing.T) {
	svc, emb := newTestService(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.Search(context.Background(), Query{Text: "hiking gear"}); err != nil {
			t.Fatalf("Search failed: %v", err)
		}
	}

	if emb.calls != 1 {
		t.Errorf("embedder called %d times, want 1", emb.calls)
	}
}

func TestServiceSearchEmbedderError(t *testing.T) {
	svc, emb := newTestService(t)
	emb.err = errors.New("embedding service unavailable")

	if _, err := svc.Search(context.Background(), Query{Text: "anything"}); err == nil {
		t.Error("embedder failure should surface as an error")
	}
}

func TestServiceSearchEmptyText(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Search(context.Background(), Query{}); err == nil {
		t.Error("empty query text should be rejected")
	}
}

func TestServiceSimilar(t *testing.T) {
	svc, _ := newTestService(t)

	results, err := svc.Similar(context.Background(), "prod_a", 2)
	if err != nil {
		t.Fatalf("Similar failed: %v", err)
	}

	for _, r := range results {
		if r.Product.ID == "prod_a" {
			t.Error("Similar returned the query product itself")
		}
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Product.ID != "prod_b" {
		t.Errorf("nearest = %s, want prod_b", results[0].Product.ID)
	}
}

func TestServiceConfiguredDefaultLimit(t *testing.T) {
	products := []store.Product{
		{ID: "prod_a", Name: "Trail Pack", Category: "outdoor", Price: 89.99},
		{ID: "prod_b", Name: "Steel Bottle", Category: "outdoor", Price: 24.50},
		{ID: "prod_c", Name: "Desk Lamp", Category: "home", Price: 40.00},
	}
	st := store.New(store.NewSnapshot(products, nil))

	ix, err := NewIndex(2)
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}
	for id, vec := range map[string][]float32{
		"prod_a": {0, 0},
		"prod_b": {1, 0},
		"prod_c": {0, 3},
	} {
		if err := ix.Add(id, vec); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	emb := &fixedEmbedder{dim: 2, vectors: map[string][]float32{"hiking gear": {0.1, 0}}}

	svc, err := NewService(ix, emb, st, cache.New[[]float32](100, time.Minute), 1, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	// A query without an explicit limit uses the configured default.
	results, err := svc.Search(context.Background(), Query{Text: "hiking gear"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Product.ID != "prod_a" {
		t.Errorf("top result = %s, want prod_a", results[0].Product.ID)
	}

	// An explicit limit still overrides it.
	results, err = svc.Search(context.Background(), Query{Text: "hiking gear", Limit: 3})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
}

func TestServiceDimensionMismatchAtConstruction(t *testing.T) {
	ix, err := NewIndex(2)
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}
	st := store.New(store.NewSnapshot(nil, nil))
	emb := &fixedEmbedder{dim: 5}

	_, err = NewService(ix, emb, st, cache.New[[]float32](10, time.Minute), 0, zerolog.Nop())
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
}

func TestHashEmbedderDeterministic(t *testing.T) {
	emb := NewHashEmbedder(64)

	a, err := emb.Embed(context.Background(), "camping stove fuel")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	b, err := emb.Embed(context.Background(), "camping stove fuel")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatal("equal texts produced different embeddings")
		}
	}

	c, err := emb.Embed(context.Background(), "silk pillowcase")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical embeddings")
	}
}

func TestHashEmbedderNormalized(t *testing.T) {
	emb := NewHashEmbedder(64)

	vec, err := emb.Embed(context.Background(), "wool base layer")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm < 0.99 || norm > 1.01 {
		t.Errorf("norm = %f, want ~1", norm)
	}
}
