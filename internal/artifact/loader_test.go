// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/merchantry/merchantry/internal/cache"
	"github.com/merchantry/merchantry/internal/recommend"
	"github.com/merchantry/merchantry/internal/recommend/signal"
	"github.com/merchantry/merchantry/internal/search"
	"github.com/merchantry/merchantry/internal/store"
)

func writeArtifact(t *testing.T, dir, name string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func writeCatalog(t *testing.T, dir string) {
	t.Helper()
	writeArtifact(t, dir, "catalog.json", []store.Product{
		{ID: "prod_a", Name: "Trail Pack", Category: "outdoor", Price: 89.99, Popularity: 90},
		{ID: "prod_b", Name: "Steel Bottle", Category: "outdoor", Price: 24.50, Popularity: 50},
	})
}

func writeAllArtifacts(t *testing.T, dir string) {
	t.Helper()
	writeCatalog(t, dir)
	writeArtifact(t, dir, "purchases.json", map[string][]store.Purchase{
		"user_1": {{ProductID: "prod_a", Quantity: 1, Price: 89.99}},
	})
	writeArtifact(t, dir, "factors.json", signal.FactorModel{
		GlobalMean:   1.0,
		UserBaseline: map[string]float64{"user_1": 0.1},
		ItemBaseline: map[string]float64{"prod_a": 0.2},
		UserFactors:  map[string][]float64{"user_1": {1, 0}},
		ItemFactors:  map[string][]float64{"prod_a": {0.5, 0.5}},
	})
	writeArtifact(t, dir, "similarity.json", signal.SimilarityModel{
		ProductIDs: []string{"prod_a", "prod_b"},
		Matrix:     [][]float64{{1, 0.4}, {0.4, 1}},
	})
	writeArtifact(t, dir, "embeddings.json", Embeddings{
		Dimension: 2,
		Vectors: map[string][]float32{
			"prod_a": {0, 0},
			"prod_b": {1, 0},
		},
	})
}

func newBootstrap(t *testing.T, dir string) *Bootstrap {
	t.Helper()

	st := store.New(nil)
	collab := signal.NewCollaborative(st, st)
	content := signal.NewContent(st, st)
	ix, err := search.NewIndex(2)
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}

	engine, err := recommend.NewEngine(recommend.DefaultConfig(), recommend.EngineOptions{
		Catalog:       st,
		History:       st,
		Collaborative: collab,
		Content:       content,
		Responses:     cache.New[*recommend.Response](10, time.Minute),
		Profiles:      cache.New[*recommend.Profile](10, time.Minute),
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	return &Bootstrap{
		Loader:        NewLoader(dir),
		Store:         st,
		Collaborative: collab,
		Content:       content,
		Index:         ix,
		Engine:        engine,
		Logger:        zerolog.Nop(),
	}
}

func TestLoaderNotFound(t *testing.T) {
	l := NewLoader(t.TempDir())

	_, err := l.Catalog()
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLoaderCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "catalog.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(dir)
	_, err := l.Catalog()
	if err == nil {
		t.Fatal("corrupt file should error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("corrupt file must not be reported as missing")
	}
}

func TestLoaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeAllArtifacts(t, dir)
	l := NewLoader(dir)

	products, err := l.Catalog()
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}
	if len(products) != 2 || products[0].ID != "prod_a" {
		t.Errorf("catalog = %+v, want prod_a first of 2", products)
	}

	factors, err := l.Factors()
	if err != nil {
		t.Fatalf("Factors failed: %v", err)
	}
	if factors.GlobalMean != 1.0 {
		t.Errorf("GlobalMean = %f, want 1.0", factors.GlobalMean)
	}

	similarity, err := l.Similarity()
	if err != nil {
		t.Fatalf("Similarity failed: %v", err)
	}
	if similarity.Matrix[0][1] != 0.4 {
		t.Errorf("Matrix[0][1] = %f, want 0.4", similarity.Matrix[0][1])
	}

	emb, err := l.ProductEmbeddings()
	if err != nil {
		t.Fatalf("ProductEmbeddings failed: %v", err)
	}
	if emb.Dimension != 2 || len(emb.Vectors) != 2 {
		t.Errorf("embeddings = dim %d with %d vectors, want 2/2", emb.Dimension, len(emb.Vectors))
	}
}

func TestLoaderRejectsInvalidSimilarity(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "similarity.json", signal.SimilarityModel{
		ProductIDs: []string{"prod_a", "prod_b"},
		Matrix:     [][]float64{{1, 0.4}},
	})

	if _, err := NewLoader(dir).Similarity(); err == nil {
		t.Error("mis-shaped similarity matrix should be rejected")
	}
}

func TestLoaderRejectsInvalidEmbeddings(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "embeddings.json", Embeddings{
		Dimension: 3,
		Vectors:   map[string][]float32{"prod_a": {1, 2}},
	})

	if _, err := NewLoader(dir).ProductEmbeddings(); err == nil {
		t.Error("embedding dimension mismatch should be rejected")
	}
}

func TestBootstrapFullLoad(t *testing.T) {
	dir := t.TempDir()
	writeAllArtifacts(t, dir)
	b := newBootstrap(t, dir)

	if err := b.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := b.Engine.State(); got != recommend.StateReady {
		t.Errorf("state = %s, want ready", got)
	}
	if !b.Collaborative.Loaded() || !b.Content.Loaded() {
		t.Error("signals should be loaded after full load")
	}
	if b.Index.Len() != 2 {
		t.Errorf("index has %d vectors, want 2", b.Index.Len())
	}
	if _, ok := b.Store.Product("prod_a"); !ok {
		t.Error("catalog not published to store")
	}
}

func TestBootstrapMissingCatalogFatal(t *testing.T) {
	b := newBootstrap(t, t.TempDir())

	if err := b.Load(); err == nil {
		t.Fatal("missing catalog must fail the load")
	}
}

func TestBootstrapMissingModelsDegraded(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir)
	b := newBootstrap(t, dir)

	if err := b.Load(); err != nil {
		t.Fatalf("missing model artifacts must not fail the load: %v", err)
	}

	if got := b.Engine.State(); got != recommend.StateDegraded {
		t.Errorf("state = %s, want degraded", got)
	}
	if b.Collaborative.Loaded() {
		t.Error("collaborative model should be unloaded")
	}
}

func TestBootstrapEmbeddingDimensionFatal(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir)
	// Index in newBootstrap is 2-dimensional; this artifact is not.
	writeArtifact(t, dir, "embeddings.json", Embeddings{
		Dimension: 5,
		Vectors:   map[string][]float32{"prod_a": {1, 2, 3, 4, 5}},
	})
	b := newBootstrap(t, dir)

	err := b.Load()
	if err == nil {
		t.Fatal("embedding dimension mismatch must fail the load")
	}
	var dimErr *search.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError, got %v", err)
	}
}

func TestRefresherDetectsChanges(t *testing.T) {
	dir := t.TempDir()
	writeAllArtifacts(t, dir)
	b := newBootstrap(t, dir)
	if err := b.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	r := NewRefresher(b, time.Minute, zerolog.Nop())

	if r.changed(b.Loader.ModTimes()) {
		t.Error("unchanged artifacts reported as changed")
	}

	// Touch one artifact with a distinct mtime.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "factors.json"), future, future); err != nil {
		t.Fatal(err)
	}
	if !r.changed(b.Loader.ModTimes()) {
		t.Error("modified artifact not detected")
	}

	r.checkAndReload()
	if r.changed(b.Loader.ModTimes()) {
		t.Error("reload did not record new mod times")
	}
}
