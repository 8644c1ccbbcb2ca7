// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

// Package store holds the in-memory product catalog and purchase
// history snapshots that the recommendation and search services read
// from. Snapshots are immutable once published and are swapped
// atomically on artifact reload.
package store

import (
	"sort"
	"sync/atomic"
)

// Product is a single catalog entry.
//
// Popularity is a merchandising score in [0, 100] maintained by the
// catalog pipeline; it drives cold-start rankings after scaling to
// [0, 1].
type Product struct {
	ID          string  `json:"product_id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Popularity  float64 `json:"popularity"`
	Description string  `json:"description,omitempty"`
}

// Purchase is a single purchase event in a user's history.
type Purchase struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// CatalogProvider exposes read access to the product catalog.
//
// Products returns the catalog in its canonical order. That order is
// the global tie-break for every ranking in the system, so providers
// must preserve it exactly as loaded.
type CatalogProvider interface {
	// Products returns all products in canonical catalog order.
	Products() []Product

	// Product looks up a single product by ID.
	Product(id string) (Product, bool)

	// Rank returns the catalog-order position of a product, or -1 if
	// the product is unknown. Lower rank wins ties.
	Rank(id string) int

	// Popular returns up to limit products ordered by descending
	// popularity, ties broken by catalog order.
	Popular(limit int) []Product
}

// HistoryProvider exposes read access to user purchase histories.
type HistoryProvider interface {
	// Purchases returns a user's purchase events in order. Unknown
	// users return an empty slice.
	Purchases(userID string) []Purchase

	// PurchasedSet returns the set of product IDs a user has bought.
	PurchasedSet(userID string) map[string]struct{}

	// PurchaseCount returns the number of purchase events for a user.
	PurchaseCount(userID string) int
}

// Snapshot is an immutable view of catalog and history state.
type Snapshot struct {
	products  []Product
	byID      map[string]int
	purchases map[string][]Purchase
}

// NewSnapshot builds a snapshot from catalog order and histories.
// The products slice order is preserved as the canonical order.
func NewSnapshot(products []Product, purchases map[string][]Purchase) *Snapshot {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	if purchases == nil {
		purchases = map[string][]Purchase{}
	}
	return &Snapshot{
		products:  products,
		byID:      byID,
		purchases: purchases,
	}
}

// Store serves snapshot reads and supports atomic replacement.
type Store struct {
	snapshot atomic.Pointer[Snapshot]
}

// New creates a store serving the given snapshot.
func New(snap *Snapshot) *Store {
	s := &Store{}
	if snap == nil {
		snap = NewSnapshot(nil, nil)
	}
	s.snapshot.Store(snap)
	return s
}

// Replace publishes a new snapshot. In-flight reads keep the snapshot
// they started with.
func (s *Store) Replace(snap *Snapshot) {
	if snap == nil {
		return
	}
	s.snapshot.Store(snap)
}

// Products implements CatalogProvider.
func (s *Store) Products() []Product {
	return s.snapshot.Load().products
}

// Product implements CatalogProvider.
func (s *Store) Product(id string) (Product, bool) {
	snap := s.snapshot.Load()
	if i, ok := snap.byID[id]; ok {
		return snap.products[i], true
	}
	return Product{}, false
}

// Rank implements CatalogProvider.
func (s *Store) Rank(id string) int {
	if i, ok := s.snapshot.Load().byID[id]; ok {
		return i
	}
	return -1
}

// Popular implements CatalogProvider.
func (s *Store) Popular(limit int) []Product {
	snap := s.snapshot.Load()

	ranked := make([]Product, len(snap.products))
	copy(ranked, snap.products)

	// Stable sort over catalog order keeps ties deterministic.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Popularity > ranked[j].Popularity
	})

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}

// Purchases implements HistoryProvider.
func (s *Store) Purchases(userID string) []Purchase {
	return s.snapshot.Load().purchases[userID]
}

// PurchasedSet implements HistoryProvider.
func (s *Store) PurchasedSet(userID string) map[string]struct{} {
	history := s.snapshot.Load().purchases[userID]
	set := make(map[string]struct{}, len(history))
	for _, p := range history {
		set[p.ProductID] = struct{}{}
	}
	return set
}

// PurchaseCount implements HistoryProvider.
func (s *Store) PurchaseCount(userID string) int {
	return len(s.snapshot.Load().purchases[userID])
}

// Verify interface implementations at compile time
var (
	_ CatalogProvider = (*Store)(nil)
	_ HistoryProvider = (*Store)(nil)
)
