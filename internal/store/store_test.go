// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package store

import "testing"

func testProducts() []Product {
	return []Product{
		{ID: "prod_a", Name: "Trail Pack", Category: "outdoor", Price: 89.99, Popularity: 90},
		{ID: "prod_b", Name: "Steel Bottle", Category: "outdoor", Price: 24.50, Popularity: 50},
		{ID: "prod_c", Name: "Camp Stove", Category: "outdoor", Price: 64.00, Popularity: 10},
		{ID: "prod_d", Name: "Wool Socks", Category: "apparel", Price: 12.00, Popularity: 50},
	}
}

func testStore() *Store {
	purchases := map[string][]Purchase{
		"user_1": {
			{ProductID: "prod_a", Quantity: 1, Price: 89.99},
			{ProductID: "prod_c", Quantity: 2, Price: 64.00},
		},
	}
	return New(NewSnapshot(testProducts(), purchases))
}

func TestStoreLookup(t *testing.T) {
	s := testStore()

	p, ok := s.Product("prod_b")
	if !ok {
		t.Fatal("expected prod_b to exist")
	}
	if p.Name != "Steel Bottle" {
		t.Errorf("Name = %q, want %q", p.Name, "Steel Bottle")
	}

	if _, ok := s.Product("prod_zz"); ok {
		t.Error("unknown product should not resolve")
	}
}

func TestStoreRank(t *testing.T) {
	s := testStore()

	if got := s.Rank("prod_a"); got != 0 {
		t.Errorf("Rank(prod_a) = %d, want 0", got)
	}
	if got := s.Rank("prod_d"); got != 3 {
		t.Errorf("Rank(prod_d) = %d, want 3", got)
	}
	if got := s.Rank("prod_zz"); got != -1 {
		t.Errorf("Rank(prod_zz) = %d, want -1", got)
	}
}

func TestStorePopular(t *testing.T) {
	s := testStore()

	top := s.Popular(3)
	if len(top) != 3 {
		t.Fatalf("Popular(3) returned %d products", len(top))
	}

	// prod_b and prod_d tie at 50; catalog order puts prod_b first.
	want := []string{"prod_a", "prod_b", "prod_d"}
	for i, id := range want {
		if top[i].ID != id {
			t.Errorf("Popular[%d] = %s, want %s", i, top[i].ID, id)
		}
	}
}

func TestStorePopularLimitLargerThanCatalog(t *testing.T) {
	s := testStore()

	if got := len(s.Popular(100)); got != 4 {
		t.Errorf("Popular(100) returned %d products, want 4", got)
	}
}

func TestStoreHistory(t *testing.T) {
	s := testStore()

	if got := s.PurchaseCount("user_1"); got != 2 {
		t.Errorf("PurchaseCount = %d, want 2", got)
	}
	if got := s.PurchaseCount("user_unknown"); got != 0 {
		t.Errorf("PurchaseCount for unknown user = %d, want 0", got)
	}

	set := s.PurchasedSet("user_1")
	if _, ok := set["prod_a"]; !ok {
		t.Error("prod_a missing from purchased set")
	}
	if _, ok := set["prod_b"]; ok {
		t.Error("prod_b should not be in purchased set")
	}

	if got := len(s.PurchasedSet("user_unknown")); got != 0 {
		t.Errorf("unknown user purchased set size = %d, want 0", got)
	}
}

func TestStoreReplace(t *testing.T) {
	s := testStore()

	next := NewSnapshot([]Product{
		{ID: "prod_x", Name: "New Item", Category: "misc", Price: 5, Popularity: 1},
	}, nil)
	s.Replace(next)

	if _, ok := s.Product("prod_a"); ok {
		t.Error("old snapshot product visible after Replace")
	}
	if _, ok := s.Product("prod_x"); !ok {
		t.Error("new snapshot product not visible after Replace")
	}
	if got := s.PurchaseCount("user_1"); got != 0 {
		t.Errorf("old histories visible after Replace: count = %d", got)
	}
}
