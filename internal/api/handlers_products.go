// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const defaultPopularLimit = 10

// Popular handles GET /api/v1/products/popular?limit=.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit := defaultPopularLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			rw.BadRequest("limit must be an integer between 1 and 100")
			return
		}
		limit = n
	}

	products := h.catalog.Popular(limit)
	rw.Success(map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// Similar handles GET /api/v1/products/{productID}/similar?limit=.
// Unknown products return 404.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	productID := chi.URLParam(r, "productID")
	if _, ok := h.catalog.Product(productID); !ok {
		rw.NotFound("Product not found: " + productID)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			rw.BadRequest("limit must be an integer between 1 and 100")
			return
		}
		limit = n
	}

	results, err := h.search.Similar(r.Context(), productID, limit)
	if err != nil {
		// In the catalog but not in the embedding index means the
		// embedding artifact has no vector for it.
		rw.NotFound("No similarity data for product: " + productID)
		return
	}

	rw.Success(map[string]interface{}{
		"product_id": productID,
		"similar":    results,
		"count":      len(results),
	})
}
