// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/merchantry/merchantry/internal/metrics"
	"github.com/merchantry/merchantry/internal/search"
	"github.com/merchantry/merchantry/internal/validation"
)

// Search handles GET /api/v1/search?q=&category=&min_price=&max_price=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	params := r.URL.Query()
	query := search.Query{
		Text:     params.Get("q"),
		Category: params.Get("category"),
	}

	if v := params.Get("min_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			rw.BadRequest("min_price must be a number")
			return
		}
		query.MinPrice = &f
	}

	if v := params.Get("max_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			rw.BadRequest("max_price must be a number")
			return
		}
		query.MaxPrice = &f
	}

	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			rw.BadRequest("limit must be an integer")
			return
		}
		query.Limit = n
	}

	if verr := validation.ValidateStruct(&query); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	if query.MinPrice != nil && query.MaxPrice != nil && *query.MinPrice > *query.MaxPrice {
		rw.BadRequest("min_price must not exceed max_price")
		return
	}

	start := time.Now()
	results, err := h.search.Search(r.Context(), query)
	metrics.RecordSearch(time.Since(start), err)
	if err != nil {
		rw.InternalError("Search failed")
		return
	}

	rw.Success(map[string]interface{}{
		"query":   query.Text,
		"results": results,
		"count":   len(results),
	})
}
