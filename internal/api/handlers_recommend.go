// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/merchantry/merchantry/internal/metrics"
	"github.com/merchantry/merchantry/internal/recommend"
	"github.com/merchantry/merchantry/internal/validation"
)

// recommendationsParams carries the validated query parameters for
// GET /api/v1/recommendations/{userID}.
type recommendationsParams struct {
	UserID string `validate:"required,min=1,max=128"`
	TopK   int    `validate:"gte=0,lte=100"`
}

// Recommendations handles GET /api/v1/recommendations/{userID}.
//
// Degraded results are served with HTTP 200 and a degraded marker in
// the payload. Only an uninitialized engine yields 503.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.engine.State() == recommend.StateUninitialized {
		rw.ServiceUnavailable("Recommendation engine is not ready")
		return
	}

	params := recommendationsParams{
		UserID: chi.URLParam(r, "userID"),
	}

	q := r.URL.Query()
	if v := q.Get("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			rw.BadRequest("top_k must be an integer")
			return
		}
		params.TopK = n
	}

	if verr := validation.ValidateStruct(&params); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	req := recommend.Request{
		UserID: params.UserID,
		TopK:   params.TopK,
	}

	if v := q.Get("exclude_purchased"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			rw.BadRequest("exclude_purchased must be a boolean")
			return
		}
		req.ExcludePurchased = &b
	}

	if v := q.Get("explain"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			rw.BadRequest("explain must be a boolean")
			return
		}
		req.Explain = b
	}

	start := time.Now()
	resp, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		if r.Context().Err() != nil {
			rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Request cancelled")
			return
		}
		rw.BadRequest(err.Error())
		return
	}
	metrics.RecordRecommendation(string(resp.Strategy), resp.Degraded, time.Since(start))

	rw.Success(resp)
}

// Profile handles GET /api/v1/users/{userID}/profile.
//
// Users without purchase history are valid cold-start users, so this
// endpoint never 404s on unknown IDs.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.engine.State() == recommend.StateUninitialized {
		rw.ServiceUnavailable("Recommendation engine is not ready")
		return
	}

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("user ID is required")
		return
	}

	profile, err := h.engine.Profile(r.Context(), userID)
	if err != nil {
		rw.InternalError("Failed to build user profile")
		return
	}

	rw.Success(profile)
}
