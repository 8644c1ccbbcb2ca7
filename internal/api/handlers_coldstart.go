// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/merchantry/merchantry/internal/coldstart"
	"github.com/merchantry/merchantry/internal/metrics"
)

// StartColdStart handles POST /api/v1/coldstart/sessions.
func (h *Handler) StartColdStart(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	session, err := h.coldstart.Start(r.Context())
	if err != nil {
		rw.InternalError("Failed to start session")
		return
	}
	metrics.ColdStartSessions.Inc()

	rw.Created(session)
}

// refineRequest is the POST body for session refinement.
type refineRequest struct {
	LikedIDs []string `json:"liked_ids"`
}

// refineResponse pairs the updated session with its suggestions.
type refineResponse struct {
	Session     *coldstart.Session     `json:"session"`
	Suggestions []coldstart.Suggestion `json:"suggestions"`
}

// RefineColdStart handles POST /api/v1/coldstart/sessions/{sessionID}/refine.
// Unknown and expired sessions return 404.
func (h *Handler) RefineColdStart(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	sessionID := chi.URLParam(r, "sessionID")

	var body refineRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		metrics.ColdStartRefines.WithLabelValues("error").Inc()
		rw.BadRequest("Request body must be JSON with a liked_ids array")
		return
	}

	session, suggestions, err := h.coldstart.Refine(r.Context(), sessionID, body.LikedIDs)
	if err != nil {
		var notFound *coldstart.SessionNotFoundError
		if errors.As(err, &notFound) {
			metrics.ColdStartRefines.WithLabelValues("not_found").Inc()
			rw.NotFound("Session not found or expired: " + sessionID)
			return
		}
		metrics.ColdStartRefines.WithLabelValues("error").Inc()
		rw.InternalError("Failed to refine session")
		return
	}
	metrics.ColdStartRefines.WithLabelValues("success").Inc()

	rw.Success(refineResponse{
		Session:     session,
		Suggestions: suggestions,
	})
}
