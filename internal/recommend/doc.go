// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

// Package recommend implements a hybrid recommendation engine for
// e-commerce product catalogs.
//
// # Architecture
//
// The engine blends two scoring signals:
//
//   - Collaborative: latent-factor model trained on purchase histories
//   - Content: item-item similarity over product embeddings, with a
//     catalog-popularity fallback for users without usable history
//
// # Serving Tiers
//
// Each request is served by a strategy chosen from the user's purchase
// count:
//
//   - cold_start (0 purchases): catalog popularity only
//   - warm_start (fewer than min_purchases): content-heavy fixed blend
//   - hybrid: configured blend of both signals
//
// # Score Blending
//
// Before blending, each signal's score map is normalized by its own
// maximum so signals on different scales contribute proportionally.
// The blend is a weighted sum over the union of scored products, with
// ties broken by catalog order so rankings are fully deterministic.
//
// # Degradation
//
// A signal failure never fails a request. The engine logs the failure,
// serves from the remaining signal, and marks the response degraded
// with the reason. Only when no signal can produce scores does the
// caller receive an empty item list, still as a successful response.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, recommend.EngineOptions{
//	    Catalog:       st,
//	    History:       st,
//	    Collaborative: collab,
//	    Content:       content,
//	    Responses:     responseCache,
//	    Profiles:      profileCache,
//	}, logger)
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    UserID: userID,
//	    TopK:   10,
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Model state lives inside the
// signals, which swap it atomically on artifact refresh; the engine
// invalidates its caches when that happens.
package recommend
