// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/merchantry/merchantry/internal/cache"
	"github.com/merchantry/merchantry/internal/recommend/signal"
	"github.com/merchantry/merchantry/internal/store"
)

// Explainer generates human-readable reasons for recommended products.
// Explanations are presentation only; they never influence ranking.
type Explainer interface {
	Explain(ctx context.Context, userID string, product store.Product, strategy Strategy) string
}

// Engine blends collaborative and content signals into ranked product
// recommendations.
//
// The engine picks a strategy per user from their purchase count:
// cold-start users get popularity rankings, warm-start users get a
// content-heavy blend, and established users get the configured hybrid
// blend. A failing signal degrades the response instead of failing it.
type Engine struct {
	cfg   *Config
	cfgMu sync.RWMutex

	logger zerolog.Logger

	catalog store.CatalogProvider
	history store.HistoryProvider

	collaborative signal.Signal
	content       signal.Signal

	explainer Explainer

	responses *cache.Cache[*Response]
	profiles  *cache.Cache[*Profile]

	state atomic.Value // State

	requestCount   atomic.Int64
	cacheHits      atomic.Int64
	cacheMisses    atomic.Int64
	signalFailures atomic.Int64
}

// EngineOptions bundles the engine's collaborators.
type EngineOptions struct {
	Catalog       store.CatalogProvider
	History       store.HistoryProvider
	Collaborative signal.Signal
	Content       signal.Signal
	Explainer     Explainer

	// Responses caches full recommendation responses.
	Responses *cache.Cache[*Response]

	// Profiles caches user profile summaries.
	Profiles *cache.Cache[*Profile]
}

// NewEngine creates a recommendation engine.
func NewEngine(cfg *Config, opts EngineOptions, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if opts.Catalog == nil || opts.History == nil {
		return nil, fmt.Errorf("engine requires catalog and history providers")
	}
	if opts.Content == nil {
		return nil, fmt.Errorf("engine requires a content signal")
	}
	if opts.Responses == nil || opts.Profiles == nil {
		return nil, fmt.Errorf("engine requires response and profile caches")
	}

	e := &Engine{
		cfg:           cfg,
		logger:        logger.With().Str("component", "recommend").Logger(),
		catalog:       opts.Catalog,
		history:       opts.History,
		collaborative: opts.Collaborative,
		content:       opts.Content,
		explainer:     opts.Explainer,
		responses:     opts.Responses,
		profiles:      opts.Profiles,
	}
	e.state.Store(StateUninitialized)

	return e, nil
}

// SetState publishes the engine's readiness, set by startup wiring and
// the artifact refresher.
func (e *Engine) SetState(s State) {
	e.state.Store(s)
	e.logger.Info().Str("state", string(s)).Msg("engine state changed")
}

// State returns the engine's current readiness.
func (e *Engine) State() State {
	return e.state.Load().(State)
}

// Recommend produces ranked recommendations for a user.
//
// The returned error is reserved for invalid requests and cancelled
// contexts. Signal failures do not error: the response is marked
// degraded, and only if no signal can produce scores does the caller
// get an empty item list together with the reason.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	e.requestCount.Add(1)

	req, err := e.prepareRequest(req)
	if err != nil {
		return nil, err
	}

	logger := e.createRequestLogger(req)

	if resp := e.tryGetCachedResponse(req, logger); resp != nil {
		return resp, nil
	}

	purchaseCount := e.history.PurchaseCount(req.UserID)
	strategy := e.strategyFor(purchaseCount)

	scores, degradedReason := e.collectScores(ctx, req, strategy, logger)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp := e.buildResponse(ctx, req, strategy, scores, degradedReason)
	e.cacheResponse(req, resp)

	logger.Debug().
		Str("strategy", string(resp.Strategy)).
		Int("items", len(resp.Items)).
		Bool("degraded", resp.Degraded).
		Msg("recommendations served")

	return resp, nil
}

// prepareRequest applies defaults and clamps limits.
func (e *Engine) prepareRequest(req Request) (Request, error) {
	if req.UserID == "" {
		return req, fmt.Errorf("user_id is required")
	}
	if req.TopK < 0 {
		return req, fmt.Errorf("top_k must not be negative, got %d", req.TopK)
	}

	cfg := e.config()
	if req.TopK == 0 {
		req.TopK = cfg.DefaultTopK
	}
	if req.TopK > cfg.MaxTopK {
		req.TopK = cfg.MaxTopK
	}
	return req, nil
}

func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("user_id", req.UserID).
		Int("top_k", req.TopK).
		Logger()
}

// strategyFor maps a purchase count to a serving tier.
func (e *Engine) strategyFor(purchaseCount int) Strategy {
	switch {
	case purchaseCount == 0:
		return StrategyColdStart
	case purchaseCount < e.config().MinPurchases:
		return StrategyWarmStart
	default:
		return StrategyHybrid
	}
}

// signalResult carries one signal's output through blending.
type signalResult struct {
	name   string
	scores map[string]float64
	err    error
}

// collectScores runs the strategy's signals and blends their output.
// It returns the blended scores and, when any signal failed, a
// human-readable degradation reason.
func (e *Engine) collectScores(ctx context.Context, req Request, strategy Strategy, logger zerolog.Logger) (map[string]float64, string) {
	cfg := e.config()
	n := req.TopK * cfg.CandidateMultiplier

	// Cold-start users have no history for either model; catalog
	// popularity (the content signal's fallback) is served unblended
	// so scores stay on the popularity scale.
	if strategy == StrategyColdStart {
		scores, err := e.content.Score(ctx, req.UserID, n)
		if err != nil {
			e.recordSignalFailure(e.content.Name(), err, logger)
			return nil, fmt.Sprintf("no recommendations available: %s signal failed", e.content.Name())
		}
		return scores, ""
	}

	weights := cfg.hybridWeights()
	if strategy == StrategyWarmStart {
		weights = warmWeights()
	}

	results := e.runSignals(ctx, req, n)

	var usable []signalResult
	var failed []string
	for _, r := range results {
		if r.err != nil {
			e.recordSignalFailure(r.name, r.err, logger)
			failed = append(failed, r.name)
			continue
		}
		usable = append(usable, r)
	}

	switch len(usable) {
	case 0:
		return nil, "no recommendations available: all signals failed"
	case 1:
		// A single surviving signal still goes through the blend so
		// scores stay on the weighted 0..1 scale clients see when both
		// signals contribute.
		var reason string
		if len(failed) > 0 {
			reason = fmt.Sprintf("%s signal unavailable, served from %s only", failed[0], usable[0].name)
		}
		return e.combineScores(usable, weights), reason
	default:
		return e.combineScores(usable, weights), ""
	}
}

// runSignals executes the collaborative and content signals.
func (e *Engine) runSignals(ctx context.Context, req Request, n int) []signalResult {
	signals := []signal.Signal{e.content}
	if e.collaborative != nil {
		signals = append(signals, e.collaborative)
	}

	results := make([]signalResult, len(signals))
	for i, s := range signals {
		scores, err := s.Score(ctx, req.UserID, n)
		results[i] = signalResult{name: s.Name(), scores: scores, err: err}
	}
	return results
}

// combineScores blends signal score maps into a single ranking.
//
// Each map is first normalized by dividing by its own maximum, so
// signals on different scales contribute proportionally. A map whose
// maximum is zero is left untouched to avoid dividing by zero.
// The blend is the weighted sum over the union of keys, with a signal
// that did not score a product contributing zero for it.
func (e *Engine) combineScores(results []signalResult, weights map[string]float64) map[string]float64 {
	combined := make(map[string]float64)
	for _, r := range results {
		normalized := normalizeByMax(r.scores)
		w := weights[r.name]
		for id, score := range normalized {
			combined[id] += w * score
		}
	}
	return combined
}

// normalizeByMax scales scores into [0, 1] by the map's own maximum.
func normalizeByMax(scores map[string]float64) map[string]float64 {
	var max float64
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	if max == 0 {
		return scores
	}

	out := make(map[string]float64, len(scores))
	for id, s := range scores {
		out[id] = s / max
	}
	return out
}

// buildResponse ranks blended scores, applies exclusions, enriches
// from the catalog, and optionally decorates with explanations.
func (e *Engine) buildResponse(ctx context.Context, req Request, strategy Strategy, scores map[string]float64, degradedReason string) *Response {
	resp := &Response{
		UserID:   req.UserID,
		Strategy: strategy,
		Items:    []Recommendation{},
	}
	if degradedReason != "" {
		resp.Degraded = true
		resp.Reason = degradedReason
	}
	if len(scores) == 0 {
		return resp
	}

	var exclude map[string]struct{}
	if req.excludePurchased() {
		exclude = e.history.PurchasedSet(req.UserID)
	}

	ranked := e.rankScores(scores, exclude, req.TopK)

	for _, r := range ranked {
		product, ok := e.catalog.Product(r.id)
		if !ok {
			// Stale model entries for delisted products are expected
			// between artifact refreshes; drop them quietly.
			e.logger.Debug().Str("product_id", r.id).Msg("dropping unknown product from recommendations")
			continue
		}

		item := Recommendation{Product: product, Score: r.score}
		if req.Explain && e.explainer != nil {
			item.Reason = e.explainer.Explain(ctx, req.UserID, product, strategy)
		}
		resp.Items = append(resp.Items, item)
	}

	return resp
}

// rankedScore pairs a product ID with its blended score.
type rankedScore struct {
	id    string
	score float64
}

// rankScores orders scores descending with catalog-order tie-breaks
// and truncates to k.
func (e *Engine) rankScores(scores map[string]float64, exclude map[string]struct{}, k int) []rankedScore {
	ranked := make([]rankedScore, 0, len(scores))
	for id, score := range scores {
		if _, skip := exclude[id]; skip {
			continue
		}
		ranked = append(ranked, rankedScore{id: id, score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		ri, rj := e.catalog.Rank(ranked[i].id), e.catalog.Rank(ranked[j].id)
		if ri != rj {
			return ri < rj
		}
		return ranked[i].id < ranked[j].id
	})

	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}

// recordSignalFailure logs and counts a failed signal.
func (e *Engine) recordSignalFailure(name string, err error, logger zerolog.Logger) {
	e.signalFailures.Add(1)
	logger.Warn().Err(err).Str("signal", name).Msg("signal failed, continuing without it")
}

// Profile returns a cached summary of a user's purchasing behavior.
func (e *Engine) Profile(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cache.GenerateKey("profile", userID)
	if p, ok := e.profiles.Get(key); ok {
		e.cacheHits.Add(1)
		return p, nil
	}
	e.cacheMisses.Add(1)

	p := e.buildProfile(userID)
	if err := e.profiles.Set(key, p); err != nil {
		e.logger.Warn().Err(err).Msg("failed to cache profile")
	}
	return p, nil
}

// buildProfile derives profile facts from the purchase history.
func (e *Engine) buildProfile(userID string) *Profile {
	purchases := e.history.Purchases(userID)

	p := &Profile{
		UserID:        userID,
		PurchaseCount: len(purchases),
		Strategy:      e.strategyFor(len(purchases)),
		TopCategories: []string{},
	}
	if len(purchases) == 0 {
		return p
	}

	categoryCounts := make(map[string]int)
	var unitPriceSum float64
	for _, purchase := range purchases {
		qty := purchase.Quantity
		if qty < 1 {
			qty = 1
		}
		p.TotalSpend += purchase.Price * float64(qty)
		unitPriceSum += purchase.Price

		if product, ok := e.catalog.Product(purchase.ProductID); ok {
			categoryCounts[product.Category]++
		}
	}
	p.AveragePrice = unitPriceSum / float64(len(purchases))

	categories := make([]string, 0, len(categoryCounts))
	for c := range categoryCounts {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categoryCounts[categories[i]] != categoryCounts[categories[j]] {
			return categoryCounts[categories[i]] > categoryCounts[categories[j]]
		}
		return categories[i] < categories[j]
	})
	if len(categories) > 3 {
		categories = categories[:3]
	}
	p.TopCategories = categories

	return p
}

// cacheKey derives the response cache key for a request.
func (e *Engine) cacheKey(req Request) string {
	return cache.GenerateKey("recommendations", struct {
		UserID           string `json:"user_id"`
		TopK             int    `json:"top_k"`
		ExcludePurchased bool   `json:"exclude_purchased"`
		Explain          bool   `json:"explain"`
	}{req.UserID, req.TopK, req.excludePurchased(), req.Explain})
}

// tryGetCachedResponse serves a copy from the response cache.
func (e *Engine) tryGetCachedResponse(req Request, logger zerolog.Logger) *Response {
	resp, ok := e.responses.Get(e.cacheKey(req))
	if !ok {
		e.cacheMisses.Add(1)
		return nil
	}

	e.cacheHits.Add(1)
	logger.Debug().Msg("served from response cache")
	return copyResponse(resp)
}

// cacheResponse stores a response for later requests.
func (e *Engine) cacheResponse(req Request, resp *Response) {
	if err := e.responses.Set(e.cacheKey(req), resp); err != nil {
		e.logger.Warn().Err(err).Msg("failed to cache response")
	}
}

// copyResponse returns a shallow-item copy so callers can't mutate the
// cached value.
func copyResponse(resp *Response) *Response {
	out := *resp
	out.FromCache = true
	out.Items = make([]Recommendation, len(resp.Items))
	copy(out.Items, resp.Items)
	return &out
}

// InvalidateCaches clears the response and profile caches, called
// after an artifact refresh publishes new model state.
func (e *Engine) InvalidateCaches() {
	e.responses.Clear()
	e.profiles.Clear()
	e.logger.Info().Msg("recommendation caches invalidated")
}

// Metrics returns a snapshot of engine counters.
func (e *Engine) Metrics() Metrics {
	return Metrics{
		Requests:       e.requestCount.Load(),
		CacheHits:      e.cacheHits.Load(),
		CacheMisses:    e.cacheMisses.Load(),
		SignalFailures: e.signalFailures.Load(),
	}
}

// CacheStats reports the engine's cache counters by purpose.
func (e *Engine) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"recommendations": e.responses.Stats(),
		"profiles":        e.profiles.Stats(),
	}
}

// config returns the current configuration.
func (e *Engine) config() *Config {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.cfg
}

// UpdateConfig swaps the engine configuration after validation.
func (e *Engine) UpdateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}

	e.cfgMu.Lock()
	e.cfg = cfg
	e.cfgMu.Unlock()

	e.InvalidateCaches()
	return nil
}
