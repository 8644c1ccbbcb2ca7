// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

// Package coldstart runs preference interview sessions for shoppers with
// no purchase history. A session presents probe products drawn from the
// catalog, one popular item per category, and refines recommendations
// from the products the shopper likes. Sessions are held in an expiring
// cache; once the TTL lapses the session is gone and the client must
// start a new one.
package coldstart

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/merchantry/merchantry/internal/cache"
	"github.com/merchantry/merchantry/internal/recommend/signal"
	"github.com/merchantry/merchantry/internal/store"
)

// SessionNotFoundError reports a session ID that is unknown or expired.
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("cold-start session not found: %s", e.SessionID)
}

// Session captures the state of one preference interview.
type Session struct {
	ID        string          `json:"session_id"`
	CreatedAt time.Time       `json:"created_at"`
	Probes    []store.Product `json:"probes"`
	Liked     []string        `json:"liked,omitempty"`
}

// Suggestion is one refined recommendation with its similarity score.
type Suggestion struct {
	Product store.Product `json:"product"`
	Score   float64       `json:"score"`
}

// Config holds interview session settings.
type Config struct {
	// MaxProbes caps the number of probe products shown. Default: 8.
	MaxProbes int `json:"max_probes" koanf:"max_probes"`

	// Suggestions is the number of refined recommendations returned
	// per liked product pass. Default: 10.
	Suggestions int `json:"suggestions" koanf:"suggestions"`
}

// DefaultConfig returns the default interview settings.
func DefaultConfig() Config {
	return Config{
		MaxProbes:   8,
		Suggestions: 10,
	}
}

// Service manages interview sessions.
type Service struct {
	cfg      Config
	catalog  store.CatalogProvider
	content  *signal.Content
	sessions *cache.Cache[*Session]
	logger   zerolog.Logger
}

// NewService creates the interview service. The sessions cache TTL
// bounds how long an interview can stay idle before it expires.
func NewService(cfg Config, catalog store.CatalogProvider, content *signal.Content, sessions *cache.Cache[*Session], logger zerolog.Logger) (*Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("coldstart: catalog is required")
	}
	if content == nil {
		return nil, fmt.Errorf("coldstart: content signal is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("coldstart: sessions cache is required")
	}
	if cfg.MaxProbes <= 0 {
		cfg.MaxProbes = DefaultConfig().MaxProbes
	}
	if cfg.Suggestions <= 0 {
		cfg.Suggestions = DefaultConfig().Suggestions
	}
	return &Service{
		cfg:      cfg,
		catalog:  catalog,
		content:  content,
		sessions: sessions,
		logger:   logger.With().Str("component", "coldstart").Logger(),
	}, nil
}

// Start opens a new interview session and returns it with probe
// products selected from the catalog.
func (s *Service) Start(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Probes:    s.probeProducts(),
	}
	if err := s.sessions.Set(session.ID, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.logger.Debug().
		Str("session_id", session.ID).
		Int("probes", len(session.Probes)).
		Msg("Cold-start session started")
	return session, nil
}

// Refine records the liked products on the session and returns
// recommendations similar to them. Unknown liked IDs are ignored; an
// unknown or expired session returns SessionNotFoundError.
func (s *Service) Refine(ctx context.Context, sessionID string, likedIDs []string) (*Session, []Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, &SessionNotFoundError{SessionID: sessionID}
	}

	liked := make([]string, 0, len(likedIDs))
	for _, id := range likedIDs {
		if _, ok := s.catalog.Product(id); ok {
			liked = append(liked, id)
		} else {
			s.logger.Debug().Str("product_id", id).Msg("Ignoring unknown liked product")
		}
	}

	// The cached pointer may be shared with concurrent Refine calls, so
	// build a fresh session instead of mutating it in place. Probes are
	// never modified after Start and can be shared.
	refined := &Session{
		ID:        session.ID,
		CreatedAt: session.CreatedAt,
		Probes:    session.Probes,
		Liked:     liked,
	}

	suggestions := s.suggest(refined)

	// Re-set to persist the liked list and push the expiry out.
	if err := s.sessions.Set(refined.ID, refined); err != nil {
		return nil, nil, fmt.Errorf("store session: %w", err)
	}
	return refined, suggestions, nil
}

// Get returns the session or SessionNotFoundError.
func (s *Service) Get(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, &SessionNotFoundError{SessionID: sessionID}
	}
	return session, nil
}

// probeProducts picks the most popular product from each category, most
// popular categories first, capped at MaxProbes.
func (s *Service) probeProducts() []store.Product {
	best := make(map[string]store.Product)
	for _, p := range s.catalog.Products() {
		cur, ok := best[p.Category]
		if !ok || p.Popularity > cur.Popularity {
			best[p.Category] = p
		}
	}

	probes := make([]store.Product, 0, len(best))
	for _, p := range best {
		probes = append(probes, p)
	}
	sort.SliceStable(probes, func(i, j int) bool {
		if probes[i].Popularity != probes[j].Popularity {
			return probes[i].Popularity > probes[j].Popularity
		}
		return probes[i].Category < probes[j].Category
	})
	if len(probes) > s.cfg.MaxProbes {
		probes = probes[:s.cfg.MaxProbes]
	}
	return probes
}

// suggest aggregates content similarity over the liked products. With
// no usable liked products it falls back to catalog popularity.
func (s *Service) suggest(session *Session) []Suggestion {
	liked := make(map[string]bool, len(session.Liked))
	for _, id := range session.Liked {
		liked[id] = true
	}

	combined := make(map[string]float64)
	usable := 0
	for _, id := range session.Liked {
		scores, err := s.content.SimilarTo(id, s.cfg.Suggestions*2)
		if err != nil {
			s.logger.Debug().Err(err).Str("product_id", id).Msg("Similarity lookup failed for liked product")
			continue
		}
		usable++
		for pid, score := range scores {
			combined[pid] += score
		}
	}

	if usable == 0 {
		return s.popularSuggestions(liked)
	}

	type ranked struct {
		id    string
		score float64
	}
	order := make([]ranked, 0, len(combined))
	for id, total := range combined {
		if liked[id] {
			continue
		}
		order = append(order, ranked{id: id, score: total / float64(usable)})
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].score != order[j].score {
			return order[i].score > order[j].score
		}
		return s.catalog.Rank(order[i].id) < s.catalog.Rank(order[j].id)
	})

	suggestions := make([]Suggestion, 0, s.cfg.Suggestions)
	for _, r := range order {
		product, ok := s.catalog.Product(r.id)
		if !ok {
			continue
		}
		suggestions = append(suggestions, Suggestion{Product: product, Score: r.score})
		if len(suggestions) == s.cfg.Suggestions {
			break
		}
	}
	return suggestions
}

// popularSuggestions serves catalog bestsellers, excluding liked items.
func (s *Service) popularSuggestions(liked map[string]bool) []Suggestion {
	popular := s.catalog.Popular(s.cfg.Suggestions + len(liked))
	suggestions := make([]Suggestion, 0, s.cfg.Suggestions)
	for _, p := range popular {
		if liked[p.ID] {
			continue
		}
		suggestions = append(suggestions, Suggestion{Product: p, Score: float64(p.Popularity) / 100.0})
		if len(suggestions) == s.cfg.Suggestions {
			break
		}
	}
	return suggestions
}
