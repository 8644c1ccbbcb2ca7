// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// HTTPService wraps an http.Server as a suture service with graceful
// shutdown. When the supervising context is canceled the server drains
// in-flight requests for up to shutdownTimeout before closing.
type HTTPService struct {
	server          *http.Server
	logger          zerolog.Logger
	shutdownTimeout time.Duration
}

// NewHTTPService creates the HTTP service wrapper.
func NewHTTPService(server *http.Server, shutdownTimeout time.Duration, logger zerolog.Logger) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{
		server:          server,
		logger:          logger.With().Str("component", "http-server").Logger(),
		shutdownTimeout: shutdownTimeout,
	}
}

// Serve runs the server until the context is canceled or the listener
// fails.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn().Err(err).Msg("HTTP server shutdown did not complete cleanly")
			s.server.Close() //nolint:errcheck // best effort after failed drain
		} else {
			s.logger.Info().Msg("HTTP server stopped")
		}
		return ctx.Err()
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server failed")
			return err
		}
		return nil
	}
}

// String identifies the service in supervision events.
func (s *HTTPService) String() string {
	return "http-server"
}

var _ suture.Service = (*HTTPService)(nil)
