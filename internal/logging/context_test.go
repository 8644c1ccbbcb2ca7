// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateRequestID(t *testing.T) {
	t.Parallel()

	id := GenerateRequestID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected valid UUID, got %q: %v", id, err)
	}

	if GenerateRequestID() == id {
		t.Error("expected unique request IDs")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("expected empty request ID on fresh context, got %q", got)
	}

	ctx = ContextWithRequestID(ctx, "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("expected 'req-123', got %q", got)
	}
}

func TestCtxAddsRequestID(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{Level: "debug", Format: "json", Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-456")
	Ctx(ctx).Info().Msg("handled")

	output := buf.String()
	if !strings.Contains(output, `"request_id":"req-456"`) {
		t.Errorf("expected request_id field, got: %s", output)
	}
}

func TestCtxWithoutRequestID(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{Level: "debug", Format: "json", Output: &buf})

	Ctx(context.Background()).Info().Msg("no request id")

	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("expected no request_id field, got: %s", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	stored := NewTestLogger(&buf).With().Str("handler", "search").Logger()

	ctx := ContextWithLogger(context.Background(), stored)
	logger := LoggerFromContext(ctx)
	logger.Info().Msg("through stored logger")

	output := buf.String()
	if !strings.Contains(output, `"handler":"search"`) {
		t.Errorf("expected stored logger fields, got: %s", output)
	}
}

func TestCtxWith(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{Level: "debug", Format: "json", Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-789")
	logger := CtxWith(ctx).Str("user_id", "user_1").Logger()
	logger.Info().Msg("user action")

	output := buf.String()
	if !strings.Contains(output, `"request_id":"req-789"`) {
		t.Errorf("expected request_id field, got: %s", output)
	}
	if !strings.Contains(output, `"user_id":"user_1"`) {
		t.Errorf("expected user_id field, got: %s", output)
	}
}

func TestCtxErr(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{Level: "debug", Format: "json", Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-err")
	CtxErr(ctx, errTest).Msg("failed")

	output := buf.String()
	if !strings.Contains(output, `"request_id":"req-err"`) {
		t.Errorf("expected request_id field, got: %s", output)
	}
	if !strings.Contains(output, "test failure") {
		t.Errorf("expected error text, got: %s", output)
	}
}
