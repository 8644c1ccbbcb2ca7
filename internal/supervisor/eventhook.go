// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package supervisor

import (
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// newEventHook adapts suture supervision events onto the zerolog logger.
// Panics and stop timeouts log at error, backoff at warn, everything else
// at info.
func newEventHook(logger zerolog.Logger) suture.EventHook {
	return func(event suture.Event) {
		var evt *zerolog.Event
		switch event.Type() {
		case suture.EventTypeServicePanic, suture.EventTypeStopTimeout:
			evt = logger.Error()
		case suture.EventTypeBackoff:
			evt = logger.Warn()
		case suture.EventTypeServiceTerminate, suture.EventTypeResume:
			evt = logger.Info()
		default:
			evt = logger.Debug()
		}

		for key, value := range event.Map() {
			evt = evt.Interface(key, value)
		}
		evt.Msg(event.String())
	}
}
