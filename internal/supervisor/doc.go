// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

/*
Package supervisor provides process supervision for Merchantry using suture v4.

This package implements a supervisor tree that manages the lifecycle of all
long-running services in the application. It provides Erlang/OTP-style
supervision with automatic restart, failure isolation, and graceful shutdown.

# Overview

The supervisor tree organizes services into two layers for failure isolation:

	RootSupervisor ("merchantry")
	├── DataSupervisor ("data-layer")
	│   └── ArtifactRefresherService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

This hierarchy ensures that a crash during a model artifact reload does not
impact API availability: the API layer keeps serving against the model state
installed by the last successful load while suture restarts the refresher
with exponential backoff.

# Usage

	tree := supervisor.NewTree(logger, supervisor.DefaultTreeConfig())
	tree.AddDataService(refresher)
	tree.AddAPIService(supervisor.NewHTTPService(srv, cfg.ShutdownTimeout, logger))
	if err := tree.Serve(ctx); err != nil {
		// context canceled or supervision failed
	}

Supervision events (panics, backoff, restarts) are logged through zerolog by
the tree's event hook.
*/
package supervisor
