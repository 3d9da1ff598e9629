// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

/*
Package supervisor runs the schedule mode of streamchaser under suture v4.

	RootSupervisor ("streamchaser")
	├── JobsSupervisor ("jobs-layer")
	│   └── JobSchedulerService (periodic full setup)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (/metrics, /healthz)

Supervisor events (service panics, restarts, backoff) are logged through
sutureslog, whose slog.Logger is backed by the zerolog adapter in
internal/logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddJobService(services.NewJobSchedulerService(runner, cfg.Schedule))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	return tree.Serve(ctx)
*/
package supervisor
