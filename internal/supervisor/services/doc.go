// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

/*
Package services provides suture.Service wrappers for schedule mode.

JobSchedulerService calls jobs.Runner.FullSetup on a ticker. Runs are
serialized with a mutex; a tick that finds a run in progress is skipped and
counted. Job errors are logged only, so a flaky upstream never pushes the
service into suture's restart backoff.

HTTPServerService adapts *http.Server to suture's Serve(ctx) pattern and
shuts the server down gracefully on cancellation. NewRouter builds the chi
router it serves:

	GET /metrics  promhttp.Handler()
	GET /healthz  runs every HealthCheck (store ping, search health)
*/
package services
