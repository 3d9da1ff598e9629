// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

/*
Package middleware provides the HTTP middleware of the schedule-mode
listener.

Key Components:

  - RequestID: X-Request-ID propagation into the logging correlation id
  - PrometheusMetrics: request count, latency and in-flight gauge per route
  - RateLimitByIP: per-client limit via go-chi/httprate

Each is a plain func(http.Handler) http.Handler and plugs into chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

PrometheusMetrics labels requests with the chi route pattern, so it must run
inside a chi router for the label to be meaningful; outside one every
request is labelled "unmatched".
*/
package middleware
