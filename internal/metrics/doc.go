// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

/*
Package metrics provides Prometheus metrics for Streamchaser batch jobs.

All collectors are registered on the default registry via promauto. In
schedule mode they are exposed at /metrics:

	curl http://localhost:9464/metrics

One-shot CLI runs record the same metrics but exit before anyone scrapes them.

# Available Metrics

Jobs:
  - streamchaser_job_runs_total{job,status}: runs by outcome
    (success, partial, failed, rejected)
  - streamchaser_job_duration_seconds{job}: run duration (histogram)
  - streamchaser_job_last_success_timestamp_seconds{job}
  - streamchaser_phase_items_total{phase,outcome}: items per phase

Remote services:
  - streamchaser_remote_requests_total{service,operation,status}
  - streamchaser_remote_request_duration_seconds{service,operation}
  - streamchaser_remote_rate_limited_total{service}: HTTP 429 responses

Circuit breakers (tmdb-api, meilisearch):
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

Store, blacklist and events:
  - streamchaser_db_query_duration_seconds{operation,table}
  - streamchaser_db_query_errors_total{operation,table}
  - streamchaser_blacklist_adds_total{backend,result}
  - streamchaser_events_published_total{topic,result}

# Example Alerts

	groups:
	  - name: streamchaser
	    rules:
	      - alert: FullSetupStale
	        expr: time() - streamchaser_job_last_success_timestamp_seconds{job="full-setup"} > 172800
	        for: 1h
	      - alert: CircuitBreakerOpen
	        expr: circuit_breaker_state == 2
	        for: 5m
*/
package metrics
