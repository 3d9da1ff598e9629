// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job outcome labels.
const (
	StatusSuccess  = "success"
	StatusPartial  = "partial"
	StatusFailed   = "failed"
	StatusRejected = "rejected"
)

// Phase item outcome labels.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

var (
	// Job Metrics
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamchaser_job_runs_total",
			Help: "Total number of batch job runs by outcome",
		},
		[]string{"job", "status"}, // status: success, partial, failed, rejected
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamchaser_job_duration_seconds",
			Help:    "Duration of batch job runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900, 1800, 3600},
		},
		[]string{"job"},
	)

	JobLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "streamchaser_job_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last fully successful run",
		},
		[]string{"job"},
	)

	PhaseItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamchaser_phase_items_total",
			Help: "Total number of items processed by job phases",
		},
		[]string{"phase", "outcome"}, // outcome: succeeded, failed
	)

	// Remote API Metrics (TMDB, Meilisearch)
	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamchaser_remote_request_duration_seconds",
			Help:    "Duration of outgoing HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)

	RemoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamchaser_remote_requests_total",
			Help: "Total number of outgoing HTTP requests by status code",
		},
		[]string{"service", "operation", "status"},
	)

	RemoteRateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamchaser_remote_rate_limited_total",
			Help: "Total number of HTTP 429 responses received",
		},
		[]string{"service"},
	)

	// Store Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamchaser_db_query_duration_seconds",
			Help:    "Duration of store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamchaser_db_query_errors_total",
			Help: "Total number of store query errors",
		},
		[]string{"operation", "table"},
	)

	// Blacklist Metrics
	BlacklistAdds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamchaser_blacklist_adds_total",
			Help: "Total number of blacklist add attempts",
		},
		[]string{"backend", "result"}, // result: added, duplicate, error
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamchaser_events_published_total",
			Help: "Total number of job events published",
		},
		[]string{"topic", "result"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// HTTP Metrics (schedule mode listener)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streamchaser_http_request_duration_seconds",
			Help:    "Duration of /metrics and /healthz requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamchaser_http_requests_total",
			Help: "Total number of HTTP requests by status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "streamchaser_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Scheduler Metrics
	SchedulerRunsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "streamchaser_scheduler_runs_skipped_total",
			Help: "Scheduled runs skipped because the previous run was still active",
		},
	)
)

// RecordJobRun records the outcome and duration of one job run.
func RecordJobRun(job, status string, duration time.Duration) {
	JobRunsTotal.WithLabelValues(job, status).Inc()
	JobDuration.WithLabelValues(job).Observe(duration.Seconds())
	if status == StatusSuccess {
		JobLastSuccess.WithLabelValues(job).Set(float64(time.Now().Unix()))
	}
}

// RecordPhaseItems records per-item outcomes of a job phase.
func RecordPhaseItems(phase string, succeeded, failed int) {
	if succeeded > 0 {
		PhaseItemsTotal.WithLabelValues(phase, OutcomeSucceeded).Add(float64(succeeded))
	}
	if failed > 0 {
		PhaseItemsTotal.WithLabelValues(phase, OutcomeFailed).Add(float64(failed))
	}
}

// RecordRemoteRequest records an outgoing HTTP request. statusCode 0 means
// the request never produced a response.
func RecordRemoteRequest(service, operation string, statusCode int, duration time.Duration) {
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	RemoteRequestsTotal.WithLabelValues(service, operation, status).Inc()
	RemoteRequestDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordDBQuery records a store query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordBlacklistAdd records a blacklist add attempt.
func RecordBlacklistAdd(backend string, added bool, err error) {
	result := "duplicate"
	switch {
	case err != nil:
		result = "error"
	case added:
		result = "added"
	}
	BlacklistAdds.WithLabelValues(backend, result).Inc()
}

// RecordEventPublished records a publish attempt for an event topic.
func RecordEventPublished(topic string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(start bool) {
	if start {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}
