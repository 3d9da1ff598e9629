// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package jobs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tomtom215/streamchaser/internal/config"
	"github.com/tomtom215/streamchaser/internal/events"
	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/metrics"
)

// Job names used in reports, metrics and events.
const (
	JobFetchMedia                  = "fetch_media"
	JobIndexMeilisearch            = "index_meilisearch"
	JobCleanupGenres               = "cleanup_genres"
	JobRemoveBlacklistedFromSearch = "remove_blacklisted_from_search"
	JobRemoveNonASCIIMedia         = "remove_non_ascii_media"
	JobRemoveAllMedia              = "remove_all_media"
	JobAddProviders                = "add_providers"
	JobFullSetup                   = "full_setup"
	JobRemoveAndBlacklist          = "remove_and_blacklist"
)

const defaultIndexBatchSize = 1000

// Runner executes the catalog sync jobs. A Runner holds no per-job state
// and is safe for concurrent use, though callers should not run jobs that
// touch the same store concurrently.
type Runner struct {
	deps      Dependencies
	cfg       config.JobsConfig
	countries []string

	indexBatchSize int
	now            func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithIndexBatchSize sets the number of documents per add-documents call.
func WithIndexBatchSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.indexBatchSize = n
		}
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner creates a Runner. Country codes are upper-cased; each one
// maps to a search index.
func NewRunner(deps Dependencies, cfg config.JobsConfig, countryCodes []string, opts ...Option) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.UpsertChunkSize < 1 {
		cfg.UpsertChunkSize = 10
	}
	if cfg.ProviderChunkSize < 1 {
		cfg.ProviderChunkSize = 25
	}

	countries := make([]string, 0, len(countryCodes))
	for _, cc := range countryCodes {
		if cc = strings.ToUpper(strings.TrimSpace(cc)); cc != "" {
			countries = append(countries, cc)
		}
	}

	r := &Runner{
		deps:           deps,
		cfg:            cfg,
		countries:      countries,
		indexBatchSize: defaultIndexBatchSize,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Countries returns the supported country codes.
func (r *Runner) Countries() []string {
	out := make([]string, len(r.countries))
	copy(out, r.countries)
	return out
}

// begin prepares the job context: job name, correlation id and timeout.
func (r *Runner) begin(ctx context.Context, job string) (context.Context, context.CancelFunc, *Report) {
	ctx = logging.ContextWithJob(ctx, job)

	cancel := context.CancelFunc(func() {})
	if r.cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
	}

	logging.Ctx(ctx).Info().Msg("Job started")
	return ctx, cancel, newReport(job, r.now())
}

// finish records metrics, logs the outcome and publishes jobs.completed.
// It returns err, or the report's partial failure when err is nil.
func (r *Runner) finish(ctx context.Context, report *Report, err error) (*Report, error) {
	report.Duration = time.Since(report.StartedAt)
	if err == nil {
		err = report.Err()
	}

	status := report.status(err)
	metrics.RecordJobRun(report.Job, status, report.Duration)

	succeeded, failed := report.Totals()
	event := logging.Ctx(ctx).Info()
	if err != nil {
		event = logging.Ctx(ctx).Warn().Err(err)
	}
	event.
		Str("status", status).
		Bool("accepted", report.Accepted).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Dur("duration", report.Duration).
		Msg("Job finished")

	ev := events.JobCompleted{
		Job:        report.Job,
		Status:     status,
		Accepted:   report.Accepted,
		Succeeded:  succeeded,
		Failed:     failed,
		DurationMS: report.Duration.Milliseconds(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	// Publishing must outlive a job that timed out.
	pubCtx := context.WithoutCancel(ctx)
	if pubErr := r.deps.Events.PublishJobCompleted(pubCtx, ev); pubErr != nil && !errors.Is(pubErr, events.ErrClosed) {
		logging.Ctx(ctx).Warn().Err(pubErr).Msg("Failed to publish job completion")
	}

	return report, err
}

// chunk splits items into slices of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
