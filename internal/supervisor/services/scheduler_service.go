// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/streamchaser/internal/config"
	"github.com/tomtom215/streamchaser/internal/jobs"
	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/metrics"
)

// FullSetupRunner is satisfied by *jobs.Runner.
type FullSetupRunner interface {
	FullSetup(ctx context.Context, totalPages int, removeNonASCII bool) (*jobs.Report, error)
}

// JobSchedulerService runs FullSetup every interval. Runs never overlap:
// a tick that arrives while a run is in progress is skipped.
type JobSchedulerService struct {
	runner FullSetupRunner
	cfg    config.ScheduleConfig
	name   string

	running sync.Mutex
	runs    atomic.Int64
	skipped atomic.Int64

	mu         sync.RWMutex
	lastReport *jobs.Report
	lastErr    error
}

// NewJobSchedulerService creates the scheduler service.
func NewJobSchedulerService(runner FullSetupRunner, cfg config.ScheduleConfig) *JobSchedulerService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	return &JobSchedulerService{
		runner: runner,
		cfg:    cfg,
		name:   "job-scheduler",
	}
}

// Serve implements suture.Service. Job failures are logged, not returned,
// so a failing upstream does not put the service into restart backoff.
func (s *JobSchedulerService) Serve(ctx context.Context) error {
	if s.runner == nil {
		return fmt.Errorf("job scheduler: no runner configured")
	}

	logging.Info().
		Dur("interval", s.cfg.Interval).
		Bool("run_on_start", s.cfg.RunOnStart).
		Int("total_pages", s.cfg.TotalPages).
		Msg("Job scheduler started")

	if s.cfg.RunOnStart {
		s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs one full setup unless another run holds the lock. It reports
// whether a run happened.
func (s *JobSchedulerService) RunOnce(ctx context.Context) bool {
	if !s.running.TryLock() {
		s.skipped.Add(1)
		metrics.SchedulerRunsSkipped.Inc()
		logging.Warn().Msg("Previous full setup still running, skipping tick")
		return false
	}
	defer s.running.Unlock()

	ctx = logging.ContextWithNewCorrelationID(ctx)
	report, err := s.runner.FullSetup(ctx, s.cfg.TotalPages, s.cfg.RemoveNonASCII)
	s.runs.Add(1)

	s.mu.Lock()
	s.lastReport, s.lastErr = report, err
	s.mu.Unlock()

	switch {
	case err == nil:
	case errors.Is(err, jobs.ErrPartialFailure):
		logging.Ctx(ctx).Warn().Err(err).Msg("Scheduled full setup finished with failures")
	default:
		logging.Ctx(ctx).Error().Err(err).Msg("Scheduled full setup failed")
	}
	return true
}

// Runs returns the number of completed runs.
func (s *JobSchedulerService) Runs() int64 {
	return s.runs.Load()
}

// Skipped returns the number of ticks skipped because a run was in progress.
func (s *JobSchedulerService) Skipped() int64 {
	return s.skipped.Load()
}

// LastResult returns the report and error of the latest run.
func (s *JobSchedulerService) LastResult() (*jobs.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport, s.lastErr
}

// String implements fmt.Stringer for suture's event log.
func (s *JobSchedulerService) String() string {
	return s.name
}
