// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package jobs

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/streamchaser/internal/metrics"
	"github.com/tomtom215/streamchaser/internal/models"
)

// ItemFailure is one item that failed inside a phase.
type ItemFailure struct {
	Item string
	Err  error
}

// PhaseResult aggregates one phase of a job.
type PhaseResult struct {
	Name      string
	Attempted int
	Succeeded int
	Failures  []ItemFailure

	// Err is a phase-level failure (the phase could not run or stopped early).
	Err error

	Duration time.Duration
}

// Failed returns the number of failed items.
func (p *PhaseResult) Failed() int {
	return len(p.Failures)
}

// OK reports whether the phase completed without failures.
func (p *PhaseResult) OK() bool {
	return p.Err == nil && len(p.Failures) == 0
}

// RemovalDetails describes a remove-and-blacklist run.
type RemovalDetails struct {
	Media          models.MediaRecord
	Deleted        bool
	BlacklistAdded bool
	Indexes        []string
}

// Report is the outcome of one job invocation.
type Report struct {
	Job string

	// Accepted is false when the job rejected its arguments and did nothing.
	Accepted bool

	Phases    []PhaseResult
	StartedAt time.Time
	Duration  time.Duration

	// Removal is set by RemoveAndBlacklist once the media was found.
	Removal *RemovalDetails
}

func newReport(job string, now time.Time) *Report {
	return &Report{Job: job, Accepted: true, StartedAt: now}
}

// Phase returns the named phase, or nil.
func (r *Report) Phase(name string) *PhaseResult {
	for i := range r.Phases {
		if r.Phases[i].Name == name {
			return &r.Phases[i]
		}
	}
	return nil
}

// Totals sums succeeded and failed items across phases.
func (r *Report) Totals() (succeeded, failed int) {
	for i := range r.Phases {
		succeeded += r.Phases[i].Succeeded
		failed += r.Phases[i].Failed()
	}
	return succeeded, failed
}

// Err returns an error wrapping ErrPartialFailure when any phase failed, or nil.
func (r *Report) Err() error {
	var causes []error
	failedPhases := 0
	for i := range r.Phases {
		p := &r.Phases[i]
		if p.OK() {
			continue
		}
		failedPhases++
		if p.Err != nil {
			causes = append(causes, fmt.Errorf("%s: %w", p.Name, p.Err))
		} else {
			causes = append(causes, fmt.Errorf("%s: %d of %d items failed (first: %s: %w)",
				p.Name, p.Failed(), p.Attempted, p.Failures[0].Item, p.Failures[0].Err))
		}
	}
	if failedPhases == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPartialFailure, r.Job, errors.Join(causes...))
}

// status maps the report onto the job_runs_total status label.
func (r *Report) status(err error) string {
	switch {
	case !r.Accepted:
		return metrics.StatusRejected
	case err != nil && !errors.Is(err, ErrPartialFailure):
		return metrics.StatusFailed
	case r.Err() != nil:
		return metrics.StatusPartial
	default:
		return metrics.StatusSuccess
	}
}

// phaseRecorder collects item outcomes from concurrent workers.
type phaseRecorder struct {
	mu     sync.Mutex
	result PhaseResult
	start  time.Time
}

func startPhase(name string) *phaseRecorder {
	return &phaseRecorder{result: PhaseResult{Name: name}, start: time.Now()}
}

func (p *phaseRecorder) attempt(n int) {
	p.mu.Lock()
	p.result.Attempted += n
	p.mu.Unlock()
}

func (p *phaseRecorder) succeed(n int) {
	p.mu.Lock()
	p.result.Succeeded += n
	p.mu.Unlock()
}

func (p *phaseRecorder) fail(item string, err error) {
	p.mu.Lock()
	p.result.Failures = append(p.result.Failures, ItemFailure{Item: item, Err: err})
	p.mu.Unlock()
}

func (p *phaseRecorder) abort(err error) {
	p.mu.Lock()
	p.result.Err = err
	p.mu.Unlock()
}

// finish appends the phase to the report and returns a pointer to it.
func (p *phaseRecorder) finish(r *Report) *PhaseResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.result.Duration = time.Since(p.start)
	metrics.RecordPhaseItems(p.result.Name, p.result.Succeeded, len(p.result.Failures))
	r.Phases = append(r.Phases, p.result)
	return &r.Phases[len(r.Phases)-1]
}
