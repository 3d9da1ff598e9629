// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package jobs

import (
	"context"
	"fmt"

	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/validation"
)

type setupStep struct {
	job string
	run func(context.Context, *Report) error
}

// FullSetup runs fetch, optional non-ASCII removal, provider lookup, genre
// cleanup, index rebuild and blacklist removal in that order. It stops only
// when totalPages is rejected; a failing later step is recorded and the next
// step still runs. Nothing is rolled back.
func (r *Runner) FullSetup(ctx context.Context, totalPages int, removeNonASCII bool) (*Report, error) {
	ctx, cancel, report := r.begin(ctx, JobFullSetup)
	defer cancel()

	args := validation.FullSetupArgs{TotalPages: totalPages, RemoveNonASCII: removeNonASCII}
	if verr := validation.ValidateStruct(&args); verr != nil {
		report.Accepted = false
		return r.finish(ctx, report, fmt.Errorf("%w: %w", ErrInvalidArgument, verr))
	}

	steps := []setupStep{{JobFetchMedia, func(ctx context.Context, rep *Report) error {
		return r.fetchMedia(ctx, rep, totalPages)
	}}}
	if removeNonASCII {
		steps = append(steps, setupStep{JobRemoveNonASCIIMedia, r.removeNonASCIIMedia})
	}
	steps = append(steps,
		setupStep{JobAddProviders, r.addProviders},
		setupStep{JobCleanupGenres, r.cleanupGenres},
		setupStep{JobIndexMeilisearch, r.indexMeilisearch},
		setupStep{JobRemoveBlacklistedFromSearch, r.removeBlacklistedFromSearch},
	)

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return r.finish(ctx, report, fmt.Errorf("full setup interrupted before %s: %w", step.job, err))
		}
		r.runStep(ctx, report, step)
	}
	return r.finish(ctx, report, nil)
}

// runStep runs one sub-job and appends its phases as "<job>/<phase>".
func (r *Runner) runStep(ctx context.Context, report *Report, step setupStep) {
	logging.Ctx(ctx).Info().Str("step", step.job).Msg("Full setup step started")

	sub := newReport(step.job, r.now())
	err := step.run(ctx, sub)

	recorded := false
	for _, phase := range sub.Phases {
		phase.Name = step.job + "/" + phase.Name
		if phase.Err != nil {
			recorded = true
		}
		report.Phases = append(report.Phases, phase)
	}
	if err != nil && !recorded {
		report.Phases = append(report.Phases, PhaseResult{Name: step.job, Err: err})
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("step", step.job).Msg("Full setup step failed, continuing")
	}
}
