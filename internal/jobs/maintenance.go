// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package jobs

import (
	"context"
	"fmt"

	"github.com/tomtom215/streamchaser/internal/logging"
)

// CleanupGenres normalizes the genre lists of stored media and rebuilds the
// genres table.
func (r *Runner) CleanupGenres(ctx context.Context) (*Report, error) {
	ctx, cancel, report := r.begin(ctx, JobCleanupGenres)
	defer cancel()
	return r.finish(ctx, report, r.cleanupGenres(ctx, report))
}

func (r *Runner) cleanupGenres(ctx context.Context, report *Report) error {
	rec := startPhase(PhaseNormalizeGenres)
	changed, err := r.deps.Store.NormalizeGenres(ctx)
	if err != nil {
		rec.abort(err)
		rec.finish(report)
		return fmt.Errorf("normalize genres: %w", err)
	}
	rec.attempt(changed)
	rec.succeed(changed)
	rec.finish(report)

	r.refreshGenres(ctx, report)
	return nil
}

// RemoveNonASCIIMedia deletes stored media whose title contains characters
// outside printable ASCII.
func (r *Runner) RemoveNonASCIIMedia(ctx context.Context) (*Report, error) {
	ctx, cancel, report := r.begin(ctx, JobRemoveNonASCIIMedia)
	defer cancel()
	return r.finish(ctx, report, r.removeNonASCIIMedia(ctx, report))
}

func (r *Runner) removeNonASCIIMedia(ctx context.Context, report *Report) error {
	rec := startPhase(PhaseDeleteMedia)
	defer rec.finish(report)

	ids, err := r.deps.Store.DeleteNonASCIIMedia(ctx)
	if err != nil {
		rec.abort(err)
		return fmt.Errorf("delete non-ascii media: %w", err)
	}
	rec.attempt(len(ids))
	rec.succeed(len(ids))
	logging.Ctx(ctx).Info().Strs("ids", ids).Msg("Removed non-ASCII media")
	return nil
}

// RemoveAllMedia deletes every stored media record and the genres table.
// Callers are responsible for confirmation.
func (r *Runner) RemoveAllMedia(ctx context.Context) (*Report, error) {
	ctx, cancel, report := r.begin(ctx, JobRemoveAllMedia)
	defer cancel()

	rec := startPhase(PhaseDeleteMedia)
	n, err := r.deps.Store.DeleteAllMedia(ctx)
	if err != nil {
		rec.abort(err)
		rec.finish(report)
		return r.finish(ctx, report, fmt.Errorf("delete all media: %w", err))
	}
	rec.attempt(int(n))
	rec.succeed(int(n))
	rec.finish(report)
	return r.finish(ctx, report, nil)
}
