// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/models"
)

// AddProviders looks up streaming availability for every stored media id and
// writes it back. Lookups run concurrently; updates are applied one at a
// time in the order lookups completed.
func (r *Runner) AddProviders(ctx context.Context) (*Report, error) {
	ctx, cancel, report := r.begin(ctx, JobAddProviders)
	defer cancel()
	return r.finish(ctx, report, r.addProviders(ctx, report))
}

func (r *Runner) addProviders(ctx context.Context, report *Report) error {
	ids, err := r.deps.Store.ListMediaIDs(ctx)
	if err != nil {
		rec := startPhase(PhaseFetchProviders)
		rec.abort(err)
		rec.finish(report)
		return fmt.Errorf("list media ids: %w", err)
	}

	results := r.lookupProviders(ctx, report, ids)
	r.applyProviders(ctx, report, results)
	return nil
}

func (r *Runner) lookupProviders(ctx context.Context, report *Report, ids []string) []models.ProviderResult {
	rec := startPhase(PhaseFetchProviders)
	rec.attempt(len(ids))

	var (
		mu      sync.Mutex
		results = make([]models.ProviderResult, 0, len(ids))
	)

	p := pool.New().WithMaxGoroutines(r.cfg.Workers)
	for _, batch := range chunk(ids, r.cfg.ProviderChunkSize) {
		p.Go(func() {
			for _, id := range batch {
				if ctx.Err() != nil {
					rec.fail(id, ctx.Err())
					continue
				}
				res, err := r.deps.Metadata.WatchProviders(ctx, id)
				if err != nil {
					logging.Ctx(ctx).Debug().Err(err).Str("media_id", id).Msg("Provider lookup failed")
					rec.fail(id, err)
					continue
				}
				res.MediaID = id
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
				rec.succeed(1)
			}
		})
	}
	p.Wait()
	rec.finish(report)
	return results
}

func (r *Runner) applyProviders(ctx context.Context, report *Report, results []models.ProviderResult) {
	rec := startPhase(PhaseUpdateProviders)
	rec.attempt(len(results))
	for _, res := range results {
		if err := r.deps.Store.UpdateMediaProviders(ctx, res.MediaID, res.Providers); err != nil {
			rec.fail(res.MediaID, err)
			continue
		}
		rec.succeed(1)
	}
	rec.finish(report)
}
