// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package jobs

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/models"
	"github.com/tomtom215/streamchaser/internal/tmdb"
	"github.com/tomtom215/streamchaser/internal/validation"
)

// Phase names.
const (
	PhaseFetchPages      = "fetch_pages"
	PhaseUpsertMedia     = "upsert_media"
	PhaseRefreshGenres   = "refresh_genres"
	PhaseFetchProviders  = "fetch_providers"
	PhaseUpdateProviders = "update_providers"
	PhaseNormalizeGenres = "normalize_genres"
	PhaseConfigureIndex  = "configure_index"
	PhaseIndexDocuments  = "index_documents"
	PhaseDeleteDocuments = "delete_documents"
	PhaseDeleteMedia     = "delete_media"
)

// FetchMedia pulls trending movie and TV pages [1, totalPages) from TMDB and
// upserts the converted records. totalPages must be within [1, 1000];
// otherwise the report is not accepted, ErrInvalidArgument is returned and
// nothing is fetched.
func (r *Runner) FetchMedia(ctx context.Context, totalPages int) (*Report, error) {
	ctx, cancel, report := r.begin(ctx, JobFetchMedia)
	defer cancel()

	if err := validateTotalPages(totalPages); err != nil {
		report.Accepted = false
		return r.finish(ctx, report, err)
	}
	return r.finish(ctx, report, r.fetchMedia(ctx, report, totalPages))
}

func validateTotalPages(totalPages int) error {
	if verr := validation.ValidateStruct(&validation.FetchMediaArgs{TotalPages: totalPages}); verr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, verr)
	}
	return nil
}

func (r *Runner) fetchMedia(ctx context.Context, report *Report, totalPages int) error {
	raw := r.fetchPages(ctx, report, totalPages)
	records := tmdb.ToMediaRecords(raw, r.now())

	logging.Ctx(ctx).Info().
		Int("raw", len(raw)).
		Int("records", len(records)).
		Msg("Converted trending media")

	r.upsertRecords(ctx, report, records)

	// Genre rebuild runs even when some upserts failed.
	r.refreshGenres(ctx, report)
	return nil
}

type pageRequest struct {
	mediaType string
	page      int
}

func (p pageRequest) String() string {
	return fmt.Sprintf("%s page %d", p.mediaType, p.page)
}

// fetchPages requests every page concurrently and returns the entries in
// request order (movies first, then TV, ascending page).
func (r *Runner) fetchPages(ctx context.Context, report *Report, totalPages int) []models.RawMedia {
	requests := make([]pageRequest, 0, 2*(totalPages-1))
	for _, mediaType := range []string{models.MediaTypeMovie, models.MediaTypeTV} {
		for page := 1; page < totalPages; page++ {
			requests = append(requests, pageRequest{mediaType: mediaType, page: page})
		}
	}

	rec := startPhase(PhaseFetchPages)
	rec.attempt(len(requests))
	slots := make([][]models.RawMedia, len(requests))

	p := pool.New().WithMaxGoroutines(r.cfg.Workers)
	for i, req := range requests {
		p.Go(func() {
			items, err := r.fetchPage(ctx, req)
			if err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("request", req.String()).Msg("Page fetch failed")
				rec.fail(req.String(), err)
				return
			}
			slots[i] = items
			rec.succeed(1)
		})
	}
	p.Wait()
	rec.finish(report)

	var raw []models.RawMedia
	for _, items := range slots {
		raw = append(raw, items...)
	}
	return raw
}

func (r *Runner) fetchPage(ctx context.Context, req pageRequest) ([]models.RawMedia, error) {
	if req.mediaType == models.MediaTypeTV {
		return r.deps.Metadata.TrendingTV(ctx, req.page)
	}
	return r.deps.Metadata.TrendingMovies(ctx, req.page)
}

// upsertRecords writes records in chunks. A failed chunk is retried record
// by record so failures are attributed to single ids.
func (r *Runner) upsertRecords(ctx context.Context, report *Report, records []models.MediaRecord) {
	rec := startPhase(PhaseUpsertMedia)
	rec.attempt(len(records))

	p := pool.New().WithMaxGoroutines(r.cfg.Workers)
	for _, batch := range chunk(records, r.cfg.UpsertChunkSize) {
		p.Go(func() {
			err := r.deps.Store.UpsertMediaBatch(ctx, batch)
			if err == nil {
				rec.succeed(len(batch))
				return
			}
			logging.Ctx(ctx).Warn().Err(err).Int("size", len(batch)).Msg("Batch upsert failed, retrying per record")
			for i := range batch {
				if err := r.deps.Store.UpsertMedia(ctx, &batch[i]); err != nil {
					rec.fail(batch[i].ID, err)
					continue
				}
				rec.succeed(1)
			}
		})
	}
	p.Wait()
	rec.finish(report)
}

func (r *Runner) refreshGenres(ctx context.Context, report *Report) {
	rec := startPhase(PhaseRefreshGenres)
	genres, err := r.deps.Store.RefreshGenres(ctx)
	if err != nil {
		rec.abort(fmt.Errorf("refresh genres: %w", err))
	} else {
		rec.attempt(len(genres))
		rec.succeed(len(genres))
	}
	rec.finish(report)
}
