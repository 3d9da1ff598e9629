// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package jobs

import (
	"context"
	"fmt"

	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/search"
)

// IndexMeilisearch rebuilds every country index from the store. Blacklisted
// ids are left out. The first failing call stops the rebuild and is returned.
func (r *Runner) IndexMeilisearch(ctx context.Context) (*Report, error) {
	ctx, cancel, report := r.begin(ctx, JobIndexMeilisearch)
	defer cancel()
	return r.finish(ctx, report, r.indexMeilisearch(ctx, report))
}

func (r *Runner) indexMeilisearch(ctx context.Context, report *Report) error {
	configure := startPhase(PhaseConfigureIndex)
	documents := startPhase(PhaseIndexDocuments)
	err := r.rebuildIndexes(ctx, configure, documents)
	if err != nil {
		documents.abort(err)
	}
	configure.finish(report)
	documents.finish(report)
	return err
}

func (r *Runner) rebuildIndexes(ctx context.Context, configure, documents *phaseRecorder) error {
	records, err := r.deps.Store.ListMedia(ctx)
	if err != nil {
		return fmt.Errorf("list media: %w", err)
	}
	blacklisted, err := r.blacklistSet(ctx)
	if err != nil {
		return err
	}
	exclude := func(id string) bool {
		_, ok := blacklisted[id]
		return ok
	}

	for _, cc := range r.countries {
		name := search.IndexName(cc)
		index := r.deps.Search.Index(name)

		configure.attempt(1)
		if _, err := index.UpdateSettings(ctx, search.DefaultSettings()); err != nil {
			configure.fail(name, err)
			return fmt.Errorf("configure index %s: %w", name, err)
		}
		if _, err := index.DeleteAllDocuments(ctx); err != nil {
			configure.fail(name, err)
			return fmt.Errorf("clear index %s: %w", name, err)
		}
		configure.succeed(1)

		docs := search.BuildDocuments(records, cc, exclude)
		documents.attempt(len(docs))
		for _, batch := range chunk(docs, r.indexBatchSize) {
			if _, err := index.AddDocuments(ctx, batch); err != nil {
				return fmt.Errorf("add documents to %s: %w", name, err)
			}
			documents.succeed(len(batch))
		}

		logging.Ctx(ctx).Info().
			Str("index", name).
			Int("documents", len(docs)).
			Int("excluded", len(records)-len(docs)).
			Msg("Index rebuilt")
	}
	return nil
}

func (r *Runner) blacklistSet(ctx context.Context) (map[string]struct{}, error) {
	ids, err := r.deps.Blacklist.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("read blacklist: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// RemoveBlacklistedFromSearch deletes every blacklisted id from every country
// index with one bulk call per index. Deletion is not verified; Attempted is
// the number of ids times the number of indexes, and a failed call counts
// every id it carried as failed.
func (r *Runner) RemoveBlacklistedFromSearch(ctx context.Context) (*Report, error) {
	ctx, cancel, report := r.begin(ctx, JobRemoveBlacklistedFromSearch)
	defer cancel()
	return r.finish(ctx, report, r.removeBlacklistedFromSearch(ctx, report))
}

func (r *Runner) removeBlacklistedFromSearch(ctx context.Context, report *Report) error {
	rec := startPhase(PhaseDeleteDocuments)
	defer rec.finish(report)

	ids, err := r.deps.Blacklist.List(ctx)
	if err != nil {
		rec.abort(err)
		return fmt.Errorf("read blacklist: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	for _, cc := range r.countries {
		name := search.IndexName(cc)
		rec.attempt(len(ids))
		if _, err := r.deps.Search.Index(name).DeleteDocuments(ctx, ids); err != nil {
			for _, id := range ids {
				rec.fail(name+": "+id, err)
			}
			continue
		}
		rec.succeed(len(ids))
	}
	return nil
}
