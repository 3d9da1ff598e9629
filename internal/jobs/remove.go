// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/streamchaser/internal/database"
	"github.com/tomtom215/streamchaser/internal/events"
	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/models"
	"github.com/tomtom215/streamchaser/internal/search"
)

// PhaseBlacklist is the blacklist append phase of RemoveAndBlacklist.
const PhaseBlacklist = "blacklist"

// Confirmer is asked before a record is removed. Returning false aborts
// the removal with ErrNotConfirmed.
type Confirmer func(ctx context.Context, media models.MediaRecord) (bool, error)

// AlwaysConfirm approves every removal.
func AlwaysConfirm(context.Context, models.MediaRecord) (bool, error) {
	return true, nil
}

// RemoveAndBlacklist deletes one media record from the store, adds its id to
// the blacklist and deletes it from every country index. An unknown id
// returns ErrNotFound and mutates nothing. Failures after the lookup are
// wrapped in ErrUnhandled.
func (r *Runner) RemoveAndBlacklist(ctx context.Context, mediaID string, confirm Confirmer) (*Report, error) {
	ctx, cancel, report := r.begin(ctx, JobRemoveAndBlacklist)
	defer cancel()
	return r.finish(ctx, report, r.removeAndBlacklist(ctx, report, mediaID, confirm))
}

func (r *Runner) removeAndBlacklist(ctx context.Context, report *Report, mediaID string, confirm Confirmer) error {
	sess, err := r.deps.Store.OpenSession(ctx)
	if err != nil {
		return fmt.Errorf("%w: open store session: %w", ErrUnhandled, err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to release store session")
		}
	}()

	media, err := sess.GetMedia(ctx, mediaID)
	if errors.Is(err, database.ErrMediaNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, mediaID)
	}
	if err != nil {
		return fmt.Errorf("%w: look up %s: %w", ErrUnhandled, mediaID, err)
	}

	if confirm == nil {
		return ErrNotConfirmed
	}
	ok, err := confirm(ctx, media)
	if err != nil {
		return fmt.Errorf("%w: confirm removal: %w", ErrUnhandled, err)
	}
	if !ok {
		return ErrNotConfirmed
	}

	details := &RemovalDetails{Media: media}
	report.Removal = details

	del := startPhase(PhaseDeleteMedia)
	del.attempt(1)
	if err := sess.DeleteMedia(ctx, mediaID); err != nil {
		del.fail(mediaID, err)
		del.finish(report)
		return fmt.Errorf("%w: delete %s: %w", ErrUnhandled, mediaID, err)
	}
	del.succeed(1)
	del.finish(report)
	details.Deleted = true

	bl := startPhase(PhaseBlacklist)
	bl.attempt(1)
	added, err := r.deps.Blacklist.Add(ctx, mediaID)
	if err != nil {
		bl.fail(mediaID, err)
		bl.finish(report)
		return fmt.Errorf("%w: blacklist %s: %w", ErrUnhandled, mediaID, err)
	}
	bl.succeed(1)
	bl.finish(report)
	details.BlacklistAdded = added

	if err := r.deleteFromIndexes(ctx, report, details); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhandled, err)
	}

	ev := events.MediaBlacklisted{
		MediaID:    mediaID,
		Title:      media.Title,
		NewlyAdded: added,
		Indexes:    details.Indexes,
	}
	if err := r.deps.Events.PublishMediaBlacklisted(context.WithoutCancel(ctx), ev); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to publish blacklist event")
	}

	logging.Ctx(ctx).Info().
		Str("media_id", mediaID).
		Str("title", media.Title).
		Bool("newly_blacklisted", added).
		Msg("Media removed and blacklisted")
	return nil
}

// deleteFromIndexes removes the document from every country index. All
// indexes are attempted; failures are joined.
func (r *Runner) deleteFromIndexes(ctx context.Context, report *Report, details *RemovalDetails) error {
	rec := startPhase(PhaseDeleteDocuments)
	defer rec.finish(report)

	var errs []error
	for _, cc := range r.countries {
		name := search.IndexName(cc)
		rec.attempt(1)
		if _, err := r.deps.Search.Index(name).DeleteDocument(ctx, details.Media.ID); err != nil {
			rec.fail(name, err)
			errs = append(errs, fmt.Errorf("delete from %s: %w", name, err))
			continue
		}
		rec.succeed(1)
		details.Indexes = append(details.Indexes, name)
	}
	return errors.Join(errs...)
}
