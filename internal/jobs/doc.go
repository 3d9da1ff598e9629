// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

/*
Package jobs implements the Streamchaser catalog sync jobs.

A Runner coordinates four collaborators: the TMDB metadata client, the
relational media store, the per-country search indexes and the blacklist.
Each public method is one job:

	FetchMedia                  trending pages -> store, then genre table rebuild
	AddProviders                watch providers per stored id -> store
	CleanupGenres               normalize genre names, rebuild genre table
	IndexMeilisearch            full rebuild of every country index
	RemoveBlacklistedFromSearch bulk delete blacklisted ids from every index
	RemoveNonASCIIMedia         delete records with non-ASCII titles
	RemoveAllMedia              delete every record
	FullSetup                   the pipeline above, best effort after fetch
	RemoveAndBlacklist          delete one record, blacklist it, unindex it

Remote fan-out runs on bounded conc worker pools sized by jobs.workers.
Tasks are independent, so a failed page or lookup is recorded in the
phase and its siblings continue. Phases are joined before the next starts.

Every job returns a *Report with one PhaseResult per phase. Report.Err
wraps ErrPartialFailure when any item failed; argument and lookup errors
are classified with ErrInvalidArgument, ErrNotFound, ErrNotConfirmed and
ErrUnhandled.

After each job the runner records Prometheus metrics and publishes a
jobs.completed event; RemoveAndBlacklist also publishes media.blacklisted.
*/
package jobs
