// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

// Package database is the relational media store used by the sync jobs.
//
// # Engines
//
// The store runs on database/sql with one of two drivers:
//   - DuckDB (github.com/duckdb/duckdb-go/v2), the default; a file or ":memory:"
//   - Postgres through the pgx stdlib driver (github.com/jackc/pgx/v5/stdlib)
//
// All SQL uses $n placeholders and portable types so the same statements run
// on both. Genre lists and provider availability are stored as JSON text.
//
// # Tables
//
//   - media: one row per movie or TV show, keyed by catalog id ("m550", "t1399")
//   - genres: genre name and media count, rebuilt by RefreshGenres
//
// # Writes
//
// UpsertMedia and UpsertMediaBatch use INSERT ... ON CONFLICT (id) DO UPDATE.
// The upsert refreshes TMDB metadata but never overwrites providers, which
// only UpdateMediaProviders writes. UpsertMediaBatch is all-or-nothing.
//
// # Sessions
//
// Session pins one connection for a lookup-then-delete workflow:
//
//	sess, err := db.Session(ctx)
//	if err != nil {
//		return err
//	}
//	defer sess.Close()
//
//	media, err := sess.GetMedia(ctx, id)
//	if errors.Is(err, database.ErrMediaNotFound) {
//		...
//	}
package database
