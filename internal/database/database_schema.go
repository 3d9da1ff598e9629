// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package database

import (
	"context"
	"fmt"
)

// Table names.
const (
	tableMedia  = "media"
	tableGenres = "genres"
)

// schemaStatements is portable between DuckDB and Postgres. Genres and
// providers are JSON text so neither engine's native JSON type is needed.
// media has no secondary indexes: DuckDB rejects ON CONFLICT DO UPDATE on
// indexed columns.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS media (
		id VARCHAR PRIMARY KEY,
		tmdb_id BIGINT NOT NULL,
		title VARCHAR NOT NULL,
		media_type VARCHAR NOT NULL,
		overview VARCHAR NOT NULL DEFAULT '',
		release_date VARCHAR NOT NULL DEFAULT '',
		poster_path VARCHAR NOT NULL DEFAULT '',
		backdrop_path VARCHAR NOT NULL DEFAULT '',
		popularity FLOAT8 NOT NULL DEFAULT 0,
		vote_average FLOAT8 NOT NULL DEFAULT 0,
		vote_count BIGINT NOT NULL DEFAULT 0,
		original_language VARCHAR NOT NULL DEFAULT '',
		genres VARCHAR NOT NULL DEFAULT '[]',
		providers VARCHAR NOT NULL DEFAULT '{}',
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		name VARCHAR PRIMARY KEY,
		media_count BIGINT NOT NULL DEFAULT 0
	)`,
}

func (db *DB) createSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
