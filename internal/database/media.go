// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/metrics"
	"github.com/tomtom215/streamchaser/internal/models"
)

// querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const mediaColumns = `id, tmdb_id, title, media_type, overview, release_date, poster_path,
	backdrop_path, popularity, vote_average, vote_count, original_language, genres, providers, updated_at`

// upsertMediaSQL inserts a record or refreshes its TMDB metadata. Providers
// are only written on insert; they are owned by UpdateMediaProviders.
const upsertMediaSQL = `
	INSERT INTO media (` + mediaColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (id) DO UPDATE SET
		tmdb_id = EXCLUDED.tmdb_id,
		title = EXCLUDED.title,
		media_type = EXCLUDED.media_type,
		overview = EXCLUDED.overview,
		release_date = EXCLUDED.release_date,
		poster_path = EXCLUDED.poster_path,
		backdrop_path = EXCLUDED.backdrop_path,
		popularity = EXCLUDED.popularity,
		vote_average = EXCLUDED.vote_average,
		vote_count = EXCLUDED.vote_count,
		original_language = EXCLUDED.original_language,
		genres = EXCLUDED.genres,
		updated_at = EXCLUDED.updated_at`

func mediaArgs(m *models.MediaRecord) ([]interface{}, error) {
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}
	genresJSON, err := json.Marshal(genres)
	if err != nil {
		return nil, fmt.Errorf("encode genres for %s: %w", m.ID, err)
	}
	providersJSON, err := encodeProviders(m.Providers)
	if err != nil {
		return nil, fmt.Errorf("encode providers for %s: %w", m.ID, err)
	}
	updatedAt := m.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	return []interface{}{
		m.ID, m.TMDBID, m.Title, m.MediaType, m.Overview, m.ReleaseDate, m.PosterPath,
		m.BackdropPath, m.Popularity, m.VoteAverage, m.VoteCount, m.OriginalLanguage,
		string(genresJSON), providersJSON, updatedAt.UTC(),
	}, nil
}

func encodeProviders(providers map[string]models.ProviderAvailability) (string, error) {
	if providers == nil {
		return "{}", nil
	}
	b, err := json.Marshal(providers)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMedia(row rowScanner) (models.MediaRecord, error) {
	var (
		m                        models.MediaRecord
		genresJSON, providerJSON string
	)
	err := row.Scan(&m.ID, &m.TMDBID, &m.Title, &m.MediaType, &m.Overview, &m.ReleaseDate,
		&m.PosterPath, &m.BackdropPath, &m.Popularity, &m.VoteAverage, &m.VoteCount,
		&m.OriginalLanguage, &genresJSON, &providerJSON, &m.UpdatedAt)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal([]byte(genresJSON), &m.Genres); err != nil {
		return m, fmt.Errorf("decode genres for %s: %w", m.ID, err)
	}
	if err := json.Unmarshal([]byte(providerJSON), &m.Providers); err != nil {
		return m, fmt.Errorf("decode providers for %s: %w", m.ID, err)
	}
	return m, nil
}

// UpsertMedia inserts or updates a single record.
func (db *DB) UpsertMedia(ctx context.Context, m *models.MediaRecord) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", tableMedia, time.Since(start), err) }()

	args, err := mediaArgs(m)
	if err != nil {
		return err
	}
	if _, err = db.conn.ExecContext(ctx, upsertMediaSQL, args...); err != nil {
		return fmt.Errorf("upsert media %s: %w", m.ID, err)
	}
	return nil
}

// UpsertMediaBatch upserts records in one transaction. Either every record is
// written or none is.
func (db *DB) UpsertMediaBatch(ctx context.Context, records []models.MediaRecord) (err error) {
	if len(records) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert_batch", tableMedia, time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			rollbackQuietly(tx)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertMediaSQL)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer closeQuietly(stmt)

	for i := range records {
		args, argErr := mediaArgs(&records[i])
		if argErr != nil {
			return argErr
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("upsert media %s: %w", records[i].ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert batch: %w", err)
	}
	return nil
}

func getMedia(ctx context.Context, q querier, id string) (models.MediaRecord, error) {
	row := q.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = $1`, id)
	m, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MediaRecord{}, fmt.Errorf("%w: %s", ErrMediaNotFound, id)
	}
	if err != nil {
		return models.MediaRecord{}, fmt.Errorf("get media %s: %w", id, err)
	}
	return m, nil
}

// GetMedia returns one record. Missing ids yield ErrMediaNotFound.
func (db *DB) GetMedia(ctx context.Context, id string) (models.MediaRecord, error) {
	start := time.Now()
	m, err := getMedia(ctx, db.conn, id)
	metrics.RecordDBQuery("get", tableMedia, time.Since(start), ignoreNotFound(err))
	return m, err
}

// ListMediaIDs returns every media id ordered by id.
func (db *DB) ListMediaIDs(ctx context.Context) (ids []string, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list_ids", tableMedia, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM media ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list media ids: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan media id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media ids: %w", err)
	}
	return ids, nil
}

// ListMedia returns every record ordered by id.
func (db *DB) ListMedia(ctx context.Context) (records []models.MediaRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list", tableMedia, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+mediaColumns+` FROM media ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		m, scanErr := scanMedia(rows)
		if scanErr != nil {
			err = fmt.Errorf("scan media: %w", scanErr)
			return nil, err
		}
		records = append(records, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media: %w", err)
	}
	return records, nil
}

// UpdateMediaProviders replaces the provider availability of one record.
func (db *DB) UpdateMediaProviders(ctx context.Context, id string, providers map[string]models.ProviderAvailability) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("update_providers", tableMedia, time.Since(start), ignoreNotFound(err)) }()

	encoded, err := encodeProviders(providers)
	if err != nil {
		return fmt.Errorf("encode providers for %s: %w", id, err)
	}
	res, err := db.conn.ExecContext(ctx,
		`UPDATE media SET providers = $1, updated_at = $2 WHERE id = $3`,
		encoded, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update providers for %s: %w", id, err)
	}
	return requireRow(res, id)
}

func deleteMedia(ctx context.Context, q querier, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete media %s: %w", id, err)
	}
	return requireRow(res, id)
}

// DeleteMedia deletes one record. Missing ids yield ErrMediaNotFound.
func (db *DB) DeleteMedia(ctx context.Context, id string) error {
	start := time.Now()
	err := deleteMedia(ctx, db.conn, id)
	metrics.RecordDBQuery("delete", tableMedia, time.Since(start), ignoreNotFound(err))
	return err
}

// DeleteAllMedia deletes every media row and empties the genres table.
// It returns the number of media rows removed.
func (db *DB) DeleteAllMedia(ctx context.Context) (deleted int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("delete_all", tableMedia, time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			rollbackQuietly(tx)
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM media`)
	if err != nil {
		return 0, fmt.Errorf("delete all media: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM genres`); err != nil {
		return 0, fmt.Errorf("delete genres: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete all: %w", err)
	}

	deleted, _ = res.RowsAffected()
	logging.Info().Int64("deleted", deleted).Msg("Deleted all media")
	return deleted, nil
}

// DeleteNonASCIIMedia deletes records whose title contains anything outside
// printable ASCII. The check runs in Go so both engines behave the same.
// It returns the deleted ids.
func (db *DB) DeleteNonASCIIMedia(ctx context.Context) (deleted []string, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("delete_non_ascii", tableMedia, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT id, title FROM media`)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	var candidates []string
	for rows.Next() {
		var id, title string
		if err = rows.Scan(&id, &title); err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("scan title: %w", err)
		}
		if !models.IsPrintableASCII(title) {
			candidates = append(candidates, id)
		}
	}
	if err = rows.Err(); err != nil {
		closeQuietly(rows)
		return nil, fmt.Errorf("iterate titles: %w", err)
	}
	closeQuietly(rows)

	if len(candidates) == 0 {
		return nil, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			rollbackQuietly(tx)
		}
	}()

	for _, id := range candidates {
		if _, err = tx.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id); err != nil {
			return nil, fmt.Errorf("delete media %s: %w", id, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit non-ascii delete: %w", err)
	}
	return candidates, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrMediaNotFound, id)
	}
	return nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrMediaNotFound) {
		return nil
	}
	return err
}
