// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package database

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/metrics"
	"github.com/tomtom215/streamchaser/internal/models"
)

// genreAliases maps lower-cased genre spellings to their canonical name.
var genreAliases = map[string]string{
	"sci-fi":    "Science Fiction",
	"scifi":     "Science Fiction",
	"tv movie":  "TV Movie",
	"tv-movie":  "TV Movie",
	"kids":      "Kids",
	"children":  "Kids",
	"talk":      "Talk",
	"soap":      "Soap",
	"politics":  "Politics",
	"news":      "News",
	"reality":   "Reality",
	"animation": "Animation",
}

// NormalizeGenreList canonicalizes a genre list: compound TMDB names such as
// "Action & Adventure" are split, whitespace is collapsed, names are title
// cased and aliased, then de-duplicated and sorted.
func NormalizeGenreList(genres []string) []string {
	// cases.Caser is stateful and not safe for concurrent use.
	caser := cases.Title(language.English)

	seen := make(map[string]struct{}, len(genres))
	out := make([]string, 0, len(genres))
	for _, genre := range genres {
		for _, part := range splitCompoundGenre(genre) {
			part = strings.Join(strings.Fields(part), " ")
			if part == "" {
				continue
			}
			name, ok := genreAliases[strings.ToLower(part)]
			if !ok {
				name = caser.String(part)
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func splitCompoundGenre(genre string) []string {
	return strings.FieldsFunc(genre, func(r rune) bool {
		return r == '&' || r == '/' || r == ','
	})
}

// NormalizeGenres rewrites the genre list of every record whose genres are
// not already normalized. It returns the number of rows changed.
func (db *DB) NormalizeGenres(ctx context.Context) (updated int, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("normalize_genres", tableMedia, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT id, genres FROM media`)
	if err != nil {
		return 0, fmt.Errorf("list genres: %w", err)
	}

	changes := make(map[string]string)
	for rows.Next() {
		var id, raw string
		if err = rows.Scan(&id, &raw); err != nil {
			closeQuietly(rows)
			return 0, fmt.Errorf("scan genres: %w", err)
		}
		var current []string
		if err = json.Unmarshal([]byte(raw), &current); err != nil {
			closeQuietly(rows)
			return 0, fmt.Errorf("decode genres for %s: %w", id, err)
		}
		normalized := NormalizeGenreList(current)
		if slices.Equal(current, normalized) {
			continue
		}
		encoded, encErr := json.Marshal(normalized)
		if encErr != nil {
			closeQuietly(rows)
			err = encErr
			return 0, fmt.Errorf("encode genres for %s: %w", id, err)
		}
		changes[id] = string(encoded)
	}
	if err = rows.Err(); err != nil {
		closeQuietly(rows)
		return 0, fmt.Errorf("iterate genres: %w", err)
	}
	closeQuietly(rows)

	if len(changes) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			rollbackQuietly(tx)
		}
	}()

	for id, encoded := range changes {
		if _, err = tx.ExecContext(ctx, `UPDATE media SET genres = $1 WHERE id = $2`, encoded, id); err != nil {
			return 0, fmt.Errorf("update genres for %s: %w", id, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit genre normalization: %w", err)
	}

	logging.Info().Int("updated", len(changes)).Msg("Normalized media genres")
	return len(changes), nil
}

// RefreshGenres rebuilds the genres table from the genre lists of all media.
func (db *DB) RefreshGenres(ctx context.Context) (genres []models.Genre, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("refresh", tableGenres, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT genres FROM media`)
	if err != nil {
		return nil, fmt.Errorf("list media genres: %w", err)
	}
	counts := make(map[string]int64)
	for rows.Next() {
		var raw string
		if err = rows.Scan(&raw); err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("scan media genres: %w", err)
		}
		var names []string
		if err = json.Unmarshal([]byte(raw), &names); err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("decode media genres: %w", err)
		}
		for _, name := range names {
			if name = strings.TrimSpace(name); name != "" {
				counts[name]++
			}
		}
	}
	if err = rows.Err(); err != nil {
		closeQuietly(rows)
		return nil, fmt.Errorf("iterate media genres: %w", err)
	}
	closeQuietly(rows)

	genres = make([]models.Genre, 0, len(counts))
	for name, n := range counts {
		genres = append(genres, models.Genre{Name: name, MediaCount: n})
	}
	sort.Slice(genres, func(i, j int) bool { return genres[i].Name < genres[j].Name })

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			rollbackQuietly(tx)
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM genres`); err != nil {
		return nil, fmt.Errorf("clear genres: %w", err)
	}
	for _, g := range genres {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO genres (name, media_count) VALUES ($1, $2)`, g.Name, g.MediaCount); err != nil {
			return nil, fmt.Errorf("insert genre %s: %w", g.Name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit genres: %w", err)
	}
	return genres, nil
}

// ListGenres returns the genres table ordered by name.
func (db *DB) ListGenres(ctx context.Context) (genres []models.Genre, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list", tableGenres, time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT name, media_count FROM genres ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var g models.Genre
		if err = rows.Scan(&g.Name, &g.MediaCount); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres: %w", err)
	}
	return genres, nil
}
