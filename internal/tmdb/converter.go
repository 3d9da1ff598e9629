// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package tmdb

import (
	"strings"
	"time"

	"github.com/tomtom215/streamchaser/internal/models"
)

// movieGenres is TMDB's static movie genre list (/genre/movie/list).
var movieGenres = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// tvGenres is TMDB's static TV genre list (/genre/tv/list). The compound
// names are split later by genre normalization.
var tvGenres = map[int]string{
	10759: "Action & Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	10762: "Kids",
	9648:  "Mystery",
	10763: "News",
	10764: "Reality",
	10765: "Sci-Fi & Fantasy",
	10766: "Soap",
	10767: "Talk",
	10768: "War & Politics",
	37:    "Western",
}

// GenreName resolves a TMDB genre id for a media type. Unknown ids return "".
func GenreName(mediaType string, id int) string {
	if mediaType == models.MediaTypeTV {
		if name, ok := tvGenres[id]; ok {
			return name
		}
	}
	return movieGenres[id]
}

// ToMediaRecords converts raw trending entries into catalog records.
// Entries that are not movies or TV shows (people), or have no title, are
// dropped. Records are de-duplicated by catalog id keeping the first
// occurrence, so the order of the input is preserved.
func ToMediaRecords(raw []models.RawMedia, now time.Time) []models.MediaRecord {
	records := make([]models.MediaRecord, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for i := range raw {
		r := &raw[i]
		if r.MediaType != models.MediaTypeMovie && r.MediaType != models.MediaTypeTV {
			continue
		}
		title := strings.TrimSpace(r.DisplayTitle())
		if r.ID <= 0 || title == "" {
			continue
		}

		id := models.MediaID(r.MediaType, r.ID)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		genres := make([]string, 0, len(r.GenreIDs))
		for _, gid := range r.GenreIDs {
			if name := GenreName(r.MediaType, gid); name != "" {
				genres = append(genres, name)
			}
		}

		records = append(records, models.MediaRecord{
			ID:               id,
			TMDBID:           r.ID,
			Title:            title,
			MediaType:        r.MediaType,
			Overview:         r.Overview,
			ReleaseDate:      r.Date(),
			PosterPath:       r.PosterPath,
			BackdropPath:     r.BackdropPath,
			Popularity:       r.Popularity,
			VoteAverage:      r.VoteAverage,
			VoteCount:        r.VoteCount,
			OriginalLanguage: r.OriginalLanguage,
			Genres:           genres,
			UpdatedAt:        now.UTC(),
		})
	}
	return records
}
