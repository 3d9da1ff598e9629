// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

// Package models defines the data structures shared by the Streamchaser jobs,
// the TMDB client, the store and the search index.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Media types as used by TMDB.
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// MediaRecord is one movie or TV show in the catalog.
//
// ID is the catalog-wide identifier: "m<tmdb id>" for movies and
// "t<tmdb id>" for TV shows, so the same TMDB number never collides across
// media types. Providers is keyed by ISO 3166-1 country code.
type MediaRecord struct {
	ID               string                          `json:"id"`
	TMDBID           int64                           `json:"tmdb_id"`
	Title            string                          `json:"title"`
	MediaType        string                          `json:"media_type"`
	Overview         string                          `json:"overview"`
	ReleaseDate      string                          `json:"release_date"`
	PosterPath       string                          `json:"poster_path"`
	BackdropPath     string                          `json:"backdrop_path"`
	Popularity       float64                         `json:"popularity"`
	VoteAverage      float64                         `json:"vote_average"`
	VoteCount        int64                           `json:"vote_count"`
	OriginalLanguage string                          `json:"original_language"`
	Genres           []string                        `json:"genres"`
	Providers        map[string]ProviderAvailability `json:"providers,omitempty"`
	UpdatedAt        time.Time                       `json:"updated_at"`
}

// MediaID builds the catalog identifier for a TMDB id and media type.
func MediaID(mediaType string, tmdbID int64) string {
	prefix := "m"
	if mediaType == MediaTypeTV {
		prefix = "t"
	}
	return prefix + strconv.FormatInt(tmdbID, 10)
}

// ParseMediaID splits a catalog identifier into media type and TMDB id.
func ParseMediaID(id string) (mediaType string, tmdbID int64, err error) {
	if len(id) < 2 {
		return "", 0, fmt.Errorf("invalid media id %q", id)
	}
	switch id[0] {
	case 'm':
		mediaType = MediaTypeMovie
	case 't':
		mediaType = MediaTypeTV
	default:
		return "", 0, fmt.Errorf("invalid media id %q: unknown type prefix", id)
	}
	tmdbID, err = strconv.ParseInt(id[1:], 10, 64)
	if err != nil || tmdbID <= 0 {
		return "", 0, fmt.Errorf("invalid media id %q: bad tmdb id", id)
	}
	return mediaType, tmdbID, nil
}

// IsPrintableASCII reports whether s consists only of printable ASCII
// characters (0x20 through 0x7E). The empty string qualifies.
func IsPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			return false
		}
	}
	return true
}

// Year returns the four digit year of ReleaseDate, or 0 when unknown.
func (m *MediaRecord) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// HasGenre reports whether the record is tagged with genre (case-insensitive).
func (m *MediaRecord) HasGenre(genre string) bool {
	for _, g := range m.Genres {
		if strings.EqualFold(g, genre) {
			return true
		}
	}
	return false
}

// RawMedia is one entry of a TMDB trending page. Movies carry Title and
// ReleaseDate; TV shows carry Name and FirstAirDate.
type RawMedia struct {
	ID               int64   `json:"id"`
	MediaType        string  `json:"media_type"`
	Title            string  `json:"title,omitempty"`
	Name             string  `json:"name,omitempty"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalName     string  `json:"original_name,omitempty"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	FirstAirDate     string  `json:"first_air_date,omitempty"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	OriginalLanguage string  `json:"original_language"`
	GenreIDs         []int   `json:"genre_ids"`
	Adult            bool    `json:"adult"`
}

// DisplayTitle returns Title for movies and Name for TV shows.
func (r *RawMedia) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// Date returns ReleaseDate for movies and FirstAirDate for TV shows.
func (r *RawMedia) Date() string {
	if r.ReleaseDate != "" {
		return r.ReleaseDate
	}
	return r.FirstAirDate
}
