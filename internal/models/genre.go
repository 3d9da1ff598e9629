// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package models

// Genre is one row of the genres table, rebuilt from media rows.
type Genre struct {
	Name       string `json:"name"`
	MediaCount int64  `json:"media_count"`
}

// SearchDocument is the per-country projection of a MediaRecord stored in
// the search index for that country.
type SearchDocument struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	TitleASCII   string   `json:"title_ascii"`
	MediaType    string   `json:"media_type"`
	Overview     string   `json:"overview"`
	ReleaseDate  string   `json:"release_date"`
	Year         int      `json:"year,omitempty"`
	Popularity   float64  `json:"popularity"`
	VoteAverage  float64  `json:"vote_average"`
	Genres       []string `json:"genres"`
	PosterPath   string   `json:"poster_path"`
	Providers    []string `json:"providers"`
	ProviderLink string   `json:"provider_link,omitempty"`
}
