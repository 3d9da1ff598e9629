// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package search

import (
	"strings"

	"github.com/mozillazg/go-unidecode"

	"github.com/tomtom215/streamchaser/internal/models"
)

// BuildDocument projects a record into the search document for one country.
// Provider names are taken from that country's availability only.
func BuildDocument(record *models.MediaRecord, countryCode string) models.SearchDocument {
	doc := models.SearchDocument{
		ID:          record.ID,
		Title:       record.Title,
		TitleASCII:  asciiTitle(record.Title),
		MediaType:   record.MediaType,
		Overview:    record.Overview,
		ReleaseDate: record.ReleaseDate,
		Year:        record.Year(),
		Popularity:  record.Popularity,
		VoteAverage: record.VoteAverage,
		Genres:      record.Genres,
		PosterPath:  record.PosterPath,
		Providers:   []string{},
	}
	if doc.Genres == nil {
		doc.Genres = []string{}
	}

	if availability, ok := record.Providers[strings.ToUpper(countryCode)]; ok {
		doc.Providers = availability.ProviderNames()
		doc.ProviderLink = availability.Link
	}
	return doc
}

// BuildDocuments projects records for one country, skipping ids in exclude.
func BuildDocuments(records []models.MediaRecord, countryCode string, exclude func(id string) bool) []models.SearchDocument {
	docs := make([]models.SearchDocument, 0, len(records))
	for i := range records {
		if exclude != nil && exclude(records[i].ID) {
			continue
		}
		docs = append(docs, BuildDocument(&records[i], countryCode))
	}
	return docs
}

// asciiTitle transliterates a title so "Amélie" also matches "amelie".
func asciiTitle(title string) string {
	return strings.TrimSpace(unidecode.Unidecode(title))
}
