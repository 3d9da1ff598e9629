// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package search

import (
	"context"
	"net/http"
	"strings"
)

// PrimaryKey is the document field Meilisearch keys media documents on.
const PrimaryKey = "id"

// IndexName returns the per-country index uid, e.g. "media_us".
func IndexName(countryCode string) string {
	return "media_" + strings.ToLower(countryCode)
}

// Settings is the subset of Meilisearch index settings Streamchaser manages.
type Settings struct {
	SearchableAttributes []string `json:"searchableAttributes,omitempty"`
	FilterableAttributes []string `json:"filterableAttributes,omitempty"`
	SortableAttributes   []string `json:"sortableAttributes,omitempty"`
	RankingRules         []string `json:"rankingRules,omitempty"`
}

// DefaultSettings are applied to every country index before a rebuild.
func DefaultSettings() Settings {
	return Settings{
		SearchableAttributes: []string{"title", "title_ascii", "overview"},
		FilterableAttributes: []string{"genres", "media_type", "providers", "year"},
		SortableAttributes:   []string{"popularity", "vote_average", "release_date"},
		RankingRules: []string{
			"words", "typo", "proximity", "attribute", "sort", "exactness", "popularity:desc",
		},
	}
}

// Index is a handle on one Meilisearch index.
type Index struct {
	UID    string
	client *Client
}

func (i *Index) path(suffix string) string {
	return "/indexes/" + escapePath(i.UID) + suffix
}

// AddDocuments adds or replaces documents. The index is created on first use.
func (i *Index) AddDocuments(ctx context.Context, documents interface{}) (*Task, error) {
	return i.client.task(ctx, "add_documents", http.MethodPost,
		i.path("/documents?primaryKey="+PrimaryKey), documents)
}

// DeleteDocument deletes one document by id.
func (i *Index) DeleteDocument(ctx context.Context, id string) (*Task, error) {
	return i.client.task(ctx, "delete_document", http.MethodDelete,
		i.path("/documents/"+escapePath(id)), nil)
}

// DeleteDocuments deletes a batch of documents by id.
func (i *Index) DeleteDocuments(ctx context.Context, ids []string) (*Task, error) {
	if ids == nil {
		ids = []string{}
	}
	return i.client.task(ctx, "delete_documents", http.MethodPost,
		i.path("/documents/delete-batch"), ids)
}

// DeleteAllDocuments empties the index.
func (i *Index) DeleteAllDocuments(ctx context.Context) (*Task, error) {
	return i.client.task(ctx, "delete_all_documents", http.MethodDelete, i.path("/documents"), nil)
}

// UpdateSettings replaces the managed index settings.
func (i *Index) UpdateSettings(ctx context.Context, settings Settings) (*Task, error) {
	return i.client.task(ctx, "update_settings", http.MethodPatch, i.path("/settings"), settings)
}
