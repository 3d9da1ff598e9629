// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package jobs

import (
	"context"

	"github.com/tomtom215/streamchaser/internal/blacklist"
	"github.com/tomtom215/streamchaser/internal/database"
	"github.com/tomtom215/streamchaser/internal/events"
	"github.com/tomtom215/streamchaser/internal/models"
	"github.com/tomtom215/streamchaser/internal/search"
)

// MetadataClient is the remote metadata provider (TMDB).
type MetadataClient interface {
	TrendingMovies(ctx context.Context, page int) ([]models.RawMedia, error)
	TrendingTV(ctx context.Context, page int) ([]models.RawMedia, error)
	WatchProviders(ctx context.Context, mediaID string) (models.ProviderResult, error)
}

// Store is the relational media store.
type Store interface {
	UpsertMedia(ctx context.Context, m *models.MediaRecord) error
	UpsertMediaBatch(ctx context.Context, records []models.MediaRecord) error
	ListMediaIDs(ctx context.Context) ([]string, error)
	ListMedia(ctx context.Context) ([]models.MediaRecord, error)
	UpdateMediaProviders(ctx context.Context, id string, providers map[string]models.ProviderAvailability) error
	DeleteAllMedia(ctx context.Context) (int64, error)
	DeleteNonASCIIMedia(ctx context.Context) ([]string, error)
	NormalizeGenres(ctx context.Context) (int, error)
	RefreshGenres(ctx context.Context) ([]models.Genre, error)
	OpenSession(ctx context.Context) (StoreSession, error)
}

// StoreSession is a dedicated store connection. GetMedia and DeleteMedia
// return database.ErrMediaNotFound for unknown ids.
type StoreSession interface {
	GetMedia(ctx context.Context, id string) (models.MediaRecord, error)
	DeleteMedia(ctx context.Context, id string) error
	Close() error
}

// SearchIndex is one country index.
type SearchIndex interface {
	UpdateSettings(ctx context.Context, settings search.Settings) (*search.Task, error)
	AddDocuments(ctx context.Context, documents interface{}) (*search.Task, error)
	DeleteAllDocuments(ctx context.Context) (*search.Task, error)
	DeleteDocument(ctx context.Context, id string) (*search.Task, error)
	DeleteDocuments(ctx context.Context, ids []string) (*search.Task, error)
}

// SearchClient hands out index handles by uid.
type SearchClient interface {
	Index(uid string) SearchIndex
}

// Dependencies are the collaborators of the runner. Events may be nil.
type Dependencies struct {
	Metadata  MetadataClient
	Store     Store
	Search    SearchClient
	Blacklist blacklist.Set
	Events    *events.Publisher
}

// StoreFromDB adapts *database.DB to Store.
func StoreFromDB(db *database.DB) Store {
	return dbStore{db}
}

type dbStore struct {
	*database.DB
}

func (s dbStore) OpenSession(ctx context.Context) (StoreSession, error) {
	sess, err := s.DB.Session(ctx)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// SearchFromClient adapts *search.Client to SearchClient.
func SearchFromClient(c *search.Client) SearchClient {
	return searchClient{c}
}

type searchClient struct {
	client *search.Client
}

func (s searchClient) Index(uid string) SearchIndex {
	return s.client.Index(uid)
}
