// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package jobs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/tomtom215/streamchaser/internal/blacklist"
	"github.com/tomtom215/streamchaser/internal/config"
	"github.com/tomtom215/streamchaser/internal/database"
	"github.com/tomtom215/streamchaser/internal/models"
	"github.com/tomtom215/streamchaser/internal/search"
)

var errInjected = errors.New("injected failure")

// callLog records calls across fakes so tests can assert ordering.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

func (l *callLog) count(prefix string) int {
	n := 0
	for _, c := range l.snapshot() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// firstIndex returns the position of the first call with prefix, or -1.
func (l *callLog) firstIndex(prefix string) int {
	for i, c := range l.snapshot() {
		if strings.HasPrefix(c, prefix) {
			return i
		}
	}
	return -1
}

func (l *callLog) lastIndex(prefix string) int {
	calls := l.snapshot()
	for i := len(calls) - 1; i >= 0; i-- {
		if strings.HasPrefix(calls[i], prefix) {
			return i
		}
	}
	return -1
}

// mockMetadata serves one movie and one show per page.
type mockMetadata struct {
	log *callLog

	failPages     map[string]bool // "movie/2"
	failProviders map[string]bool
}

func (m *mockMetadata) trending(mediaType string, page int) ([]models.RawMedia, error) {
	m.log.add("fetch %s %d", mediaType, page)
	if m.failPages[fmt.Sprintf("%s/%d", mediaType, page)] {
		return nil, errInjected
	}
	id := int64(page * 10)
	raw := models.RawMedia{
		ID:          id,
		MediaType:   mediaType,
		ReleaseDate: "2024-01-01",
		GenreIDs:    []int{18},
	}
	if mediaType == models.MediaTypeTV {
		raw.Name = fmt.Sprintf("Show %d", id)
	} else {
		raw.Title = fmt.Sprintf("Movie %d", id)
	}
	return []models.RawMedia{raw}, nil
}

func (m *mockMetadata) TrendingMovies(_ context.Context, page int) ([]models.RawMedia, error) {
	return m.trending(models.MediaTypeMovie, page)
}

func (m *mockMetadata) TrendingTV(_ context.Context, page int) ([]models.RawMedia, error) {
	return m.trending(models.MediaTypeTV, page)
}

func (m *mockMetadata) WatchProviders(_ context.Context, mediaID string) (models.ProviderResult, error) {
	m.log.add("providers %s", mediaID)
	if m.failProviders[mediaID] {
		return models.ProviderResult{}, errInjected
	}
	return models.ProviderResult{
		MediaID: mediaID,
		Providers: map[string]models.ProviderAvailability{
			"GB": {Link: "https://example.test/" + mediaID, Flatrate: []models.Provider{{ID: 8, Name: "Netflix"}}},
		},
	}, nil
}

// mockStore is an in-memory Store.
type mockStore struct {
	log *callLog

	mu      sync.Mutex
	records map[string]models.MediaRecord

	failBatch   bool
	failUpsert  map[string]bool
	failList    bool
	failUpdate  map[string]bool
	failDelete  bool
	failSession bool

	sessionsOpened int
	sessionsClosed int
}

func newMockStore(log *callLog, records ...models.MediaRecord) *mockStore {
	s := &mockStore{log: log, records: make(map[string]models.MediaRecord)}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

func (s *mockStore) UpsertMedia(_ context.Context, m *models.MediaRecord) error {
	s.log.add("upsert %s", m.ID)
	if s.failUpsert[m.ID] {
		return errInjected
	}
	s.mu.Lock()
	s.records[m.ID] = *m
	s.mu.Unlock()
	return nil
}

func (s *mockStore) UpsertMediaBatch(_ context.Context, records []models.MediaRecord) error {
	s.log.add("upsert-batch %d", len(records))
	if s.failBatch {
		return errInjected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[r.ID] = r
	}
	return nil
}

func (s *mockStore) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *mockStore) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[id]
	return ok
}

func (s *mockStore) ListMediaIDs(context.Context) ([]string, error) {
	s.log.add("list-ids")
	if s.failList {
		return nil, errInjected
	}
	return s.ids(), nil
}

func (s *mockStore) ListMedia(context.Context) ([]models.MediaRecord, error) {
	s.log.add("list-media")
	if s.failList {
		return nil, errInjected
	}
	out := make([]models.MediaRecord, 0)
	for _, id := range s.ids() {
		s.mu.Lock()
		out = append(out, s.records[id])
		s.mu.Unlock()
	}
	return out, nil
}

func (s *mockStore) UpdateMediaProviders(_ context.Context, id string, providers map[string]models.ProviderAvailability) error {
	s.log.add("update-providers %s", id)
	if s.failUpdate[id] {
		return errInjected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", database.ErrMediaNotFound, id)
	}
	rec.Providers = providers
	s.records[id] = rec
	return nil
}

func (s *mockStore) DeleteAllMedia(context.Context) (int64, error) {
	s.log.add("delete-all")
	if s.failDelete {
		return 0, errInjected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.records))
	s.records = make(map[string]models.MediaRecord)
	return n, nil
}

func (s *mockStore) DeleteNonASCIIMedia(context.Context) ([]string, error) {
	s.log.add("delete-non-ascii")
	if s.failDelete {
		return nil, errInjected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	for id, r := range s.records {
		if !models.IsPrintableASCII(r.Title) {
			removed = append(removed, id)
			delete(s.records, id)
		}
	}
	sort.Strings(removed)
	return removed, nil
}

func (s *mockStore) NormalizeGenres(context.Context) (int, error) {
	s.log.add("normalize-genres")
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for id, r := range s.records {
		normalized := database.NormalizeGenreList(r.Genres)
		if strings.Join(normalized, "|") != strings.Join(r.Genres, "|") {
			r.Genres = normalized
			s.records[id] = r
			changed++
		}
	}
	return changed, nil
}

func (s *mockStore) RefreshGenres(context.Context) ([]models.Genre, error) {
	s.log.add("refresh-genres")
	return []models.Genre{{Name: "Drama", MediaCount: 1}}, nil
}

func (s *mockStore) OpenSession(context.Context) (StoreSession, error) {
	s.log.add("session-open")
	if s.failSession {
		return nil, errInjected
	}
	s.mu.Lock()
	s.sessionsOpened++
	s.mu.Unlock()
	return &mockSession{store: s}, nil
}

type mockSession struct {
	store  *mockStore
	closed bool
}

func (m *mockSession) GetMedia(_ context.Context, id string) (models.MediaRecord, error) {
	m.store.log.add("get %s", id)
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	rec, ok := m.store.records[id]
	if !ok {
		return models.MediaRecord{}, fmt.Errorf("%w: %s", database.ErrMediaNotFound, id)
	}
	return rec, nil
}

func (m *mockSession) DeleteMedia(_ context.Context, id string) error {
	m.store.log.add("delete %s", id)
	if m.store.failDelete {
		return errInjected
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	delete(m.store.records, id)
	return nil
}

func (m *mockSession) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	m.store.log.add("session-close")
	m.store.mu.Lock()
	m.store.sessionsClosed++
	m.store.mu.Unlock()
	return nil
}

// mockSearch records calls per index uid.
type mockSearch struct {
	log *callLog

	mu        sync.Mutex
	indexes   map[string]*mockIndex
	failIndex map[string]bool
}

func newMockSearch(log *callLog) *mockSearch {
	return &mockSearch{log: log, indexes: make(map[string]*mockIndex), failIndex: make(map[string]bool)}
}

func (s *mockSearch) Index(uid string) SearchIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indexes[uid]
	if !ok {
		idx = &mockIndex{uid: uid, parent: s}
		s.indexes[uid] = idx
	}
	return idx
}

func (s *mockSearch) index(uid string) *mockIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexes[uid]
}

type mockIndex struct {
	uid    string
	parent *mockSearch

	mu             sync.Mutex
	settings       int
	cleared        int
	addBatches     [][]models.SearchDocument
	deletedOne     []string
	deletedBatches [][]string
}

func (i *mockIndex) fail() bool {
	i.parent.mu.Lock()
	defer i.parent.mu.Unlock()
	return i.parent.failIndex[i.uid]
}

func (i *mockIndex) task() *search.Task {
	return &search.Task{IndexUID: i.uid, Status: "enqueued"}
}

func (i *mockIndex) UpdateSettings(context.Context, search.Settings) (*search.Task, error) {
	i.parent.log.add("settings %s", i.uid)
	if i.fail() {
		return nil, errInjected
	}
	i.mu.Lock()
	i.settings++
	i.mu.Unlock()
	return i.task(), nil
}

func (i *mockIndex) AddDocuments(_ context.Context, documents interface{}) (*search.Task, error) {
	i.parent.log.add("add-documents %s", i.uid)
	if i.fail() {
		return nil, errInjected
	}
	docs, ok := documents.([]models.SearchDocument)
	if !ok {
		return nil, fmt.Errorf("unexpected document type %T", documents)
	}
	i.mu.Lock()
	i.addBatches = append(i.addBatches, docs)
	i.mu.Unlock()
	return i.task(), nil
}

func (i *mockIndex) DeleteAllDocuments(context.Context) (*search.Task, error) {
	i.parent.log.add("clear %s", i.uid)
	if i.fail() {
		return nil, errInjected
	}
	i.mu.Lock()
	i.cleared++
	i.mu.Unlock()
	return i.task(), nil
}

func (i *mockIndex) DeleteDocument(_ context.Context, id string) (*search.Task, error) {
	i.parent.log.add("delete-document %s %s", i.uid, id)
	if i.fail() {
		return nil, errInjected
	}
	i.mu.Lock()
	i.deletedOne = append(i.deletedOne, id)
	i.mu.Unlock()
	return i.task(), nil
}

func (i *mockIndex) DeleteDocuments(_ context.Context, ids []string) (*search.Task, error) {
	i.parent.log.add("delete-documents %s %d", i.uid, len(ids))
	if i.fail() {
		return nil, errInjected
	}
	i.mu.Lock()
	i.deletedBatches = append(i.deletedBatches, append([]string(nil), ids...))
	i.mu.Unlock()
	return i.task(), nil
}

// fixture wires a Runner to fakes and a real file blacklist.
type fixture struct {
	log       *callLog
	metadata  *mockMetadata
	store     *mockStore
	search    *mockSearch
	blacklist *blacklist.FileSet
	runner    *Runner
}

func testJobsConfig() config.JobsConfig {
	return config.JobsConfig{Workers: 4, UpsertChunkSize: 2, ProviderChunkSize: 2}
}

func newFixture(t *testing.T, records ...models.MediaRecord) *fixture {
	t.Helper()
	return newFixtureWithBlacklist(t, filepath.Join(t.TempDir(), "blacklist.txt"), records...)
}

func newFixtureWithBlacklist(t *testing.T, path string, records ...models.MediaRecord) *fixture {
	t.Helper()

	bl, err := blacklist.NewFileSet(path)
	if err != nil {
		t.Fatalf("NewFileSet() error = %v", err)
	}

	log := &callLog{}
	f := &fixture{
		log:       log,
		metadata:  &mockMetadata{log: log},
		store:     newMockStore(log, records...),
		search:    newMockSearch(log),
		blacklist: bl,
	}
	f.runner = NewRunner(Dependencies{
		Metadata:  f.metadata,
		Store:     f.store,
		Search:    f.search,
		Blacklist: f.blacklist,
	}, testJobsConfig(), []string{"gb", "DK"})
	return f
}

func media(id, title string, genres ...string) models.MediaRecord {
	mediaType, tmdbID, err := models.ParseMediaID(id)
	if err != nil {
		mediaType = models.MediaTypeMovie
	}
	return models.MediaRecord{
		ID:        id,
		TMDBID:    tmdbID,
		Title:     title,
		MediaType: mediaType,
		Genres:    genres,
	}
}
