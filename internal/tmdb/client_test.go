// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/streamchaser/internal/config"
	"github.com/tomtom215/streamchaser/internal/resilience"
)

func testConfig(baseURL string) *config.TMDBConfig {
	return &config.TMDBConfig{
		BaseURL:           baseURL,
		APIKey:            "test-key",
		Language:          "en-US",
		RequestsPerSecond: 1000,
		Burst:             100,
		Timeout:           5 * time.Second,
		MaxRetries:        2,
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:             true,
			MaxRequests:         1,
			Interval:            time.Minute,
			Timeout:             time.Minute,
			ConsecutiveFailures: 3,
			FailureRatio:        0.9,
			MinRequests:         100,
		},
	}
}

const trendingMoviesPage = `{
	"page": 2,
	"results": [
		{"id": 550, "title": "Fight Club", "release_date": "1999-10-15", "genre_ids": [18], "popularity": 61.4},
		{"id": 603, "media_type": "movie", "title": "The Matrix", "release_date": "1999-03-30", "genre_ids": [28, 878]}
	],
	"total_pages": 500,
	"total_results": 10000
}`

func TestClient_TrendingMovies(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(trendingMoviesPage))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	results, err := client.TrendingMovies(context.Background(), 2)
	if err != nil {
		t.Fatalf("TrendingMovies() error = %v", err)
	}

	if gotPath != "/trending/movie/week" {
		t.Errorf("path = %q, want /trending/movie/week", gotPath)
	}
	for _, want := range []string{"page=2", "api_key=test-key", "language=en-US"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].MediaType != "movie" {
		t.Errorf("missing media_type should default to movie, got %q", results[0].MediaType)
	}
	if results[1].Title != "The Matrix" {
		t.Errorf("results[1].Title = %q", results[1].Title)
	}
}

func TestClient_TrendingTV_BearerToken(t *testing.T) {
	var gotAuth, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":1399,"name":"Game of Thrones","first_air_date":"2011-04-17"}]}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.ReadAccessToken = "v4-token"
	client := NewClient(cfg)

	results, err := client.TrendingTV(context.Background(), 1)
	if err != nil {
		t.Fatalf("TrendingTV() error = %v", err)
	}
	if gotAuth != "Bearer v4-token" {
		t.Errorf("Authorization = %q, want Bearer v4-token", gotAuth)
	}
	if strings.Contains(gotQuery, "api_key") {
		t.Errorf("api_key should not be sent with a bearer token: %q", gotQuery)
	}
	if len(results) != 1 || results[0].MediaType != "tv" || results[0].DisplayTitle() != "Game of Thrones" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestClient_TrendingInvalidPage(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:1"))
	if _, err := client.TrendingMovies(context.Background(), 0); err == nil {
		t.Error("expected error for page 0")
	}
}

func TestClient_WatchProviders(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{
			"id": 1399,
			"results": {
				"DK": {
					"link": "https://www.themoviedb.org/tv/1399/watch?locale=DK",
					"flatrate": [{"provider_id": 1899, "provider_name": "Max", "logo_path": "/max.jpg", "display_priority": 3}]
				},
				"US": {
					"link": "https://www.themoviedb.org/tv/1399/watch?locale=US",
					"buy": [{"provider_id": 2, "provider_name": "Apple TV", "display_priority": 5}]
				}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	result, err := client.WatchProviders(context.Background(), "t1399")
	if err != nil {
		t.Fatalf("WatchProviders() error = %v", err)
	}

	if gotPath != "/tv/1399/watch/providers" {
		t.Errorf("path = %q, want /tv/1399/watch/providers", gotPath)
	}
	if result.MediaID != "t1399" {
		t.Errorf("MediaID = %q, want t1399", result.MediaID)
	}
	dk, ok := result.Providers["DK"]
	if !ok {
		t.Fatal("missing DK availability")
	}
	if len(dk.Flatrate) != 1 || dk.Flatrate[0].Name != "Max" || dk.Flatrate[0].ID != 1899 {
		t.Errorf("DK flatrate = %+v", dk.Flatrate)
	}
	if len(result.Providers["US"].Buy) != 1 {
		t.Errorf("US buy = %+v", result.Providers["US"].Buy)
	}
}

func TestClient_WatchProviders_InvalidID(t *testing.T) {
	client := NewClient(testConfig("http://127.0.0.1:1"))
	if _, err := client.WatchProviders(context.Background(), "abc123"); err == nil {
		t.Error("expected error for malformed media id")
	}
}

func TestClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.WatchProviders(context.Background(), "m999999999")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestClient_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"page":1,"results":[]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	if _, err := client.TrendingMovies(context.Background(), 1); err != nil {
		t.Fatalf("TrendingMovies() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.TrendingTV(context.Background(), 3)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("error = %v, want status 502", err)
	}
}

func TestCircuitBreakerClient_OpensOnOutage(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewCircuitBreakerClient(testConfig(server.URL))
	for page := 1; page <= 3; page++ {
		if _, err := client.TrendingMovies(context.Background(), page); err == nil {
			t.Fatalf("page %d: expected error", page)
		}
	}

	_, err := client.TrendingTV(context.Background(), 4)
	if !resilience.IsOpen(err) {
		t.Errorf("error = %v, want open circuit", err)
	}
	if calls.Load() != 3 {
		t.Errorf("server calls = %d, want 3 (fourth call rejected)", calls.Load())
	}
}

func TestCircuitBreakerClient_NotFoundDoesNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewCircuitBreakerClient(testConfig(server.URL))
	for i := 0; i < 5; i++ {
		_, err := client.WatchProviders(context.Background(), "m1")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("call %d: error = %v, want ErrNotFound", i, err)
		}
	}
}
