// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

// Package tmdb is the client for The Movie Database API: weekly trending
// pages for movies and TV, and per-title watch providers.
//
// Requests are rate limited client side (golang.org/x/time/rate), retried on
// HTTP 429 with exponential backoff, and can be wrapped in a circuit breaker
// with NewCircuitBreakerClient.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/streamchaser/internal/config"
	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/metrics"
	"github.com/tomtom215/streamchaser/internal/models"
	"github.com/tomtom215/streamchaser/internal/resilience"
)

const serviceName = "tmdb"

// ErrNotFound is returned when TMDB answers 404 for a title.
var ErrNotFound = errors.New("tmdb: resource not found")

// Client talks to the TMDB v3 REST API.
type Client struct {
	baseURL    string
	apiKey     string
	token      string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      resilience.RetryPolicy
}

// NewClient creates a TMDB client from configuration.
func NewClient(cfg *config.TMDBConfig) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 40
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		token:    cfg.ReadAccessToken,
		language: cfg.Language,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		retry: resilience.RetryPolicy{
			Service:    serviceName,
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  time.Second,
			MaxDelay:   30 * time.Second,
		},
	}
}

// trendingResponse is the envelope of /trending/{type}/week.
type trendingResponse struct {
	Page         int               `json:"page"`
	Results      []models.RawMedia `json:"results"`
	TotalPages   int               `json:"total_pages"`
	TotalResults int               `json:"total_results"`
}

// TrendingMovies returns one page of the weekly trending movies list.
func (c *Client) TrendingMovies(ctx context.Context, page int) ([]models.RawMedia, error) {
	return c.trending(ctx, models.MediaTypeMovie, page)
}

// TrendingTV returns one page of the weekly trending TV list.
func (c *Client) TrendingTV(ctx context.Context, page int) ([]models.RawMedia, error) {
	return c.trending(ctx, models.MediaTypeTV, page)
}

func (c *Client) trending(ctx context.Context, mediaType string, page int) ([]models.RawMedia, error) {
	if page < 1 {
		return nil, fmt.Errorf("tmdb: invalid page %d", page)
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var resp trendingResponse
	if err := c.get(ctx, "trending_"+mediaType, "/trending/"+mediaType+"/week", params, &resp); err != nil {
		return nil, fmt.Errorf("fetch trending %s page %d: %w", mediaType, page, err)
	}

	// The typed trending endpoints omit media_type on some entries.
	for i := range resp.Results {
		if resp.Results[i].MediaType == "" {
			resp.Results[i].MediaType = mediaType
		}
	}
	return resp.Results, nil
}

// watchProvidersResponse is the payload of /{type}/{id}/watch/providers.
type watchProvidersResponse struct {
	ID      int64                                  `json:"id"`
	Results map[string]models.ProviderAvailability `json:"results"`
}

// WatchProviders returns provider availability per country for a catalog id
// ("m550", "t1399").
func (c *Client) WatchProviders(ctx context.Context, mediaID string) (models.ProviderResult, error) {
	mediaType, tmdbID, err := models.ParseMediaID(mediaID)
	if err != nil {
		return models.ProviderResult{}, err
	}

	path := fmt.Sprintf("/%s/%d/watch/providers", mediaType, tmdbID)
	var resp watchProvidersResponse
	if err := c.get(ctx, "watch_providers", path, nil, &resp); err != nil {
		return models.ProviderResult{}, fmt.Errorf("fetch providers for %s: %w", mediaID, err)
	}

	providers := resp.Results
	if providers == nil {
		providers = map[string]models.ProviderAvailability{}
	}
	return models.ProviderResult{MediaID: mediaID, Providers: providers}, nil
}

// get performs an authenticated GET and decodes the JSON body into result.
func (c *Client) get(ctx context.Context, operation, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", resilience.ErrCanceled, err)
	}

	if params == nil {
		params = url.Values{}
	}
	if c.token == "" && c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	if c.language != "" {
		params.Set("language", c.language)
	}
	reqURL := c.baseURL + path + "?" + params.Encode()

	start := time.Now()
	resp, err := resilience.DoWithRateLimit(ctx, c.httpClient, c.retry, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		return req, nil
	})
	if err != nil {
		metrics.RecordRemoteRequest(serviceName, operation, 0, time.Since(start))
		return err
	}
	defer resp.Body.Close()
	metrics.RecordRemoteRequest(serviceName, operation, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status: %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	logging.Debug().Str("component", serviceName).Str("operation", operation).Str("path", path).
		Dur("duration", time.Since(start)).Msg("TMDB request completed")
	return nil
}
