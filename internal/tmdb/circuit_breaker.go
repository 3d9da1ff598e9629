// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package tmdb

import (
	"context"
	"errors"

	"github.com/tomtom215/streamchaser/internal/config"
	"github.com/tomtom215/streamchaser/internal/models"
	"github.com/tomtom215/streamchaser/internal/resilience"
)

// BreakerName is the circuit breaker metrics label for TMDB.
const BreakerName = "tmdb-api"

// CircuitBreakerClient wraps Client with a circuit breaker so a TMDB outage
// fails the remaining pages and provider lookups fast instead of waiting out
// every timeout.
type CircuitBreakerClient struct {
	client  *Client
	breaker *resilience.Breaker
}

// NewCircuitBreakerClient creates a TMDB client protected by a circuit breaker.
// With the breaker disabled in configuration it behaves like the plain client.
func NewCircuitBreakerClient(cfg *config.TMDBConfig) *CircuitBreakerClient {
	return &CircuitBreakerClient{
		client:  NewClient(cfg),
		breaker: resilience.NewBreaker(BreakerName, cfg.CircuitBreaker),
	}
}

// TrendingMovies fetches a trending movies page with circuit breaker protection.
func (cbc *CircuitBreakerClient) TrendingMovies(ctx context.Context, page int) ([]models.RawMedia, error) {
	return resilience.Run(cbc.breaker, func() ([]models.RawMedia, error) {
		return cbc.client.TrendingMovies(ctx, page)
	})
}

// TrendingTV fetches a trending TV page with circuit breaker protection.
func (cbc *CircuitBreakerClient) TrendingTV(ctx context.Context, page int) ([]models.RawMedia, error) {
	return resilience.Run(cbc.breaker, func() ([]models.RawMedia, error) {
		return cbc.client.TrendingTV(ctx, page)
	})
}

// WatchProviders fetches watch providers with circuit breaker protection.
// A 404 means TMDB has no such title, which is not a service failure.
func (cbc *CircuitBreakerClient) WatchProviders(ctx context.Context, mediaID string) (models.ProviderResult, error) {
	var notFound bool
	result, err := resilience.Run(cbc.breaker, func() (models.ProviderResult, error) {
		res, err := cbc.client.WatchProviders(ctx, mediaID)
		if errors.Is(err, ErrNotFound) {
			notFound = true
			return models.ProviderResult{}, nil
		}
		return res, err
	})
	if notFound {
		return models.ProviderResult{}, ErrNotFound
	}
	return result, err
}
