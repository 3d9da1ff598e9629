// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/metrics"
)

// ErrRateLimited is returned when HTTP 429 persists after all retries.
var ErrRateLimited = errors.New("rate limit exceeded")

// RetryPolicy configures exponential backoff on HTTP 429 responses.
type RetryPolicy struct {
	// Service labels logs and metrics (tmdb, meilisearch).
	Service string

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BaseDelay doubles each retry: 1s, 2s, 4s, ...
	BaseDelay time.Duration

	// MaxDelay caps both the computed delay and Retry-After. Zero means no cap.
	MaxDelay time.Duration
}

// DoWithRateLimit performs the request built by newRequest, retrying on HTTP
// 429 with exponential backoff. A numeric Retry-After header (RFC 6585)
// replaces the computed delay. newRequest is called once per attempt so
// request bodies can be rebuilt. The context cancels the backoff wait.
func DoWithRateLimit(ctx context.Context, client *http.Client, policy RetryPolicy, newRequest func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCanceled, err)
		}

		req, err := newRequest(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrCanceled, err)
			}
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()
		metrics.RemoteRateLimited.WithLabelValues(policy.Service).Inc()

		if attempt >= policy.MaxRetries {
			return nil, fmt.Errorf("%w after %d retries (HTTP 429)", ErrRateLimited, policy.MaxRetries)
		}

		delay := backoffDelay(policy, attempt, resp.Header.Get("Retry-After"))

		logging.Warn().
			Str("service", policy.Service).
			Dur("retry_delay", delay).
			Int("attempt", attempt+1).
			Int("max_retries", policy.MaxRetries).
			Msg("Rate limited (HTTP 429), retrying")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
		}
	}
}

// backoffDelay computes the wait before retry number attempt+1.
func backoffDelay(policy RetryPolicy, attempt int, retryAfter string) time.Duration {
	base := policy.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	delay := base * time.Duration(1<<uint(attempt))

	if retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
			delay = time.Duration(seconds) * time.Second
		}
	}

	if policy.MaxDelay > 0 && delay > policy.MaxDelay {
		delay = policy.MaxDelay
	}
	return delay
}
