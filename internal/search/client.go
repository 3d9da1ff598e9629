// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/streamchaser/internal/config"
	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/metrics"
	"github.com/tomtom215/streamchaser/internal/resilience"
)

const serviceName = "meilisearch"

// BreakerName is the circuit breaker metrics label for Meilisearch.
const BreakerName = "meilisearch"

// ErrUnavailable is returned by Health when the server does not report "available".
var ErrUnavailable = errors.New("meilisearch: server unavailable")

// Client talks to the Meilisearch REST API.
type Client struct {
	baseURL    string
	masterKey  string
	httpClient *http.Client
	breaker    *resilience.Breaker
	retry      resilience.RetryPolicy
}

// NewClient creates a Meilisearch client. Every call goes through the
// configured circuit breaker.
func NewClient(cfg *config.SearchConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		masterKey: cfg.MasterKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: resilience.NewBreaker(BreakerName, cfg.CircuitBreaker),
		retry: resilience.RetryPolicy{
			Service:    serviceName,
			MaxRetries: 3,
			BaseDelay:  500 * time.Millisecond,
			MaxDelay:   10 * time.Second,
		},
	}
}

// Task is the summarized task Meilisearch returns for asynchronous writes.
type Task struct {
	TaskUID    int64  `json:"taskUid"`
	IndexUID   string `json:"indexUid"`
	Status     string `json:"status"`
	Type       string `json:"type"`
	EnqueuedAt string `json:"enqueuedAt"`
}

// APIError is the error body Meilisearch returns with 4xx/5xx responses.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Code       string `json:"code"`
	Type       string `json:"type"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("meilisearch: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("meilisearch: status %d: %s (%s)", e.StatusCode, e.Message, e.Code)
}

// Index returns a handle for the index uid. No request is made.
func (c *Client) Index(uid string) *Index {
	return &Index{UID: uid, client: c}
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "available" {
		return fmt.Errorf("%w: status %q", ErrUnavailable, resp.Status)
	}
	return nil
}

// task performs a write request and decodes the enqueued task.
func (c *Client) task(ctx context.Context, operation, method, path string, body interface{}) (*Task, error) {
	var task Task
	if err := c.do(ctx, operation, method, path, body, &task); err != nil {
		return nil, err
	}
	logging.Debug().Str("component", serviceName).Str("operation", operation).
		Str("index", task.IndexUID).Int64("task_uid", task.TaskUID).Str("status", task.Status).
		Msg("Meilisearch task enqueued")
	return &task, nil
}

// do sends a JSON request through the circuit breaker and decodes the response.
// Client errors (4xx other than 429) do not count against the breaker.
func (c *Client) do(ctx context.Context, operation, method, path string, body, result interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", operation, err)
		}
	}

	var apiErr *APIError
	_, err := resilience.Run(c.breaker, func() (struct{}, error) {
		err := c.roundTrip(ctx, operation, method, path, payload, result)
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return struct{}{}, nil
		}
		return struct{}{}, err
	})
	if apiErr != nil {
		return apiErr
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, operation, method, path string, payload []byte, result interface{}) error {
	start := time.Now()
	resp, err := resilience.DoWithRateLimit(ctx, c.httpClient, c.retry, func(ctx context.Context) (*http.Request, error) {
		var reader io.Reader = http.NoBody
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.masterKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.masterKey)
		}
		return req, nil
	})
	if err != nil {
		metrics.RecordRemoteRequest(serviceName, operation, 0, time.Since(start))
		return fmt.Errorf("meilisearch %s: %w", operation, err)
	}
	defer resp.Body.Close()
	metrics.RecordRemoteRequest(serviceName, operation, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func escapePath(segment string) string {
	return url.PathEscape(segment)
}
