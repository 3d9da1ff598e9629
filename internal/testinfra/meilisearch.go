// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMeilisearchImage is pinned to the API version the search client targets.
	DefaultMeilisearchImage = "getmeili/meilisearch:v1.11"

	// DefaultMeilisearchPort is the HTTP port inside the container.
	DefaultMeilisearchPort = "7700"

	// DefaultMasterKey is the master key the container is started with.
	DefaultMasterKey = "streamchaser-test-master-key"
)

// MeilisearchContainer is a running Meilisearch instance.
type MeilisearchContainer struct {
	testcontainers.Container
	URL       string
	MasterKey string
}

// MeilisearchOption configures the container.
type MeilisearchOption func(*meilisearchConfig)

type meilisearchConfig struct {
	image        string
	masterKey    string
	startTimeout time.Duration
}

// WithMeilisearchImage overrides the image.
func WithMeilisearchImage(image string) MeilisearchOption {
	return func(c *meilisearchConfig) {
		c.image = image
	}
}

// WithMasterKey overrides the master key.
func WithMasterKey(key string) MeilisearchOption {
	return func(c *meilisearchConfig) {
		c.masterKey = key
	}
}

// WithMeilisearchStartTimeout bounds the wait for /health.
func WithMeilisearchStartTimeout(timeout time.Duration) MeilisearchOption {
	return func(c *meilisearchConfig) {
		c.startTimeout = timeout
	}
}

// NewMeilisearchContainer starts Meilisearch and waits for /health.
//
//	meili, err := testinfra.NewMeilisearchContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, meili)
//	client := search.NewClient(&config.SearchConfig{URL: meili.URL, MasterKey: meili.MasterKey, ...})
func NewMeilisearchContainer(ctx context.Context, opts ...MeilisearchOption) (*MeilisearchContainer, error) {
	cfg := &meilisearchConfig{
		image:        DefaultMeilisearchImage,
		masterKey:    DefaultMasterKey,
		startTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	const port = DefaultMeilisearchPort + "/tcp"
	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{port},
		Env: map[string]string{
			"MEILI_MASTER_KEY":   cfg.masterKey,
			"MEILI_ENV":          "development",
			"MEILI_NO_ANALYTICS": "true",
			"MEILI_LOG_LEVEL":    "WARN",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(port),
			wait.ForHTTP("/health").WithPort(port),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create meilisearch container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &MeilisearchContainer{
		Container: container,
		URL:       fmt.Sprintf("http://%s:%s", host, mapped.Port()),
		MasterKey: cfg.masterKey,
	}, nil
}
