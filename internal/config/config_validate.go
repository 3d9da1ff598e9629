// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}

	if err := c.validateSearch(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateBlacklist(); err != nil {
		return err
	}

	if err := c.validateJobs(); err != nil {
		return err
	}

	if err := c.validateCountries(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	if err := c.validateSchedule(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateTMDB validates TMDB connection settings.
// Credentials are not required here: jobs that never call TMDB
// (remove-all-media, index-meilisearch) must still run without them.
func (c *Config) validateTMDB() error {
	if err := validateHTTPURL(c.TMDB.BaseURL, "TMDB_BASE_URL", true); err != nil {
		return err
	}
	if c.TMDB.RequestsPerSecond <= 0 {
		return fmt.Errorf("TMDB_REQUESTS_PER_SECOND must be positive, got %v", c.TMDB.RequestsPerSecond)
	}
	if c.TMDB.Burst < 1 {
		return fmt.Errorf("TMDB_BURST must be at least 1, got %d", c.TMDB.Burst)
	}
	if c.TMDB.MaxRetries < 0 {
		return fmt.Errorf("TMDB_MAX_RETRIES must not be negative, got %d", c.TMDB.MaxRetries)
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be positive, got %v", c.TMDB.Timeout)
	}
	return validateCircuitBreaker(c.TMDB.CircuitBreaker, "tmdb")
}

// HasTMDBCredentials reports whether any TMDB credential is configured.
func (c *Config) HasTMDBCredentials() bool {
	return c.TMDB.APIKey != "" || c.TMDB.ReadAccessToken != ""
}

// validateSearch validates Meilisearch settings
func (c *Config) validateSearch() error {
	if c.Search.URL == "" {
		return fmt.Errorf("MEILI_URL is required")
	}
	if err := validateHTTPURL(c.Search.URL, "MEILI_URL", false); err != nil {
		return fmt.Errorf("MEILI_URL is invalid: %w", err)
	}
	if c.Search.BatchSize < 1 || c.Search.BatchSize > 100000 {
		return fmt.Errorf("SEARCH_BATCH_SIZE must be between 1 and 100000, got %d", c.Search.BatchSize)
	}
	return validateCircuitBreaker(c.Search.CircuitBreaker, "search")
}

func validateCircuitBreaker(cb CircuitBreakerConfig, name string) error {
	if !cb.Enabled {
		return nil
	}
	if cb.Timeout <= 0 {
		return fmt.Errorf("%s circuit breaker timeout must be positive", name)
	}
	if cb.FailureRatio <= 0 || cb.FailureRatio > 1 {
		return fmt.Errorf("%s circuit breaker failure_ratio must be in (0,1], got %v", name, cb.FailureRatio)
	}
	if cb.ConsecutiveFailures == 0 {
		return fmt.Errorf("%s circuit breaker consecutive_failures must be at least 1", name)
	}
	return nil
}

// validateDatabase validates the store engine selection
func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "duckdb":
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when DATABASE_DRIVER=duckdb")
		}
	case "postgres", "postgresql", "pgx":
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required when DATABASE_DRIVER=%s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("DATABASE_DRIVER must be 'duckdb' or 'postgres', got: %s", c.Database.Driver)
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DATABASE_MAX_OPEN_CONNS must be at least 1, got %d", c.Database.MaxOpenConns)
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative, got %d", c.Database.Threads)
	}
	return nil
}

// validateBlacklist validates the blacklist backend
func (c *Config) validateBlacklist() error {
	switch c.Blacklist.Backend {
	case "file":
		if c.Blacklist.Path == "" {
			return fmt.Errorf("BLACKLIST_PATH is required when BLACKLIST_BACKEND=file")
		}
	case "badger":
		if c.Blacklist.BadgerDir == "" {
			return fmt.Errorf("BLACKLIST_BADGER_DIR is required when BLACKLIST_BACKEND=badger")
		}
	default:
		return fmt.Errorf("BLACKLIST_BACKEND must be 'file' or 'badger', got: %s", c.Blacklist.Backend)
	}
	return nil
}

// Worker pool limits
const (
	maxWorkers   = 256
	maxChunkSize = 10000
)

// validateJobs validates worker pool sizing
func (c *Config) validateJobs() error {
	if c.Jobs.Workers < 1 || c.Jobs.Workers > maxWorkers {
		return fmt.Errorf("JOBS_WORKERS must be between 1 and %d, got %d", maxWorkers, c.Jobs.Workers)
	}
	if c.Jobs.UpsertChunkSize < 1 || c.Jobs.UpsertChunkSize > maxChunkSize {
		return fmt.Errorf("JOBS_UPSERT_CHUNK_SIZE must be between 1 and %d, got %d", maxChunkSize, c.Jobs.UpsertChunkSize)
	}
	if c.Jobs.ProviderChunkSize < 1 || c.Jobs.ProviderChunkSize > maxChunkSize {
		return fmt.Errorf("JOBS_PROVIDER_CHUNK_SIZE must be between 1 and %d, got %d", maxChunkSize, c.Jobs.ProviderChunkSize)
	}
	if c.Jobs.Timeout < 0 {
		return fmt.Errorf("JOBS_TIMEOUT must not be negative, got %v", c.Jobs.Timeout)
	}
	return nil
}

// validateCountries checks the supported country codes are ISO 3166-1 alpha-2 shaped.
func (c *Config) validateCountries() error {
	if len(c.Countries.Supported) == 0 {
		return fmt.Errorf("SUPPORTED_COUNTRY_CODES must list at least one country")
	}
	for _, cc := range c.Countries.Supported {
		if len(cc) != 2 || strings.IndexFunc(cc, func(r rune) bool { return r < 'A' || r > 'Z' }) >= 0 {
			return fmt.Errorf("SUPPORTED_COUNTRY_CODES contains invalid code %q (expected two letters)", cc)
		}
	}
	return nil
}

// validateNATS validates the event transport (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.NATS.MaxReconnects < -1 {
		return fmt.Errorf("NATS_MAX_RECONNECTS must be -1 (unlimited) or more, got %d", c.NATS.MaxReconnects)
	}
	return nil
}

// Schedule limits
const (
	minScheduleInterval = time.Minute
	maxTotalPages       = 1000
)

// validateSchedule validates schedule mode settings
func (c *Config) validateSchedule() error {
	if c.Schedule.Interval < minScheduleInterval {
		return fmt.Errorf("SCHEDULE_INTERVAL must be at least %v, got %v", minScheduleInterval, c.Schedule.Interval)
	}
	if c.Schedule.TotalPages < 1 || c.Schedule.TotalPages > maxTotalPages {
		return fmt.Errorf("SCHEDULE_TOTAL_PAGES must be between 1 and %d, got %d", maxTotalPages, c.Schedule.TotalPages)
	}
	return nil
}

// validateServer validates the metrics listener
func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitRequests < 0 {
		return fmt.Errorf("HTTP_RATE_LIMIT must be non-negative, got %d", c.Server.RateLimitRequests)
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("HTTP_RATE_LIMIT_WINDOW must be positive when HTTP_RATE_LIMIT is set")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got: %s", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got: %s", c.Logging.Format)
	}
	return nil
}
