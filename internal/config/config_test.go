// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a configuration that passes validation.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.normalize()
	return cfg
}

// assertValidateError checks that err is non-nil and contains expectedMsg.
func assertValidateError(t *testing.T, err error, expectedMsg string) {
	t.Helper()
	if expectedMsg == "" {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", expectedMsg)
	}
	if !strings.Contains(err.Error(), expectedMsg) {
		t.Errorf("error = %v, want error containing %q", err, expectedMsg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"tmdb base url without scheme", func(c *Config) { c.TMDB.BaseURL = "api.themoviedb.org" }, "TMDB_BASE_URL scheme"},
		{"tmdb zero rate", func(c *Config) { c.TMDB.RequestsPerSecond = 0 }, "TMDB_REQUESTS_PER_SECOND"},
		{"tmdb negative retries", func(c *Config) { c.TMDB.MaxRetries = -1 }, "TMDB_MAX_RETRIES"},
		{"meili url missing", func(c *Config) { c.Search.URL = "" }, "MEILI_URL is required"},
		{"meili url with path", func(c *Config) { c.Search.URL = "http://meili:7700/indexes" }, "remove path"},
		{"batch size zero", func(c *Config) { c.Search.BatchSize = 0 }, "SEARCH_BATCH_SIZE"},
		{"breaker bad ratio", func(c *Config) { c.Search.CircuitBreaker.FailureRatio = 1.5 }, "failure_ratio"},
		{"breaker disabled skips checks", func(c *Config) {
			c.Search.CircuitBreaker.Enabled = false
			c.Search.CircuitBreaker.FailureRatio = 0
		}, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }, "DATABASE_DRIVER must be"},
		{"duckdb without path", func(c *Config) { c.Database.Path = "" }, "DUCKDB_PATH is required"},
		{"postgres with dsn", func(c *Config) {
			c.Database.Driver = "postgres"
			c.Database.DSN = "postgres://localhost/streamchaser"
		}, ""},
		{"file backend without path", func(c *Config) { c.Blacklist.Path = "" }, "BLACKLIST_PATH is required"},
		{"badger backend without dir", func(c *Config) {
			c.Blacklist.Backend = "badger"
			c.Blacklist.BadgerDir = ""
		}, "BLACKLIST_BADGER_DIR is required"},
		{"too many workers", func(c *Config) { c.Jobs.Workers = 1000 }, "JOBS_WORKERS"},
		{"upsert chunk zero", func(c *Config) { c.Jobs.UpsertChunkSize = 0 }, "JOBS_UPSERT_CHUNK_SIZE"},
		{"provider chunk zero", func(c *Config) { c.Jobs.ProviderChunkSize = 0 }, "JOBS_PROVIDER_CHUNK_SIZE"},
		{"no countries", func(c *Config) { c.Countries.Supported = nil }, "at least one country"},
		{"lowercase country", func(c *Config) { c.Countries.Supported = []string{"us"} }, "invalid code"},
		{"schedule too frequent", func(c *Config) { c.Schedule.Interval = time.Second }, "SCHEDULE_INTERVAL"},
		{"schedule pages out of range", func(c *Config) { c.Schedule.TotalPages = 1001 }, "SCHEDULE_TOTAL_PAGES"},
		{"server port out of range", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"server disabled ignores port", func(c *Config) {
			c.Server.Enabled = false
			c.Server.Port = 0
		}, ""},
		{"negative rate limit", func(c *Config) { c.Server.RateLimitRequests = -1 }, "HTTP_RATE_LIMIT"},
		{"rate limit without window", func(c *Config) {
			c.Server.RateLimitRequests = 10
			c.Server.RateLimitWindow = 0
		}, "HTTP_RATE_LIMIT_WINDOW"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assertValidateError(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error", "INFO"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			t.Errorf("level %q: unexpected error %v", level, err)
		}
	}
}

func TestValidateNATSURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"nats://localhost:4222", false},
		{"tls://nats.example.com:4222", false},
		{"ws://127.0.0.1:8080", false},
		{"http://localhost:4222", true},
		{"nats://", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := validateNATSURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateNATSURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	cfg := defaultConfig()
	cfg.Countries.Supported = []string{" gb", "GB", "", "dk"}
	cfg.Database.Driver = "DuckDB"
	cfg.Blacklist.Backend = "FILE"
	cfg.Search.URL = "http://meili:7700/"

	cfg.normalize()

	if got := strings.Join(cfg.Countries.Supported, ","); got != "GB,DK" {
		t.Errorf("Countries.Supported = %q, want GB,DK", got)
	}
	if cfg.Database.Driver != "duckdb" || cfg.Blacklist.Backend != "file" {
		t.Errorf("driver/backend not lower-cased: %q %q", cfg.Database.Driver, cfg.Blacklist.Backend)
	}
	if cfg.Search.URL != "http://meili:7700" {
		t.Errorf("Search.URL = %q", cfg.Search.URL)
	}
}

func TestDatabaseConfig_IsPostgres(t *testing.T) {
	for driver, want := range map[string]bool{
		"duckdb": false, "postgres": true, "postgresql": true, "pgx": true, "PGX": true,
	} {
		if got := (DatabaseConfig{Driver: driver}).IsPostgres(); got != want {
			t.Errorf("IsPostgres(%q) = %v, want %v", driver, got, want)
		}
	}
}
