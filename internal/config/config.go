// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package config

import (
	"strings"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Remote services:
//     - TMDB: metadata provider (trending lists, watch providers)
//     - Search: Meilisearch connection and indexing batch size
//
//  2. Storage:
//     - Database: DuckDB (default) or Postgres
//     - Blacklist: file or Badger backed blacklist set
//
//  3. Jobs:
//     - Jobs: worker pool sizing and chunking
//     - Countries: supported ISO 3166-1 country codes (one search index each)
//     - Schedule: periodic full setup in schedule mode
//
//  4. Operations:
//     - NATS: optional job event transport
//     - Server: metrics and health listener for schedule mode
//     - Logging: log level, format and optional rotating file
type Config struct {
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Search    SearchConfig    `koanf:"search"`
	Database  DatabaseConfig  `koanf:"database"`
	Blacklist BlacklistConfig `koanf:"blacklist"`
	Jobs      JobsConfig      `koanf:"jobs"`
	Countries CountriesConfig `koanf:"countries"`
	NATS      NATSConfig      `koanf:"nats"`
	Schedule  ScheduleConfig  `koanf:"schedule"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// TMDBConfig holds The Movie Database API settings.
type TMDBConfig struct {
	// BaseURL is the API root, without trailing version-independent paths.
	// Default: https://api.themoviedb.org/3
	BaseURL string `koanf:"base_url"`

	// APIKey is sent as the api_key query parameter (v3 auth).
	APIKey string `koanf:"api_key"`

	// ReadAccessToken is sent as a bearer token (v4 auth). Takes precedence
	// over APIKey when both are set.
	ReadAccessToken string `koanf:"read_access_token"`

	// Language is passed to endpoints that localize titles.
	// Default: en-US
	Language string `koanf:"language"`

	// RequestsPerSecond caps outgoing requests. TMDB allows roughly 50 rps.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries bounds retries on HTTP 429 responses.
	MaxRetries int `koanf:"max_retries"`

	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// SearchConfig holds Meilisearch settings.
type SearchConfig struct {
	URL       string        `koanf:"url"`
	MasterKey string        `koanf:"master_key"`
	Timeout   time.Duration `koanf:"timeout"`

	// BatchSize is the number of documents sent per add-documents call.
	BatchSize int `koanf:"batch_size"`

	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// CircuitBreakerConfig configures a gobreaker circuit breaker around a remote service.
type CircuitBreakerConfig struct {
	Enabled bool `koanf:"enabled"`

	// MaxRequests allowed through while half-open.
	MaxRequests uint32 `koanf:"max_requests"`

	// Interval is the cyclic period of the closed state for clearing counts.
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration `koanf:"timeout"`

	// ConsecutiveFailures trips the breaker regardless of the ratio.
	ConsecutiveFailures uint32 `koanf:"consecutive_failures"`

	// FailureRatio trips the breaker once MinRequests have been observed.
	FailureRatio float64 `koanf:"failure_ratio"`
	MinRequests  uint32  `koanf:"min_requests"`
}

// DatabaseConfig selects and tunes the relational store.
type DatabaseConfig struct {
	// Driver is duckdb or postgres.
	Driver string `koanf:"driver"`

	// Path is the DuckDB file. ":memory:" keeps everything in process.
	Path string `koanf:"path"`

	// DSN is the Postgres connection string (postgres driver only).
	DSN string `koanf:"dsn"`

	// MaxOpenConns bounds the database/sql pool.
	MaxOpenConns int `koanf:"max_open_conns"`

	// MaxMemory and Threads are DuckDB pragmas. Empty/0 keeps DuckDB defaults.
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// IsPostgres reports whether the Postgres engine is selected.
func (d DatabaseConfig) IsPostgres() bool {
	switch strings.ToLower(d.Driver) {
	case "postgres", "postgresql", "pgx":
		return true
	default:
		return false
	}
}

// BlacklistConfig selects the blacklist backend.
type BlacklistConfig struct {
	// Backend is file or badger.
	Backend string `koanf:"backend"`

	// Path is the line-delimited blacklist file (file backend).
	Path string `koanf:"path"`

	// BadgerDir is the Badger data directory (badger backend).
	BadgerDir string `koanf:"badger_dir"`
}

// JobsConfig sizes the batch job worker pools.
type JobsConfig struct {
	// Workers bounds concurrent remote calls and store writes per phase.
	Workers int `koanf:"workers"`

	// UpsertChunkSize is the number of records handed to one upsert task.
	UpsertChunkSize int `koanf:"upsert_chunk_size"`

	// ProviderChunkSize is the number of provider lookups handed to one task.
	ProviderChunkSize int `koanf:"provider_chunk_size"`

	// Timeout bounds a single job invocation. Zero disables the limit.
	Timeout time.Duration `koanf:"timeout"`
}

// CountriesConfig lists the countries a search index is maintained for.
type CountriesConfig struct {
	Supported []string `koanf:"supported"`
}

// NATSConfig configures the optional NATS transport for job events.
// When disabled, events go to an in-process channel.
type NATSConfig struct {
	Enabled       bool          `koanf:"enabled"`
	URL           string        `koanf:"url"`
	ClientName    string        `koanf:"client_name"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// ScheduleConfig drives the schedule subcommand.
type ScheduleConfig struct {
	// Interval between full setup runs.
	Interval time.Duration `koanf:"interval"`

	// RunOnStart triggers a full setup immediately on startup.
	RunOnStart bool `koanf:"run_on_start"`

	// TotalPages passed to each full setup.
	TotalPages int `koanf:"total_pages"`

	// RemoveNonASCII mirrors the full-setup flag of the same name.
	RemoveNonASCII bool `koanf:"remove_non_ascii"`
}

// ServerConfig holds the metrics and health listener used in schedule mode.
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimitRequests per client IP and RateLimitWindow. Zero disables.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: console (the binary is mostly run interactively)
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`

	// File enables an additional rotating JSON log file.
	File LogFileConfig `koanf:"file"`
}

// LogFileConfig configures log rotation.
type LogFileConfig struct {
	Path       string `koanf:"path"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// Load reads configuration using the layered Koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
