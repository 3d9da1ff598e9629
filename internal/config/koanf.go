// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/streamchaser/config.yaml",
	"/etc/streamchaser/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			Language:          "en-US",
			RequestsPerSecond: 40,
			Burst:             20,
			Timeout:           15 * time.Second,
			MaxRetries:        5,
			CircuitBreaker:    defaultCircuitBreaker(),
		},
		Search: SearchConfig{
			URL:            "http://127.0.0.1:7700",
			Timeout:        30 * time.Second,
			BatchSize:      1000,
			CircuitBreaker: defaultCircuitBreaker(),
		},
		Database: DatabaseConfig{
			Driver:       "duckdb",
			Path:         "/data/streamchaser.duckdb",
			MaxOpenConns: 8,
		},
		Blacklist: BlacklistConfig{
			Backend:   "file",
			Path:      "blacklist.txt",
			BadgerDir: "/data/blacklist",
		},
		Jobs: JobsConfig{
			Workers:           8,
			UpsertChunkSize:   10,
			ProviderChunkSize: 25,
		},
		Countries: CountriesConfig{
			Supported: []string{"US", "GB", "DK"},
		},
		NATS: NATSConfig{
			Enabled:       false,
			URL:           "nats://127.0.0.1:4222",
			ClientName:    "streamchaser",
			MaxReconnects: 10,
			ReconnectWait: 2 * time.Second,
		},
		Schedule: ScheduleConfig{
			Interval:       24 * time.Hour,
			RunOnStart:     false,
			TotalPages:     500,
			RemoveNonASCII: true,
		},
		Server: ServerConfig{
			Enabled:           true,
			Host:              "0.0.0.0",
			Port:              9464,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
			File: LogFileConfig{
				MaxSizeMB:  50,
				MaxBackups: 5,
				MaxAgeDays: 30,
			},
		},
	}
}

func defaultCircuitBreaker() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:             true,
		MaxRequests:         3,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 10,
		FailureRatio:        0.6,
		MinRequests:         20,
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults. Only explicitly mapped environment
// variables are consulted.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// TMDB_API_KEY -> tmdb.api_key
	// SUPPORTED_COUNTRY_CODES -> countries.supported
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// normalize canonicalizes values that are compared case-insensitively.
func (c *Config) normalize() {
	codes := make([]string, 0, len(c.Countries.Supported))
	seen := make(map[string]struct{}, len(c.Countries.Supported))
	for _, cc := range c.Countries.Supported {
		cc = strings.ToUpper(strings.TrimSpace(cc))
		if cc == "" {
			continue
		}
		if _, dup := seen[cc]; dup {
			continue
		}
		seen[cc] = struct{}{}
		codes = append(codes, cc)
	}
	c.Countries.Supported = codes

	c.Database.Driver = strings.ToLower(c.Database.Driver)
	c.Blacklist.Backend = strings.ToLower(c.Blacklist.Backend)
	c.Search.URL = strings.TrimRight(c.Search.URL, "/")
	c.TMDB.BaseURL = strings.TrimRight(c.TMDB.BaseURL, "/")
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"countries.supported",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Names follow the variables the deployment has always used.
var envMappings = map[string]string{
	// TMDB
	"tmdb_api_key":             "tmdb.api_key",
	"tmdb_read_access_token":   "tmdb.read_access_token",
	"tmdb_base_url":            "tmdb.base_url",
	"tmdb_language":            "tmdb.language",
	"tmdb_requests_per_second": "tmdb.requests_per_second",
	"tmdb_burst":               "tmdb.burst",
	"tmdb_timeout":             "tmdb.timeout",
	"tmdb_max_retries":         "tmdb.max_retries",
	"tmdb_circuit_breaker":     "tmdb.circuit_breaker.enabled",

	// Meilisearch
	"meili_url":                    "search.url",
	"meili_master_key":             "search.master_key",
	"meili_timeout":                "search.timeout",
	"meili_batch_size":             "search.batch_size",
	"meili_circuit_breaker":        "search.circuit_breaker.enabled",
	"search_batch_size":            "search.batch_size",
	"search_circuit_breaker_limit": "search.circuit_breaker.consecutive_failures",

	// Database
	"database_driver":         "database.driver",
	"database_dsn":            "database.dsn",
	"database_url":            "database.dsn",
	"duckdb_path":             "database.path",
	"duckdb_max_memory":       "database.max_memory",
	"duckdb_threads":          "database.threads",
	"database_max_open_conns": "database.max_open_conns",

	// Blacklist
	"blacklist_backend":    "blacklist.backend",
	"blacklist_path":       "blacklist.path",
	"blacklist_badger_dir": "blacklist.badger_dir",

	// Jobs
	"jobs_workers":             "jobs.workers",
	"jobs_upsert_chunk_size":   "jobs.upsert_chunk_size",
	"jobs_provider_chunk_size": "jobs.provider_chunk_size",
	"jobs_timeout":             "jobs.timeout",

	// Countries
	"supported_country_codes": "countries.supported",

	// NATS
	"nats_enabled":        "nats.enabled",
	"nats_url":            "nats.url",
	"nats_client_name":    "nats.client_name",
	"nats_max_reconnects": "nats.max_reconnects",
	"nats_reconnect_wait": "nats.reconnect_wait",

	// Schedule
	"schedule_interval":         "schedule.interval",
	"schedule_run_on_start":     "schedule.run_on_start",
	"schedule_total_pages":      "schedule.total_pages",
	"schedule_remove_non_ascii": "schedule.remove_non_ascii",

	// Metrics/health server
	"server_enabled":         "server.enabled",
	"metrics_server_enabled": "server.enabled",
	"http_host":              "server.host",
	"http_port":              "server.port",
	"http_read_timeout":      "server.read_timeout",
	"http_write_timeout":     "server.write_timeout",
	"http_shutdown_timeout":  "server.shutdown_timeout",
	"http_rate_limit":        "server.rate_limit_requests",
	"http_rate_limit_window": "server.rate_limit_window",

	// Logging
	"log_level":             "logging.level",
	"log_format":            "logging.format",
	"log_caller":            "logging.caller",
	"log_file":              "logging.file.path",
	"log_file_max_size_mb":  "logging.file.max_size_mb",
	"log_file_max_backups":  "logging.file.max_backups",
	"log_file_max_age_days": "logging.file.max_age_days",
	"log_file_compress":     "logging.file.compress",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - TMDB_API_KEY -> tmdb.api_key
//   - MEILI_MASTER_KEY -> search.master_key
//   - DUCKDB_PATH -> database.path
//   - SUPPORTED_COUNTRY_CODES -> countries.supported
//
// Unmapped keys return an empty string so unrelated environment variables
// never leak into the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
