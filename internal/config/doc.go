// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

/*
Package config provides centralized configuration management for Streamchaser.

Configuration is layered with Koanf v2: struct defaults, then an optional YAML
file (CONFIG_PATH, ./config.yaml, /etc/streamchaser/config.yaml), then an
explicit set of environment variables. Unknown environment variables are
ignored.

# Environment Variables

TMDB:
  - TMDB_API_KEY: v3 API key (query parameter auth)
  - TMDB_READ_ACCESS_TOKEN: v4 bearer token (preferred when set)
  - TMDB_REQUESTS_PER_SECOND: client side rate limit (default: 40)

Meilisearch:
  - MEILI_URL: server URL (default: http://127.0.0.1:7700)
  - MEILI_MASTER_KEY: master key sent as bearer token
  - SEARCH_BATCH_SIZE: documents per add call (default: 1000)

Store:
  - DATABASE_DRIVER: duckdb (default) or postgres
  - DUCKDB_PATH: DuckDB file (default: /data/streamchaser.duckdb)
  - DATABASE_DSN: Postgres connection string

Blacklist:
  - BLACKLIST_BACKEND: file (default) or badger
  - BLACKLIST_PATH: line-delimited blacklist file (default: blacklist.txt)
  - BLACKLIST_BADGER_DIR: Badger directory

Jobs:
  - JOBS_WORKERS: worker pool size (default: 8)
  - JOBS_UPSERT_CHUNK_SIZE: records per upsert task (default: 10)
  - JOBS_PROVIDER_CHUNK_SIZE: provider lookups per task (default: 25)
  - SUPPORTED_COUNTRY_CODES: comma-separated ISO 3166-1 codes (default: US,GB,DK)

Schedule mode:
  - SCHEDULE_INTERVAL, SCHEDULE_RUN_ON_START, SCHEDULE_TOTAL_PAGES
  - HTTP_HOST, HTTP_PORT: metrics and health listener (default: 0.0.0.0:9464)
  - NATS_ENABLED, NATS_URL: publish job events to NATS instead of in-process

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - LOG_FILE: enables rotating JSON log file
*/
package config
