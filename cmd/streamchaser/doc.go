// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

// Command streamchaser runs the catalog batch jobs that keep the relational
// store, the blacklist and the per-country Meilisearch indexes in sync with
// TMDB.
//
// # Usage
//
//	streamchaser fetch-media <total-pages>
//	streamchaser index-meilisearch
//	streamchaser cleanup-genres
//	streamchaser remove-blacklisted-from-search
//	streamchaser remove-non-ascii-media
//	streamchaser remove-all-media
//	streamchaser add-providers
//	streamchaser full-setup [-remove-non-ascii=true] <total-pages>
//	streamchaser remove-and-blacklist [-yes] <media-id>
//	streamchaser schedule
//
// Each command runs one job, prints a summary of its phases and exits 0,
// also when the job reports failures. Only configuration and startup errors
// exit non-zero (1), and malformed arguments exit 2.
//
// # Configuration
//
// A .env file in the working directory is loaded first, then configuration
// is read with Koanf v2 (highest priority wins):
//   - Environment variables (TMDB_API_KEY, MEILI_URL, MEILI_MASTER_KEY,
//     DATABASE_DRIVER, SUPPORTED_COUNTRY_CODES, ...)
//   - Config file (CONFIG_PATH or config.yaml)
//   - Built-in defaults
//
// # Schedule Mode
//
// The schedule command runs full setup every schedule.interval under a suture
// supervisor tree and, when server.enabled is set, serves /metrics and
// /healthz. SIGINT and SIGTERM stop the tree gracefully.
package main
