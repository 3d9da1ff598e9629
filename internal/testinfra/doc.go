// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

// Package testinfra starts real Meilisearch and Postgres containers for
// integration tests with testcontainers-go.
//
// Everything except this file is behind the integration build tag:
//
//	go test -tags integration ./internal/testinfra/...
//
// Tests call SkipIfNoDocker first, so they skip cleanly on machines without
// a Docker daemon. The first run pulls the images.
package testinfra
