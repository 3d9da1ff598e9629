// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

/*
Package search is a small Meilisearch REST client for the per-country media
indexes.

Each supported country has its own index named media_<cc> (see IndexName).
Documents are projections of catalog records built by BuildDocuments, with a
transliterated title_ascii field and the provider names available in that
country.

Write operations return the enqueued Meilisearch task. Tasks are logged but
never awaited: the indexes converge asynchronously.

	client := search.NewClient(&cfg.Search)
	idx := client.Index(search.IndexName("US"))
	if _, err := idx.DeleteDocuments(ctx, []string{"m550"}); err != nil {
		return err
	}

Requests share the resilience package's HTTP 429 backoff and run behind a
circuit breaker named "meilisearch". Client errors (4xx) are returned as
*APIError and do not trip the breaker.
*/
package search
