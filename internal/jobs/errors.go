// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package jobs

import "errors"

// Error kinds returned by the runner. Use errors.Is to classify.
var (
	// ErrInvalidArgument: a job argument is out of range. No work was done.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound: the media id does not exist in the store. Nothing was mutated.
	ErrNotFound = errors.New("cannot find media")

	// ErrPartialFailure: at least one phase recorded item failures or a phase error.
	ErrPartialFailure = errors.New("partial failure")

	// ErrUnhandled: a remove-and-blacklist step failed after the lookup.
	ErrUnhandled = errors.New("unhandled error")

	// ErrNotConfirmed: the caller declined a destructive operation.
	ErrNotConfirmed = errors.New("not confirmed")
)
