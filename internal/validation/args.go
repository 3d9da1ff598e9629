// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package validation

// Page bounds accepted by the fetch jobs. The validate tags below must agree.
const (
	MinTotalPages = 1
	MaxTotalPages = 1000
)

// FetchMediaArgs are the arguments of the fetch-media job.
type FetchMediaArgs struct {
	TotalPages int `validate:"min=1,max=1000"`
}

// FullSetupArgs are the arguments of the full-setup job.
type FullSetupArgs struct {
	TotalPages     int `validate:"min=1,max=1000"`
	RemoveNonASCII bool
}
