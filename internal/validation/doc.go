// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

// Package validation validates job arguments with go-playground/validator v10.
//
// A single validator instance is shared process wide (it caches struct
// metadata). Argument structs carry their bounds in validate tags:
//
//	args := validation.FetchMediaArgs{TotalPages: n}
//	if verr := validation.ValidateStruct(&args); verr != nil {
//	    return fmt.Errorf("%w: %v", jobs.ErrInvalidArgument, verr)
//	}
//
// Failures are returned as *ArgumentError with one ValidationError per
// field, each carrying the failed tag, its parameter and a readable message
// such as "TotalPages must be at most 1000".
package validation
