// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

// Package blacklist stores the media ids that must never be indexed again.
//
// Two backends implement Set:
//   - FileSet: a UTF-8 text file with one id per line, no header. Add holds
//     an exclusive file lock across the read-check-append so concurrent
//     processes never write the same id twice.
//   - BadgerSet: one Badger key per id, checked and set in one transaction.
package blacklist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/streamchaser/internal/config"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// ErrInvalidID is returned for empty ids or ids containing line breaks.
var ErrInvalidID = errors.New("blacklist: invalid media id")

// Set is a persistent set of blacklisted media ids.
type Set interface {
	// Contains reports whether id is blacklisted.
	Contains(ctx context.Context, id string) (bool, error)

	// Add blacklists id atomically. added is false when it was already present.
	Add(ctx context.Context, id string) (added bool, err error)

	// List returns every blacklisted id once, in insertion order for the
	// file backend and key order for Badger.
	List(ctx context.Context) ([]string, error)

	// Backend names the storage backend.
	Backend() string

	Close() error
}

// Open creates the Set selected by cfg.Backend.
func Open(cfg *config.BlacklistConfig) (Set, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		return NewFileSet(cfg.Path)
	case BackendBadger:
		return OpenBadgerSet(cfg.BadgerDir)
	default:
		return nil, fmt.Errorf("unknown blacklist backend %q", cfg.Backend)
	}
}

func normalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, "\r\n") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return id, nil
}
