// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/streamchaser/internal/metrics"
	"github.com/tomtom215/streamchaser/internal/models"
)

// Session is a single pinned connection, used by workflows that must run
// their lookup and mutation on the same connection. Close returns it to the
// pool and is safe to call more than once.
type Session struct {
	conn *sql.Conn
}

// Session checks out a dedicated connection from the pool.
func (db *DB) Session(ctx context.Context) (*Session, error) {
	conn, err := db.conn.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire session: %w", err)
	}
	return &Session{conn: conn}, nil
}

// GetMedia returns one record. Missing ids yield ErrMediaNotFound.
func (s *Session) GetMedia(ctx context.Context, id string) (models.MediaRecord, error) {
	start := time.Now()
	m, err := getMedia(ctx, s.conn, id)
	metrics.RecordDBQuery("get", tableMedia, time.Since(start), ignoreNotFound(err))
	return m, err
}

// DeleteMedia deletes one record. Missing ids yield ErrMediaNotFound.
func (s *Session) DeleteMedia(ctx context.Context, id string) error {
	start := time.Now()
	err := deleteMedia(ctx, s.conn, id)
	metrics.RecordDBQuery("delete", tableMedia, time.Since(start), ignoreNotFound(err))
	return err
}

// Close releases the connection.
func (s *Session) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
