// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

// Package events publishes job lifecycle events over Watermill.
//
// Events go to an in-process GoChannel by default, or to core NATS
// (JetStream disabled) when nats.enabled is set. Payloads are JSON.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicJobCompleted     = "jobs.completed"
	TopicMediaBlacklisted = "media.blacklisted"
)

// JobCompleted is published after every job run.
type JobCompleted struct {
	EventID       string    `json:"event_id"`
	Job           string    `json:"job"`
	Status        string    `json:"status"`
	Accepted      bool      `json:"accepted"`
	Succeeded     int       `json:"succeeded"`
	Failed        int       `json:"failed"`
	DurationMS    int64     `json:"duration_ms"`
	Error         string    `json:"error,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// MediaBlacklisted is published after a record was removed and blacklisted.
type MediaBlacklisted struct {
	EventID       string    `json:"event_id"`
	MediaID       string    `json:"media_id"`
	Title         string    `json:"title"`
	NewlyAdded    bool      `json:"newly_added"`
	Indexes       []string  `json:"indexes"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func newEventID() string {
	return uuid.New().String()
}
