// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/streamchaser/internal/events"
	"github.com/tomtom215/streamchaser/internal/metrics"
)

func TestFullSetup_RejectsOutOfRangePages(t *testing.T) {
	f := newFixture(t)

	report, err := f.runner.FullSetup(context.Background(), 1001, true)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
	if report.Accepted {
		t.Error("Accepted = true, want false")
	}
	if calls := f.log.snapshot(); len(calls) != 0 {
		t.Errorf("expected no calls, got %v", calls)
	}
}

func TestFullSetup_RunsStepsInOrder(t *testing.T) {
	f := newFixture(t)
	addToBlacklist(t, f, "m20")

	report, err := f.runner.FullSetup(context.Background(), 3, true)
	if err != nil {
		t.Fatalf("FullSetup() error = %v", err)
	}

	order := []string{
		"fetch ",
		"upsert",
		"delete-non-ascii",
		"providers ",
		"normalize-genres",
		"settings media_gb",
		"add-documents media_gb",
		"delete-documents media_gb",
	}
	prev := -1
	for _, prefix := range order {
		idx := f.log.firstIndex(prefix)
		if idx == -1 {
			t.Fatalf("step %q never ran; calls = %v", prefix, f.log.snapshot())
		}
		if idx < prev {
			t.Errorf("step %q ran out of order", prefix)
		}
		prev = idx
	}

	if p := report.Phase(JobFetchMedia + "/" + PhaseUpsertMedia); p == nil || p.Succeeded != 4 {
		t.Errorf("fetch upsert phase = %+v", p)
	}
	if p := report.Phase(JobRemoveBlacklistedFromSearch + "/" + PhaseDeleteDocuments); p == nil || p.Attempted != 2 {
		t.Errorf("blacklist phase = %+v", p)
	}

	// m20 is blacklisted, so it is excluded from the rebuilt index.
	for _, batch := range f.search.index("media_gb").addBatches {
		for _, doc := range batch {
			if doc.ID == "m20" {
				t.Error("blacklisted m20 was indexed")
			}
		}
	}
}

func TestFullSetup_SkipsNonASCIIRemoval(t *testing.T) {
	f := newFixture(t)

	if _, err := f.runner.FullSetup(context.Background(), 2, false); err != nil {
		t.Fatalf("FullSetup() error = %v", err)
	}
	if f.log.count("delete-non-ascii") != 0 {
		t.Error("non-ASCII removal ran although disabled")
	}
}

func TestFullSetup_ContinuesAfterFailedStep(t *testing.T) {
	f := newFixture(t)
	f.store.failList = true

	report, err := f.runner.FullSetup(context.Background(), 2, false)
	if !errors.Is(err, ErrPartialFailure) {
		t.Fatalf("error = %v, want ErrPartialFailure", err)
	}
	if !report.Accepted {
		t.Error("Accepted = false, want true")
	}

	// AddProviders and IndexMeilisearch fail on the store; later steps still run.
	if f.log.count("normalize-genres") != 1 {
		t.Error("cleanup did not run after provider step failed")
	}
	if p := report.Phase(JobAddProviders + "/" + PhaseFetchProviders); p == nil || p.Err == nil {
		t.Errorf("provider phase = %+v, want phase error", p)
	}
	if p := report.Phase(JobIndexMeilisearch + "/" + PhaseIndexDocuments); p == nil || p.Err == nil {
		t.Errorf("index phase = %+v, want phase error", p)
	}
	if p := report.Phase(JobRemoveBlacklistedFromSearch + "/" + PhaseDeleteDocuments); p == nil {
		t.Error("blacklist removal step did not run")
	}
}

func TestFullSetup_StopsWhenCanceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.runner.FullSetup(ctx, 2, true)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if f.log.count("fetch ") != 0 {
		t.Error("no step should run on a canceled context")
	}
}

func TestRunner_PublishesJobCompleted(t *testing.T) {
	f := newFixture(t)
	pub := events.NewGoChannel()
	defer pub.Close()
	f.runner.deps.Events = pub

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := pub.Subscribe(ctx, events.TopicJobCompleted)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if _, err := f.runner.FetchMedia(ctx, 0); err == nil {
		t.Fatal("expected rejection")
	}

	select {
	case msg := <-messages:
		msg.Ack()
		var ev events.JobCompleted
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ev.Job != JobFetchMedia || ev.Accepted || ev.Status != metrics.StatusRejected {
			t.Errorf("event = %+v", ev)
		}
		if !strings.Contains(ev.Error, "TotalPages") {
			t.Errorf("event error = %q", ev.Error)
		}
		if ev.CorrelationID == "" {
			t.Error("correlation id missing")
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for jobs.completed")
	}
}

func TestRunner_PublishesMediaBlacklisted(t *testing.T) {
	f := newFixture(t, media("m9", "Se7en"))
	pub := events.NewGoChannel()
	defer pub.Close()
	f.runner.deps.Events = pub

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := pub.Subscribe(ctx, events.TopicMediaBlacklisted)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if _, err := f.runner.RemoveAndBlacklist(ctx, "m9", AlwaysConfirm); err != nil {
		t.Fatalf("RemoveAndBlacklist() error = %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()
		var ev events.MediaBlacklisted
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ev.MediaID != "m9" || ev.Title != "Se7en" || !ev.NewlyAdded || len(ev.Indexes) != 2 {
			t.Errorf("event = %+v", ev)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for media.blacklisted")
	}
}
