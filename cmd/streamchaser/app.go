// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/tomtom215/streamchaser/internal/blacklist"
	"github.com/tomtom215/streamchaser/internal/config"
	"github.com/tomtom215/streamchaser/internal/database"
	"github.com/tomtom215/streamchaser/internal/events"
	"github.com/tomtom215/streamchaser/internal/jobs"
	"github.com/tomtom215/streamchaser/internal/logging"
	"github.com/tomtom215/streamchaser/internal/search"
	"github.com/tomtom215/streamchaser/internal/supervisor"
	"github.com/tomtom215/streamchaser/internal/supervisor/services"
	"github.com/tomtom215/streamchaser/internal/tmdb"
)

// app owns every long-lived dependency of one process.
type app struct {
	cfg       *config.Config
	db        *database.DB
	search    *search.Client
	blacklist blacklist.Set
	events    *events.Publisher
	runner    *jobs.Runner
}

func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.db, err = database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logging.Info().
		Str("driver", cfg.Database.Driver).
		Msg("Database initialized")

	a.blacklist, err = blacklist.Open(&cfg.Blacklist)
	if err != nil {
		return nil, fmt.Errorf("open blacklist: %w", err)
	}

	a.events, err = events.New(&cfg.NATS)
	if err != nil {
		return nil, fmt.Errorf("create event publisher: %w", err)
	}

	a.search = search.NewClient(&cfg.Search)
	if err := a.search.Health(ctx); err != nil {
		logging.Warn().Err(err).Str("url", cfg.Search.URL).Msg("Meilisearch not reachable (will retry per call)")
	}

	a.runner = jobs.NewRunner(jobs.Dependencies{
		Metadata:  tmdb.NewCircuitBreakerClient(&cfg.TMDB),
		Store:     jobs.StoreFromDB(a.db),
		Search:    jobs.SearchFromClient(a.search),
		Blacklist: a.blacklist,
		Events:    a.events,
	}, cfg.Jobs, cfg.Countries.Supported, jobs.WithIndexBatchSize(cfg.Search.BatchSize))

	logging.Info().
		Strs("countries", a.runner.Countries()).
		Str("blacklist", a.blacklist.Backend()).
		Str("events", a.events.Transport()).
		Msg("Configuration loaded")
	return a, nil
}

// Close releases dependencies in reverse order of creation.
func (a *app) Close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event publisher")
		}
	}
	if a.blacklist != nil {
		if err := a.blacklist.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing blacklist")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}
}

// schedule runs the periodic full setup under the supervisor tree until ctx
// is canceled.
func (a *app) schedule(ctx context.Context) error {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddJobService(services.NewJobSchedulerService(a.runner, a.cfg.Schedule))

	if a.cfg.Server.Enabled {
		router := services.NewRouter(
			services.RouterConfig{
				RateLimitRequests: a.cfg.Server.RateLimitRequests,
				RateLimitWindow:   a.cfg.Server.RateLimitWindow,
			},
			services.HealthCheck{Name: "database", Check: a.db.Ping},
			services.HealthCheck{Name: "meilisearch", Check: a.search.Health},
		)
		srv := &http.Server{
			Addr:         net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port)),
			Handler:      router,
			ReadTimeout:  a.cfg.Server.ReadTimeout,
			WriteTimeout: a.cfg.Server.WriteTimeout,
		}
		tree.AddAPIService(services.NewHTTPServerService(srv, a.cfg.Server.ShutdownTimeout))
		logging.Info().Str("addr", srv.Addr).Msg("Metrics and health endpoints enabled")
	}

	logging.Info().
		Dur("interval", a.cfg.Schedule.Interval).
		Bool("run_on_start", a.cfg.Schedule.RunOnStart).
		Msg("Starting scheduler")

	err = tree.Serve(ctx)

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Scheduler stopped")
	return nil
}
