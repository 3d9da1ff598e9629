// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tomtom215/streamchaser/internal/config"
	"github.com/tomtom215/streamchaser/internal/logging"
)

// Exit codes. Job failures are reported on stdout and still exit 0.
const (
	exitOK        = 0
	exitBootstrap = 1
	exitUsage     = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || isHelp(args[0]) {
		printUsage(stderr)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	cmd, ok := lookupCommand(args[0])
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return exitUsage
	}

	inv, err := cmd.parse(args[1:], stderr)
	if err != nil {
		switch {
		case errors.Is(err, errHelp):
			return exitOK
		case !errors.Is(err, errFlagsReported):
			fmt.Fprintln(stderr, err)
		}
		return exitUsage
	}

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return exitBootstrap
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		File: logging.FileConfig{
			Path:       cfg.Logging.File.Path,
			MaxSizeMB:  cfg.Logging.File.MaxSizeMB,
			MaxBackups: cfg.Logging.File.MaxBackups,
			MaxAgeDays: cfg.Logging.File.MaxAgeDays,
			Compress:   cfg.Logging.File.Compress,
		},
	})
	defer func() {
		if err := logging.Close(); err != nil {
			fmt.Fprintf(stderr, "close log file: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize")
		return exitBootstrap
	}
	defer a.Close()

	if cmd.name == cmdSchedule {
		if err := a.schedule(ctx); err != nil {
			logging.Error().Err(err).Msg("Scheduler stopped with error")
			return exitBootstrap
		}
		return exitOK
	}

	c := &cli{
		runner: a.runner,
		out:    stdout,
		in:     newPrompter(stdin, stdout),
	}
	c.execute(ctx, cmd, inv)
	return exitOK
}

func isHelp(arg string) bool {
	switch arg {
	case "-h", "-help", "--help", "help":
		return true
	}
	return false
}
