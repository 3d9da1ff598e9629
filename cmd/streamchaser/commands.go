// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/streamchaser/internal/jobs"
	"github.com/tomtom215/streamchaser/internal/models"
	"github.com/tomtom215/streamchaser/internal/validation"
)

const cmdSchedule = "schedule"

var (
	errHelp = errors.New("help requested")

	// errFlagsReported marks a flag error the FlagSet has already printed
	// together with the command usage.
	errFlagsReported = errors.New("invalid flags")
)

// jobRunner is the subset of *jobs.Runner the CLI drives.
type jobRunner interface {
	FetchMedia(ctx context.Context, totalPages int) (*jobs.Report, error)
	IndexMeilisearch(ctx context.Context) (*jobs.Report, error)
	CleanupGenres(ctx context.Context) (*jobs.Report, error)
	RemoveBlacklistedFromSearch(ctx context.Context) (*jobs.Report, error)
	RemoveNonASCIIMedia(ctx context.Context) (*jobs.Report, error)
	RemoveAllMedia(ctx context.Context) (*jobs.Report, error)
	AddProviders(ctx context.Context) (*jobs.Report, error)
	FullSetup(ctx context.Context, totalPages int, removeNonASCII bool) (*jobs.Report, error)
	RemoveAndBlacklist(ctx context.Context, mediaID string, confirm jobs.Confirmer) (*jobs.Report, error)
	Countries() []string
}

// invocation holds the parsed arguments of one command.
type invocation struct {
	totalPages     int
	mediaID        string
	removeNonASCII bool
	yes            bool
}

type command struct {
	name    string
	args    string
	summary string
	// pagesArg commands take a page count that may be negative, so "-5" is
	// a positional value rather than a flag.
	pagesArg bool
	flags    func(fs *flag.FlagSet, inv *invocation)
	parseFn  func(fs *flag.FlagSet, inv *invocation) error
	run      func(ctx context.Context, c *cli, inv invocation) (*jobs.Report, error)
}

var commands = []command{
	{
		name:     "fetch-media",
		args:     "<total-pages>",
		summary:  "Fetch trending movies and TV shows from TMDB into the store",
		pagesArg: true,
		parseFn:  parseTotalPages,
		run: func(ctx context.Context, c *cli, inv invocation) (*jobs.Report, error) {
			return c.runner.FetchMedia(ctx, inv.totalPages)
		},
	},
	{
		name:    "index-meilisearch",
		summary: "Rebuild every country search index from the store",
		run: func(ctx context.Context, c *cli, _ invocation) (*jobs.Report, error) {
			return c.runner.IndexMeilisearch(ctx)
		},
	},
	{
		name:    "cleanup-genres",
		summary: "Normalize stored genre lists and rebuild the genre table",
		run: func(ctx context.Context, c *cli, _ invocation) (*jobs.Report, error) {
			return c.runner.CleanupGenres(ctx)
		},
	},
	{
		name:    "remove-blacklisted-from-search",
		summary: "Delete blacklisted media from every search index",
		run: func(ctx context.Context, c *cli, _ invocation) (*jobs.Report, error) {
			return c.runner.RemoveBlacklistedFromSearch(ctx)
		},
	},
	{
		name:    "remove-non-ascii-media",
		summary: "Delete media whose title contains non-ASCII characters",
		run: func(ctx context.Context, c *cli, _ invocation) (*jobs.Report, error) {
			return c.runner.RemoveNonASCIIMedia(ctx)
		},
	},
	{
		name:    "remove-all-media",
		summary: "Delete every media record from the store",
		run: func(ctx context.Context, c *cli, _ invocation) (*jobs.Report, error) {
			return c.runner.RemoveAllMedia(ctx)
		},
	},
	{
		name:    "add-providers",
		summary: "Look up watch providers for every stored media",
		run: func(ctx context.Context, c *cli, _ invocation) (*jobs.Report, error) {
			return c.runner.AddProviders(ctx)
		},
	},
	{
		name:     "full-setup",
		args:     "<total-pages>",
		summary:  "Fetch, clean up, add providers and rebuild the search indexes",
		pagesArg: true,
		flags: func(fs *flag.FlagSet, inv *invocation) {
			fs.BoolVar(&inv.removeNonASCII, "remove-non-ascii", true, "delete non-ASCII titles after fetching")
		},
		parseFn: parseTotalPages,
		run: func(ctx context.Context, c *cli, inv invocation) (*jobs.Report, error) {
			return c.runner.FullSetup(ctx, inv.totalPages, inv.removeNonASCII)
		},
	},
	{
		name:    "remove-and-blacklist",
		args:    "<media-id>",
		summary: "Delete one media, blacklist it and remove it from the search indexes",
		flags: func(fs *flag.FlagSet, inv *invocation) {
			fs.BoolVar(&inv.yes, "yes", false, "skip the confirmation prompt")
		},
		parseFn: func(fs *flag.FlagSet, inv *invocation) error {
			if fs.NArg() != 1 {
				return fmt.Errorf("remove-and-blacklist takes exactly one media id")
			}
			inv.mediaID = fs.Arg(0)
			return nil
		},
		run: func(ctx context.Context, c *cli, inv invocation) (*jobs.Report, error) {
			confirm := c.in.confirm
			if inv.yes {
				confirm = jobs.AlwaysConfirm
			}
			// Announce only once the media exists and the removal is confirmed.
			announce := func(ctx context.Context, m models.MediaRecord) (bool, error) {
				ok, err := confirm(ctx, m)
				if ok && err == nil {
					fmt.Fprintf(c.out, "Removing and blacklisting: %s\n", inv.mediaID)
				}
				return ok, err
			}
			return c.runner.RemoveAndBlacklist(ctx, inv.mediaID, announce)
		},
	},
	{
		name:    cmdSchedule,
		summary: "Run full setup periodically and serve /metrics and /healthz",
	},
}

func lookupCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func (cmd command) parse(args []string, stderr io.Writer) (invocation, error) {
	var inv invocation
	fs := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: streamchaser %s [flags] %s\n\n%s\n", cmd.name, cmd.args, cmd.summary)
		fs.PrintDefaults()
	}
	if cmd.flags != nil {
		cmd.flags(fs, &inv)
	}
	if cmd.pagesArg {
		args = separateNegativeNumber(args)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return inv, errHelp
		}
		return inv, fmt.Errorf("%w: %w", errFlagsReported, err)
	}
	if cmd.parseFn != nil {
		return inv, cmd.parseFn(fs, &inv)
	}
	if fs.NArg() > 0 {
		return inv, fmt.Errorf("%s takes no arguments", cmd.name)
	}
	return inv, nil
}

// separateNegativeNumber inserts "--" before the first negative integer so
// the flag package stops there and hands it over as a positional argument.
func separateNegativeNumber(args []string) []string {
	for i, arg := range args {
		if arg == "--" {
			return args
		}
		if len(arg) > 1 && arg[0] == '-' {
			if _, err := strconv.Atoi(arg); err == nil {
				out := append(args[:i:i], "--")
				return append(out, args[i:]...)
			}
		}
	}
	return args
}

// parseTotalPages only checks the argument is an integer. Range validation
// belongs to the job so that rejected runs are still reported.
func parseTotalPages(fs *flag.FlagSet, inv *invocation) error {
	if fs.NArg() != 1 {
		return fmt.Errorf("%s takes exactly one argument: <total-pages>", fs.Name())
	}
	n, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("total pages must be an integer: %q", fs.Arg(0))
	}
	inv.totalPages = n
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: streamchaser <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		name := cmd.name
		if cmd.args != "" {
			name += " " + cmd.args
		}
		fmt.Fprintf(w, "  %-42s %s\n", name, cmd.summary)
	}
}

// cli runs one job and prints its outcome.
type cli struct {
	runner jobRunner
	out    io.Writer
	in     *prompter
}

func (c *cli) execute(ctx context.Context, cmd command, inv invocation) {
	report, err := cmd.run(ctx, c, inv)
	switch {
	case errors.Is(err, jobs.ErrInvalidArgument):
		fmt.Fprintf(c.out, "Method only supports between %d & %d pages\n", validation.MinTotalPages, validation.MaxTotalPages)
		return
	case errors.Is(err, jobs.ErrNotFound):
		fmt.Fprintf(c.out, "Cannot find media: %s\n", inv.mediaID)
		return
	case errors.Is(err, jobs.ErrNotConfirmed):
		fmt.Fprintln(c.out, "Aborted")
		return
	}

	if report != nil {
		c.printSummary(cmd.name, report, inv)
		c.printPhases(report)
	}
	if err != nil {
		fmt.Fprintf(c.out, "An error occurred. %v\n", err)
		return
	}
	if cmd.name == "remove-and-blacklist" {
		fmt.Fprintf(c.out, "%s has successfully been removed & blacklisted\n", inv.mediaID)
	}
}

// printSummary prints the job-specific headline.
func (c *cli) printSummary(name string, report *jobs.Report, inv invocation) {
	switch name {
	case "fetch-media":
		if p := report.Phase(jobs.PhaseUpsertMedia); p != nil {
			fmt.Fprintf(c.out, "Stored %d of %d media\n", p.Succeeded, p.Attempted)
		}
	case "remove-blacklisted-from-search":
		elements, indexes := 0, len(c.runner.Countries())
		if p := report.Phase(jobs.PhaseDeleteDocuments); p != nil && indexes > 0 {
			elements = p.Attempted / indexes
		}
		fmt.Fprintf(c.out, "Attempted to remove %d blacklisted media elements in %d indexes\n", elements, indexes)
	case "remove-non-ascii-media":
		if p := report.Phase(jobs.PhaseDeleteMedia); p != nil {
			fmt.Fprintf(c.out, "Removed %d media with non-ASCII titles\n", p.Succeeded)
		}
	case "remove-all-media":
		if p := report.Phase(jobs.PhaseDeleteMedia); p != nil && p.OK() {
			fmt.Fprintln(c.out, "All media has been deleted")
		}
	case "add-providers":
		if p := report.Phase(jobs.PhaseUpdateProviders); p != nil {
			fmt.Fprintf(c.out, "Updated providers for %d of %d media\n", p.Succeeded, p.Attempted)
		}
	case "remove-and-blacklist":
		c.printRemoval(report.Removal, inv.mediaID)
	}
}

func (c *cli) printRemoval(details *jobs.RemovalDetails, id string) {
	if details == nil {
		return
	}
	if details.Deleted {
		fmt.Fprintln(c.out, "Removed from database ✓")
	}
	if details.Deleted && !details.BlacklistAdded {
		fmt.Fprintf(c.out, "%s already in blacklist\n", id)
	} else if details.BlacklistAdded {
		fmt.Fprintln(c.out, "Added to blacklist ✓")
	}
	if len(details.Indexes) > 0 {
		fmt.Fprintf(c.out, "Search updated in %s ✓\n", strings.Join(details.Indexes, ", "))
	}
}

// printPhases prints one line per phase and the total duration.
func (c *cli) printPhases(report *jobs.Report) {
	for i := range report.Phases {
		p := &report.Phases[i]
		line := fmt.Sprintf("  %-34s %d/%d", p.Name, p.Succeeded, p.Attempted)
		if n := p.Failed(); n > 0 {
			line += fmt.Sprintf(" (%d failed)", n)
		}
		fmt.Fprintln(c.out, line)
		for _, f := range p.Failures {
			fmt.Fprintf(c.out, "    %s: %v\n", f.Item, f.Err)
		}
	}
	succeeded, failed := report.Totals()
	fmt.Fprintf(c.out, "%s finished in %s: %d succeeded, %d failed\n",
		report.Job, report.Duration.Round(time.Millisecond), succeeded, failed)
}

// describe renders a media record for the confirmation prompt.
func describe(m models.MediaRecord) string {
	if len(m.ReleaseDate) >= 4 {
		return fmt.Sprintf("%s (%s, %s, %s)", m.Title, m.MediaType, m.ReleaseDate[:4], m.ID)
	}
	return fmt.Sprintf("%s (%s, %s)", m.Title, m.MediaType, m.ID)
}
