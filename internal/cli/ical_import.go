package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

type ICalImportCommand struct {
	appFlags
	URLs    []string
	Timeout time.Duration
}

func NewICalImportCommand() *ICalImportCommand {
	return &ICalImportCommand{}
}

func (cmd *ICalImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("ical-import", flag.ContinueOnError)

	cmd.register(fs)
	fs.Func("url", "Calendar feed URL, repeatable (default: the account's subscriptions)", func(v string) error {
		if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			return fmt.Errorf("not an http(s) URL: %s", v)
		}
		cmd.URLs = append(cmd.URLs, v)
		return nil
	})
	fs.DurationVar(&cmd.Timeout, "timeout", 2*time.Minute, "Give up after this long")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s ical-import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import calendar feeds into the timetable of an account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s ical-import\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s ical-import -url https://example.org/club.ics -url https://example.org/exams.ics\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *ICalImportCommand) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	app, err := cmd.open(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	results, err := app.Refresher.ImportCalendars(ctx, "", cmd.URLs)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No calendar feeds to import")
		return nil
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("✗ %s: %v\n", r.URL, r.Err)
			errs = append(errs, fmt.Errorf("%s: %w", r.URL, r.Err))
			continue
		}
		fmt.Printf("✓ %s: %d events in %d weeks", r.URL, r.Events, len(r.Weeks))
		if r.Skipped > 0 {
			fmt.Printf(" (%d skipped)", r.Skipped)
		}
		fmt.Println()
	}
	return errors.Join(errs...)
}
