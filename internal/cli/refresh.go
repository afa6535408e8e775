package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/mrlokans/schooldesk/internal/dispatch"
	"github.com/mrlokans/schooldesk/internal/entities"
)

type RefreshCommand struct {
	appFlags
	Domain  string
	Week    int
	Timeout time.Duration
}

func NewRefreshCommand() *RefreshCommand {
	return &RefreshCommand{}
}

func (cmd *RefreshCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("refresh", flag.ContinueOnError)

	cmd.register(fs)
	fs.StringVar(&cmd.Domain, "domain", "all", "Domain to refresh (grades, attendance, homework, timetable, news, chats, canteen or all)")
	fs.IntVar(&cmd.Week, "week", 0, "Epoch week to refresh (default: the current week)")
	fs.DurationVar(&cmd.Timeout, "timeout", 5*time.Minute, "Give up after this long")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s refresh [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Refresh the cache of an account from its provider.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s refresh\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s refresh -domain grades\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s refresh -account <local-id> -domain timetable -week 12\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Domain != "all" {
		if _, ok := entities.ParseDomain(cmd.Domain); !ok {
			fs.Usage()
			return fmt.Errorf("unknown domain %q", cmd.Domain)
		}
	}
	if cmd.Week < 0 {
		return fmt.Errorf("week must not be negative")
	}

	return nil
}

func (cmd *RefreshCommand) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	app, err := cmd.open(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if cmd.Domain != "all" {
		domain, _ := entities.ParseDomain(cmd.Domain)
		outcome, err := app.Refresher.RefreshDomain(ctx, "", domain, cmd.Week)
		if err != nil {
			return err
		}
		fmt.Printf("%-12s %s\n", domain, outcome)
		if outcome == dispatch.Failed {
			return fmt.Errorf("refresh of %s failed", domain)
		}
		return nil
	}

	report, err := app.Refresher.RefreshAll(ctx, "", cmd.Week)
	if err != nil {
		return err
	}
	printReport(report)

	if failed := report.FailedDomains(); len(failed) > 0 {
		return fmt.Errorf("refresh failed for %v", failed)
	}
	return nil
}

func printReport(report dispatch.Report) {
	domains := make([]entities.Domain, 0, len(report))
	for d := range report {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })

	for _, d := range domains {
		fmt.Printf("%-12s %s\n", d, report[d])
	}
}
