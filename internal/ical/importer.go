// Package ical imports calendar subscriptions into the timetable of an
// account. Imported classes are tagged with their feed so provider refreshes
// and other feeds never disturb them.
package ical

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/mrlokans/schooldesk/internal/cache"
	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
)

// SubscriptionsKey is the personalization entry holding an account's feed
// URLs, separated by whitespace.
const SubscriptionsKey = "ical_subscriptions"

// Subscriptions returns the feed URLs stored on account.
func Subscriptions(account entities.Account) []string {
	return strings.Fields(account.Personalization.Extra[SubscriptionsKey])
}

// Source fetches a parsed calendar.
type Source interface {
	Fetch(ctx context.Context, url string) (*ics.Calendar, error)
}

// Result describes the import of one feed.
type Result struct {
	URL     string
	Events  int
	Weeks   []int
	Skipped int
	Err     error
}

type Importer struct {
	source    Source
	timetable *cache.TimetableStore
	now       func() time.Time
}

func NewImporter(source Source, timetable *cache.TimetableStore) *Importer {
	return &Importer{source: source, timetable: timetable, now: time.Now}
}

// Import fetches every url and merges its events into the timetable of
// account, one week at a time. A failing feed is logged and reported in its
// Result; the others still import.
func (i *Importer) Import(ctx context.Context, account entities.Account, urls []string) ([]Result, error) {
	if bound := i.timetable.AccountID(); bound != account.LocalID {
		return nil, fmt.Errorf("%w: bound to %q, importing for %q", ErrStoreNotBound, bound, account.LocalID)
	}

	yearStart := services.SchoolYearStart(account, i.now())
	results := make([]Result, 0, len(urls))
	for _, url := range urls {
		result := i.importOne(ctx, url, yearStart)
		if result.Err != nil {
			log.Printf("[ICAL] Import of %s for account %s failed: %v", url, account.LocalID, result.Err)
		} else {
			log.Printf("[ICAL] Imported %d events over %d weeks from %s for account %s (%d skipped)",
				result.Events, len(result.Weeks), url, account.LocalID, result.Skipped)
		}
		results = append(results, result)
	}
	return results, nil
}

func (i *Importer) importOne(ctx context.Context, url string, yearStart time.Time) Result {
	result := Result{URL: url}
	source := entities.ICalSource(url)

	cal, err := i.source.Fetch(ctx, url)
	if err != nil {
		result.Err = err
		return result
	}

	weeks, skipped := decodeCalendar(cal, source, yearStart)
	result.Skipped = skipped

	// Weeks that held this feed before but no longer do are emptied of it.
	for _, week := range i.timetable.Weeks() {
		if _, ok := weeks[week]; ok {
			continue
		}
		classes, _ := i.timetable.Classes(week)
		if slices.ContainsFunc(classes, func(c entities.TimetableClass) bool { return c.Source == source }) {
			weeks[week] = nil
		}
	}

	for week, classes := range weeks {
		ticket := i.timetable.Begin(cache.SourceWeekKey(week, source))
		if err := i.timetable.MergeSourceClasses(ctx, ticket, week, source, classes); err != nil {
			result.Err = fmt.Errorf("week %d: %w", week, err)
			return result
		}
		result.Events += len(classes)
		if len(classes) > 0 {
			result.Weeks = append(result.Weeks, week)
		}
	}
	slices.Sort(result.Weeks)
	return result
}

// Forget removes every class imported from url.
func (i *Importer) Forget(ctx context.Context, url string) error {
	if err := i.timetable.RemoveClassesFromSource(ctx, entities.ICalSource(url)); err != nil {
		return fmt.Errorf("failed to forget %s: %w", url, err)
	}
	log.Printf("[ICAL] Forgot subscription %s", url)
	return nil
}
