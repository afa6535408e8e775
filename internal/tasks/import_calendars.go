package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ImportCalendarsTask imports calendar feeds into an account's timetable.
// Without URLs the account's subscriptions are imported.
type ImportCalendarsTask struct {
	AccountLocalID string   `json:"account_local_id"`
	URLs           []string `json:"urls,omitempty"`
}

func (t ImportCalendarsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_calendars",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func ImportCalendarsProcessor(refresher Refresher) backlite.QueueProcessor[ImportCalendarsTask] {
	return func(ctx context.Context, task ImportCalendarsTask) error {
		if refresher == nil {
			return fmt.Errorf("refresher not configured")
		}

		results, err := refresher.ImportCalendars(ctx, task.AccountLocalID, task.URLs)
		if stale(err) {
			log.Printf("[TASK] Dropping calendar import for account %s: %v", task.AccountLocalID, err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("import calendars for %s: %w", task.AccountLocalID, err)
		}

		var errs []error
		events := 0
		for _, r := range results {
			if r.Err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", r.URL, r.Err))
				continue
			}
			events += r.Events
		}

		log.Printf("[TASK] Imported %d events from %d feeds for account %s (%d failed)",
			events, len(results)-len(errs), task.AccountLocalID, len(errs))
		return errors.Join(errs...)
	}
}

func NewImportCalendarsQueue(refresher Refresher) backlite.Queue {
	return backlite.NewQueue(ImportCalendarsProcessor(refresher))
}
