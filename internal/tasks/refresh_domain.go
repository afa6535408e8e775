package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/schooldesk/internal/accounts"
	"github.com/mrlokans/schooldesk/internal/dispatch"
	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/ical"
	"github.com/mrlokans/schooldesk/internal/refresh"
)

// Refresher runs refreshes for the current account.
type Refresher interface {
	RefreshDomain(ctx context.Context, localID string, domain entities.Domain, week int) (dispatch.Outcome, error)
	ImportCalendars(ctx context.Context, localID string, urls []string) ([]ical.Result, error)
}

// RefreshDomainTask refreshes one domain of an account. Week 0 means the
// current week.
type RefreshDomainTask struct {
	AccountLocalID string          `json:"account_local_id"`
	Domain         entities.Domain `json:"domain"`
	Week           int             `json:"week,omitempty"`
}

func (t RefreshDomainTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_domain",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// stale reports whether a task targets an account that is no longer current.
// Retrying those can never succeed.
func stale(err error) bool {
	return errors.Is(err, refresh.ErrNotCurrent) ||
		errors.Is(err, accounts.ErrNoCurrent) ||
		errors.Is(err, accounts.ErrAccountNotFound)
}

// RefreshDomainProcessor fails the task on a failed outcome so backlite
// retries it. Superseded and skipped outcomes are final.
func RefreshDomainProcessor(refresher Refresher) backlite.QueueProcessor[RefreshDomainTask] {
	return func(ctx context.Context, task RefreshDomainTask) error {
		if refresher == nil {
			return fmt.Errorf("refresher not configured")
		}

		outcome, err := refresher.RefreshDomain(ctx, task.AccountLocalID, task.Domain, task.Week)
		if stale(err) {
			log.Printf("[TASK] Dropping %s refresh for account %s: %v", task.Domain, task.AccountLocalID, err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("refresh %s for %s: %w", task.Domain, task.AccountLocalID, err)
		}
		if outcome == dispatch.Failed {
			return fmt.Errorf("refresh %s for %s failed", task.Domain, task.AccountLocalID)
		}

		log.Printf("[TASK] Refreshed %s for account %s: %s", task.Domain, task.AccountLocalID, outcome)
		return nil
	}
}

func NewRefreshDomainQueue(refresher Refresher) backlite.Queue {
	return backlite.NewQueue(RefreshDomainProcessor(refresher))
}
