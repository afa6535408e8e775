package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// RefreshEventCleaner deletes refresh history older than retention.
type RefreshEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CleanupRefreshEventsTask removes refresh events older than RetentionDays.
type CleanupRefreshEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupRefreshEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_refresh_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func CleanupRefreshEventsProcessor(cleaner RefreshEventCleaner) backlite.QueueProcessor[CleanupRefreshEventsTask] {
	return func(ctx context.Context, task CleanupRefreshEventsTask) error {
		if cleaner == nil {
			return fmt.Errorf("refresh event cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 30
		}
		retention := time.Duration(retentionDays) * 24 * time.Hour

		deleted, err := cleaner.DeleteOldEvents(retention)
		if err != nil {
			return fmt.Errorf("cleanup refresh events: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d refresh events older than %d days", deleted, retentionDays)
		return nil
	}
}

func NewCleanupRefreshEventsQueue(cleaner RefreshEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupRefreshEventsProcessor(cleaner))
}
