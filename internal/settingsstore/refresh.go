package settingsstore

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/mrlokans/schooldesk/internal/scheduler"
)

// Last refresh statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// RefreshConfigInfo is the effective refresh schedule with the source of
// each field.
type RefreshConfigInfo struct {
	Enabled       bool   `json:"enabled"`
	EnabledSource string `json:"enabled_source"`

	Schedule            string `json:"schedule"`
	ScheduleSource      string `json:"schedule_source"`
	ScheduleDescription string `json:"schedule_description"`
}

// RefreshStatus is the outcome of the last scheduled refresh.
type RefreshStatus struct {
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	Status    string     `json:"status,omitempty"`
	Message   string     `json:"message,omitempty"`
}

func (s *SettingsStore) GetRefreshEnabled(ctx context.Context) bool {
	if value, ok := s.get(ctx, keyRefreshEnabled); ok {
		enabled, err := strconv.ParseBool(value)
		if err == nil {
			return enabled
		}
	}
	return s.defaults.Enabled
}

func (s *SettingsStore) GetRefreshEnabledSource(ctx context.Context) string {
	if _, ok := s.get(ctx, keyRefreshEnabled); ok {
		return SourceStored
	}
	return SourceConfig
}

func (s *SettingsStore) SetRefreshEnabled(ctx context.Context, enabled bool) error {
	return s.backend.Set(ctx, keyRefreshEnabled, strconv.FormatBool(enabled))
}

func (s *SettingsStore) GetRefreshSchedule(ctx context.Context) string {
	if value, ok := s.get(ctx, keyRefreshSchedule); ok {
		return value
	}
	return s.defaults.Schedule
}

func (s *SettingsStore) GetRefreshScheduleSource(ctx context.Context) string {
	if _, ok := s.get(ctx, keyRefreshSchedule); ok {
		return SourceStored
	}
	return SourceConfig
}

// SetRefreshSchedule stores a five-field cron expression.
func (s *SettingsStore) SetRefreshSchedule(ctx context.Context, schedule string) error {
	if err := scheduler.ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return s.backend.Set(ctx, keyRefreshSchedule, schedule)
}

// GetRefreshConfig returns the effective scheduler configuration.
func (s *SettingsStore) GetRefreshConfig(ctx context.Context) scheduler.Config {
	return scheduler.Config{
		Enabled:  s.GetRefreshEnabled(ctx),
		Schedule: s.GetRefreshSchedule(ctx),
	}
}

func (s *SettingsStore) GetRefreshConfigInfo(ctx context.Context) RefreshConfigInfo {
	schedule := s.GetRefreshSchedule(ctx)
	return RefreshConfigInfo{
		Enabled:             s.GetRefreshEnabled(ctx),
		EnabledSource:       s.GetRefreshEnabledSource(ctx),
		Schedule:            schedule,
		ScheduleSource:      s.GetRefreshScheduleSource(ctx),
		ScheduleDescription: scheduler.GetCronDescription(schedule),
	}
}

// ClearRefreshSettings drops the stored overrides, reverting to the
// configuration.
func (s *SettingsStore) ClearRefreshSettings(ctx context.Context) error {
	for _, key := range []string{keyRefreshEnabled, keyRefreshSchedule} {
		if err := s.backend.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *SettingsStore) GetRefreshStatus(ctx context.Context) RefreshStatus {
	status := RefreshStatus{}
	if value, ok := s.get(ctx, keyRefreshLastAt); ok {
		if ts, err := time.Parse(time.RFC3339, value); err == nil {
			status.LastRunAt = &ts
		}
	}
	status.Status, _ = s.get(ctx, keyRefreshLastStatus)
	status.Message, _ = s.get(ctx, keyRefreshLastMessage)
	return status
}

func (s *SettingsStore) SetRefreshStatus(ctx context.Context, status, message string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := s.backend.Set(ctx, keyRefreshLastAt, now); err != nil {
		return err
	}
	if err := s.backend.Set(ctx, keyRefreshLastStatus, status); err != nil {
		return err
	}
	if message == "" {
		return s.backend.Remove(ctx, keyRefreshLastMessage)
	}
	return s.backend.Set(ctx, keyRefreshLastMessage, message)
}

// Track wraps runner so that every run stores its outcome.
func (s *SettingsStore) Track(runner scheduler.Runner) scheduler.Runner {
	return trackingRunner{runner: runner, settings: s}
}

type trackingRunner struct {
	runner   scheduler.Runner
	settings *SettingsStore
}

func (t trackingRunner) RefreshCurrent(ctx context.Context) error {
	err := t.runner.RefreshCurrent(ctx)

	status, message := StatusSuccess, ""
	if err != nil {
		status, message = StatusFailed, err.Error()
	}
	// The run context may already be done; the status write must not depend on it.
	if setErr := t.settings.SetRefreshStatus(context.WithoutCancel(ctx), status, message); setErr != nil {
		log.Printf("[SETTINGS] Failed to store refresh status: %v", setErr)
	}
	return err
}
