// Package settingsstore keeps runtime settings in the storage backend: the
// refresh schedule overrides, the last refresh status and the account that
// was current when the process stopped.
package settingsstore

import (
	"context"
	"log"

	"github.com/mrlokans/schooldesk/internal/config"
	"github.com/mrlokans/schooldesk/internal/storage"
)

const (
	keyCurrentAccount     = "settings:current_account"
	keyRefreshEnabled     = "settings:refresh_enabled"
	keyRefreshSchedule    = "settings:refresh_schedule"
	keyRefreshLastAt      = "settings:refresh_last_at"
	keyRefreshLastStatus  = "settings:refresh_last_status"
	keyRefreshLastMessage = "settings:refresh_last_message"
)

// Setting sources, highest priority first.
const (
	SourceStored = "stored"
	SourceConfig = "config"
)

// Priority: stored setting > configuration (environment or default)
type SettingsStore struct {
	backend  storage.Backend
	defaults config.Refresh
}

func New(backend storage.Backend, defaults config.Refresh) *SettingsStore {
	return &SettingsStore{backend: backend, defaults: defaults}
}

// get treats a failing backend like a missing setting so that reads always
// fall back to the configuration.
func (s *SettingsStore) get(ctx context.Context, key string) (string, bool) {
	value, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		log.Printf("[SETTINGS] Failed to read %s: %v", key, err)
		return "", false
	}
	return value, ok && value != ""
}

// CurrentAccount returns the local id that was current last, or "".
func (s *SettingsStore) CurrentAccount(ctx context.Context) string {
	value, _ := s.get(ctx, keyCurrentAccount)
	return value
}

func (s *SettingsStore) SetCurrentAccount(ctx context.Context, localID string) error {
	if localID == "" {
		return s.backend.Remove(ctx, keyCurrentAccount)
	}
	return s.backend.Set(ctx, keyCurrentAccount, localID)
}
