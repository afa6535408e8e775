package audit

import (
	"log"
	"sync"
	"time"

	"github.com/mrlokans/schooldesk/internal/database/audit"
	"github.com/mrlokans/schooldesk/internal/entities"
)

// Service records dispatcher outcomes in the refresh event log.
type Service struct {
	repo *audit.Repository
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a refresh event synchronously.
func (s *Service) Log(event *entities.RefreshEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records a refresh event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.RefreshEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("[AUDIT] Failed to log refresh event: %v", err)
		}
	}()
}

// Record implements the dispatcher's recorder.
func (s *Service) Record(event entities.RefreshEvent) {
	event.ErrorMsg = truncate(event.ErrorMsg, 500)
	s.LogAsync(&event)
}

// Flush waits for pending asynchronous writes.
func (s *Service) Flush() {
	s.wg.Wait()
}

// GetEvents retrieves paginated refresh events.
func (s *Service) GetEvents(accountID string, limit, offset int) ([]entities.RefreshEvent, int64, error) {
	return s.repo.GetEvents(accountID, limit, offset)
}

// LastRefresh returns the latest event for an account and domain.
func (s *Service) LastRefresh(accountID string, domain entities.Domain) (*entities.RefreshEvent, error) {
	return s.repo.GetLatest(accountID, domain)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// ForgetAccount removes every event of a removed account.
func (s *Service) ForgetAccount(accountID string) error {
	return s.repo.DeleteAccountEvents(accountID)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
