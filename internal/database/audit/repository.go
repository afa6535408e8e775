package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/schooldesk/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves a refresh event to the database.
func (r *Repository) LogEvent(event *entities.RefreshEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// GetEvents retrieves paginated refresh events for an account, most recent
// first. An empty accountID returns events of every account.
func (r *Repository) GetEvents(accountID string, limit, offset int) ([]entities.RefreshEvent, int64, error) {
	var events []entities.RefreshEvent
	var total int64

	query := r.db.Model(&entities.RefreshEvent{})
	if accountID != "" {
		query = query.Where("account_local_id = ?", accountID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// GetLatest returns the most recent event for an account and domain.
func (r *Repository) GetLatest(accountID string, domain entities.Domain) (*entities.RefreshEvent, error) {
	var event entities.RefreshEvent
	err := r.db.Where("account_local_id = ? AND domain = ?", accountID, domain).
		Order("created_at DESC, id DESC").
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// CountFailuresSince counts failed refreshes of an account since a time.
func (r *Repository) CountFailuresSince(accountID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entities.RefreshEvent{}).
		Where("account_local_id = ? AND status = ? AND created_at > ?", accountID, entities.RefreshStatusFailed, since).
		Count(&count).Error
	return count, err
}

// DeleteOldEvents removes events older than the specified time.
// Returns the number of deleted events.
func (r *Repository) DeleteOldEvents(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.RefreshEvent{})
	return result.RowsAffected, result.Error
}

// DeleteAccountEvents removes every event of an account.
func (r *Repository) DeleteAccountEvents(accountID string) error {
	return r.db.Where("account_local_id = ?", accountID).Delete(&entities.RefreshEvent{}).Error
}
