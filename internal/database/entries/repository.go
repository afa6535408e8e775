// Package entries stores key-value JSON documents in SQLite. It is the
// default storage.Backend for accounts and cache stores.
//
// # Usage
//
//	repo := entries.NewRepository(db)
//	err := repo.Set(ctx, "accounts-storage", `[...]`)
package entries

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/storage"
)

// Repository handles storage entry database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new entries repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get retrieves the value stored under key.
func (r *Repository) Get(ctx context.Context, key string) (string, bool, error) {
	var entry entities.StorageEntry
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// Set creates or updates the value stored under key.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	entry := entities.StorageEntry{Key: key, Value: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// Remove deletes the entry stored under key.
func (r *Repository) Remove(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("key = ?", key).Delete(&entities.StorageEntry{}).Error
}

// Keys lists stored keys with the given prefix.
func (r *Repository) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Model(&entities.StorageEntry{}).
		Where("key LIKE ?", prefix+"%").
		Order("key ASC").
		Pluck("key", &keys).Error
	return keys, err
}

var _ storage.Backend = (*Repository)(nil)
