package entities

import (
	"time"
)

// StorageEntry is one key of the JSON key-value store backing account and
// cache persistence.
type StorageEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:255" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StorageEntry) TableName() string {
	return "storage_entries"
}

// AccountsStorageKey holds the persisted account list.
const AccountsStorageKey = "accounts-storage"
