package entities

import "time"

type RefreshStatus string

const (
	RefreshStatusUpdated    RefreshStatus = "updated"
	RefreshStatusSkipped    RefreshStatus = "skipped"
	RefreshStatusFailed     RefreshStatus = "failed"
	RefreshStatusSuperseded RefreshStatus = "superseded"
)

// RefreshEvent records the outcome of one dispatcher invocation.
type RefreshEvent struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	AccountLocalID string        `gorm:"index;size:36" json:"account_local_id"`
	Service        Service       `gorm:"size:20" json:"service"`
	Domain         Domain        `gorm:"index;size:20" json:"domain"`
	Key            string        `gorm:"size:100" json:"key,omitempty"` // period name or week number
	Status         RefreshStatus `gorm:"size:20" json:"status"`
	ErrorMsg       string        `gorm:"size:500" json:"error_msg,omitempty"`
	DurationMs     int64         `json:"duration_ms"`
	CreatedAt      time.Time     `gorm:"index" json:"created_at"`
}

func (RefreshEvent) TableName() string {
	return "refresh_events"
}
