package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/schooldesk/internal/database/audit"
	"github.com/mrlokans/schooldesk/internal/entities"
)

func setupTestService(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&entities.RefreshEvent{})
	require.NoError(t, err)

	return NewService(auditRepo.NewRepository(db))
}

func TestService_Record(t *testing.T) {
	svc := setupTestService(t)

	long := make([]byte, 800)
	for i := range long {
		long[i] = 'x'
	}

	svc.Record(entities.RefreshEvent{
		AccountLocalID: "acc-1",
		Service:        entities.ServicePronote,
		Domain:         entities.DomainGrades,
		Status:         entities.RefreshStatusFailed,
		ErrorMsg:       string(long),
	})
	svc.Flush()

	events, total, err := svc.GetEvents("acc-1", 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Len(t, events[0].ErrorMsg, 500)
	assert.Equal(t, entities.RefreshStatusFailed, events[0].Status)

	last, err := svc.LastRefresh("acc-1", entities.DomainGrades)
	require.NoError(t, err)
	assert.Equal(t, events[0].ID, last.ID)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc := setupTestService(t)

	require.NoError(t, svc.Log(&entities.RefreshEvent{AccountLocalID: "a", CreatedAt: time.Now().Add(-40 * 24 * time.Hour)}))
	require.NoError(t, svc.Log(&entities.RefreshEvent{AccountLocalID: "a"}))

	deleted, err := svc.DeleteOldEvents(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	require.NoError(t, svc.ForgetAccount("a"))
	_, total, err := svc.GetEvents("a", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
