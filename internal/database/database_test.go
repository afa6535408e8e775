package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/schooldesk/internal/entities"
)

func TestNewDatabase_Migrates(t *testing.T) {
	db, err := NewQuietDatabase(filepath.Join(t.TempDir(), "schooldesk.db"))
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, db.DB.Migrator().HasTable(&entities.StorageEntry{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.RefreshEvent{}))
	assert.NoError(t, db.Ping())
}
