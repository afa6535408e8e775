package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8189), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, StorageSQLite, cfg.Storage.Backend)
	assert.True(t, cfg.Refresh.Enabled)
	assert.Equal(t, DefaultRefreshSchedule, cfg.Refresh.Schedule)
	assert.Equal(t, 2, cfg.Tasks.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Tasks.ReleaseAfter)
	assert.Equal(t, time.September, cfg.SchoolYear.DefaultStartMonth)
	assert.Equal(t, 30, cfg.Audit.RetentionDays)
	require.NoError(t, cfg.Validate())
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REFRESH_SCHEDULE", "0 7 * * 1-5")
	t.Setenv("SCHOOL_YEAR_START_MONTH", "8")
	t.Setenv("TASK_RELEASE_AFTER", "5m")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.Equal(t, "cache:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, "0 7 * * 1-5", cfg.Refresh.Schedule)
	assert.Equal(t, time.August, cfg.SchoolYear.DefaultStartMonth)
	assert.Equal(t, 5*time.Minute, cfg.Tasks.ReleaseAfter)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "etcd" }},
		{"redis without address", func(c *Config) { c.Storage.Backend = StorageRedis; c.Storage.RedisAddr = "" }},
		{"month out of range", func(c *Config) { c.SchoolYear.DefaultStartMonth = 13 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
