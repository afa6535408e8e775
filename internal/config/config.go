package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// StorageBackend selects where account and cache entries are kept.
type StorageBackend string

const (
	StorageSQLite StorageBackend = "sqlite"
	StorageRedis  StorageBackend = "redis"
	StorageMemory StorageBackend = "memory" // nothing survives a restart
)

type (
	Config struct {
		HTTP
		Database
		Storage
		Refresh
		Tasks
		Security
		SchoolYear
		Audit
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Storage struct {
		Backend   StorageBackend
		RedisAddr string
		RedisDB   int
	}
	Refresh struct {
		Enabled  bool
		Schedule string // Cron format: "*/30 * * * *" = every 30 minutes
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Security struct {
		EncryptionKey string // base64, 32 bytes
		KeyFilePath   string
	}
	SchoolYear struct {
		DefaultStartMonth time.Month
	}
	Audit struct {
		Dir           string // decode failure payload dumps
		RetentionDays int    // Days to keep refresh events (default: 30)
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("storage_backend", string(StorageSQLite))
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)

	v.SetDefault("refresh_enabled", true)
	v.SetDefault("refresh_schedule", DefaultRefreshSchedule)

	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("schooldesk_encryption_key", "")
	v.SetDefault("schooldesk_key_file", DefaultKeyFilePath)

	v.SetDefault("school_year_start_month", int(time.September))

	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_retention_days", 30)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Storage: Storage{
			Backend:   StorageBackend(v.GetString("STORAGE_BACKEND")),
			RedisAddr: v.GetString("REDIS_ADDR"),
			RedisDB:   v.GetInt("REDIS_DB"),
		},
		Refresh: Refresh{
			Enabled:  v.GetBool("REFRESH_ENABLED"),
			Schedule: v.GetString("REFRESH_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Security: Security{
			EncryptionKey: v.GetString("SCHOOLDESK_ENCRYPTION_KEY"),
			KeyFilePath:   v.GetString("SCHOOLDESK_KEY_FILE"),
		},
		SchoolYear: SchoolYear{
			DefaultStartMonth: time.Month(v.GetInt("SCHOOL_YEAR_START_MONTH")),
		},
		Audit: Audit{
			Dir:           v.GetString("AUDIT_DIR"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageSQLite, StorageMemory:
	case StorageRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("STORAGE_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.SchoolYear.DefaultStartMonth < time.January || c.SchoolYear.DefaultStartMonth > time.December {
		return fmt.Errorf("SCHOOL_YEAR_START_MONTH must be between 1 and 12, got %d", c.SchoolYear.DefaultStartMonth)
	}
	return nil
}
