package http

import (
	"github.com/mrlokans/schooldesk/internal/accounts"
	"github.com/mrlokans/schooldesk/internal/audit"
	"github.com/mrlokans/schooldesk/internal/cache"
	"github.com/mrlokans/schooldesk/internal/capability"
	"github.com/mrlokans/schooldesk/internal/database"
	"github.com/mrlokans/schooldesk/internal/refresh"
	"github.com/mrlokans/schooldesk/internal/scheduler"
	"github.com/mrlokans/schooldesk/internal/settingsstore"
	"github.com/mrlokans/schooldesk/internal/tasks"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
type RouterConfig struct {
	Database  *database.Database
	Accounts  *accounts.Registry
	Gate      *capability.Gate
	Stores    *cache.Set
	Refresher *refresh.Service
	History   *audit.Service
	Settings  *settingsstore.SettingsStore

	// Scheduler is optional. Without it refresh settings are stored but only
	// take effect on restart.
	Scheduler *scheduler.RefreshScheduler

	// TaskClient is optional. Without it refreshes run inside the request.
	TaskClient *tasks.Client

	Version string
}
