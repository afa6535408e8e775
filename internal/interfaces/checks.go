package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/schooldesk/internal/accounts"
	"github.com/mrlokans/schooldesk/internal/ard"
	"github.com/mrlokans/schooldesk/internal/audit"
	"github.com/mrlokans/schooldesk/internal/cache"
	"github.com/mrlokans/schooldesk/internal/database/entries"
	"github.com/mrlokans/schooldesk/internal/dispatch"
	"github.com/mrlokans/schooldesk/internal/ecoledirecte"
	"github.com/mrlokans/schooldesk/internal/ical"
	"github.com/mrlokans/schooldesk/internal/localaccount"
	"github.com/mrlokans/schooldesk/internal/pronote"
	"github.com/mrlokans/schooldesk/internal/refresh"
	"github.com/mrlokans/schooldesk/internal/scheduler"
	"github.com/mrlokans/schooldesk/internal/services"
	"github.com/mrlokans/schooldesk/internal/skolengo"
	"github.com/mrlokans/schooldesk/internal/storage"
	"github.com/mrlokans/schooldesk/internal/storage/redis"
	"github.com/mrlokans/schooldesk/internal/tasks"
	"github.com/mrlokans/schooldesk/internal/turboself"
	"github.com/mrlokans/schooldesk/internal/uphf"
)

// =============================================================================
// Service Adapters
// =============================================================================

var _ services.Adapter = (*pronote.Adapter)(nil)
var _ services.Adapter = (*ecoledirecte.Adapter)(nil)
var _ services.Adapter = (*skolengo.Adapter)(nil)
var _ services.Adapter = (*uphf.Adapter)(nil)
var _ services.Adapter = (*ard.Adapter)(nil)
var _ services.Adapter = (*turboself.Adapter)(nil)
var _ services.Adapter = (*localaccount.Adapter)(nil)

// Skolengo tabs vary per school
var _ services.TabProber = (*skolengo.Adapter)(nil)

// =============================================================================
// Storage
// =============================================================================

var _ storage.Backend = (*storage.Memory)(nil)
var _ storage.Backend = (*entries.Repository)(nil)
var _ storage.Backend = (*redis.Backend)(nil)

var _ cache.Bindable = (*cache.GradesStore)(nil)
var _ cache.Bindable = (*cache.AttendanceStore)(nil)
var _ cache.Bindable = (*cache.HomeworkStore)(nil)
var _ cache.Bindable = (*cache.TimetableStore)(nil)
var _ cache.Bindable = (*cache.NewsStore)(nil)
var _ cache.Bindable = (*cache.ChatsStore)(nil)
var _ cache.Bindable = (*cache.CanteenStore)(nil)

// =============================================================================
// Refresh History
// =============================================================================

var _ dispatch.Recorder = (*audit.Service)(nil)
var _ dispatch.PayloadDumper = (*audit.Auditor)(nil)
var _ accounts.Forgetter = (*audit.Service)(nil)
var _ tasks.RefreshEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Refresh Triggers
// =============================================================================

var _ tasks.Refresher = (*refresh.Service)(nil)
var _ scheduler.Runner = (*refresh.Service)(nil)
var _ ical.Source = (*ical.Fetcher)(nil)
