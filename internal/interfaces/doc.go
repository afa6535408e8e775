// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Provider Interfaces
//
//   - Adapter: one school service behind a uniform contract (internal/services/interfaces.go)
//   - TabProber: per-account capability probe (internal/services/interfaces.go)
//   - Connector: the opaque provider SDK login, one per provider package
//
// ## Storage Interfaces
//
//   - Backend: string key-value persistence (internal/storage/backend.go)
//   - Bindable: a cache store bound to one account at a time (internal/cache/set.go)
//
// ## Refresh Interfaces
//
//   - Recorder: refresh event log (internal/dispatch/dispatcher.go)
//   - PayloadDumper: upstream values a decoder refused (internal/dispatch/dispatcher.go)
//   - Refresher: what background tasks call (internal/tasks/refresh_domain.go)
//   - Runner: what the cron scheduler calls (internal/scheduler/refresh.go)
//   - Source: calendar feed fetcher (internal/ical/importer.go)
//
// # Adding a New School Service
//
//  1. Add the service tag to internal/entities/service.go and its domains to
//     the capability table in internal/capability/gate.go.
//
//  2. Create a package with a Connector, raw payload types, pure decoders and
//     an Adapter:
//
//     type Adapter struct {
//         services.Unsupported
//         connector Connector
//     }
//
//     func (a *Adapter) Reload(ctx context.Context, account entities.Account) (services.ReloadResult, error)
//     func (a *Adapter) FetchTimetableForWeek(ctx context.Context, account entities.Account, week int) ([]entities.TimetableClass, error)
//
//     var _ services.Adapter = (*Adapter)(nil)
//
//  3. Register it in entrypoint.NewApp and add its connector to
//     entrypoint.Connectors.
//
// # Adding a New Storage Backend
//
// Implement Backend (Get, Set, Remove) and select it in
// entrypoint.openBackend:
//
//	var _ storage.Backend = (*MyBackend)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
