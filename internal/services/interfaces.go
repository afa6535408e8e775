// Package services defines the contract every school-service adapter
// implements and the helpers shared between adapters.
//
// # Flow
//
//	Dispatcher → Registry.Lookup(service) → Adapter.FetchX → provider client
//	          ← decoded entities ←────────── pure decoder ←─┘
//
// Adapters perform all network I/O through an injected client and return
// freshly decoded entities. They never write to cache stores; errors from the
// provider client are returned as-is so the dispatcher can log them with
// domain and service context.
package services

import (
	"context"
	"time"

	"github.com/mrlokans/schooldesk/internal/entities"
)

// Adapter translates one provider's API into the shared domain model.
//
// Implementations:
//   - pronote.Adapter
//   - ecoledirecte.Adapter
//   - skolengo.Adapter
//   - uphf.Adapter
//   - ard.Adapter
//   - turboself.Adapter
//   - localaccount.Adapter
//
// Domains a provider does not serve return ErrCapabilityUnsupported; embed
// Unsupported to get those defaults.
type Adapter interface {
	Service() entities.Service

	// Reload re-establishes a live session from the stored authentication.
	Reload(ctx context.Context, account entities.Account) (ReloadResult, error)

	FetchPeriods(ctx context.Context, account entities.Account) (PeriodsResult, error)
	FetchGrades(ctx context.Context, account entities.Account, periodName string) (GradesResult, error)
	FetchHomeworkForWeek(ctx context.Context, account entities.Account, week int) ([]entities.Homework, error)
	FetchTimetableForWeek(ctx context.Context, account entities.Account, week int) ([]entities.TimetableClass, error)
	FetchAttendance(ctx context.Context, account entities.Account, periodName string) (entities.Attendance, error)
	FetchChats(ctx context.Context, account entities.Account) ([]entities.Chat, error)
	FetchChatMessages(ctx context.Context, account entities.Account, chat entities.Chat) ([]entities.ChatMessage, error)
	FetchNews(ctx context.Context, account entities.Account) ([]entities.Information, error)
	FetchCanteen(ctx context.Context, account entities.Account) ([]entities.CanteenBalance, error)
	ToggleHomeworkDone(ctx context.Context, account entities.Account, homeworkID string, done bool) error

	// Logout releases provider-side resources held by the live session.
	Logout(ctx context.Context, account entities.Account) error
}

// TabProber is implemented by adapters whose supported domains vary per
// account and must be probed once at account creation.
type TabProber interface {
	PermissionChecks(account entities.Account) ([]PermissionCheck, error)
}

// PermissionCheck is one probe call. A nil error means the domain is served.
type PermissionCheck struct {
	Domain entities.Domain
	Check  func(ctx context.Context) error
}

// ReloadResult is the outcome of re-authenticating an account.
type ReloadResult struct {
	Instance any
	// Authentication is the refreshed credential bag; nil keeps the stored one.
	Authentication map[string]string
	// SchoolYearStart is set when the provider exposes it; zero otherwise.
	SchoolYearStart time.Time
}

type PeriodsResult struct {
	Periods           []entities.Period
	DefaultPeriodName string
}

type GradesResult struct {
	Grades   []entities.Grade
	Averages entities.AverageOverview
}
