package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/schooldesk/internal/accounts"
	"github.com/mrlokans/schooldesk/internal/audit"
	"github.com/mrlokans/schooldesk/internal/cache"
	"github.com/mrlokans/schooldesk/internal/capability"
	"github.com/mrlokans/schooldesk/internal/config"
	"github.com/mrlokans/schooldesk/internal/crypto"
	"github.com/mrlokans/schooldesk/internal/database"
	auditrepo "github.com/mrlokans/schooldesk/internal/database/audit"
	"github.com/mrlokans/schooldesk/internal/dispatch"
	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/handles"
	"github.com/mrlokans/schooldesk/internal/ical"
	"github.com/mrlokans/schooldesk/internal/localaccount"
	"github.com/mrlokans/schooldesk/internal/refresh"
	"github.com/mrlokans/schooldesk/internal/scheduler"
	"github.com/mrlokans/schooldesk/internal/services"
	"github.com/mrlokans/schooldesk/internal/settingsstore"
	"github.com/mrlokans/schooldesk/internal/storage"
)

const fixtureAccountID = "0b6c8f3e-7d4a-4c11-9e2f-5a1d3c7b9e01"

var fixtureNow = time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC)

type apiFixture struct {
	router   http.Handler
	registry *accounts.Registry
	stores   *cache.Set
	history  *audit.Service
	settings *settingsstore.SettingsStore
	cron     *scheduler.RefreshScheduler
}

// newAPIFixture builds the full API over a memory backend with one local
// account that is current.
func newAPIFixture(t *testing.T) apiFixture {
	t.Helper()
	f := newAPIFixtureWithoutAccount(t)
	_, err := f.registry.Create(context.Background(), entities.Account{
		LocalID: fixtureAccountID,
		Service: entities.ServiceLocal,
		Name:    "Home",
	})
	require.NoError(t, err)
	require.NoError(t, f.registry.SwitchTo(context.Background(), fixtureAccountID))
	return f
}

func newAPIFixtureWithoutAccount(t *testing.T) apiFixture {
	t.Helper()
	key, err := crypto.GenerateKeyBytes()
	require.NoError(t, err)
	sealer, err := crypto.NewSealer(key)
	require.NoError(t, err)

	db, err := database.NewQuietDatabase(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	history := audit.NewService(auditrepo.NewRepository(db.DB))

	clock := func() time.Time { return fixtureNow }
	backend := storage.NewMemory()
	stores := cache.NewSet(backend)
	adapters := services.NewRegistry(localaccount.NewAdapter())
	gate := capability.NewGate()

	registry := accounts.NewRegistry(accounts.Config{
		Backend:  backend,
		Sealer:   sealer,
		Adapters: adapters,
		Stores:   stores,
		Handles:  handles.NewRegistry(),
		Now:      clock,
	})
	dispatcher := dispatch.New(dispatch.Config{
		Gate:     gate,
		Adapters: adapters,
		Stores:   stores,
		Recorder: history,
		Now:      clock,
	})
	refresher := refresh.NewService(refresh.Config{
		Accounts:   registry,
		Dispatcher: dispatcher,
		Importer:   ical.NewImporter(ical.NewFetcher(), stores.Timetable),
		Now:        clock,
	})

	settings := settingsstore.New(backend, config.Refresh{Enabled: false, Schedule: "*/30 * * * *"})
	cron := scheduler.NewRefreshScheduler(refresher, settings.GetRefreshConfig(context.Background()))
	t.Cleanup(cron.Stop)

	router := NewRouter(RouterConfig{
		Database:  db,
		Accounts:  registry,
		Gate:      gate,
		Stores:    stores,
		Refresher: refresher,
		History:   history,
		Settings:  settings,
		Scheduler: cron,
		Version:   "test",
	})
	return apiFixture{
		router:   router,
		registry: registry,
		stores:   stores,
		history:  history,
		settings: settings,
		cron:     cron,
	}
}

func (f apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, path, &payload)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestAPI_ListAccounts(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/accounts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Accounts []AccountView `json:"accounts"`
	}](t, w)
	require.Len(t, body.Accounts, 1)
	account := body.Accounts[0]
	assert.Equal(t, fixtureAccountID, account.LocalID)
	assert.Equal(t, entities.ServiceLocal, account.Service)
	assert.True(t, account.Current)
	assert.True(t, account.Connected)
	assert.ElementsMatch(t, []entities.Domain{entities.DomainHomework, entities.DomainTimetable}, account.Domains)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAPI_SwitchAccount(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/accounts/"+fixtureAccountID+"/switch", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, fixtureAccountID, f.settings.CurrentAccount(context.Background()))

	w = f.do(t, http.MethodPost, "/api/accounts/0b6c8f3e-7d4a-4c11-9e2f-5a1d3c7b9eff/switch", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "account_not_found", decode[ErrorResponse](t, w).Code)
}

func TestAPI_NoCurrentAccount(t *testing.T) {
	f := newAPIFixtureWithoutAccount(t)

	w := f.do(t, http.MethodGet, "/api/news", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "no_current_account", decode[ErrorResponse](t, w).Code)

	w = f.do(t, http.MethodPost, "/api/refresh/homework", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAPI_HomeworkNotCachedUntilRefreshed(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/homework/current", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_cached", decode[ErrorResponse](t, w).Code)

	w = f.do(t, http.MethodPost, "/api/refresh/homework", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(dispatch.Updated))

	w = f.do(t, http.MethodGet, "/api/homework/current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Week     int                 `json:"week"`
		Homework []entities.Homework `json:"homework"`
	}](t, w)
	assert.Equal(t, 25, body.Week)
	assert.NotNil(t, body.Homework)
	assert.Empty(t, body.Homework)
}

func TestAPI_RefreshExplicitWeek(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/refresh/timetable?week=4", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, ok := f.stores.Timetable.Classes(4)
	assert.True(t, ok)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/timetable/4", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/timetable/current", nil).Code)

	w = f.do(t, http.MethodPost, "/api/refresh/timetable?week=soon", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_RefreshAll(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/refresh/all", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Data struct {
			Outcomes map[entities.Domain]dispatch.Outcome `json:"outcomes"`
			Failed   []entities.Domain                    `json:"failed"`
		} `json:"data"`
	}](t, w)
	assert.Equal(t, dispatch.Updated, body.Data.Outcomes[entities.DomainHomework])
	assert.Equal(t, dispatch.Skipped, body.Data.Outcomes[entities.DomainGrades])
	assert.Empty(t, body.Data.Failed)
}

func TestAPI_RefreshUnknownDomain(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/refresh/report-cards", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown_domain", decode[ErrorResponse](t, w).Code)
}

func TestAPI_ImportCalendars(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/calendars/import", ImportCalendarsRequest{URLs: []string{"not a url"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/calendars/import", nil)
	require.Equal(t, http.StatusOK, w.Code, "no subscriptions is an empty import")
	body := decode[struct {
		Data []ImportResultView `json:"data"`
	}](t, w)
	assert.Empty(t, body.Data)
}

func TestAPI_RefreshEvents(t *testing.T) {
	f := newAPIFixture(t)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/refresh/homework", nil).Code)
	f.history.Flush()

	w := f.do(t, http.MethodGet, "/api/refresh-events?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Data  []entities.RefreshEvent `json:"data"`
		Total int64                   `json:"total"`
		Limit int                     `json:"limit"`
	}](t, w)
	assert.Equal(t, 10, body.Limit)
	require.NotEmpty(t, body.Data)
	assert.Equal(t, int64(len(body.Data)), body.Total)
	for _, event := range body.Data {
		assert.Equal(t, fixtureAccountID, event.AccountLocalID)
		assert.Equal(t, entities.DomainHomework, event.Domain)
	}

	w = f.do(t, http.MethodGet, "/api/refresh-events?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_SecurityHeaders(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestAPI_RefreshSettings(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/settings/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[RefreshSettingsResponse](t, w)
	assert.False(t, got.Enabled)
	assert.Equal(t, settingsstore.SourceConfig, got.ScheduleSource)
	assert.False(t, got.Running)

	enabled, schedule := true, "0 7 * * 1-5"
	w = f.do(t, http.MethodPut, "/api/settings/refresh", UpdateRefreshSettingsRequest{Enabled: &enabled, Schedule: &schedule})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.cron.IsRunning())
	next := f.cron.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 7, next.Hour())

	bad := "every morning please"
	w = f.do(t, http.MethodPut, "/api/settings/refresh", UpdateRefreshSettingsRequest{Schedule: &bad})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_schedule", decode[ErrorResponse](t, w).Code)

	w = f.do(t, http.MethodDelete, "/api/settings/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, f.cron.IsRunning())
	assert.Equal(t, "*/30 * * * *", f.settings.GetRefreshSchedule(context.Background()))
}

func TestAPI_ToggleHomework(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	ticket := f.stores.Homework.Begin(cache.WeekKey(25))
	require.NoError(t, f.stores.Homework.UpdateHomework(ctx, ticket, 25, []entities.Homework{{ID: "hw-1", Subject: "History"}}))

	w := f.do(t, http.MethodPut, "/api/homework/current/hw-1/done", ToggleHomeworkRequest{Done: ptr(true)})
	require.Equal(t, http.StatusOK, w.Code)

	homework, ok := f.stores.Homework.Homework(25)
	require.True(t, ok)
	assert.True(t, homework[0].Done)

	w = f.do(t, http.MethodPut, "/api/homework/25/hw-1/done", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "done is required")
}

func TestAPI_ChatsUnsupportedForLocalAccounts(t *testing.T) {
	f := newAPIFixture(t)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/chats", nil).Code)

	w := f.do(t, http.MethodPost, "/api/chats/chat-1/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(dispatch.Skipped))

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/chats/chat-1/messages", nil).Code)
}

func TestAPI_SelectGradesPeriodUnknown(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPut, "/api/periods/grades", SelectPeriodRequest{Period: "Trimestre 1"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPut, "/api/periods/grades", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_UpdateCurrentAccount(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPatch, "/api/accounts/current", UpdateAccountRequest{Name: ptr("Kids")})
	require.Equal(t, http.StatusOK, w.Code)

	current, ok := f.registry.Current()
	require.True(t, ok)
	assert.Equal(t, "Kids", current.Name)
}

func TestAPI_ForgetCalendar(t *testing.T) {
	f := newAPIFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodDelete, "/api/calendars", nil).Code)
	w := f.do(t, http.MethodDelete, "/api/calendars?url=https://calendar.example.test/club.ics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_LogoutAndRemove(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()
	require.NoError(t, f.settings.SetCurrentAccount(ctx, fixtureAccountID))

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/accounts/logout", nil).Code)
	_, ok := f.registry.Current()
	assert.False(t, ok)
	assert.Empty(t, f.settings.CurrentAccount(ctx))
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/accounts/logout", nil).Code)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, "/api/accounts/"+fixtureAccountID, nil).Code)
	assert.Empty(t, f.registry.Accounts())
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/api/accounts/"+fixtureAccountID, nil).Code)
}

func ptr[T any](v T) *T {
	return &v
}
