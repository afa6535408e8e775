package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/schooldesk/internal/audit"
	"github.com/mrlokans/schooldesk/internal/cache"
	"github.com/mrlokans/schooldesk/internal/capability"
	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
	"github.com/mrlokans/schooldesk/internal/storage"
)

type fakeAdapter struct {
	services.Unsupported

	service  entities.Service
	periods  services.PeriodsResult
	grades   services.GradesResult
	homework []entities.Homework
	classes  []entities.TimetableClass
	balances []entities.CanteenBalance
	err      error
	onFetch  func()

	mu      sync.Mutex
	calls   map[string]int
	toggled map[string]bool
}

func (f *fakeAdapter) called(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
	if f.onFetch != nil {
		f.onFetch()
	}
}

func (f *fakeAdapter) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAdapter) Service() entities.Service { return f.service }

func (f *fakeAdapter) Reload(context.Context, entities.Account) (services.ReloadResult, error) {
	return services.ReloadResult{}, nil
}

func (f *fakeAdapter) FetchPeriods(context.Context, entities.Account) (services.PeriodsResult, error) {
	f.called("periods")
	return f.periods, f.err
}

func (f *fakeAdapter) FetchGrades(context.Context, entities.Account, string) (services.GradesResult, error) {
	f.called("grades")
	return f.grades, f.err
}

func (f *fakeAdapter) FetchAttendance(context.Context, entities.Account, string) (entities.Attendance, error) {
	f.called("attendance")
	return entities.Attendance{}, f.err
}

func (f *fakeAdapter) FetchHomeworkForWeek(context.Context, entities.Account, int) ([]entities.Homework, error) {
	f.called("homework")
	return f.homework, f.err
}

func (f *fakeAdapter) FetchTimetableForWeek(context.Context, entities.Account, int) ([]entities.TimetableClass, error) {
	f.called("timetable")
	return f.classes, f.err
}

func (f *fakeAdapter) FetchNews(context.Context, entities.Account) ([]entities.Information, error) {
	f.called("news")
	return nil, f.err
}

func (f *fakeAdapter) FetchChats(context.Context, entities.Account) ([]entities.Chat, error) {
	f.called("chats")
	return nil, f.err
}

func (f *fakeAdapter) FetchCanteen(context.Context, entities.Account) ([]entities.CanteenBalance, error) {
	f.called("canteen")
	return f.balances, f.err
}

func (f *fakeAdapter) ToggleHomeworkDone(_ context.Context, _ entities.Account, id string, done bool) error {
	f.called("toggle")
	if f.toggled == nil {
		f.toggled = make(map[string]bool)
	}
	f.toggled[id] = done
	return f.err
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []entities.RefreshEvent
}

func (r *fakeRecorder) Record(event entities.RefreshEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *fakeRecorder) last() entities.RefreshEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type fakeDumper struct {
	dumps []audit.PayloadDump
}

func (f *fakeDumper) DumpPayload(dump audit.PayloadDump) {
	f.dumps = append(f.dumps, dump)
}

type fixture struct {
	dispatcher *Dispatcher
	stores     *cache.Set
	recorder   *fakeRecorder
	dumper     *fakeDumper
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func trimesters() []entities.Period {
	return []entities.Period{
		{Name: "T1", Start: date(2024, 1, 1), End: date(2024, 3, 31)},
		{Name: "T2", Start: date(2024, 4, 1), End: date(2024, 6, 30)},
	}
}

func newFixture(t *testing.T, bindTo string, adapters ...services.Adapter) fixture {
	t.Helper()
	stores := cache.NewSet(storage.NewMemory())
	if bindTo != "" {
		for _, s := range stores.All() {
			require.NoError(t, s.Bind(context.Background(), bindTo))
		}
	}
	f := fixture{stores: stores, recorder: &fakeRecorder{}, dumper: &fakeDumper{}}
	f.dispatcher = New(Config{
		Gate:     capability.NewGate(),
		Adapters: services.NewRegistry(adapters...),
		Stores:   stores,
		Recorder: f.recorder,
		Dumper:   f.dumper,
		Now:      func() time.Time { return date(2024, 2, 15) },
	})
	return f
}

func pronoteAccount() entities.Account {
	return entities.Account{LocalID: "acc-1", Service: entities.ServicePronote}
}

func TestSelectDefaultPeriod(t *testing.T) {
	assert.Equal(t, "T1", SelectDefaultPeriod(trimesters(), date(2024, 2, 15)))
	assert.Equal(t, "T1", SelectDefaultPeriod(trimesters(), date(2024, 8, 1)))
	assert.Equal(t, "", SelectDefaultPeriod(nil, date(2024, 8, 1)))
}

func TestDispatcher_GatingShortCircuits(t *testing.T) {
	adapter := &fakeAdapter{service: entities.ServiceUPHF}
	f := newFixture(t, "uphf-1", adapter)
	account := entities.Account{LocalID: "uphf-1", Service: entities.ServiceUPHF}

	outcome := f.dispatcher.UpdateAttendance(context.Background(), account, "S1")

	assert.Equal(t, Skipped, outcome)
	assert.Equal(t, 0, adapter.count("attendance"))
	_, ok := f.stores.Attendance.Attendance("S1")
	assert.False(t, ok)
	assert.Equal(t, entities.RefreshStatusSkipped, f.recorder.last().Status)
}

func TestDispatcher_PeriodsThenGrades(t *testing.T) {
	adapter := &fakeAdapter{
		service: entities.ServicePronote,
		periods: services.PeriodsResult{Periods: trimesters()},
		grades: services.GradesResult{
			Grades: []entities.Grade{{ID: "g1", SubjectName: "Maths", Student: entities.Graded(15)}},
		},
	}
	f := newFixture(t, "acc-1", adapter)

	require.Equal(t, Updated, f.dispatcher.UpdatePeriods(context.Background(), pronoteAccount()))
	assert.Equal(t, "T1", f.stores.Grades.PeriodList().Current())
	assert.Equal(t, "T1", f.stores.Attendance.PeriodList().Default)

	_, ok := f.stores.Grades.Grades("T1")
	assert.False(t, ok, "periods alone never create a grades key")

	require.Equal(t, Updated, f.dispatcher.UpdateGradesAndAverages(context.Background(), pronoteAccount(), ""))
	grades, ok := f.stores.Grades.Grades("T1")
	require.True(t, ok)
	assert.Len(t, grades, 1)

	event := f.recorder.last()
	assert.Equal(t, entities.DomainGrades, event.Domain)
	assert.Equal(t, "period:T1", event.Key)
	assert.Equal(t, entities.RefreshStatusUpdated, event.Status)
}

func TestDispatcher_FailureKeepsPreviousValue(t *testing.T) {
	adapter := &fakeAdapter{
		service: entities.ServicePronote,
		grades:  services.GradesResult{Grades: []entities.Grade{{ID: "g1"}}},
	}
	f := newFixture(t, "acc-1", adapter)
	require.Equal(t, Updated, f.dispatcher.UpdateGradesAndAverages(context.Background(), pronoteAccount(), "T1"))

	adapter.err = errors.New("pronote: 502 bad gateway")
	adapter.grades = services.GradesResult{}

	assert.Equal(t, Failed, f.dispatcher.UpdateGradesAndAverages(context.Background(), pronoteAccount(), "T1"))
	grades, ok := f.stores.Grades.Grades("T1")
	require.True(t, ok)
	assert.Len(t, grades, 1)

	event := f.recorder.last()
	assert.Equal(t, entities.RefreshStatusFailed, event.Status)
	assert.Contains(t, event.ErrorMsg, "502")
	assert.Empty(t, f.dumper.dumps)
}

func TestDispatcher_DecodeErrorDumpsPayload(t *testing.T) {
	adapter := &fakeAdapter{
		service: entities.ServicePronote,
		err:     &services.DecodeError{Service: entities.ServicePronote, Field: "kind", Value: "excursion"},
	}
	f := newFixture(t, "acc-1", adapter)

	assert.Equal(t, Failed, f.dispatcher.UpdateTimetableForWeek(context.Background(), pronoteAccount(), 3))
	require.Len(t, f.dumper.dumps, 1)
	assert.Equal(t, entities.DomainTimetable, f.dumper.dumps[0].Domain)
	assert.Equal(t, "excursion", f.dumper.dumps[0].Value)
}

func TestDispatcher_StaleCommitIsSuperseded(t *testing.T) {
	adapter := &fakeAdapter{
		service:  entities.ServicePronote,
		homework: []entities.Homework{{ID: "old"}},
	}
	f := newFixture(t, "acc-1", adapter)

	// A newer dispatch for the same week completes while this one is in flight.
	adapter.onFetch = func() {
		ticket := f.stores.Homework.Begin(cache.WeekKey(5))
		require.NoError(t, f.stores.Homework.UpdateHomework(context.Background(), ticket, 5, []entities.Homework{{ID: "new"}}))
	}

	assert.Equal(t, Superseded, f.dispatcher.UpdateHomeworkForWeek(context.Background(), pronoteAccount(), 5))
	homework, ok := f.stores.Homework.Homework(5)
	require.True(t, ok)
	require.Len(t, homework, 1)
	assert.Equal(t, "new", homework[0].ID)
	assert.Equal(t, entities.RefreshStatusSuperseded, f.recorder.last().Status)
}

func TestDispatcher_StoresBoundElsewhere(t *testing.T) {
	adapter := &fakeAdapter{service: entities.ServicePronote}

	f := newFixture(t, "", adapter)
	assert.Equal(t, Failed, f.dispatcher.UpdateNews(context.Background(), pronoteAccount()))

	f = newFixture(t, "acc-2", adapter)
	assert.Equal(t, Superseded, f.dispatcher.UpdateNews(context.Background(), pronoteAccount()))

	assert.Equal(t, 0, adapter.count("news"))
}

func TestDispatcher_UnregisteredService(t *testing.T) {
	f := newFixture(t, "acc-1")
	assert.Equal(t, Failed, f.dispatcher.UpdateNews(context.Background(), pronoteAccount()))
	assert.Contains(t, f.recorder.last().ErrorMsg, services.ErrServiceNotImplemented.Error())
}

func TestDispatcher_ToggleHomeworkDone(t *testing.T) {
	adapter := &fakeAdapter{
		service:  entities.ServicePronote,
		homework: []entities.Homework{{ID: "h1"}, {ID: "h2"}},
	}
	f := newFixture(t, "acc-1", adapter)
	require.Equal(t, Updated, f.dispatcher.UpdateHomeworkForWeek(context.Background(), pronoteAccount(), 2))

	require.Equal(t, Updated, f.dispatcher.ToggleHomeworkDone(context.Background(), pronoteAccount(), 2, "h2", true))
	assert.True(t, adapter.toggled["h2"])

	homework, _ := f.stores.Homework.Homework(2)
	assert.False(t, homework[0].Done)
	assert.True(t, homework[1].Done)
}

func TestDispatcher_UpdateCanteenIncludesLinkedAccounts(t *testing.T) {
	school := &fakeAdapter{service: entities.ServicePronote}
	canteen := &fakeAdapter{
		service:  entities.ServiceTurboself,
		balances: []entities.CanteenBalance{{AccountLocalID: "ts-1", Label: "Turboself", Amount: 7.5}},
	}
	f := newFixture(t, "acc-1", school, canteen)
	linked := entities.Account{LocalID: "ts-1", Service: entities.ServiceTurboself}

	outcome := f.dispatcher.UpdateCanteen(context.Background(), pronoteAccount(), []entities.Account{linked})

	assert.Equal(t, Updated, outcome)
	assert.Equal(t, 0, school.count("canteen"))
	balances, ok := f.stores.Canteen.Balances("ts-1")
	require.True(t, ok)
	assert.InDelta(t, 7.5, balances[0].Amount, 0.001)
	_, ok = f.stores.Canteen.Balances("acc-1")
	assert.False(t, ok)
}

func TestDispatcher_RefreshAll(t *testing.T) {
	adapter := &fakeAdapter{
		service: entities.ServicePronote,
		periods: services.PeriodsResult{Periods: trimesters(), DefaultPeriodName: "T2"},
		classes: []entities.TimetableClass{{ID: "c1", Type: entities.ClassLesson}},
	}
	f := newFixture(t, "acc-1", adapter)

	report := f.dispatcher.RefreshAll(context.Background(), pronoteAccount(), nil, 4)

	assert.Equal(t, Updated, report[entities.DomainGrades])
	assert.Equal(t, Updated, report[entities.DomainTimetable])
	assert.Equal(t, Skipped, report[entities.DomainCanteen])
	assert.Empty(t, report.FailedDomains())

	_, ok := f.stores.Grades.Grades("T2")
	assert.True(t, ok, "grades follow the provider default period")
	classes, ok := f.stores.Timetable.Classes(4)
	require.True(t, ok)
	assert.Len(t, classes, 1)
}

func TestCombine(t *testing.T) {
	assert.Equal(t, Skipped, combine(nil))
	assert.Equal(t, Updated, combine([]Outcome{Skipped, Updated}))
	assert.Equal(t, Failed, combine([]Outcome{Updated, Failed, Superseded}))
}
