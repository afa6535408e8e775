package ical

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/schooldesk/internal/cache"
	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/schoolyear"
	"github.com/mrlokans/schooldesk/internal/storage"
)

var yearStart = time.Date(2023, 9, 4, 0, 0, 0, 0, time.UTC)

type feedEvent struct {
	uid     string
	summary string
	start   time.Time
}

func feed(events ...feedEvent) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	for _, e := range events {
		event := cal.AddEvent(e.uid)
		event.SetStartAt(e.start)
		event.SetEndAt(e.start.Add(time.Hour))
		event.SetSummary(e.summary)
		event.SetLocation("Salle 12")
	}
	return cal.Serialize()
}

// feedServer serves whatever body currently holds.
func feedServer(t *testing.T, body *atomic.Value) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(body.Load().(string)))
	}))
	t.Cleanup(server.Close)
	return server
}

func testFetcher(client *http.Client) *Fetcher {
	return &Fetcher{httpClient: client, initialDelay: time.Millisecond}
}

func boundTimetable(t *testing.T, accountID string) *cache.TimetableStore {
	t.Helper()
	store := cache.NewTimetableStore(storage.NewMemory())
	require.NoError(t, store.Bind(context.Background(), accountID))
	return store
}

func localAccount() entities.Account {
	return entities.Account{LocalID: "local-1", Service: entities.ServiceLocal, SchoolYearStart: yearStart}
}

func TestImporter_ImportIsAdditive(t *testing.T) {
	monday := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	week := schoolyear.WeekNumber(yearStart, monday)

	var body atomic.Value
	body.Store(feed(
		feedEvent{uid: "e1", summary: "Piano", start: monday.Add(9 * time.Hour)},
		feedEvent{uid: "e2", summary: "Piano", start: monday.Add(7 * 24 * time.Hour)},
	))
	server := feedServer(t, &body)

	store := boundTimetable(t, "local-1")
	provider := []entities.TimetableClass{{ID: "p1", Type: entities.ClassLesson, Subject: "Maths", Start: monday}}
	require.NoError(t, store.UpdateClasses(context.Background(), cache.Direct, week, provider))

	importer := NewImporter(testFetcher(server.Client()), store)
	results, err := importer.Import(context.Background(), localAccount(), []string{server.URL})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].Events)
	assert.Equal(t, []int{week, week + 1}, results[0].Weeks)

	classes, ok := store.Classes(week)
	require.True(t, ok)
	require.Len(t, classes, 2)
	assert.Equal(t, "p1", classes[0].ID)
	assert.Equal(t, "e1", classes[1].ID)
	assert.Equal(t, entities.ICalSource(server.URL), classes[1].Source)
	assert.Equal(t, "Salle 12", classes[1].Room)

	// A provider refresh of the week keeps the imported class.
	require.NoError(t, store.UpdateClasses(context.Background(), cache.Direct, week, nil))
	classes, _ = store.Classes(week)
	require.Len(t, classes, 1)
	assert.Equal(t, "e1", classes[0].ID)
}

func TestImporter_ReimportDropsRemovedEvents(t *testing.T) {
	monday := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	week := schoolyear.WeekNumber(yearStart, monday)

	var body atomic.Value
	body.Store(feed(
		feedEvent{uid: "e1", summary: "Judo", start: monday},
		feedEvent{uid: "e2", summary: "Judo", start: monday.Add(7 * 24 * time.Hour)},
	))
	server := feedServer(t, &body)
	store := boundTimetable(t, "local-1")
	importer := NewImporter(testFetcher(server.Client()), store)

	_, err := importer.Import(context.Background(), localAccount(), []string{server.URL})
	require.NoError(t, err)

	body.Store(feed(feedEvent{uid: "e1", summary: "Judo", start: monday}))
	_, err = importer.Import(context.Background(), localAccount(), []string{server.URL})
	require.NoError(t, err)

	classes, _ := store.Classes(week + 1)
	assert.Empty(t, classes)
	classes, _ = store.Classes(week)
	assert.Len(t, classes, 1)
}

func TestImporter_FailingFeedDoesNotStopOthers(t *testing.T) {
	var body atomic.Value
	body.Store(feed(feedEvent{uid: "e1", summary: "Chorale", start: time.Date(2023, 10, 2, 17, 0, 0, 0, time.UTC)}))
	good := feedServer(t, &body)
	missing := httptest.NewServer(http.NotFoundHandler())
	defer missing.Close()

	store := boundTimetable(t, "local-1")
	importer := NewImporter(testFetcher(http.DefaultClient), store)

	results, err := importer.Import(context.Background(), localAccount(), []string{missing.URL, good.URL})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, ErrFeedNotFound)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 1, results[1].Events)
}

func TestImporter_RequiresBoundStore(t *testing.T) {
	store := boundTimetable(t, "someone-else")
	importer := NewImporter(testFetcher(http.DefaultClient), store)

	_, err := importer.Import(context.Background(), localAccount(), []string{"http://127.0.0.1:1/feed.ics"})
	assert.ErrorIs(t, err, ErrStoreNotBound)
}

func TestImporter_Forget(t *testing.T) {
	start := time.Date(2023, 10, 2, 17, 0, 0, 0, time.UTC)
	week := schoolyear.WeekNumber(yearStart, start)

	var body atomic.Value
	body.Store(feed(feedEvent{uid: "e1", summary: "Chorale", start: start}))
	server := feedServer(t, &body)
	store := boundTimetable(t, "local-1")
	importer := NewImporter(testFetcher(server.Client()), store)

	_, err := importer.Import(context.Background(), localAccount(), []string{server.URL})
	require.NoError(t, err)
	require.NoError(t, importer.Forget(context.Background(), server.URL))

	_, ok := store.Classes(week)
	assert.False(t, ok)
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(feed()))
	}))
	defer server.Close()

	cal, err := testFetcher(server.Client()).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Empty(t, cal.Events())
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetcher_GivesUp(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testFetcher(server.Client()).Fetch(context.Background(), server.URL)
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusBadGateway, serverErr.StatusCode)
	assert.Equal(t, int32(maxRetries), hits.Load())
}

func TestRetryDelay(t *testing.T) {
	f := NewFetcher()
	assert.Equal(t, 2*time.Second, f.retryDelay(1))
	assert.Equal(t, 4*time.Second, f.retryDelay(2))
	assert.Equal(t, maxRetryDelay, f.retryDelay(10))
}

func TestSubscriptions(t *testing.T) {
	account := entities.Account{Personalization: entities.Personalization{
		Extra: map[string]string{SubscriptionsKey: "https://a.example/x.ics\n https://b.example/y.ics"},
	}}
	assert.Equal(t, []string{"https://a.example/x.ics", "https://b.example/y.ics"}, Subscriptions(account))
	assert.Empty(t, Subscriptions(entities.Account{}))
}
