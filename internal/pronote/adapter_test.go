package pronote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/handles"
	"github.com/mrlokans/schooldesk/internal/services"
)

type fakeSession struct {
	periods     []RawPeriod
	firstDate   time.Time
	grades      RawGradesOverview
	homework    []RawHomework
	timetable   []RawTimetableItem
	notebook    RawNotebook
	discussions []RawDiscussion
	messages    []RawMessage
	news        []RawNews
	err         error

	homeworkCalls  int
	homeworkRange  [2]time.Time
	presenceStops  int
	toggled        map[string]bool
	lastDiscussion RawDiscussion
}

func (f *fakeSession) Periods(context.Context) ([]RawPeriod, error) { return f.periods, f.err }
func (f *fakeSession) FirstDate() time.Time                         { return f.firstDate }

func (f *fakeSession) Grades(context.Context, RawPeriod) (RawGradesOverview, error) {
	return f.grades, f.err
}

func (f *fakeSession) Homework(_ context.Context, from, to time.Time) ([]RawHomework, error) {
	f.homeworkCalls++
	f.homeworkRange = [2]time.Time{from, to}
	return f.homework, f.err
}

func (f *fakeSession) SetHomeworkDone(_ context.Context, id string, done bool) error {
	if f.toggled == nil {
		f.toggled = make(map[string]bool)
	}
	f.toggled[id] = done
	return f.err
}

func (f *fakeSession) Timetable(context.Context, time.Time, time.Time) ([]RawTimetableItem, error) {
	return f.timetable, f.err
}

func (f *fakeSession) Notebook(context.Context, RawPeriod) (RawNotebook, error) {
	return f.notebook, f.err
}

func (f *fakeSession) Discussions(context.Context) ([]RawDiscussion, error) {
	return f.discussions, f.err
}

func (f *fakeSession) DiscussionMessages(_ context.Context, d RawDiscussion) ([]RawMessage, error) {
	f.lastDiscussion = d
	return f.messages, f.err
}

func (f *fakeSession) News(context.Context) ([]RawNews, error) { return f.news, f.err }
func (f *fakeSession) StopPresence()                           { f.presenceStops++ }

type fakeConnector struct {
	session *fakeSession
	auth    map[string]string
	err     error
}

func (c fakeConnector) Connect(context.Context, map[string]string) (Session, map[string]string, error) {
	if c.err != nil {
		return nil, nil, c.err
	}
	return c.session, c.auth, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func trimesters() []RawPeriod {
	return []RawPeriod{
		{Name: "T1", Start: date(2024, 1, 1), End: date(2024, 3, 31)},
		{Name: "T2", Start: date(2024, 4, 1), End: date(2024, 6, 30)},
	}
}

func newTestAdapter(session *fakeSession, now time.Time) (*Adapter, entities.Account) {
	a := NewAdapter(fakeConnector{session: session}, handles.NewRegistry())
	a.now = func() time.Time { return now }
	account := entities.Account{
		LocalID:         "acc-1",
		Service:         entities.ServicePronote,
		Instance:        session,
		SchoolYearStart: date(2023, 9, 4),
	}
	return a, account
}

func TestAdapter_RequiresSession(t *testing.T) {
	a := NewAdapter(nil, handles.NewRegistry())
	account := entities.Account{Service: entities.ServicePronote}

	_, err := a.FetchPeriods(context.Background(), account)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = a.FetchGrades(context.Background(), account, "T1")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = a.Reload(context.Background(), account)
	assert.ErrorIs(t, err, services.ErrConnectorMissing)
}

func TestAdapter_Reload(t *testing.T) {
	session := &fakeSession{firstDate: date(2023, 9, 4)}
	a := NewAdapter(fakeConnector{session: session, auth: map[string]string{"token": "next"}}, handles.NewRegistry())

	result, err := a.Reload(context.Background(), entities.Account{Service: entities.ServicePronote})
	require.NoError(t, err)
	assert.Same(t, session, result.Instance)
	assert.Equal(t, "next", result.Authentication["token"])
	assert.Equal(t, date(2023, 9, 4), result.SchoolYearStart)
}

func TestAdapter_DefaultPeriod(t *testing.T) {
	session := &fakeSession{periods: trimesters()}
	a, account := newTestAdapter(session, date(2024, 2, 15))

	result, err := a.FetchPeriods(context.Background(), account)
	require.NoError(t, err)
	assert.Len(t, result.Periods, 2)
	assert.Equal(t, "T1", result.DefaultPeriodName)

	a.now = func() time.Time { return date(2024, 8, 1) }
	result, err = a.FetchPeriods(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, "T1", result.DefaultPeriodName, "falls back to the first period")
}

func TestAdapter_FetchGrades(t *testing.T) {
	average := RawGradeValue{Kind: GradeKindGrade, Points: 12}
	session := &fakeSession{
		periods: trimesters(),
		grades: RawGradesOverview{Grades: []RawGrade{{
			Subject: "Maths",
			Date:    date(2024, 1, 10),
			Value:   RawGradeValue{Kind: GradeKindGrade, Points: 15},
			OutOf:   20,
			Average: &average,
		}}},
	}
	a, account := newTestAdapter(session, date(2024, 2, 15))

	result, err := a.FetchGrades(context.Background(), account, "T1")
	require.NoError(t, err)
	require.Len(t, result.Grades, 1)

	g := result.Grades[0]
	assert.Equal(t, "Maths", g.SubjectName)
	assert.Equal(t, entities.Graded(15), g.Student)
	assert.Equal(t, entities.Graded(20), g.OutOf)
	assert.Equal(t, entities.Graded(12), g.Average)
	assert.Equal(t, entities.Graded(15), result.Averages.Overall)

	_, err = a.FetchGrades(context.Background(), account, "T9")
	assert.ErrorIs(t, err, services.ErrPeriodNotFound)
}

func TestAdapter_HomeworkWeeks(t *testing.T) {
	session := &fakeSession{homework: []RawHomework{{ID: "h1", Subject: "Maths"}}}
	a, account := newTestAdapter(session, date(2024, 2, 15))

	for _, week := range []int{0, 70} {
		list, err := a.FetchHomeworkForWeek(context.Background(), account, week)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	}
	assert.Equal(t, 0, session.homeworkCalls)

	list, err := a.FetchHomeworkForWeek(context.Background(), account, 2)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, date(2023, 9, 11), session.homeworkRange[0])
	assert.Equal(t, date(2023, 9, 18), session.homeworkRange[1])
}

func TestAdapter_UnknownTimetableKind(t *testing.T) {
	session := &fakeSession{timetable: []RawTimetableItem{{Kind: "excursion", ID: "x"}}}
	a, account := newTestAdapter(session, date(2024, 2, 15))

	_, err := a.FetchTimetableForWeek(context.Background(), account, 3)
	assert.ErrorIs(t, err, services.ErrDecodeAmbiguity)

	var decodeErr *services.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "excursion", decodeErr.Value)
}

func TestAdapter_ChatsUseHandles(t *testing.T) {
	session := &fakeSession{
		discussions: []RawDiscussion{{Key: "d1", Subject: "Sortie"}},
		messages:    []RawMessage{{ID: "m1", Content: "Bonjour"}},
	}
	a, account := newTestAdapter(session, date(2024, 2, 15))

	_, err := a.FetchChatMessages(context.Background(), account, entities.Chat{ID: "d1"})
	assert.ErrorIs(t, err, services.ErrHandleMissing)

	chats, err := a.FetchChats(context.Background(), account)
	require.NoError(t, err)
	require.Len(t, chats, 1)

	messages, err := a.FetchChatMessages(context.Background(), account, chats[0])
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "d1", messages[0].ChatID)
	assert.Equal(t, "Sortie", session.lastDiscussion.Subject)
}

func TestAdapter_ProviderErrorPropagates(t *testing.T) {
	boom := errors.New("pronote: session expired")
	session := &fakeSession{periods: trimesters(), err: boom}
	a, account := newTestAdapter(session, date(2024, 2, 15))

	_, err := a.FetchNews(context.Background(), account)
	assert.Same(t, boom, err)
}

func TestAdapter_LogoutStopsPresence(t *testing.T) {
	session := &fakeSession{}
	a, account := newTestAdapter(session, date(2024, 2, 15))

	require.NoError(t, a.Logout(context.Background(), account))
	assert.Equal(t, 1, session.presenceStops)

	account.Instance = nil
	require.NoError(t, a.Logout(context.Background(), account))
	assert.Equal(t, 1, session.presenceStops)
}

func TestAdapter_Canteen(t *testing.T) {
	a, account := newTestAdapter(&fakeSession{}, date(2024, 2, 15))
	_, err := a.FetchCanteen(context.Background(), account)
	assert.ErrorIs(t, err, services.ErrCapabilityUnsupported)
}
