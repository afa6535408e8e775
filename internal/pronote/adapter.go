package pronote

import (
	"context"
	"fmt"
	"time"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/handles"
	"github.com/mrlokans/schooldesk/internal/services"
)

// Adapter serves every school domain from a Pronote session.
type Adapter struct {
	services.Unsupported

	connector Connector
	handles   *handles.Registry
	now       services.Clock
}

func NewAdapter(connector Connector, h *handles.Registry) *Adapter {
	return &Adapter{connector: connector, handles: h, now: time.Now}
}

func (a *Adapter) Service() entities.Service {
	return entities.ServicePronote
}

func (a *Adapter) Reload(ctx context.Context, account entities.Account) (services.ReloadResult, error) {
	if a.connector == nil {
		return services.ReloadResult{}, services.ErrConnectorMissing
	}
	session, auth, err := a.connector.Connect(ctx, account.Authentication)
	if err != nil {
		return services.ReloadResult{}, err
	}
	return services.ReloadResult{
		Instance:        session,
		Authentication:  auth,
		SchoolYearStart: session.FirstDate(),
	}, nil
}

func (a *Adapter) FetchPeriods(ctx context.Context, account entities.Account) (services.PeriodsResult, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return services.PeriodsResult{}, err
	}
	raw, err := session.Periods(ctx)
	if err != nil {
		return services.PeriodsResult{}, err
	}
	periods := decodePeriods(raw)
	return services.PeriodsResult{
		Periods:           periods,
		DefaultPeriodName: services.DefaultPeriod(periods, a.now()),
	}, nil
}

// period resolves name against the session's own period list.
func (a *Adapter) period(ctx context.Context, session Session, name string) (RawPeriod, error) {
	raw, err := session.Periods(ctx)
	if err != nil {
		return RawPeriod{}, err
	}
	for _, p := range raw {
		if p.Name == name {
			return p, nil
		}
	}
	return RawPeriod{}, fmt.Errorf("%w: %q", services.ErrPeriodNotFound, name)
}

func (a *Adapter) FetchGrades(ctx context.Context, account entities.Account, periodName string) (services.GradesResult, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return services.GradesResult{}, err
	}
	period, err := a.period(ctx, session, periodName)
	if err != nil {
		return services.GradesResult{}, err
	}
	overview, err := session.Grades(ctx, period)
	if err != nil {
		return services.GradesResult{}, err
	}
	return decodeGrades(overview), nil
}

func (a *Adapter) FetchHomeworkForWeek(ctx context.Context, account entities.Account, week int) ([]entities.Homework, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return nil, err
	}
	from, to, ok := services.WeekWindow(account, week, a.now())
	if !ok {
		return []entities.Homework{}, nil
	}
	raw, err := session.Homework(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return decodeHomework(raw), nil
}

func (a *Adapter) ToggleHomeworkDone(ctx context.Context, account entities.Account, homeworkID string, done bool) error {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return err
	}
	return session.SetHomeworkDone(ctx, homeworkID, done)
}

func (a *Adapter) FetchTimetableForWeek(ctx context.Context, account entities.Account, week int) ([]entities.TimetableClass, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return nil, err
	}
	from, to, ok := services.WeekWindow(account, week, a.now())
	if !ok {
		return []entities.TimetableClass{}, nil
	}
	raw, err := session.Timetable(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return decodeTimetable(raw)
}

func (a *Adapter) FetchAttendance(ctx context.Context, account entities.Account, periodName string) (entities.Attendance, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return entities.Attendance{}, err
	}
	period, err := a.period(ctx, session, periodName)
	if err != nil {
		return entities.Attendance{}, err
	}
	notebook, err := session.Notebook(ctx, period)
	if err != nil {
		return entities.Attendance{}, err
	}
	return decodeNotebook(notebook), nil
}

// FetchChats lists discussions and remembers each raw discussion so its
// messages can be fetched later.
func (a *Adapter) FetchChats(ctx context.Context, account entities.Account) ([]entities.Chat, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return nil, err
	}
	raw, err := session.Discussions(ctx)
	if err != nil {
		return nil, err
	}
	chats := make([]entities.Chat, 0, len(raw))
	for _, d := range raw {
		chat := decodeDiscussion(d)
		a.handles.Put(entities.ServicePronote, chat.ID, d)
		chats = append(chats, chat)
	}
	return chats, nil
}

func (a *Adapter) FetchChatMessages(ctx context.Context, account entities.Account, chat entities.Chat) ([]entities.ChatMessage, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return nil, err
	}
	discussion, ok := handles.Lookup[RawDiscussion](a.handles, entities.ServicePronote, chat.ID)
	if !ok {
		return nil, fmt.Errorf("%w: discussion %s", services.ErrHandleMissing, chat.ID)
	}
	raw, err := session.DiscussionMessages(ctx, discussion)
	if err != nil {
		return nil, err
	}
	return decodeMessages(chat.ID, raw), nil
}

func (a *Adapter) FetchNews(ctx context.Context, account entities.Account) ([]entities.Information, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return nil, err
	}
	raw, err := session.News(ctx)
	if err != nil {
		return nil, err
	}
	return decodeNews(raw), nil
}

// Logout stops the presence keep-alive of a live session.
func (a *Adapter) Logout(_ context.Context, account entities.Account) error {
	if session, err := services.SessionOf[Session](account); err == nil {
		session.StopPresence()
	}
	return nil
}

var _ services.Adapter = (*Adapter)(nil)
