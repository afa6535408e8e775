package ecoledirecte

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
)

// Adapter serves every school domain from an EcoleDirecte session.
type Adapter struct {
	services.Unsupported

	connector Connector
	now       services.Clock
	// loc is the zone EcoleDirecte's local date strings are read in.
	loc *time.Location
}

func NewAdapter(connector Connector) *Adapter {
	return &Adapter{connector: connector, now: time.Now, loc: time.Local}
}

func (a *Adapter) Service() entities.Service {
	return entities.ServiceEcoleDirecte
}

func (a *Adapter) Reload(ctx context.Context, account entities.Account) (services.ReloadResult, error) {
	if a.connector == nil {
		return services.ReloadResult{}, services.ErrConnectorMissing
	}
	session, auth, err := a.connector.Connect(ctx, account.Authentication)
	if err != nil {
		return services.ReloadResult{}, err
	}
	return services.ReloadResult{Instance: session, Authentication: auth}, nil
}

func (a *Adapter) FetchPeriods(ctx context.Context, account entities.Account) (services.PeriodsResult, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return services.PeriodsResult{}, err
	}
	payload, err := session.Grades(ctx)
	if err != nil {
		return services.PeriodsResult{}, err
	}
	periods := decodePeriods(payload.Periods, a.loc)
	return services.PeriodsResult{
		Periods:           periods,
		DefaultPeriodName: services.DefaultPeriod(periods, a.now()),
	}, nil
}

func findPeriod(raw []RawPeriod, name string) (RawPeriod, error) {
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
	payload, err := session.Grades(ctx)
	if err != nil {
		return services.GradesResult{}, err
	}
	period, err := findPeriod(payload.Periods, periodName)
	if err != nil {
		return services.GradesResult{}, err
	}
	return decodeGrades(period, payload.Grades, a.loc), nil
}

// FetchHomeworkForWeek asks for each day of the week, since EcoleDirecte
// addresses homework by due date only.
func (a *Adapter) FetchHomeworkForWeek(ctx context.Context, account entities.Account, week int) ([]entities.Homework, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return nil, err
	}
	from, to, ok := services.WeekWindow(account, week, a.now())
	if !ok {
		return []entities.Homework{}, nil
	}

	homework := []entities.Homework{}
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		raw, err := session.HomeworkForDay(ctx, day.Format(dateLayout))
		if err != nil {
			return nil, err
		}
		homework = append(homework, decodeHomework(raw, a.loc)...)
	}
	return homework, nil
}

func (a *Adapter) ToggleHomeworkDone(ctx context.Context, account entities.Account, homeworkID string, done bool) error {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(homeworkID)
	if err != nil {
		return fmt.Errorf("invalid homework id %q: %w", homeworkID, err)
	}
	return session.SetHomeworkDone(ctx, id, done)
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
	// the upstream range is inclusive
	raw, err := session.Timetable(ctx, from.Format(dateLayout), to.AddDate(0, 0, -1).Format(dateLayout))
	if err != nil {
		return nil, err
	}
	return decodeTimetable(raw, a.loc)
}

func (a *Adapter) FetchAttendance(ctx context.Context, account entities.Account, periodName string) (entities.Attendance, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return entities.Attendance{}, err
	}
	payload, err := session.Grades(ctx)
	if err != nil {
		return entities.Attendance{}, err
	}
	raw, err := findPeriod(payload.Periods, periodName)
	if err != nil {
		return entities.Attendance{}, err
	}
	period := decodePeriods([]RawPeriod{raw}, a.loc)[0]

	vs, err := session.VieScolaire(ctx)
	if err != nil {
		return entities.Attendance{}, err
	}
	return decodeVieScolaire(vs, period, a.loc), nil
}

func (a *Adapter) FetchChats(ctx context.Context, account entities.Account) ([]entities.Chat, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return nil, err
	}
	raw, err := session.Messages(ctx)
	if err != nil {
		return nil, err
	}
	return decodeMessages(raw, a.loc), nil
}

// FetchChatMessages returns the body of one message; EcoleDirecte has no
// threads, so each chat holds exactly one message.
func (a *Adapter) FetchChatMessages(ctx context.Context, account entities.Account, chat entities.Chat) ([]entities.ChatMessage, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return nil, err
	}
	id, err := strconv.Atoi(chat.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid message id %q: %w", chat.ID, err)
	}
	raw, err := session.MessageContent(ctx, id)
	if err != nil {
		return nil, err
	}
	return []entities.ChatMessage{decodeMessageContent(chat.ID, raw, a.loc)}, nil
}

func (a *Adapter) FetchNews(ctx context.Context, account entities.Account) ([]entities.Information, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return nil, err
	}
	raw, err := session.Timeline(ctx)
	if err != nil {
		return nil, err
	}
	return decodeTimeline(raw, a.loc), nil
}

var _ services.Adapter = (*Adapter)(nil)
