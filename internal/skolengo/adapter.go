package skolengo

import (
	"context"
	"fmt"
	"time"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
)

// Adapter serves the school domains a Skolengo establishment enables.
type Adapter struct {
	services.Unsupported

	connector Connector
	now       services.Clock
}

func NewAdapter(connector Connector) *Adapter {
	return &Adapter{connector: connector, now: time.Now}
}

func (a *Adapter) Service() entities.Service {
	return entities.ServiceSkolengo
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

// PermissionChecks returns one cheap call per domain. Any failure, including
// a 403 from a disabled module, marks the domain unsupported.
func (a *Adapter) PermissionChecks(account entities.Account) ([]services.PermissionCheck, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return nil, err
	}
	now := a.now()
	return []services.PermissionCheck{
		{Domain: entities.DomainGrades, Check: func(ctx context.Context) error {
			_, err := session.Periods(ctx)
			return err
		}},
		{Domain: entities.DomainHomework, Check: func(ctx context.Context) error {
			_, err := session.Assignments(ctx, now, now.AddDate(0, 0, 1))
			return err
		}},
		{Domain: entities.DomainTimetable, Check: func(ctx context.Context) error {
			_, err := session.Agenda(ctx, now, now.AddDate(0, 0, 1))
			return err
		}},
		{Domain: entities.DomainAttendance, Check: func(ctx context.Context) error {
			_, err := session.AbsenceFiles(ctx)
			return err
		}},
		{Domain: entities.DomainNews, Check: func(ctx context.Context) error {
			_, err := session.News(ctx)
			return err
		}},
		{Domain: entities.DomainChats, Check: func(ctx context.Context) error {
			_, err := session.Communications(ctx)
			return err
		}},
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

func (a *Adapter) period(ctx context.Context, session Session, name string) (RawPeriod, error) {
	raw, err := session.Periods(ctx)
	if err != nil {
		return RawPeriod{}, err
	}
	for _, p := range raw {
		if p.Label == name {
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
	raw, err := session.Evaluations(ctx, period.ID)
	if err != nil {
		return services.GradesResult{}, err
	}
	return decodeEvaluations(raw), nil
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
	raw, err := session.Assignments(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return decodeAssignments(raw), nil
}

func (a *Adapter) ToggleHomeworkDone(ctx context.Context, account entities.Account, homeworkID string, done bool) error {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return err
	}
	return session.SetAssignmentDone(ctx, homeworkID, done)
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
	raw, err := session.Agenda(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return decodeAgenda(raw), nil
}

func (a *Adapter) FetchAttendance(ctx context.Context, account entities.Account, periodName string) (entities.Attendance, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return entities.Attendance{}, err
	}
	raw, err := a.period(ctx, session, periodName)
	if err != nil {
		return entities.Attendance{}, err
	}
	files, err := session.AbsenceFiles(ctx)
	if err != nil {
		return entities.Attendance{}, err
	}
	return decodeAbsenceFiles(files, decodePeriods([]RawPeriod{raw})[0])
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
	out := make([]entities.Information, 0, len(raw))
	for _, n := range raw {
		out = append(out, entities.Information{
			ID:          n.ID,
			Title:       n.Title,
			Author:      n.Author,
			Content:     n.Content,
			Date:        n.PublicationDate,
			Read:        true,
			Attachments: decodeAttachments(n.Attachments),
		})
	}
	return out, nil
}

func (a *Adapter) FetchChats(ctx context.Context, account entities.Account) ([]entities.Chat, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return nil, err
	}
	raw, err := session.Communications(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entities.Chat, 0, len(raw))
	for _, c := range raw {
		out = append(out, entities.Chat{
			ID:        c.ID,
			Subject:   c.Subject,
			Recipient: c.Recipients,
			Creator:   c.Sender,
			Date:      c.LastParticipation,
			Read:      c.Read,
		})
	}
	return out, nil
}

func (a *Adapter) FetchChatMessages(ctx context.Context, account entities.Account, chat entities.Chat) ([]entities.ChatMessage, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return nil, err
	}
	raw, err := session.Participations(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	out := make([]entities.ChatMessage, 0, len(raw))
	for _, p := range raw {
		out = append(out, entities.ChatMessage{
			ID:          p.ID,
			ChatID:      chat.ID,
			Author:      p.Sender,
			Content:     p.Content,
			Date:        p.DateTime,
			Attachments: decodeAttachments(p.Attachments),
		})
	}
	return out, nil
}

var (
	_ services.Adapter   = (*Adapter)(nil)
	_ services.TabProber = (*Adapter)(nil)
)
