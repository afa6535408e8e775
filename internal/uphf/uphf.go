// Package uphf adapts the Université Polytechnique Hauts-de-France schedule
// API. Only the timetable is available.
package uphf

import (
	"context"
	"strings"
	"time"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
)

// Session is a logged-in UPHF client.
type Session interface {
	Events(ctx context.Context, from, to time.Time) ([]RawEvent, error)
}

type Connector interface {
	Connect(ctx context.Context, authentication map[string]string) (Session, map[string]string, error)
}

type RawEvent struct {
	ID          string
	Title       string
	Category    string
	Start       time.Time
	End         time.Time
	Location    string
	Teachers    string
	Description string
}

// Category prefixes as the university labels them, lowercased.
var categories = []struct {
	prefix string
	kind   entities.ClassType
	status entities.ClassStatus
}{
	{"cours", entities.ClassLesson, entities.ClassStatusNormal},
	{"cm", entities.ClassLesson, entities.ClassStatusNormal},
	{"td", entities.ClassLesson, entities.ClassStatusNormal},
	{"tp", entities.ClassLesson, entities.ClassStatusNormal},
	{"examen", entities.ClassLesson, entities.ClassStatusTest},
	{"contrôle", entities.ClassLesson, entities.ClassStatusTest},
	{"réunion", entities.ClassActivity, entities.ClassStatusNormal},
	{"événement", entities.ClassActivity, entities.ClassStatusNormal},
	{"vacances", entities.ClassVacation, entities.ClassStatusNormal},
	{"férié", entities.ClassVacation, entities.ClassStatusNormal},
}

// canceledMarker flags a canceled event anywhere in its category, as in
// "Cours annulé" or "Annulé - TD".
const canceledMarker = "annul"

func decodeEvent(e RawEvent) (entities.TimetableClass, error) {
	category := strings.ToLower(strings.TrimSpace(e.Category))
	canceled := strings.Contains(category, canceledMarker)

	kind, status, ok := entities.ClassLesson, entities.ClassStatusNormal, canceled
	for _, c := range categories {
		if strings.HasPrefix(category, c.prefix) {
			kind, status, ok = c.kind, c.status, true
			break
		}
	}
	if !ok {
		return entities.TimetableClass{}, &services.DecodeError{Service: entities.ServiceUPHF, Field: "category", Value: e.Category}
	}
	if canceled {
		status = entities.ClassStatusCanceled
	}
	return entities.TimetableClass{
		ID:      e.ID,
		Type:    kind,
		Subject: e.Title,
		Start:   e.Start,
		End:     e.End,
		Status:  status,
		Room:    e.Location,
		Teacher: e.Teachers,
	}, nil
}

type Adapter struct {
	services.Unsupported

	connector Connector
	now       services.Clock
}

func NewAdapter(connector Connector) *Adapter {
	return &Adapter{connector: connector, now: time.Now}
}

func (a *Adapter) Service() entities.Service {
	return entities.ServiceUPHF
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

func (a *Adapter) FetchTimetableForWeek(ctx context.Context, account entities.Account, week int) ([]entities.TimetableClass, error) {
	session, err := services.SessionOf[Session](account)
	if err != nil {
		return nil, err
	}
	from, to, ok := services.WeekWindow(account, week, a.now())
	if !ok {
		return []entities.TimetableClass{}, nil
	}
	raw, err := session.Events(ctx, from, to)
	if err != nil {
		return nil, err
	}
	classes := make([]entities.TimetableClass, 0, len(raw))
	for _, e := range raw {
		class, err := decodeEvent(e)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}

var _ services.Adapter = (*Adapter)(nil)
