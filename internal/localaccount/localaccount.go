// Package localaccount implements the offline account kind. It has no
// provider session: its timetable is filled by calendar imports and every
// fetch answers from nothing.
package localaccount

import (
	"context"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
)

type Adapter struct {
	services.Unsupported
}

func NewAdapter() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Service() entities.Service {
	return entities.ServiceLocal
}

// Reload succeeds without an instance.
func (a *Adapter) Reload(context.Context, entities.Account) (services.ReloadResult, error) {
	return services.ReloadResult{}, nil
}

func (a *Adapter) FetchHomeworkForWeek(context.Context, entities.Account, int) ([]entities.Homework, error) {
	return []entities.Homework{}, nil
}

func (a *Adapter) FetchTimetableForWeek(context.Context, entities.Account, int) ([]entities.TimetableClass, error) {
	return []entities.TimetableClass{}, nil
}

// ToggleHomeworkDone is a no-op; the cached flag is the only state.
func (a *Adapter) ToggleHomeworkDone(context.Context, entities.Account, string, bool) error {
	return nil
}

var _ services.Adapter = (*Adapter)(nil)
