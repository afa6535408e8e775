package services

import (
	"context"

	"github.com/mrlokans/schooldesk/internal/entities"
)

// Unsupported provides ErrCapabilityUnsupported defaults for every domain.
// Adapters embed it and override what they serve.
type Unsupported struct{}

func (Unsupported) FetchPeriods(context.Context, entities.Account) (PeriodsResult, error) {
	return PeriodsResult{}, ErrCapabilityUnsupported
}

func (Unsupported) FetchGrades(context.Context, entities.Account, string) (GradesResult, error) {
	return GradesResult{}, ErrCapabilityUnsupported
}

func (Unsupported) FetchHomeworkForWeek(context.Context, entities.Account, int) ([]entities.Homework, error) {
	return nil, ErrCapabilityUnsupported
}

func (Unsupported) FetchTimetableForWeek(context.Context, entities.Account, int) ([]entities.TimetableClass, error) {
	return nil, ErrCapabilityUnsupported
}

func (Unsupported) FetchAttendance(context.Context, entities.Account, string) (entities.Attendance, error) {
	return entities.Attendance{}, ErrCapabilityUnsupported
}

func (Unsupported) FetchChats(context.Context, entities.Account) ([]entities.Chat, error) {
	return nil, ErrCapabilityUnsupported
}

func (Unsupported) FetchChatMessages(context.Context, entities.Account, entities.Chat) ([]entities.ChatMessage, error) {
	return nil, ErrCapabilityUnsupported
}

func (Unsupported) FetchNews(context.Context, entities.Account) ([]entities.Information, error) {
	return nil, ErrCapabilityUnsupported
}

func (Unsupported) FetchCanteen(context.Context, entities.Account) ([]entities.CanteenBalance, error) {
	return nil, ErrCapabilityUnsupported
}

func (Unsupported) ToggleHomeworkDone(context.Context, entities.Account, string, bool) error {
	return ErrCapabilityUnsupported
}

func (Unsupported) Logout(context.Context, entities.Account) error {
	return nil
}
