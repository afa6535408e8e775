package cache

import (
	"context"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/storage"
)

// Bindable is the namespace control every store exposes to the account
// registry.
type Bindable interface {
	Domain() entities.Domain
	AccountID() string
	Bind(ctx context.Context, accountID string) error
	Unbind()
	Purge(ctx context.Context, accountID string) error
}

// Set owns one store per domain. It is the application context shared by
// the dispatcher, the account registry and the read API.
type Set struct {
	Grades     *GradesStore
	Attendance *AttendanceStore
	Homework   *HomeworkStore
	Timetable  *TimetableStore
	News       *NewsStore
	Chats      *ChatsStore
	Canteen    *CanteenStore
}

func NewSet(backend storage.Backend) *Set {
	return &Set{
		Grades:     NewGradesStore(backend),
		Attendance: NewAttendanceStore(backend),
		Homework:   NewHomeworkStore(backend),
		Timetable:  NewTimetableStore(backend),
		News:       NewNewsStore(backend),
		Chats:      NewChatsStore(backend),
		Canteen:    NewCanteenStore(backend),
	}
}

// All returns every store in domain declaration order.
func (s *Set) All() []Bindable {
	return []Bindable{s.Grades, s.Homework, s.Timetable, s.Attendance, s.News, s.Chats, s.Canteen}
}
