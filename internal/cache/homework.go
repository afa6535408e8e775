package cache

import (
	"context"
	"maps"
	"slices"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/storage"
)

type HomeworkState struct {
	Weeks map[int][]entities.Homework `json:"weeks"`
}

func (st HomeworkState) clone() HomeworkState {
	st.Weeks = maps.Clone(st.Weeks)
	return st
}

type HomeworkStore struct {
	*Store[HomeworkState]
}

func NewHomeworkStore(backend storage.Backend) *HomeworkStore {
	return &HomeworkStore{newStore(entities.DomainHomework, backend, func() HomeworkState {
		return HomeworkState{Weeks: make(map[int][]entities.Homework)}
	})}
}

// UpdateHomework replaces the homework list of week.
func (s *HomeworkStore) UpdateHomework(ctx context.Context, t Ticket, week int, homework []entities.Homework) error {
	return s.write(ctx, t, WeekKey(week), func(st *HomeworkState) bool {
		st.Weeks[week] = slices.Clone(nonNil(homework))
		return true
	})
}

func (s *HomeworkStore) Homework(week int) ([]entities.Homework, bool) {
	var (
		out []entities.Homework
		ok  bool
	)
	s.read(func(st *HomeworkState) {
		var list []entities.Homework
		list, ok = st.Weeks[week]
		out = slices.Clone(list)
	})
	return out, ok
}

// SetDone flips the done flag of one cached homework. It reports whether the
// homework was found.
func (s *HomeworkStore) SetDone(ctx context.Context, week int, homeworkID string, done bool) (bool, error) {
	found := false
	err := s.write(ctx, Direct, WeekKey(week), func(st *HomeworkState) bool {
		list, ok := st.Weeks[week]
		if !ok {
			return false
		}
		idx := slices.IndexFunc(list, func(h entities.Homework) bool { return h.ID == homeworkID })
		if idx < 0 {
			return false
		}
		updated := slices.Clone(list)
		updated[idx] = updated[idx].WithDone(done)
		st.Weeks[week] = updated
		found = true
		return true
	})
	return found, err
}
