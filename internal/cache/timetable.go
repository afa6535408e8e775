package cache

import (
	"context"
	"maps"
	"slices"
	"sort"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/storage"
)

type TimetableState struct {
	Weeks map[int][]entities.TimetableClass `json:"weeks"`
	// Fetched marks weeks the provider has answered for. Weeks created only by
	// calendar imports are absent.
	Fetched map[int]bool `json:"fetched,omitempty"`
}

func (st TimetableState) clone() TimetableState {
	st.Weeks = maps.Clone(st.Weeks)
	st.Fetched = maps.Clone(st.Fetched)
	return st
}

// TimetableStore holds provider classes and classes imported from calendar
// feeds side by side. Provider refreshes only replace provider classes.
type TimetableStore struct {
	*Store[TimetableState]
}

func NewTimetableStore(backend storage.Backend) *TimetableStore {
	return &TimetableStore{newStore(entities.DomainTimetable, backend, func() TimetableState {
		return TimetableState{
			Weeks:   make(map[int][]entities.TimetableClass),
			Fetched: make(map[int]bool),
		}
	})}
}

// UpdateClasses replaces the provider classes of week. Imported classes of
// that week are kept.
func (s *TimetableStore) UpdateClasses(ctx context.Context, t Ticket, week int, classes []entities.TimetableClass) error {
	return s.write(ctx, t, WeekKey(week), func(st *TimetableState) bool {
		merged := make([]entities.TimetableClass, 0, len(classes))
		for _, c := range st.Weeks[week] {
			if c.Imported() {
				merged = append(merged, c)
			}
		}
		merged = append(merged, classes...)
		st.Weeks[week] = sortClasses(merged)
		if st.Fetched == nil {
			st.Fetched = make(map[int]bool)
		}
		st.Fetched[week] = true
		return true
	})
}

// MergeSourceClasses replaces the classes of one import source within week,
// leaving every other source untouched.
func (s *TimetableStore) MergeSourceClasses(ctx context.Context, t Ticket, week int, source string, classes []entities.TimetableClass) error {
	return s.write(ctx, t, SourceWeekKey(week, source), func(st *TimetableState) bool {
		merged := slices.DeleteFunc(slices.Clone(st.Weeks[week]), func(c entities.TimetableClass) bool {
			return c.Source == source
		})
		for _, c := range classes {
			c.Source = source
			merged = append(merged, c)
		}
		st.Weeks[week] = sortClasses(merged)
		return true
	})
}

// RemoveClasses drops week entirely so it reads as never fetched.
func (s *TimetableStore) RemoveClasses(ctx context.Context, week int) error {
	return s.write(ctx, Direct, WeekKey(week), func(st *TimetableState) bool {
		if _, ok := st.Weeks[week]; !ok {
			return false
		}
		delete(st.Weeks, week)
		delete(st.Fetched, week)
		return true
	})
}

// RemoveClassesFromSource deletes every class tagged with source across all
// weeks. A week the provider has answered for stays cached, empty if need
// be; a week only imports created is removed once it holds nothing.
func (s *TimetableStore) RemoveClassesFromSource(ctx context.Context, source string) error {
	return s.write(ctx, Direct, "source:"+source, func(st *TimetableState) bool {
		changed := false
		for week, classes := range st.Weeks {
			kept := slices.DeleteFunc(slices.Clone(classes), func(c entities.TimetableClass) bool {
				return c.Source == source
			})
			if len(kept) == len(classes) {
				continue
			}
			changed = true
			if len(kept) == 0 && !st.Fetched[week] {
				delete(st.Weeks, week)
				continue
			}
			st.Weeks[week] = kept
		}
		return changed
	})
}

func (s *TimetableStore) Classes(week int) ([]entities.TimetableClass, bool) {
	var (
		out []entities.TimetableClass
		ok  bool
	)
	s.read(func(st *TimetableState) {
		var classes []entities.TimetableClass
		classes, ok = st.Weeks[week]
		out = slices.Clone(classes)
	})
	return out, ok
}

// Weeks lists the cached week numbers in ascending order.
func (s *TimetableStore) Weeks() []int {
	var weeks []int
	s.read(func(st *TimetableState) {
		for week := range st.Weeks {
			weeks = append(weeks, week)
		}
	})
	sort.Ints(weeks)
	return weeks
}

func sortClasses(classes []entities.TimetableClass) []entities.TimetableClass {
	sort.SliceStable(classes, func(i, j int) bool {
		return classes[i].Start.Before(classes[j].Start)
	})
	return classes
}
