package cache

import (
	"context"
	"maps"
	"slices"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/storage"
)

// PeriodList is the period state shared by period-addressed stores.
type PeriodList struct {
	Periods  []entities.Period `json:"periods"`
	Default  string            `json:"default"`
	Selected string            `json:"selected,omitempty"`
}

// Current returns the selected period, falling back to the default one.
func (p PeriodList) Current() string {
	if p.Selected != "" {
		return p.Selected
	}
	return p.Default
}

func (p PeriodList) clone() PeriodList {
	p.Periods = slices.Clone(p.Periods)
	return p
}

type GradesState struct {
	PeriodList PeriodList                          `json:"period_list"`
	Grades     map[string][]entities.Grade         `json:"grades"`
	Averages   map[string]entities.AverageOverview `json:"averages"`
}

func (st GradesState) clone() GradesState {
	st.Grades = maps.Clone(st.Grades)
	st.Averages = maps.Clone(st.Averages)
	return st
}

type GradesStore struct {
	*Store[GradesState]
}

func NewGradesStore(backend storage.Backend) *GradesStore {
	return &GradesStore{newStore(entities.DomainGrades, backend, func() GradesState {
		return GradesState{
			Grades:   make(map[string][]entities.Grade),
			Averages: make(map[string]entities.AverageOverview),
		}
	})}
}

// UpdatePeriods replaces the period list. A selection that no longer exists
// is cleared.
func (s *GradesStore) UpdatePeriods(ctx context.Context, t Ticket, periods []entities.Period, defaultPeriod string) error {
	return s.write(ctx, t, KeyPeriods, func(st *GradesState) bool {
		st.PeriodList = updatePeriodList(st.PeriodList, periods, defaultPeriod)
		return true
	})
}

// SelectPeriod records the caller-selected period.
func (s *GradesStore) SelectPeriod(ctx context.Context, name string) error {
	return s.write(ctx, Direct, KeyPeriods, func(st *GradesState) bool {
		if _, ok := entities.FindPeriod(st.PeriodList.Periods, name); !ok {
			return false
		}
		st.PeriodList.Selected = name
		return true
	})
}

func (s *GradesStore) PeriodList() PeriodList {
	var out PeriodList
	s.read(func(st *GradesState) { out = st.PeriodList.clone() })
	return out
}

// UpdateGradesAndAverages replaces the grades and averages of period.
func (s *GradesStore) UpdateGradesAndAverages(ctx context.Context, t Ticket, period string, grades []entities.Grade, averages entities.AverageOverview) error {
	return s.write(ctx, t, PeriodKey(period), func(st *GradesState) bool {
		st.Grades[period] = nonNil(grades)
		st.Averages[period] = averages
		return true
	})
}

// Grades returns the grades of period and whether they were ever fetched.
func (s *GradesStore) Grades(period string) ([]entities.Grade, bool) {
	var (
		out []entities.Grade
		ok  bool
	)
	s.read(func(st *GradesState) {
		var grades []entities.Grade
		grades, ok = st.Grades[period]
		out = slices.Clone(grades)
	})
	return out, ok
}

func (s *GradesStore) Averages(period string) (entities.AverageOverview, bool) {
	var (
		out entities.AverageOverview
		ok  bool
	)
	s.read(func(st *GradesState) {
		out, ok = st.Averages[period]
		out.Subjects = slices.Clone(out.Subjects)
	})
	return out, ok
}

func updatePeriodList(current PeriodList, periods []entities.Period, defaultPeriod string) PeriodList {
	next := PeriodList{
		Periods: slices.Clone(nonNil(periods)),
		Default: defaultPeriod,
	}
	if _, ok := entities.FindPeriod(periods, current.Selected); ok {
		next.Selected = current.Selected
	}
	return next
}

// nonNil keeps "loaded and empty" distinct from "absent" once serialized.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
