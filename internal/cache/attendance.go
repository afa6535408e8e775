package cache

import (
	"context"
	"maps"
	"slices"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/storage"
)

type AttendanceState struct {
	PeriodList PeriodList                     `json:"period_list"`
	Attendance map[string]entities.Attendance `json:"attendance"`
}

func (st AttendanceState) clone() AttendanceState {
	st.Attendance = maps.Clone(st.Attendance)
	return st
}

type AttendanceStore struct {
	*Store[AttendanceState]
}

func NewAttendanceStore(backend storage.Backend) *AttendanceStore {
	return &AttendanceStore{newStore(entities.DomainAttendance, backend, func() AttendanceState {
		return AttendanceState{Attendance: make(map[string]entities.Attendance)}
	})}
}

func (s *AttendanceStore) UpdatePeriods(ctx context.Context, t Ticket, periods []entities.Period, defaultPeriod string) error {
	return s.write(ctx, t, KeyPeriods, func(st *AttendanceState) bool {
		st.PeriodList = updatePeriodList(st.PeriodList, periods, defaultPeriod)
		return true
	})
}

func (s *AttendanceStore) PeriodList() PeriodList {
	var out PeriodList
	s.read(func(st *AttendanceState) { out = st.PeriodList.clone() })
	return out
}

// UpdateAttendance replaces the attendance record of period.
func (s *AttendanceStore) UpdateAttendance(ctx context.Context, t Ticket, period string, attendance entities.Attendance) error {
	return s.write(ctx, t, PeriodKey(period), func(st *AttendanceState) bool {
		st.Attendance[period] = attendance
		return true
	})
}

func (s *AttendanceStore) Attendance(period string) (entities.Attendance, bool) {
	var (
		out entities.Attendance
		ok  bool
	)
	s.read(func(st *AttendanceState) {
		out, ok = st.Attendance[period]
		out.Delays = slices.Clone(out.Delays)
		out.Absences = slices.Clone(out.Absences)
		out.Punishments = slices.Clone(out.Punishments)
		out.Observations = slices.Clone(out.Observations)
	})
	return out, ok
}
