package services

import (
	"fmt"
	"time"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/schoolyear"
)

// SessionOf extracts the provider session of type T from the account's live
// instance.
func SessionOf[T any](account entities.Account) (T, error) {
	var zero T
	if account.Instance == nil {
		return zero, ErrUnauthenticated
	}
	session, ok := account.Instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: instance of %s account has type %T", ErrUnauthenticated, account.Service, account.Instance)
	}
	return session, nil
}

// DefaultPeriod picks the period containing now, falling back to the first
// one in provider order. Returns "" for an empty list.
func DefaultPeriod(periods []entities.Period, now time.Time) string {
	for _, p := range periods {
		if p.Contains(now) {
			return p.Name
		}
	}
	if len(periods) > 0 {
		return periods[0].Name
	}
	return ""
}

// RequirePeriod returns the named period or ErrPeriodNotFound.
func RequirePeriod(periods []entities.Period, name string) (entities.Period, error) {
	p, ok := entities.FindPeriod(periods, name)
	if !ok {
		return entities.Period{}, fmt.Errorf("%w: %q", ErrPeriodNotFound, name)
	}
	return p, nil
}

// Clock returns the current time. Adapters hold one so tests can pin "now".
type Clock func() time.Time

// SchoolYearStart returns the account's resolved school-year start, or the
// assumed default for now when the account has none.
func SchoolYearStart(account entities.Account, now time.Time) time.Time {
	if !account.SchoolYearStart.IsZero() {
		return account.SchoolYearStart
	}
	return schoolyear.DefaultStart(now, schoolyear.DefaultStartMonth)
}

// WeekWindow returns the [from, to) date range of an epoch week for account.
// ok is false for weeks outside the supported window; adapters answer those
// with an empty list.
func WeekWindow(account entities.Account, week int, now time.Time) (from, to time.Time, ok bool) {
	if !schoolyear.InRange(week) {
		return time.Time{}, time.Time{}, false
	}
	from, to = schoolyear.WeekRange(SchoolYearStart(account, now), week)
	return from, to, true
}
