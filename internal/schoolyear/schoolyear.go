// Package schoolyear converts between calendar dates and epoch week numbers
// relative to an account's school-year start.
//
// Week 1 is the Monday-aligned week containing the start date. Caches for
// homework and timetable are keyed by this number.
package schoolyear

import "time"

const (
	// MinWeek and MaxWeek bound the weeks providers are asked about.
	MinWeek = 1
	MaxWeek = 62

	// DefaultStartMonth is assumed when a provider does not expose the first
	// day of the school year.
	DefaultStartMonth = time.September
)

// DefaultStart returns the assumed school-year start for now: the first day of
// startMonth in the current academic year.
func DefaultStart(now time.Time, startMonth time.Month) time.Time {
	if startMonth < time.January || startMonth > time.December {
		startMonth = DefaultStartMonth
	}
	year := now.Year()
	if now.Month() < startMonth {
		year--
	}
	return time.Date(year, startMonth, 1, 0, 0, 0, 0, now.Location())
}

// InRange reports whether week is within the supported window.
func InRange(week int) bool {
	return week >= MinWeek && week <= MaxWeek
}

// WeekNumber returns the epoch week of t relative to start.
func WeekNumber(start, t time.Time) int {
	days := dayIndex(t.In(start.Location())) - dayIndex(monday(start))
	if days < 0 {
		// floor division for dates before the start
		return (days-6)/7 + 1
	}
	return days/7 + 1
}

// WeekRange returns [from, to) for week: Monday 00:00 to the following Monday.
func WeekRange(start time.Time, week int) (time.Time, time.Time) {
	first := monday(start)
	from := first.AddDate(0, 0, (week-1)*7)
	return from, from.AddDate(0, 0, 7)
}

// Days returns the seven calendar days of week, Monday first.
func Days(start time.Time, week int) []time.Time {
	from, _ := WeekRange(start, week)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = from.AddDate(0, 0, i)
	}
	return days
}

func monday(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// dayIndex counts calendar days since the Unix epoch, ignoring DST shifts.
func dayIndex(t time.Time) int {
	u := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(u.Unix() / 86400)
}
