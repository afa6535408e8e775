package entities

import "time"

// Period is a provider-defined grading window such as a trimester.
type Period struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside [Start, End].
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// FindPeriod returns the period named name.
func FindPeriod(periods []Period, name string) (Period, bool) {
	for _, p := range periods {
		if p.Name == name {
			return p, true
		}
	}
	return Period{}, false
}
