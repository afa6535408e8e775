package entities

import (
	"strings"
	"time"
)

type ClassType string

const (
	ClassLesson    ClassType = "lesson"
	ClassActivity  ClassType = "activity"
	ClassDetention ClassType = "detention"
	ClassVacation  ClassType = "vacation"
)

type ClassStatus string

const (
	ClassStatusNormal   ClassStatus = "normal"
	ClassStatusCanceled ClassStatus = "canceled"
	ClassStatusTest     ClassStatus = "test"
	ClassStatusModified ClassStatus = "modified"
)

// ICalSourcePrefix tags classes imported from a calendar subscription.
const ICalSourcePrefix = "ical://"

type TimetableClass struct {
	ID      string      `json:"id"`
	Type    ClassType   `json:"type"`
	Subject string      `json:"subject"`
	Start   time.Time   `json:"start"`
	End     time.Time   `json:"end"`
	Status  ClassStatus `json:"status"`
	Room    string      `json:"room,omitempty"`
	Teacher string      `json:"teacher,omitempty"`
	// Source is empty for provider classes and set for imported ones so they
	// can be purged selectively.
	Source string `json:"source,omitempty"`
}

// ICalSource builds the source tag for a calendar subscription URL.
func ICalSource(url string) string {
	return ICalSourcePrefix + url
}

// Imported reports whether the class came from an external calendar feed.
func (c TimetableClass) Imported() bool {
	return strings.HasPrefix(c.Source, ICalSourcePrefix)
}
