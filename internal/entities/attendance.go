package entities

import (
	"fmt"
	"time"
)

// Attendance aggregates the vie scolaire records of one period. Durations are
// normalized to minutes regardless of how the provider encodes them.
type Attendance struct {
	Delays       []Delay       `json:"delays"`
	Absences     []Absence     `json:"absences"`
	Punishments  []Punishment  `json:"punishments"`
	Observations []Observation `json:"observations"`
}

type Delay struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Duration      int       `json:"duration"`
	Justified     bool      `json:"justified"`
	Justification string    `json:"justification,omitempty"`
	Reasons       string    `json:"reasons,omitempty"`
}

type Absence struct {
	ID        string    `json:"id"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	Justified bool      `json:"justified"`
	// Hours is the missed time formatted as "HHhMM".
	Hours   string `json:"hours,omitempty"`
	Reasons string `json:"reasons,omitempty"`
}

type Punishment struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
	Nature    string    `json:"nature"`
	Duration  int       `json:"duration"`
	GivenBy   string    `json:"given_by,omitempty"`
}

type ObservationKind string

const (
	ObservationNotebook    ObservationKind = "notebook"
	ObservationEncourage   ObservationKind = "encouragement"
	ObservationObservation ObservationKind = "observation"
)

type Observation struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Subject     string          `json:"subject,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Kind        ObservationKind `json:"kind"`
}

// Empty reports whether no record of any kind is present.
func (a Attendance) Empty() bool {
	return len(a.Delays) == 0 && len(a.Absences) == 0 && len(a.Punishments) == 0 && len(a.Observations) == 0
}

// FormatHours renders a missed duration in minutes as "HHhMM".
func FormatHours(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02dh%02d", minutes/60, minutes%60)
}
