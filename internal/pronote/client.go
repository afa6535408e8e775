// Package pronote adapts a Pronote session to the shared domain model.
//
// The session is produced by a Connector from the stored authentication bag
// and kept as the account's live instance. Types prefixed with Raw mirror the
// shapes the Pronote client library hands back.
package pronote

import (
	"context"
	"time"
)

// Session is a live, logged-in Pronote client.
type Session interface {
	Periods(ctx context.Context) ([]RawPeriod, error)
	// FirstDate is the first day of the school year as configured by the
	// establishment.
	FirstDate() time.Time
	Grades(ctx context.Context, period RawPeriod) (RawGradesOverview, error)
	Homework(ctx context.Context, from, to time.Time) ([]RawHomework, error)
	SetHomeworkDone(ctx context.Context, homeworkID string, done bool) error
	Timetable(ctx context.Context, from, to time.Time) ([]RawTimetableItem, error)
	Notebook(ctx context.Context, period RawPeriod) (RawNotebook, error)
	Discussions(ctx context.Context) ([]RawDiscussion, error)
	DiscussionMessages(ctx context.Context, discussion RawDiscussion) ([]RawMessage, error)
	News(ctx context.Context) ([]RawNews, error)
	// StopPresence stops the keep-alive timer the session runs in the
	// background.
	StopPresence()
}

// Connector logs in from a stored authentication bag. It returns the session
// and the refreshed bag (next-time token), or nil to keep the stored one.
type Connector interface {
	Connect(ctx context.Context, authentication map[string]string) (Session, map[string]string, error)
}

type RawPeriod struct {
	Name  string
	Start time.Time
	End   time.Time
}

// GradeKind is Pronote's classification of a grade slot.
type GradeKind int

const (
	GradeKindError GradeKind = iota - 1
	GradeKindGrade
	GradeKindAbsent
	GradeKindExempted
	GradeKindNotGraded
	GradeKindUnfit
	GradeKindUnreturned
	GradeKindAbsentZero
	GradeKindUnreturnedZero
	GradeKindCongratulations
)

type RawGradeValue struct {
	Kind   GradeKind
	Points float64
}

type RawGrade struct {
	Subject     string
	Comment     string
	Date        time.Time
	Value       RawGradeValue
	OutOf       float64
	Coefficient float64
	Average     *RawGradeValue
	Min         *RawGradeValue
	Max         *RawGradeValue
}

type RawSubjectAverage struct {
	Subject string
	Student *RawGradeValue
	Class   *RawGradeValue
	Min     *RawGradeValue
	Max     *RawGradeValue
	OutOf   float64
}

type RawGradesOverview struct {
	Grades       []RawGrade
	Subjects     []RawSubjectAverage
	Overall      *RawGradeValue
	ClassOverall *RawGradeValue
}

type RawAttachment struct {
	// Kind is 0 for a hyperlink and 1 for an uploaded file.
	Kind int
	Name string
	URL  string
}

type RawHomework struct {
	ID          string
	Subject     string
	Description string
	Deadline    time.Time
	Done        bool
	Attachments []RawAttachment
}

type RawTimetableItem struct {
	// Kind is "lesson", "activity" or "detention".
	Kind string
	ID       string
	Subject  string
	Title    string
	Start    time.Time
	End      time.Time
	Canceled bool
	Test     bool
	// Status is the free-text label Pronote shows ("Prof. absent", ...).
	Status   string
	Rooms    []string
	Teachers []string
}

type RawAbsence struct {
	ID            string
	From          time.Time
	To            time.Time
	Justified     bool
	HoursMissed   int
	MinutesMissed int
	Reason        string
}

type RawDelay struct {
	ID            string
	Date          time.Time
	Minutes       int
	Justified     bool
	Justification string
	Reason        string
}

type RawPunishment struct {
	ID              string
	Date            time.Time
	Title           string
	Reasons         []string
	DurationMinutes int
	GiverName       string
}

// ObservationKind values as Pronote numbers them.
const (
	ObservationKindLogBook       = 0
	ObservationKindEncouragement = 1
	ObservationKindOther         = 2
)

type RawObservation struct {
	ID          string
	Date        time.Time
	Subject     string
	Name        string
	Description string
	Kind        int
}

type RawNotebook struct {
	Absences     []RawAbsence
	Delays       []RawDelay
	Punishments  []RawPunishment
	Observations []RawObservation
}

type RawDiscussion struct {
	// Key is the possession id Pronote uses to address the thread.
	Key string
	Subject      string
	Creator      string
	Participants string
	Date         time.Time
	Unread       int
}

type RawMessage struct {
	ID          string
	Author      string
	Content     string
	Created     time.Time
	Attachments []RawAttachment
}

type RawNews struct {
	ID          string
	Title       string
	Author      string
	Content     string
	Category    string
	Date        time.Time
	Read        bool
	Attachments []RawAttachment
}
