// Package ecoledirecte adapts an EcoleDirecte session to the shared domain
// model.
//
// EcoleDirecte sends most values as strings: dates as "2006-01-02", times as
// "2006-01-02 15:04", numbers with French decimal commas and textual markers
// in place of missing marks.
package ecoledirecte

import "context"

// Session is a live, logged-in EcoleDirecte client for one student.
type Session interface {
	// Grades returns the whole notes payload: periods with their averages and
	// every grade of the year.
	Grades(ctx context.Context) (RawGradesPayload, error)
	// HomeworkForDay returns the homework due on day ("2006-01-02").
	HomeworkForDay(ctx context.Context, day string) ([]RawHomework, error)
	SetHomeworkDone(ctx context.Context, homeworkID int, done bool) error
	Timetable(ctx context.Context, from, to string) ([]RawCourse, error)
	VieScolaire(ctx context.Context) (RawVieScolaire, error)
	Messages(ctx context.Context) ([]RawMessage, error)
	MessageContent(ctx context.Context, messageID int) (RawMessageContent, error)
	Timeline(ctx context.Context) ([]RawTimelineItem, error)
}

// Connector logs in from a stored authentication bag.
type Connector interface {
	Connect(ctx context.Context, authentication map[string]string) (Session, map[string]string, error)
}

type RawSubjectAverage struct {
	Subject      string
	Student      string
	ClassAverage string
	Min          string
	Max          string
}

type RawPeriod struct {
	Code         string
	Name         string
	Start        string
	End          string
	Closed       bool
	Subjects     []RawSubjectAverage
	Overall      string
	ClassOverall string
}

type RawGrade struct {
	ID          int
	PeriodCode  string
	Subject     string
	Comment     string
	Date        string
	Value       string
	OutOf       string
	Coefficient string
	Average     string
	Min         string
	Max         string
	// NotSignificant marks grades the school excludes from averages.
	NotSignificant bool
}

type RawGradesPayload struct {
	Periods []RawPeriod
	Grades  []RawGrade
}

type RawDocument struct {
	ID   int
	Name string
	URL  string
}

type RawHomework struct {
	ID      int
	Subject string
	// ContentBase64 holds the HTML body, base64 encoded.
	ContentBase64 string
	Due           string
	Done          bool
	Documents     []RawDocument
}

type RawCourse struct {
	ID      int
	Subject string
	Teacher string
	Room    string
	Start   string
	End     string
	// Kind is "COURS", "PERMANENCE", "EVENEMENT", "SANCTION" or "CONGE".
	Kind     string
	Canceled bool
	Modified bool
}

type RawAbsenceEvent struct {
	ID int
	// Kind is "Absence" or "Retard".
	Kind      string
	Date      string
	Duration  string // "HH:MM"
	Justified bool
	Reason    string
	Comment   string
}

type RawSanction struct {
	ID       int
	Date     string
	Label    string
	Reason   string
	Duration string // "HH:MM"
	By       string
}

type RawEncouragement struct {
	ID      int
	Date    string
	Label   string
	Subject string
	Comment string
}

type RawVieScolaire struct {
	Events         []RawAbsenceEvent
	Sanctions      []RawSanction
	Encouragements []RawEncouragement
}

type RawMessage struct {
	ID      int
	Subject string
	From    string
	To      string
	Date    string
	Read    bool
}

type RawMessageContent struct {
	ID            int
	From          string
	ContentBase64 string
	Date          string
	Files         []RawDocument
}

type RawTimelineItem struct {
	Date    string
	Type    string
	Title   string
	Content string
	Author  string
}
