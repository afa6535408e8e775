// Package skolengo adapts a Skolengo session to the shared domain model.
//
// Which modules a student can use depends on the school's configuration, so
// the adapter also implements services.TabProber: one permission check per
// domain, run once when the account is created.
package skolengo

import (
	"context"
	"time"
)

// Session is a live Skolengo API client for one student.
type Session interface {
	Periods(ctx context.Context) ([]RawPeriod, error)
	Evaluations(ctx context.Context, periodID string) ([]RawSubjectEvaluations, error)
	Agenda(ctx context.Context, from, to time.Time) ([]RawAgendaDay, error)
	Assignments(ctx context.Context, from, to time.Time) ([]RawAssignment, error)
	SetAssignmentDone(ctx context.Context, assignmentID string, done bool) error
	AbsenceFiles(ctx context.Context) ([]RawAbsenceFile, error)
	News(ctx context.Context) ([]RawNews, error)
	Communications(ctx context.Context) ([]RawCommunication, error)
	Participations(ctx context.Context, communicationID string) ([]RawParticipation, error)
}

// Connector logs in from a stored authentication bag (OIDC tokens).
type Connector interface {
	Connect(ctx context.Context, authentication map[string]string) (Session, map[string]string, error)
}

type RawPeriod struct {
	ID        string
	Label     string
	StartDate time.Time
	EndDate   time.Time
}

type RawEvaluationResult struct {
	Mark *float64
	// NonEvaluationReason is set when Mark is nil: "ABSENT", "DISPENSE",
	// "NON_NOTE", "INAPTE" or "NON_RENDU".
	NonEvaluationReason string
}

type RawEvaluation struct {
	ID           string
	Topic        string
	Date         time.Time
	Coefficient  float64
	Scale        float64
	Result       RawEvaluationResult
	ClassAverage *float64
	Min          *float64
	Max          *float64
}

type RawSubjectEvaluations struct {
	Subject        string
	StudentAverage *float64
	ClassAverage   *float64
	Min            *float64
	Max            *float64
	Scale          float64
	Evaluations    []RawEvaluation
}

type RawLesson struct {
	ID       string
	Subject  string
	Start    time.Time
	End      time.Time
	Location string
	Teachers []string
	Canceled bool
}

type RawAgendaDay struct {
	Date    time.Time
	Lessons []RawLesson
}

type RawAttachment struct {
	Name string
	URL  string
}

type RawAssignment struct {
	ID          string
	Title       string
	HTML        string
	Subject     string
	DueDateTime time.Time
	Done        bool
	Attachments []RawAttachment
}

type RawAbsenceFile struct {
	ID string
	// Kind is "ABSENCE" or "LATENESS".
	Kind      string
	Start     time.Time
	End       time.Time
	Justified bool
	Reason    string
}

type RawNews struct {
	ID              string
	Title           string
	Content         string
	Author          string
	PublicationDate time.Time
	Attachments     []RawAttachment
}

type RawCommunication struct {
	ID                string
	Subject           string
	Sender            string
	Recipients        string
	LastParticipation time.Time
	Read              bool
}

type RawParticipation struct {
	ID          string
	Sender      string
	Content     string
	DateTime    time.Time
	Attachments []RawAttachment
}
