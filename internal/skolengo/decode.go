package skolengo

import (
	"strings"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
)

var nonEvaluationReasons = map[string]entities.GradeInformation{
	"ABSENT":    entities.GradeInformationAbsent,
	"DISPENSE":  entities.GradeInformationExempted,
	"NON_NOTE":  entities.GradeInformationNotGraded,
	"INAPTE":    entities.GradeInformationUnfit,
	"NON_RENDU": entities.GradeInformationUnreturned,
}

func optional(v *float64) entities.GradeValue {
	if v == nil {
		return entities.Missing()
	}
	return entities.Graded(*v)
}

func scale(v float64) entities.GradeValue {
	if v <= 0 {
		return entities.Missing()
	}
	return entities.Graded(v)
}

func decodeResult(r RawEvaluationResult) entities.GradeValue {
	if r.Mark != nil {
		return entities.Graded(*r.Mark)
	}
	if info, ok := nonEvaluationReasons[strings.ToUpper(r.NonEvaluationReason)]; ok {
		return entities.Unavailable(info)
	}
	return entities.Missing()
}

func decodePeriods(raw []RawPeriod) []entities.Period {
	out := make([]entities.Period, 0, len(raw))
	for _, p := range raw {
		out = append(out, entities.Period{Name: p.Label, Start: p.StartDate, End: p.EndDate})
	}
	return out
}

func decodeEvaluations(raw []RawSubjectEvaluations) services.GradesResult {
	grades := []entities.Grade{}
	subjects := make([]entities.SubjectAverage, 0, len(raw))

	for _, s := range raw {
		subjects = append(subjects, entities.SubjectAverage{
			SubjectName:  s.Subject,
			Average:      optional(s.StudentAverage),
			ClassAverage: optional(s.ClassAverage),
			Min:          optional(s.Min),
			Max:          optional(s.Max),
			OutOf:        scale(s.Scale),
		})
		for _, e := range s.Evaluations {
			id := e.ID
			if id == "" {
				id = entities.GradeID(s.Subject, e.Date, e.Topic)
			}
			grades = append(grades, entities.Grade{
				ID:          id,
				SubjectName: s.Subject,
				Description: e.Topic,
				Timestamp:   e.Date,
				Coefficient: e.Coefficient,
				Student:     decodeResult(e.Result),
				OutOf:       scale(e.Scale),
				Average:     optional(e.ClassAverage),
				Min:         optional(e.Min),
				Max:         optional(e.Max),
			})
		}
	}

	return services.GradesResult{
		Grades: grades,
		Averages: entities.AverageOverview{
			Subjects:     subjects,
			Overall:      entities.ComputeAverage(grades),
			ClassOverall: entities.Missing(),
		},
	}
}

func decodeAgenda(raw []RawAgendaDay) []entities.TimetableClass {
	out := []entities.TimetableClass{}
	for _, day := range raw {
		for _, l := range day.Lessons {
			status := entities.ClassStatusNormal
			if l.Canceled {
				status = entities.ClassStatusCanceled
			}
			out = append(out, entities.TimetableClass{
				ID:      l.ID,
				Type:    entities.ClassLesson,
				Subject: l.Subject,
				Start:   l.Start,
				End:     l.End,
				Status:  status,
				Room:    l.Location,
				Teacher: strings.Join(l.Teachers, ", "),
			})
		}
	}
	return out
}

func decodeAttachments(raw []RawAttachment) []entities.Attachment {
	if len(raw) == 0 {
		return nil
	}
	out := make([]entities.Attachment, 0, len(raw))
	for _, a := range raw {
		out = append(out, entities.Attachment{Type: entities.AttachmentFile, Name: a.Name, URL: a.URL})
	}
	return out
}

func decodeAssignments(raw []RawAssignment) []entities.Homework {
	out := make([]entities.Homework, 0, len(raw))
	for _, a := range raw {
		content := a.HTML
		if content == "" {
			content = a.Title
		}
		out = append(out, entities.Homework{
			ID:          a.ID,
			Subject:     a.Subject,
			Content:     content,
			Due:         a.DueDateTime,
			Done:        a.Done,
			Attachments: decodeAttachments(a.Attachments),
		})
	}
	return out
}

func decodeAbsenceFiles(raw []RawAbsenceFile, period entities.Period) (entities.Attendance, error) {
	att := entities.Attendance{
		Delays:       []entities.Delay{},
		Absences:     []entities.Absence{},
		Punishments:  []entities.Punishment{},
		Observations: []entities.Observation{},
	}
	for _, f := range raw {
		if !period.Contains(f.Start) {
			continue
		}
		minutes := int(f.End.Sub(f.Start).Minutes())
		switch f.Kind {
		case "ABSENCE":
			att.Absences = append(att.Absences, entities.Absence{
				ID:        f.ID,
				From:      f.Start,
				To:        f.End,
				Justified: f.Justified,
				Hours:     entities.FormatHours(minutes),
				Reasons:   f.Reason,
			})
		case "LATENESS":
			att.Delays = append(att.Delays, entities.Delay{
				ID:        f.ID,
				Timestamp: f.Start,
				Duration:  minutes,
				Justified: f.Justified,
				Reasons:   f.Reason,
			})
		default:
			return entities.Attendance{}, &services.DecodeError{Service: entities.ServiceSkolengo, Field: "absenceFile.kind", Value: f.Kind}
		}
	}
	return att, nil
}
