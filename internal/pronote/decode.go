package pronote

import (
	"strings"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
)

func decodePeriods(raw []RawPeriod) []entities.Period {
	periods := make([]entities.Period, 0, len(raw))
	for _, p := range raw {
		periods = append(periods, entities.Period{Name: p.Name, Start: p.Start, End: p.End})
	}
	return periods
}

// decodeGradeValue maps a Pronote grade slot. Zero-valued kinds keep their
// number but still explain it.
func decodeGradeValue(v RawGradeValue) entities.GradeValue {
	switch v.Kind {
	case GradeKindGrade, GradeKindCongratulations:
		return entities.Graded(v.Points)
	case GradeKindAbsent:
		return entities.Unavailable(entities.GradeInformationAbsent)
	case GradeKindExempted:
		return entities.Unavailable(entities.GradeInformationExempted)
	case GradeKindNotGraded:
		return entities.Unavailable(entities.GradeInformationNotGraded)
	case GradeKindUnfit:
		return entities.Unavailable(entities.GradeInformationUnfit)
	case GradeKindUnreturned:
		return entities.Unavailable(entities.GradeInformationUnreturned)
	case GradeKindAbsentZero:
		value := entities.Graded(0)
		value.Information = entities.GradeInformationAbsent
		return value
	case GradeKindUnreturnedZero:
		value := entities.Graded(0)
		value.Information = entities.GradeInformationUnreturned
		return value
	default:
		return entities.Missing()
	}
}

func decodeOptionalValue(v *RawGradeValue) entities.GradeValue {
	if v == nil {
		return entities.Missing()
	}
	return decodeGradeValue(*v)
}

func decodeScale(outOf float64) entities.GradeValue {
	if outOf <= 0 {
		return entities.Missing()
	}
	return entities.Graded(outOf)
}

func decodeGrade(r RawGrade) entities.Grade {
	return entities.Grade{
		ID:          entities.GradeID(r.Subject, r.Date, r.Comment),
		SubjectName: r.Subject,
		Comment:     r.Comment,
		Timestamp:   r.Date,
		Coefficient: r.Coefficient,
		Student:     decodeGradeValue(r.Value),
		OutOf:       decodeScale(r.OutOf),
		Average:     decodeOptionalValue(r.Average),
		Min:         decodeOptionalValue(r.Min),
		Max:         decodeOptionalValue(r.Max),
	}
}

func decodeGrades(overview RawGradesOverview) services.GradesResult {
	grades := make([]entities.Grade, 0, len(overview.Grades))
	for _, g := range overview.Grades {
		grades = append(grades, decodeGrade(g))
	}

	subjects := make([]entities.SubjectAverage, 0, len(overview.Subjects))
	for _, s := range overview.Subjects {
		subjects = append(subjects, entities.SubjectAverage{
			SubjectName:  s.Subject,
			Average:      decodeOptionalValue(s.Student),
			ClassAverage: decodeOptionalValue(s.Class),
			Min:          decodeOptionalValue(s.Min),
			Max:          decodeOptionalValue(s.Max),
			OutOf:        decodeScale(s.OutOf),
		})
	}

	overall := decodeOptionalValue(overview.Overall)
	if overview.Overall == nil {
		overall = entities.ComputeAverage(grades)
	}

	return services.GradesResult{
		Grades: grades,
		Averages: entities.AverageOverview{
			Subjects:     subjects,
			Overall:      overall,
			ClassOverall: decodeOptionalValue(overview.ClassOverall),
		},
	}
}

func decodeAttachments(raw []RawAttachment) []entities.Attachment {
	if len(raw) == 0 {
		return nil
	}
	out := make([]entities.Attachment, 0, len(raw))
	for _, a := range raw {
		kind := entities.AttachmentFile
		if a.Kind == 0 {
			kind = entities.AttachmentLink
		}
		out = append(out, entities.Attachment{Type: kind, Name: a.Name, URL: a.URL})
	}
	return out
}

func decodeHomework(raw []RawHomework) []entities.Homework {
	out := make([]entities.Homework, 0, len(raw))
	for _, h := range raw {
		out = append(out, entities.Homework{
			ID:          h.ID,
			Subject:     h.Subject,
			Content:     h.Description,
			Due:         h.Deadline,
			Done:        h.Done,
			Attachments: decodeAttachments(h.Attachments),
		})
	}
	return out
}

func decodeClassType(kind string) (entities.ClassType, error) {
	switch kind {
	case "lesson":
		return entities.ClassLesson, nil
	case "activity":
		return entities.ClassActivity, nil
	case "detention":
		return entities.ClassDetention, nil
	default:
		return "", &services.DecodeError{Service: entities.ServicePronote, Field: "timetable.kind", Value: kind}
	}
}

func decodeClassStatus(item RawTimetableItem) entities.ClassStatus {
	switch {
	case item.Canceled:
		return entities.ClassStatusCanceled
	case item.Test:
		return entities.ClassStatusTest
	case item.Status != "":
		return entities.ClassStatusModified
	default:
		return entities.ClassStatusNormal
	}
}

func decodeTimetable(raw []RawTimetableItem) ([]entities.TimetableClass, error) {
	out := make([]entities.TimetableClass, 0, len(raw))
	for _, item := range raw {
		kind, err := decodeClassType(item.Kind)
		if err != nil {
			return nil, err
		}
		subject := item.Subject
		if subject == "" {
			subject = item.Title
		}
		out = append(out, entities.TimetableClass{
			ID:      item.ID,
			Type:    kind,
			Subject: subject,
			Start:   item.Start,
			End:     item.End,
			Status:  decodeClassStatus(item),
			Room:    strings.Join(item.Rooms, ", "),
			Teacher: strings.Join(item.Teachers, ", "),
		})
	}
	return out, nil
}

func decodeObservationKind(kind int) entities.ObservationKind {
	switch kind {
	case ObservationKindLogBook:
		return entities.ObservationNotebook
	case ObservationKindEncouragement:
		return entities.ObservationEncourage
	default:
		return entities.ObservationObservation
	}
}

func decodeNotebook(raw RawNotebook) entities.Attendance {
	att := entities.Attendance{
		Delays:       make([]entities.Delay, 0, len(raw.Delays)),
		Absences:     make([]entities.Absence, 0, len(raw.Absences)),
		Punishments:  make([]entities.Punishment, 0, len(raw.Punishments)),
		Observations: make([]entities.Observation, 0, len(raw.Observations)),
	}
	for _, d := range raw.Delays {
		att.Delays = append(att.Delays, entities.Delay{
			ID:            d.ID,
			Timestamp:     d.Date,
			Duration:      d.Minutes,
			Justified:     d.Justified,
			Justification: d.Justification,
			Reasons:       d.Reason,
		})
	}
	for _, a := range raw.Absences {
		att.Absences = append(att.Absences, entities.Absence{
			ID:        a.ID,
			From:      a.From,
			To:        a.To,
			Justified: a.Justified,
			Hours:     entities.FormatHours(a.HoursMissed*60 + a.MinutesMissed),
			Reasons:   a.Reason,
		})
	}
	for _, p := range raw.Punishments {
		att.Punishments = append(att.Punishments, entities.Punishment{
			ID:        p.ID,
			Timestamp: p.Date,
			Reason:    strings.Join(p.Reasons, ", "),
			Nature:    p.Title,
			Duration:  p.DurationMinutes,
			GivenBy:   p.GiverName,
		})
	}
	for _, o := range raw.Observations {
		att.Observations = append(att.Observations, entities.Observation{
			ID:          o.ID,
			Timestamp:   o.Date,
			Subject:     o.Subject,
			Name:        o.Name,
			Description: o.Description,
			Kind:        decodeObservationKind(o.Kind),
		})
	}
	return att
}

func decodeDiscussion(d RawDiscussion) entities.Chat {
	return entities.Chat{
		ID:        d.Key,
		Subject:   d.Subject,
		Recipient: d.Participants,
		Creator:   d.Creator,
		Date:      d.Date,
		Read:      d.Unread == 0,
	}
}

func decodeMessages(chatID string, raw []RawMessage) []entities.ChatMessage {
	out := make([]entities.ChatMessage, 0, len(raw))
	for _, m := range raw {
		out = append(out, entities.ChatMessage{
			ID:          m.ID,
			ChatID:      chatID,
			Author:      m.Author,
			Content:     m.Content,
			Date:        m.Created,
			Attachments: decodeAttachments(m.Attachments),
		})
	}
	return out
}

func decodeNews(raw []RawNews) []entities.Information {
	out := make([]entities.Information, 0, len(raw))
	for _, n := range raw {
		out = append(out, entities.Information{
			ID:          n.ID,
			Title:       n.Title,
			Author:      n.Author,
			Content:     n.Content,
			Date:        n.Date,
			Category:    n.Category,
			Read:        n.Read,
			Attachments: decodeAttachments(n.Attachments),
		})
	}
	return out
}
