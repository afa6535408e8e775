package ecoledirecte

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/services"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

var gradeMarkers = map[string]entities.GradeInformation{
	"abs":  entities.GradeInformationAbsent,
	"disp": entities.GradeInformationExempted,
	"ne":   entities.GradeInformationNotGraded,
	"inap": entities.GradeInformationUnfit,
	"nr":   entities.GradeInformationUnreturned,
}

// parseDate returns the zero time for empty or malformed input.
func parseDate(raw string, loc *time.Location) time.Time {
	raw = strings.TrimSpace(raw)
	layout := dateLayout
	if len(raw) > len(dateLayout) {
		layout = dateTimeLayout
		if len(raw) > len(dateTimeLayout) {
			raw = raw[:len(dateTimeLayout)]
		}
	}
	t, err := time.ParseInLocation(layout, raw, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseNumber reads a French formatted number ("15,5").
func parseNumber(raw string) (float64, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// decodeGradeValue maps numbers and the textual markers. Anything else is
// Missing.
func decodeGradeValue(raw string) entities.GradeValue {
	if info, ok := gradeMarkers[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return entities.Unavailable(info)
	}
	if v, ok := parseNumber(raw); ok {
		return entities.Graded(v)
	}
	return entities.Missing()
}

// parseDuration converts "HH:MM" to minutes.
func parseDuration(raw string) int {
	hours, minutes, found := strings.Cut(strings.TrimSpace(raw), ":")
	if !found {
		return 0
	}
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0
	}
	return h*60 + m
}

func decodeContent(encoded string) string {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return encoded
	}
	return string(data)
}

func stableID(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%x", sum[:12])
}

func decodePeriods(raw []RawPeriod, loc *time.Location) []entities.Period {
	periods := make([]entities.Period, 0, len(raw))
	for _, p := range raw {
		end := parseDate(p.End, loc)
		if !end.IsZero() {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		periods = append(periods, entities.Period{
			Name:  p.Name,
			Start: parseDate(p.Start, loc),
			End:   end,
		})
	}
	return periods
}

func decodeGrade(g RawGrade, loc *time.Location) entities.Grade {
	ts := parseDate(g.Date, loc)
	coefficient, ok := parseNumber(g.Coefficient)
	if !ok {
		coefficient = 1
	}
	student := decodeGradeValue(g.Value)
	if g.NotSignificant {
		student.Disabled = true
	}

	id := strconv.Itoa(g.ID)
	if g.ID == 0 {
		id = entities.GradeID(g.Subject, ts, g.Comment)
	}

	return entities.Grade{
		ID:          id,
		SubjectName: g.Subject,
		Comment:     g.Comment,
		Timestamp:   ts,
		Coefficient: coefficient,
		Student:     student,
		OutOf:       decodeGradeValue(g.OutOf),
		Average:     decodeGradeValue(g.Average),
		Min:         decodeGradeValue(g.Min),
		Max:         decodeGradeValue(g.Max),
	}
}

func decodeGrades(period RawPeriod, raw []RawGrade, loc *time.Location) services.GradesResult {
	grades := make([]entities.Grade, 0)
	for _, g := range raw {
		if g.PeriodCode != period.Code {
			continue
		}
		grades = append(grades, decodeGrade(g, loc))
	}

	subjects := make([]entities.SubjectAverage, 0, len(period.Subjects))
	for _, s := range period.Subjects {
		subjects = append(subjects, entities.SubjectAverage{
			SubjectName:  s.Subject,
			Average:      decodeGradeValue(s.Student),
			ClassAverage: decodeGradeValue(s.ClassAverage),
			Min:          decodeGradeValue(s.Min),
			Max:          decodeGradeValue(s.Max),
			OutOf:        entities.Graded(20),
		})
	}

	overall := decodeGradeValue(period.Overall)
	if _, ok := overall.Number(); !ok {
		overall = entities.ComputeAverage(grades)
	}

	return services.GradesResult{
		Grades: grades,
		Averages: entities.AverageOverview{
			Subjects:     subjects,
			Overall:      overall,
			ClassOverall: decodeGradeValue(period.ClassOverall),
		},
	}
}

func decodeDocuments(raw []RawDocument) []entities.Attachment {
	if len(raw) == 0 {
		return nil
	}
	out := make([]entities.Attachment, 0, len(raw))
	for _, d := range raw {
		out = append(out, entities.Attachment{Type: entities.AttachmentFile, Name: d.Name, URL: d.URL})
	}
	return out
}

func decodeHomework(raw []RawHomework, loc *time.Location) []entities.Homework {
	out := make([]entities.Homework, 0, len(raw))
	for _, h := range raw {
		out = append(out, entities.Homework{
			ID:          strconv.Itoa(h.ID),
			Subject:     h.Subject,
			Content:     decodeContent(h.ContentBase64),
			Due:         parseDate(h.Due, loc),
			Done:        h.Done,
			Attachments: decodeDocuments(h.Documents),
		})
	}
	return out
}

func decodeCourseKind(kind string) (entities.ClassType, error) {
	switch strings.ToUpper(kind) {
	case "COURS":
		return entities.ClassLesson, nil
	case "PERMANENCE", "EVENEMENT":
		return entities.ClassActivity, nil
	case "SANCTION":
		return entities.ClassDetention, nil
	case "CONGE":
		return entities.ClassVacation, nil
	default:
		return "", &services.DecodeError{Service: entities.ServiceEcoleDirecte, Field: "typeCours", Value: kind}
	}
}

func decodeTimetable(raw []RawCourse, loc *time.Location) ([]entities.TimetableClass, error) {
	out := make([]entities.TimetableClass, 0, len(raw))
	for _, c := range raw {
		kind, err := decodeCourseKind(c.Kind)
		if err != nil {
			return nil, err
		}
		status := entities.ClassStatusNormal
		switch {
		case c.Canceled:
			status = entities.ClassStatusCanceled
		case c.Modified:
			status = entities.ClassStatusModified
		}
		out = append(out, entities.TimetableClass{
			ID:      strconv.Itoa(c.ID),
			Type:    kind,
			Subject: c.Subject,
			Start:   parseDate(c.Start, loc),
			End:     parseDate(c.End, loc),
			Status:  status,
			Room:    c.Room,
			Teacher: c.Teacher,
		})
	}
	return out, nil
}

// decodeVieScolaire keeps the records dated inside period.
func decodeVieScolaire(raw RawVieScolaire, period entities.Period, loc *time.Location) entities.Attendance {
	att := entities.Attendance{
		Delays:       []entities.Delay{},
		Absences:     []entities.Absence{},
		Punishments:  []entities.Punishment{},
		Observations: []entities.Observation{},
	}

	for _, e := range raw.Events {
		ts := parseDate(e.Date, loc)
		if !period.Contains(ts) {
			continue
		}
		minutes := parseDuration(e.Duration)
		switch strings.ToLower(e.Kind) {
		case "retard":
			att.Delays = append(att.Delays, entities.Delay{
				ID:            strconv.Itoa(e.ID),
				Timestamp:     ts,
				Duration:      minutes,
				Justified:     e.Justified,
				Justification: e.Comment,
				Reasons:       e.Reason,
			})
		default:
			att.Absences = append(att.Absences, entities.Absence{
				ID:        strconv.Itoa(e.ID),
				From:      ts,
				To:        ts.Add(time.Duration(minutes) * time.Minute),
				Justified: e.Justified,
				Hours:     entities.FormatHours(minutes),
				Reasons:   e.Reason,
			})
		}
	}

	for _, s := range raw.Sanctions {
		ts := parseDate(s.Date, loc)
		if !period.Contains(ts) {
			continue
		}
		att.Punishments = append(att.Punishments, entities.Punishment{
			ID:        strconv.Itoa(s.ID),
			Timestamp: ts,
			Reason:    s.Reason,
			Nature:    s.Label,
			Duration:  parseDuration(s.Duration),
			GivenBy:   s.By,
		})
	}

	for _, e := range raw.Encouragements {
		ts := parseDate(e.Date, loc)
		if !period.Contains(ts) {
			continue
		}
		att.Observations = append(att.Observations, entities.Observation{
			ID:          strconv.Itoa(e.ID),
			Timestamp:   ts,
			Subject:     e.Subject,
			Name:        e.Label,
			Description: e.Comment,
			Kind:        entities.ObservationEncourage,
		})
	}

	return att
}

func decodeMessages(raw []RawMessage, loc *time.Location) []entities.Chat {
	out := make([]entities.Chat, 0, len(raw))
	for _, m := range raw {
		out = append(out, entities.Chat{
			ID:        strconv.Itoa(m.ID),
			Subject:   m.Subject,
			Recipient: m.To,
			Creator:   m.From,
			Date:      parseDate(m.Date, loc),
			Read:      m.Read,
		})
	}
	return out
}

func decodeMessageContent(chatID string, raw RawMessageContent, loc *time.Location) entities.ChatMessage {
	return entities.ChatMessage{
		ID:          strconv.Itoa(raw.ID),
		ChatID:      chatID,
		Author:      raw.From,
		Content:     decodeContent(raw.ContentBase64),
		Date:        parseDate(raw.Date, loc),
		Attachments: decodeDocuments(raw.Files),
	}
}

func decodeTimeline(raw []RawTimelineItem, loc *time.Location) []entities.Information {
	out := make([]entities.Information, 0, len(raw))
	for _, item := range raw {
		out = append(out, entities.Information{
			ID:       stableID(item.Date, item.Type, item.Title),
			Title:    item.Title,
			Author:   item.Author,
			Content:  item.Content,
			Date:     parseDate(item.Date, loc),
			Category: item.Type,
			Read:     true,
		})
	}
	return out
}
