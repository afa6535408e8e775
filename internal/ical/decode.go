package ical

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/mrlokans/schooldesk/internal/entities"
	"github.com/mrlokans/schooldesk/internal/schoolyear"
)

func property(event *ics.VEvent, name ics.ComponentProperty) string {
	if p := event.GetProperty(name); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

// decodeEvent turns a VEVENT into a lesson tagged with source. Events
// without a start are rejected; a missing end collapses to the start.
func decodeEvent(event *ics.VEvent, source string) (entities.TimetableClass, error) {
	start, err := event.GetStartAt()
	if err != nil {
		if start, err = event.GetAllDayStartAt(); err != nil {
			return entities.TimetableClass{}, fmt.Errorf("event %q has no usable start: %w", event.Id(), err)
		}
	}

	end, err := event.GetEndAt()
	if err != nil {
		if end, err = event.GetAllDayEndAt(); err != nil {
			end = start
		}
	}
	if end.Before(start) {
		end = start
	}

	status := entities.ClassStatusNormal
	if strings.EqualFold(property(event, ics.ComponentPropertyStatus), "CANCELLED") {
		status = entities.ClassStatusCanceled
	}

	return entities.TimetableClass{
		ID:      event.Id(),
		Type:    entities.ClassLesson,
		Subject: property(event, ics.ComponentPropertySummary),
		Start:   start,
		End:     end,
		Status:  status,
		Room:    property(event, ics.ComponentPropertyLocation),
		Source:  source,
	}, nil
}

// decodeCalendar groups the decodable events of cal by epoch week relative
// to yearStart. It also counts the events it had to drop: no usable start,
// or outside the supported weeks.
func decodeCalendar(cal *ics.Calendar, source string, yearStart time.Time) (map[int][]entities.TimetableClass, int) {
	weeks := make(map[int][]entities.TimetableClass)
	skipped := 0
	for _, event := range cal.Events() {
		class, err := decodeEvent(event, source)
		if err != nil {
			skipped++
			continue
		}
		week := schoolyear.WeekNumber(yearStart, class.Start)
		if !schoolyear.InRange(week) {
			skipped++
			continue
		}
		weeks[week] = append(weeks[week], class)
	}
	return weeks, skipped
}
