package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// Event is the part of a VEVENT the schedule consumes
type Event struct {
	Start   time.Time
	Summary string
}

// ParseError reports a calendar document that could not be turned into events
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return "parse calendar: " + e.Err.Error()
	}
	return fmt.Sprintf("parse calendar %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errMissingStart = errors.New("event without DTSTART")
	errNoCalendar   = errors.New("document does not start with BEGIN:VCALENDAR")
	errTruncated    = errors.New("document has no END:VCALENDAR")
)

// ParseEvents parses sanitized calendar text. Event starts are reduced to
// day granularity in loc; all-day dates keep their calendar date
// regardless of loc.
func ParseEvents(text string, loc *time.Location) ([]Event, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	if err := checkEnvelope(text); err != nil {
		return nil, &ParseError{Err: err}
	}

	cal, err := ics.ParseCalendar(strings.NewReader(text))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	vevents := cal.Events()
	events := make([]Event, 0, len(vevents))
	for i, ev := range vevents {
		start, err := eventStart(ev, loc)
		if err != nil {
			return nil, &ParseError{Err: fmt.Errorf("event %d: %w", i, err)}
		}

		var summary string
		if p := ev.GetProperty(ics.ComponentPropertySummary); p != nil {
			summary = p.Value
		}
		events = append(events, Event{Start: start, Summary: summary})
	}
	return events, nil
}

// checkEnvelope rejects documents that are not a complete VCALENDAR
// before they reach the parser, which is lenient about both ends.
func checkEnvelope(text string) error {
	begun, ended := false, false
	for _, line := range strings.Split(text, "\n") {
		line = strings.ToUpper(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		if !begun {
			if line != "BEGIN:VCALENDAR" {
				return errNoCalendar
			}
			begun = true
			continue
		}
		ended = line == "END:VCALENDAR"
	}
	if !begun {
		return errNoCalendar
	}
	if !ended {
		return errTruncated
	}
	return nil
}

func eventStart(ev *ics.VEvent, loc *time.Location) (time.Time, error) {
	prop := ev.GetProperty(ics.ComponentPropertyDtStart)
	if prop == nil {
		return time.Time{}, errMissingStart
	}

	if !strings.Contains(prop.Value, "T") {
		// VALUE=DATE: take the date as written, not as an instant
		start, err := ev.GetAllDayStartAt()
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc), nil
	}

	start, err := ev.GetStartAt()
	if err != nil {
		return time.Time{}, err
	}
	return Day(start, loc), nil
}
