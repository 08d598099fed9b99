package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/klabast/wb-services/abfuhr-termine/internal/schedule"
)

// ExportEvent is one collection date in the CSV and JSON exports
type ExportEvent struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Reminder is an alarm attached to every event of an ICS download
type Reminder struct {
	DaysBefore int
	Time       string // HH:MM
}

// ExportEvents converts collection dates into their export rows
func ExportEvents(dates []schedule.CollectionDate) []ExportEvent {
	events := make([]ExportEvent, 0, len(dates))
	for _, d := range dates {
		events = append(events, ExportEvent{
			Date:        d.Date.Format(schedule.DateLayout),
			Type:        string(d.Category),
			Description: WasteTypes[d.Category],
		})
	}
	return events
}

// ParseReminders reads the reminder query parameters of an ICS download
// (reminder2Days/time2Days, reminder1Day/time1Day, reminderSameDay/timeSameDay).
func ParseReminders(r *http.Request) []Reminder {
	q := r.URL.Query()
	var reminders []Reminder
	for _, p := range []struct {
		flag, time string
		days       int
	}{
		{"reminder2Days", "time2Days", 2},
		{"reminder1Day", "time1Day", 1},
		{"reminderSameDay", "timeSameDay", 0},
	} {
		if q.Get(p.flag) == "true" && q.Get(p.time) != "" {
			reminders = append(reminders, Reminder{DaysBefore: p.days, Time: q.Get(p.time)})
		}
	}
	return reminders
}

func eventUID(d schedule.CollectionDate) string {
	return fmt.Sprintf("%s-%s@%s", d.Date.Format(schedule.DateLayout), d.Category, ICSUIDDomain)
}

func newCalendar(loc *time.Location) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(ICSProductID)
	cal.SetXWRCalName(ICSName)
	cal.SetXWRTimezone(loc.String())
	cal.SetCalscale("GREGORIAN")
	return cal
}

func addEvent(cal *ics.Calendar, d schedule.CollectionDate, stamp time.Time, reminders []Reminder) {
	name := WasteTypes[d.Category]
	event := cal.AddEvent(eventUID(d))
	event.SetDtStampTime(stamp)
	event.SetAllDayStartAt(d.Date)
	event.SetAllDayEndAt(d.Date.AddDate(0, 0, 1))
	event.SetSummary(name)
	event.SetDescription("Abfuhr " + name)
	for _, rem := range reminders {
		addAlarm(event, rem.DaysBefore, rem.Time, name)
	}
}

// GenerateICS writes the dates as a downloadable iCalendar file with optional reminders
func GenerateICS(w http.ResponseWriter, dates []schedule.CollectionDate, reminders []Reminder, loc *time.Location, now time.Time) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=abfuhrtermine.ics")

	cal := newCalendar(loc)
	for _, d := range dates {
		addEvent(cal, d, now, reminders)
	}
	if err := cal.SerializeTo(w); err != nil {
		slog.Warn("write ics export", "error", err)
	}
}

// alarmTrigger returns the TRIGGER duration for an alarm daysBefore an
// all-day event at alarmTime (HH:MM). ok is false for malformed times.
func alarmTrigger(daysBefore int, alarmTime string) (trigger string, ok bool) {
	parts := strings.Split(alarmTime, ":")
	if len(parts) != 2 {
		return "", false
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", false
	}

	// all-day events start at midnight; the trigger is relative to that
	offset := time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute - time.Duration(daysBefore)*24*time.Hour

	totalMinutes := int(offset.Minutes())
	sign := ""
	if totalMinutes < 0 {
		sign = "-"
		totalMinutes = -totalMinutes
	}
	days := totalMinutes / (24 * 60)
	rest := totalMinutes % (24 * 60)
	return fmt.Sprintf("%sP%dDT%dH%dM", sign, days, rest/60, rest%60), true
}

// addAlarm adds a display alarm firing daysBefore the event at alarmTime (HH:MM).
// Malformed times are ignored.
func addAlarm(event *ics.VEvent, daysBefore int, alarmTime string, description string) {
	trigger, ok := alarmTrigger(daysBefore, alarmTime)
	if !ok {
		return
	}
	alarm := event.AddAlarm()
	alarm.SetAction(ics.ActionDisplay)
	alarm.SetDescription("Erinnerung: " + description)
	alarm.SetTrigger(trigger)
}

// GenerateSubscriptionICS writes an inline iCalendar feed for calendar subscriptions.
// Unlike GenerateICS it sets no attachment header, adds METHOD:PUBLISH and a
// refresh hint, and carries no alarms.
func GenerateSubscriptionICS(w http.ResponseWriter, dates []schedule.CollectionDate, loc *time.Location, now time.Time) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")

	cal := newCalendar(loc)
	cal.SetMethod(ics.MethodPublish)
	cal.SetXPublishedTTL("PT1H")
	for _, d := range dates {
		addEvent(cal, d, now, nil)
	}
	if err := cal.SerializeTo(w); err != nil {
		slog.Warn("write subscription feed", "error", err)
	}
}

// GenerateCSV writes the dates as a CSV download
func GenerateCSV(w http.ResponseWriter, dates []schedule.CollectionDate) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=abfuhrtermine.csv")

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Datum", "Abfalltyp", "Beschreibung"})
	for _, e := range ExportEvents(dates) {
		_ = cw.Write([]string{e.Date, e.Type, e.Description})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Warn("write csv export", "error", err)
	}
}

// GenerateJSON writes the dates as a JSON download
func GenerateJSON(w http.ResponseWriter, dates []schedule.CollectionDate, generatedAt time.Time) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=abfuhrtermine.json")

	data := map[string]any{
		"generated_at": generatedAt.Format(time.RFC3339),
		"events":       ExportEvents(dates),
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("encode json export", "error", err)
	}
}
