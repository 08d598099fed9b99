package schedule

import (
	"fmt"
	"time"
)

// Locale holds the wording used by reminder texts
type Locale struct {
	Today    string
	Tomorrow string
	// On prefixes the weekday abbreviation for pickups within a week
	On string
	// InDays is a format string taking the day count
	InDays   string
	Weekdays [7]string // indexed by time.Weekday
}

var (
	German = Locale{
		Today:    "heute",
		Tomorrow: "morgen",
		On:       "am ",
		InDays:   "in %d T.",
		Weekdays: [7]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"},
	}

	English = Locale{
		Today:    "today",
		Tomorrow: "tomorrow",
		On:       "on ",
		InDays:   "in %d days",
		Weekdays: [7]string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"},
	}
)

// LocaleByName resolves a configured locale name
func LocaleByName(name string) (Locale, error) {
	switch name {
	case "", "de":
		return German, nil
	case "en":
		return English, nil
	}
	return Locale{}, fmt.Errorf("unknown locale %q", name)
}

// Reminder renders a pickup that is days away and falls on date
func (l Locale) Reminder(days int, date time.Time) string {
	switch {
	case days < 1:
		return l.Today
	case days < 2:
		return l.Tomorrow
	case days < 7:
		return l.On + l.Weekdays[date.Weekday()]
	default:
		return fmt.Sprintf(l.InDays, days)
	}
}

// DaysUntil counts calendar days from now's date to date's date in loc.
// Past dates give negative values.
func DaysUntil(now, date time.Time, loc *time.Location) int {
	from := Day(now, loc)
	to := Day(date, loc)
	// compare as UTC dates so DST days still count as one
	fromUTC := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toUTC := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toUTC.Sub(fromUTC).Hours() / 24)
}

// IsSoon is true when date is at most one day ahead of now
func IsSoon(now, date time.Time, loc *time.Location) bool {
	return DaysUntil(now, date, loc) <= 1
}
