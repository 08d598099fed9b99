package schedule

import "strings"

const (
	alarmBegin = "BEGIN:VALARM"
	alarmEnd   = "END:VALARM"
)

// StripAlarms removes every VALARM block, marker lines included. Alarm
// triggers often carry relative offsets the parser rejects, and only the
// event start and summary are needed. A block without END:VALARM runs to
// the end of the document.
func StripAlarms(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inAlarm := false
	for _, line := range strings.SplitAfter(text, "\n") {
		marker := strings.ToUpper(strings.TrimLeft(line, " \t"))
		switch {
		case strings.HasPrefix(marker, alarmBegin):
			inAlarm = true
		case strings.HasPrefix(marker, alarmEnd):
			inAlarm = false
		case !inAlarm:
			b.WriteString(line)
		}
	}
	return b.String()
}
