package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// testLoc avoids depending on the system tz database
var testLoc = time.FixedZone("CET", 3600)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, testLoc)
}

func vevent(start, summary string) string {
	return "BEGIN:VEVENT\r\n" +
		"UID:" + start + "-" + strings.ToLower(summary) + "@test\r\n" +
		"DTSTAMP:20261001T000000Z\r\n" +
		"DTSTART;VALUE=DATE:" + start + "\r\n" +
		"SUMMARY:" + summary + "\r\n" +
		"END:VEVENT\r\n"
}

func calendar(events ...string) string {
	return "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//Test//Abfuhr//DE\r\n" +
		strings.Join(events, "") +
		"END:VCALENDAR\r\n"
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
