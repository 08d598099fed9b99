package schedule

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// CalendarExt is the file extension of calendar documents
const CalendarExt = ".ics"

// IsCalendarFile reports whether name carries the calendar extension
func IsCalendarFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), CalendarExt)
}

// ListCalendars returns the calendar documents directly inside dir, sorted
// by name. Subdirectories are not descended into.
func ListCalendars(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsCalendarFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
