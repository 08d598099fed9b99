package schedule

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func TestListCalendars(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/cal/b.ics", calendar())
	writeFile(t, fs, "/cal/a.ICS", calendar())
	writeFile(t, fs, "/cal/notes.txt", "x")
	writeFile(t, fs, "/cal/ics", "x")
	writeFile(t, fs, "/cal/sub/nested.ics", calendar())
	if err := fs.MkdirAll("/cal/dir.ics", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	got, err := ListCalendars(fs, "/cal")
	if err != nil {
		t.Fatalf("ListCalendars() failed: %v", err)
	}

	want := []string{"/cal/a.ICS", "/cal/b.ics"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListCalendars() mismatch (-want +got):\n%s", diff)
	}
}

func TestListCalendarsEmptyDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/cal", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	got, err := ListCalendars(fs, "/cal")
	if err != nil {
		t.Fatalf("ListCalendars() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no files, got %v", got)
	}
}

func TestListCalendarsMissingDir(t *testing.T) {
	if _, err := ListCalendars(afero.NewMemMapFs(), "/missing"); err == nil {
		t.Error("Expected error for missing directory")
	}
}
