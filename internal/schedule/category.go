package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Category is a waste category tracked by the schedule
type Category string

const (
	Organic   Category = "organic"
	Recycling Category = "recycling"
	Paper     Category = "paper"
	Residual  Category = "residual"
)

// Categories lists all categories in presentation order
var Categories = []Category{Organic, Recycling, Paper, Residual}

// Valid reports whether c is one of the four known categories
func (c Category) Valid() bool {
	switch c {
	case Organic, Recycling, Paper, Residual:
		return true
	}
	return false
}

// ParseCategory converts a configuration or query value into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// CollectionDate is a pickup day tagged with its category
type CollectionDate struct {
	Date     time.Time `json:"date"`
	Category Category  `json:"category"`
}

// Day truncates t to midnight of its calendar date in loc
func Day(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DateLayout is the wire format for collection dates
const DateLayout = "2006-01-02"
