package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/klabast/wb-services/abfuhr-termine/internal/schedule"
)

// PropertyValue is a property value: a date string, a bool or a reminder text
type PropertyValue = any

// Properties caches the exposed property values. The engine listener only
// calls Notify; Run recomputes the cache off the refresh path.
type Properties struct {
	store  *schedule.Store
	logger *slog.Logger
	dirty  chan struct{}

	mu     sync.RWMutex
	values map[string]PropertyValue
}

// NewProperties returns a cache filled from the current snapshot
func NewProperties(store *schedule.Store, logger *slog.Logger) *Properties {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Properties{
		store:  store,
		logger: logger,
		dirty:  make(chan struct{}, 1),
	}
	p.Refresh()
	return p
}

// PropertyNames lists every exposed property in a stable order
func PropertyNames() []string {
	names := make([]string, 0, len(schedule.Categories)*3+1)
	for _, c := range schedule.Categories {
		names = append(names, nextProperty(c), soonProperty(c), reminderProperty(c))
	}
	return append(names, ScannedFilesProperty)
}

func nextProperty(c schedule.Category) string     { return "next_" + string(c) }
func soonProperty(c schedule.Category) string     { return "next_" + string(c) + "_soon" }
func reminderProperty(c schedule.Category) string { return "next_" + string(c) + "_reminder" }

// Notify marks the cache stale. It never blocks; notifications arriving
// while one is pending collapse into it.
func (p *Properties) Notify() {
	select {
	case p.dirty <- struct{}{}:
	default:
	}
}

// Run recomputes the cache after every Notify until ctx is done
func (p *Properties) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.dirty:
			p.Refresh()
		}
	}
}

// Refresh recomputes every value from one store view
func (p *Properties) Refresh() {
	view := p.store.View()
	values := make(map[string]PropertyValue, len(schedule.Categories)*3+1)
	for _, c := range schedule.Categories {
		date, ok := view.Next(c)
		if !ok {
			values[nextProperty(c)] = ""
			values[soonProperty(c)] = false
			values[reminderProperty(c)] = ""
			continue
		}
		values[nextProperty(c)] = date.Format(schedule.DateLayout)
		values[soonProperty(c)] = view.IsSoon(date)
		values[reminderProperty(c)] = view.Reminder(date)
	}
	values[ScannedFilesProperty] = strings.Join(view.Files(), ", ")

	p.mu.Lock()
	p.values = values
	p.mu.Unlock()

	p.logger.Debug("properties updated", "files", values[ScannedFilesProperty])
}

// Values returns a copy of all property values
func (p *Properties) Values() map[string]PropertyValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]PropertyValue, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Value returns one property value
func (p *Properties) Value(name string) (PropertyValue, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[name]
	return v, ok
}

// Describe builds the thing description listing every property
func (p *Properties) Describe() Thing {
	props := make(map[string]PropertyMeta, len(schedule.Categories)*3+1)
	for _, c := range schedule.Categories {
		label := WasteTypes[c]
		props[nextProperty(c)] = PropertyMeta{
			Title:       "Next " + label,
			Type:        "string",
			Description: "Date of the next " + label + " collection (YYYY-MM-DD)",
			ReadOnly:    true,
			Links:       []Link{{Href: "/properties/" + nextProperty(c)}},
		}
		props[soonProperty(c)] = PropertyMeta{
			Title:       label + " soon",
			Type:        "boolean",
			Description: "True when the next " + label + " collection is today or tomorrow",
			ReadOnly:    true,
			Links:       []Link{{Href: "/properties/" + soonProperty(c)}},
		}
		props[reminderProperty(c)] = PropertyMeta{
			Title:       label + " reminder",
			Type:        "string",
			Description: "Time until the next " + label + " collection",
			ReadOnly:    true,
			Links:       []Link{{Href: "/properties/" + reminderProperty(c)}},
		}
	}
	props[ScannedFilesProperty] = PropertyMeta{
		Title:       "Scanned ICS files",
		Type:        "string",
		Description: "Calendar files read by the last refresh",
		ReadOnly:    true,
		Links:       []Link{{Href: "/properties/" + ScannedFilesProperty}},
	}

	return Thing{
		Context:     "https://webthings.io/schemas",
		ID:          ThingID,
		Title:       ThingTitle,
		Type:        []string{ThingCapability},
		Description: ThingDescription,
		Properties:  props,
		Links: []Link{
			{Rel: "properties", Href: "/properties"},
			{Rel: "tools", Href: "/api/tools"},
		},
	}
}
