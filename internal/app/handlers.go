package app

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/klabast/wb-services/abfuhr-termine/internal/schedule"
)

// Tools lists the invocable tools
var Tools = []Tool{
	{
		Name:        ToolWasteSchedule,
		Description: "Get the next collection dates for all waste types. Use this to answer questions about when the trash will be collected.",
	},
}

// WasteScheduleText renders the next dates as the multi-line tool answer
func WasteScheduleText(store *schedule.Store) string {
	view := store.View()
	next := func(c schedule.Category) string {
		if d, ok := view.Next(c); ok {
			return d.Format(schedule.DateLayout)
		}
		return "unknown"
	}

	var b strings.Builder
	b.WriteString("Next Waste Collection Dates:\n")
	fmt.Fprintf(&b, "- Recycling (Gelber Sack): %s\n", next(schedule.Recycling))
	fmt.Fprintf(&b, "- Bio Waste: %s\n", next(schedule.Organic))
	fmt.Fprintf(&b, "- Residual Waste (Restmüll): %s\n", next(schedule.Residual))
	fmt.Fprintf(&b, "- Paper Waste: %s", next(schedule.Paper))
	return b.String()
}

// handleThing serves the thing description
func (s *Server) handleThing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.props.Describe())
}

// handleProperties returns all property values
func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.props.Values())
}

// handleProperty returns {name: value} for one property
// URL: /properties/{name}
func (s *Server) handleProperty(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	value, ok := s.props.Value(name)
	if !ok {
		writeError(w, http.StatusNotFound, ErrUnknownProperty)
		return
	}
	writeJSON(w, http.StatusOK, map[string]PropertyValue{name: value})
}

// handleSchedule returns the next date of every category together with
// its soon flag and reminder text
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	view := s.store.View()
	resp := ScheduleResponse{
		Categories:   make(map[string]CategoryStatus, len(schedule.Categories)),
		ScannedFiles: view.Files(),
	}
	if resp.ScannedFiles == nil {
		resp.ScannedFiles = []string{}
	}
	if !view.BuiltAt().IsZero() {
		resp.RefreshedAt = view.BuiltAt().Format(time.RFC3339)
	}

	for _, c := range schedule.Categories {
		date, ok := view.Next(c)
		if !ok {
			resp.Categories[string(c)] = CategoryStatus{}
			continue
		}
		resp.Categories[string(c)] = CategoryStatus{
			Date:     date.Format(schedule.DateLayout),
			Soon:     view.IsSoon(date),
			Reminder: view.Reminder(date),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleTools lists the available tools
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]Tool{"tools": Tools})
}

// handleToolCall invokes a tool by name
// URL: /api/tools/{tool}
func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "tool") {
	case ToolWasteSchedule:
		writeJSON(w, http.StatusOK, ToolResult{Content: WasteScheduleText(s.store)})
	default:
		writeError(w, http.StatusNotFound, ErrUnknownTool)
	}
}

// handleDownload exports all dates as ICS, CSV or JSON
// Query: format=ics|csv|json, categories=a,b (optional)
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	switch format {
	case "ics", "csv", "json":
	default:
		writeError(w, http.StatusBadRequest, ErrInvalidFormat)
		return
	}

	set, err := parseCategories(r.URL.Query().Get("categories"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidCategory)
		return
	}

	dates := filterDates(s.store.Snapshot().All(), set)
	now := s.store.Now()

	switch format {
	case "ics":
		GenerateICS(w, dates, ParseReminders(r), s.store.Location(), now)
	case "csv":
		GenerateCSV(w, dates)
	case "json":
		GenerateJSON(w, dates, now)
	}
}

// handleSubscribe serves the subscription feed with dates from the
// previous year onwards
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	set, err := parseCategories(r.URL.Query().Get("categories"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrInvalidCategory)
		return
	}

	now := s.store.Now()
	minYear := now.In(s.store.Location()).Year() - 1

	var dates []schedule.CollectionDate
	for _, d := range filterDates(s.store.Snapshot().All(), set) {
		if d.Date.Year() >= minYear {
			dates = append(dates, d)
		}
	}
	GenerateSubscriptionICS(w, dates, s.store.Location(), now)
}

// handleReload schedules an out-of-band refresh
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.reloader.Trigger()
	s.logger.Info("manual reload scheduled", "remote", r.RemoteAddr)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Warn("write health response", "error", err)
	}
}
