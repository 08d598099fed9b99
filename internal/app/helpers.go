package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/klabast/wb-services/abfuhr-termine/internal/schedule"
)

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

// writeError writes {"error": msg}
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseCategories reads a comma separated category filter. An empty
// filter selects every category.
func parseCategories(raw string) (map[schedule.Category]bool, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	set := make(map[schedule.Category]bool)
	for _, part := range strings.Split(raw, ",") {
		c, err := schedule.ParseCategory(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		set[c] = true
	}
	return set, nil
}

// filterDates keeps the dates whose category is in set; a nil set keeps all
func filterDates(dates []schedule.CollectionDate, set map[schedule.Category]bool) []schedule.CollectionDate {
	if set == nil {
		return dates
	}
	filtered := make([]schedule.CollectionDate, 0, len(dates))
	for _, d := range dates {
		if set[d.Category] {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
