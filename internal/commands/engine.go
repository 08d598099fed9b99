package commands

import (
	"log/slog"

	"github.com/klabast/wb-services/abfuhr-termine/internal/config"
	"github.com/klabast/wb-services/abfuhr-termine/internal/schedule"
)

// newEngine builds the schedule engine described by cfg
func newEngine(cfg config.Config, logger *slog.Logger) (*schedule.Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	locale, err := schedule.LocaleByName(cfg.Locale)
	if err != nil {
		return nil, err
	}
	rules, err := cfg.ClassifierRules()
	if err != nil {
		return nil, err
	}
	return schedule.New(schedule.Options{
		Dir:      cfg.Directory,
		Location: loc,
		Interval: cfg.Interval,
		Grace:    cfg.Grace,
		Rules:    rules,
		Locale:   locale,
		Logger:   logger,
	})
}
