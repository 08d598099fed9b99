package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/abfuhr-termine/internal/app"
	"github.com/klabast/wb-services/abfuhr-termine/internal/schedule"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Read the calendar directory once and print the next dates",
	Long: `Run a single refresh and print the next pickup per category together
with the result for every calendar file.

Examples:
  abfuhr-termine scan --dir /srv/abfall
  abfuhr-termine scan --dir ./calendars --locale en`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	report, err := engine.Refresh(cmd.Context())
	if err != nil {
		return err
	}

	renderNext(engine.Store())
	fmt.Println()
	renderFiles(report)
	return nil
}

func renderNext(store *schedule.Store) {
	view := store.View()
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Category", "Name", "Next", "Soon", "Reminder"})
	for _, c := range schedule.Categories {
		date, ok := view.Next(c)
		if !ok {
			t.AppendRow(table.Row{c, app.WasteTypes[c], "-", "", ""})
			continue
		}
		t.AppendRow(table.Row{c, app.WasteTypes[c], date.Format(schedule.DateLayout), view.IsSoon(date), view.Reminder(date)})
	}
	t.Render()
}

func renderFiles(report *schedule.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"File", "Events", "Dates", "Status"})
	for _, f := range report.Files {
		status := "ok"
		if f.Err != nil {
			status = f.Err.Error()
		}
		t.AppendRow(table.Row{f.Path, f.Events, len(f.Dates), status})
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d files", len(report.Files)),
		"",
		"",
		fmt.Sprintf("%d failed in %s", len(report.Failed()), report.Duration.Round(time.Millisecond)),
	})
	t.Render()
}
