package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/klabast/wb-services/abfuhr-termine/internal/app"
	"github.com/klabast/wb-services/abfuhr-termine/internal/config"
	"github.com/klabast/wb-services/abfuhr-termine/internal/schedule"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the next collection dates over HTTP",
	Long: `Start the refresh loop and the HTTP server.

Examples:
  abfuhr-termine serve --dir /srv/abfall
  abfuhr-termine serve --dir ./calendars --listen :9090 --interval 5m
  ABFUHR_DIRECTORY=/srv/abfall abfuhr-termine serve --watch=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("listen", config.DefaultListen, "HTTP listen address")
	serveCmd.Flags().Duration("interval", schedule.DefaultInterval, "refresh interval")
	serveCmd.Flags().Duration("grace", schedule.DefaultGrace, "how long a pickup stays next after midnight of its day")
	serveCmd.Flags().Bool("watch", true, "refresh when calendar files change")
	serveCmd.Flags().String("auth-file", "", "username:hash file protecting manual reloads (env AUTH_FILE)")

	bindFlag("listen", serveCmd.Flags().Lookup("listen"))
	bindFlag("interval", serveCmd.Flags().Lookup("interval"))
	bindFlag("grace", serveCmd.Flags().Lookup("grace"))
	bindFlag("watch", serveCmd.Flags().Lookup("watch"))
	bindFlag("auth_file", serveCmd.Flags().Lookup("auth-file"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	auth, err := app.LoadAuth(cfg.AuthFile, logger)
	if err != nil {
		return fmt.Errorf("failed to load auth credentials: %w", err)
	}

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	props := app.NewProperties(engine.Store(), logger)
	cancelListener := engine.Subscribe(props.Notify)
	defer cancelListener()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           app.NewServer(engine.Store(), engine, props, auth, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := engine.Start(ctx); err != nil {
		return err
	}
	defer engine.Stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return props.Run(gctx) })

	if cfg.Watch {
		watcher, err := schedule.NewWatcher(cfg.Directory, func(string) { engine.Trigger() }, logger)
		if err != nil {
			// polling still works without change notifications
			logger.Warn("directory watch unavailable", "dir", cfg.Directory, "error", err)
		} else {
			g.Go(func() error { return watcher.Run(gctx) })
		}
	}

	g.Go(func() error {
		logger.Info("starting abfuhr-termine", "listen", cfg.Listen, "dir", cfg.Directory)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
