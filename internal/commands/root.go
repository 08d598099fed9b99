package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/klabast/wb-services/abfuhr-termine/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "abfuhr-termine",
	Short: "Next waste collection dates from local iCalendar files",
	Long: `abfuhr-termine reads the waste collection calendars (.ics) of a
directory, keeps the next pickup date per category (organic, recycling,
paper, residual) and serves them over HTTP as properties, a tool call
and calendar exports.

The directory is re-read periodically and whenever a calendar file changes.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/abfuhr-termine/config.yaml)")
	rootCmd.PersistentFlags().String("dir", "", "directory holding the calendar files")
	rootCmd.PersistentFlags().String("timezone", config.DefaultTimezone, "time zone for day boundaries")
	rootCmd.PersistentFlags().String("locale", config.DefaultLocale, "reminder language (de, en)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	bindFlag("directory", rootCmd.PersistentFlags().Lookup("dir"))
	bindFlag("timezone", rootCmd.PersistentFlags().Lookup("timezone"))
	bindFlag("locale", rootCmd.PersistentFlags().Lookup("locale"))
	bindFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "abfuhr-termine"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

// loadConfig returns the validated configuration and a logger built from it
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}
