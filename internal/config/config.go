package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/klabast/wb-services/abfuhr-termine/internal/schedule"
)

const (
	DefaultListen   = ":8080"
	DefaultTimezone = "Europe/Berlin"
	DefaultLocale   = "de"
	DefaultAuthFile = "auth.secret"
	EnvPrefix       = "ABFUHR"
)

// Rule is one configured keyword -> category mapping
type Rule struct {
	Keyword  string `mapstructure:"keyword"`
	Category string `mapstructure:"category"`
}

// Config is the runtime configuration of the service
type Config struct {
	// Directory holds the calendar documents (required).
	Directory string `mapstructure:"directory"`
	Listen    string `mapstructure:"listen"`

	Interval time.Duration `mapstructure:"interval"`
	Grace    time.Duration `mapstructure:"grace"`
	Timezone string        `mapstructure:"timezone"`
	Locale   string        `mapstructure:"locale"`

	// Watch triggers an extra refresh when calendar files change.
	Watch bool `mapstructure:"watch"`

	// AuthFile is the username:argon2id-hash file guarding manual reloads.
	AuthFile string `mapstructure:"auth_file"`

	// LogFormat is "text" (default) or "json".
	LogFormat string `mapstructure:"log_format"`
	LogLevel  string `mapstructure:"log_level"`

	// Rules overrides the classification keywords; order is priority.
	Rules []Rule `mapstructure:"rules"`
}

// SetDefaults registers defaults and environment binding on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("directory", "")
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("interval", schedule.DefaultInterval)
	v.SetDefault("grace", schedule.DefaultGrace)
	v.SetDefault("timezone", DefaultTimezone)
	v.SetDefault("locale", DefaultLocale)
	v.SetDefault("watch", true)
	v.SetDefault("auth_file", DefaultAuthFilePath())
	v.SetDefault("log_format", "text")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// plain AUTH_FILE is accepted as well
	_ = v.BindEnv("auth_file", EnvPrefix+"_AUTH_FILE", "AUTH_FILE")
}

// DefaultAuthFilePath is auth.secret next to the executable
func DefaultAuthFilePath() string {
	execPath, err := os.Executable()
	if err != nil {
		return DefaultAuthFile
	}
	return filepath.Join(filepath.Dir(execPath), DefaultAuthFile)
}

// Load unmarshals and validates the configuration held by v
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot check by type alone
func (c Config) Validate() error {
	var errs []error
	if c.Directory == "" {
		errs = append(errs, errors.New("directory is required"))
	}
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", c.Interval))
	}
	if c.Grace < 0 {
		errs = append(errs, fmt.Errorf("grace must not be negative, got %s", c.Grace))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := schedule.LocaleByName(c.Locale); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ClassifierRules(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Location resolves the configured time zone
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ClassifierRules converts the configured rules; none configured means the
// default German keywords.
func (c Config) ClassifierRules() ([]schedule.Rule, error) {
	if len(c.Rules) == 0 {
		return schedule.DefaultRules, nil
	}
	rules := make([]schedule.Rule, 0, len(c.Rules))
	for i, r := range c.Rules {
		category, err := schedule.ParseCategory(r.Category)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, schedule.Rule{Keyword: r.Keyword, Category: category})
	}
	if _, err := schedule.NewClassifier(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// SlogLevel parses LogLevel
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}
