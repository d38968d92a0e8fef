package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ReminderConfig controls how the daemon arms reminder timers.
type ReminderConfig struct {
	// HorizonHours is how far ahead the arm sweep looks for upcoming
	// reminders. Timers are only armed inside this window.
	HorizonHours int `mapstructure:"horizon_hours" yaml:"horizon_hours"`

	// SweepIntervalMin is how often (in minutes) the sweep re-runs.
	SweepIntervalMin int `mapstructure:"sweep_interval_min" yaml:"sweep_interval_min"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// DatabasePath is the SQLite file backing the key-value store.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	Reminders ReminderConfig `mapstructure:"reminders" yaml:"reminders"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/planifier/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "planifier", "config.yaml")
}

func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "planifier.db")
	}
	return filepath.Join(home, ".local", "share", "planifier", "planifier.db")
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		DatabasePath: defaultDatabasePath(),
		LogLevel:     "info",
		Reminders: ReminderConfig{
			HorizonHours:     24,
			SweepIntervalMin: 30,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("database_path", defaultDatabasePath())
	v.SetDefault("log_level", "info")
	v.SetDefault("reminders.horizon_hours", 24)
	v.SetDefault("reminders.sweep_interval_min", 30)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.Reminders.HorizonHours <= 0 {
		return fmt.Errorf("reminder horizon must be positive, got %d", c.Reminders.HorizonHours)
	}
	if c.Reminders.SweepIntervalMin <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %d", c.Reminders.SweepIntervalMin)
	}
	return nil
}
