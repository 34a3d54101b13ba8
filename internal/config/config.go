package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/krya-ai/shell/internal/logger"
)

// Defaults matching the packaged product.
const (
	DefaultPort          = 8000
	DefaultStartupGrace  = 5 * time.Second
	DefaultProbeAttempts = 5
	DefaultProbeInterval = time.Second
	DefaultControlListen = "127.0.0.1:8790"
	DefaultBasePath      = "/api"
)

// Config is the top-level TOML structure for the shell.
type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Log      logger.Config  `mapstructure:"log"`
	Control  ControlConfig  `mapstructure:"control"`
	Metrics  *MetricsConfig `mapstructure:"metrics"`
	History  *HistoryConfig `mapstructure:"history"`
}

// BackendConfig describes how the backend process is located, launched and
// health-checked.
type BackendConfig struct {
	Port                int           `mapstructure:"port"`
	EntryFile           string        `mapstructure:"entry_file"`
	SourceDir           string        `mapstructure:"source_dir"`
	ParentSteps         int           `mapstructure:"parent_steps"`
	Interpreter         string        `mapstructure:"interpreter"`          // override platform default
	FallbackInterpreter string        `mapstructure:"fallback_interpreter"` // override platform alternate
	StartupGrace        time.Duration `mapstructure:"startup_grace"`
	ProbeAttempts       int           `mapstructure:"probe_attempts"`
	ProbeInterval       time.Duration `mapstructure:"probe_interval"`
}

// ControlConfig configures the localhost control API the window/tray layer
// and the CLI talk to.
type ControlConfig struct {
	Listen   string `mapstructure:"listen"`
	BasePath string `mapstructure:"base_path"`
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// HistoryConfig enables the SQLite lifecycle journal.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads a TOML config file and applies defaults for anything unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Backend.Port <= 0 {
		c.Backend.Port = DefaultPort
	}
	if c.Backend.StartupGrace <= 0 {
		c.Backend.StartupGrace = DefaultStartupGrace
	}
	if c.Backend.ProbeAttempts <= 0 {
		c.Backend.ProbeAttempts = DefaultProbeAttempts
	}
	if c.Backend.ProbeInterval <= 0 {
		c.Backend.ProbeInterval = DefaultProbeInterval
	}
	if c.Control.Listen == "" {
		c.Control.Listen = DefaultControlListen
	}
	if c.Control.BasePath == "" {
		c.Control.BasePath = DefaultBasePath
	}
}

func (c *Config) validate() error {
	if c.Backend.Port > 65535 {
		return fmt.Errorf("backend port %d out of range", c.Backend.Port)
	}
	if c.History != nil && c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history enabled but no path configured")
	}
	if c.Metrics != nil && c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics enabled but no listen address configured")
	}
	return nil
}

// HealthURL is the backend root endpoint probed after a spawn.
func (c *Config) HealthURL() string {
	return fmt.Sprintf("http://localhost:%d/", c.Backend.Port)
}
