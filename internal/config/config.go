package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/sempr/localjudge/internal/lang"
)

const (
	appDir            = "localjudge"
	fileName          = "config.toml"
	defaultDebounceMs = 150
)

// Config stores all configuration for localjudge.
type Config struct {
	// Language is used when the problem directory holds several solutions.
	Language   string         `toml:"language"`
	LogLevel   string         `toml:"log_level"`
	DebounceMs int            `toml:"debounce_ms"`
	Langs      []lang.Profile `toml:"lang"`
}

func Default() *Config {
	return &Config{
		LogLevel:   "info",
		DebounceMs: defaultDebounceMs,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/localjudge/config.toml (or the platform equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDir, fileName)
}

// Load reads the config file at path. When path is empty the default
// location is tried and a missing file yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			slog.Debug("config file not found, using defaults", "path", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DebounceMs == 0 {
		cfg.DebounceMs = defaultDebounceMs
	}
}

func (c *Config) Validate() error {
	if c.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMs)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log_level %q", c.LogLevel)
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Registry returns the built-in language profiles with the configured ones merged in.
func (c *Config) Registry() (*lang.Registry, error) {
	r, err := lang.Builtin()
	if err != nil {
		return nil, err
	}
	if err := r.Merge(c.Langs); err != nil {
		return nil, fmt.Errorf("config [[lang]]: %w", err)
	}
	return r, nil
}
