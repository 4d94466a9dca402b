// Package config handles waywake's configuration: a small TOML file under
// the XDG config directory plus WAYWAKE_* environment overrides.
package config

import (
	"fmt"
	"strings"
)

const (
	dirPerm = 0755 // Standard directory permissions (rwxr-xr-x)
)

// Config is the application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Audio   AudioConfig   `mapstructure:"audio"`
	Wayland WaylandConfig `mapstructure:"wayland"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // trace, debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// AudioConfig controls how the PulseAudio tools are invoked.
type AudioConfig struct {
	// PactlPath overrides the pactl binary location. Empty means resolve
	// from PATH.
	PactlPath string `mapstructure:"pactl_path"`
}

// WaylandConfig controls the compositor connection.
type WaylandConfig struct {
	// Display selects the Wayland socket name. Empty means use
	// $WAYLAND_DISPLAY.
	Display string `mapstructure:"display"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Audio: AudioConfig{
			PactlPath: "",
		},
		Wayland: WaylandConfig{
			Display: "",
		},
	}
}

// validateConfig performs validation of configuration values
func validateConfig(config *Config) error {
	var validationErrors []string

	switch config.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("logging.level must be one of: trace, debug, info, warn, error (got: %s)", config.Logging.Level))
	}

	switch config.Logging.Format {
	case "console", "json":
	default:
		validationErrors = append(validationErrors, fmt.Sprintf("logging.format must be one of: console, json (got: %s)", config.Logging.Format))
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}

// normalizeConfig lowercases enum-ish values so the config file is
// case-insensitive for them.
func normalizeConfig(config *Config) {
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))
	config.Audio.PactlPath = strings.TrimSpace(config.Audio.PactlPath)
	config.Wayland.Display = strings.TrimSpace(config.Wayland.Display)
}
