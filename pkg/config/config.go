// Package config loads the glanced daemon configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the daemon configuration. Every field can be overridden by a
// command-line flag in cmd/glanced.
type Config struct {
	HTTPPort int    `envconfig:"HTTP_PORT" default:"8790"`
	GRPCPort int    `envconfig:"GRPC_PORT" default:"50061"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// SettingsPath is the TOML translation settings file. Optional.
	SettingsPath string `envconfig:"SETTINGS" default:""`
	// Locale selects the language of user-facing notices.
	Locale string `envconfig:"LOCALE" default:"en"`
	// DebounceDelay is how long a selection must be stable before it is translated.
	DebounceDelay time.Duration `envconfig:"DEBOUNCE" default:"100ms"`
	// DetectLanguages lists the ISO 639-1 candidates for local detection.
	DetectLanguages []string `envconfig:"DETECT_LANGUAGES" default:"en,zh,ja,ko,fr,de,es,pt,it,ru"`
	// Clipboard feeds clipboard changes to the translator as selections.
	Clipboard bool `envconfig:"CLIPBOARD" default:"false"`
	// ClipboardInterval is how often the clipboard is polled.
	ClipboardInterval time.Duration `envconfig:"CLIPBOARD_INTERVAL" default:"300ms"`
	// StartEnabled switches the translator on at start-up.
	StartEnabled bool `envconfig:"START_ENABLED" default:"false"`
}

// Prefix is the environment variable prefix, e.g. GLANCE_HTTP_PORT.
const Prefix = "GLANCE"

// Load reads an optional .env file and decodes GLANCE_* variables. The
// result is not validated; callers apply their overrides first and then
// call Validate.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks port ranges and durations.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("GLANCE_HTTP_PORT must be between 1 and 65535")
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("GLANCE_GRPC_PORT must be between 0 and 65535")
	}
	if c.GRPCPort != 0 && c.GRPCPort == c.HTTPPort {
		return fmt.Errorf("GLANCE_GRPC_PORT (%d) cannot equal GLANCE_HTTP_PORT", c.GRPCPort)
	}
	if c.DebounceDelay <= 0 {
		return fmt.Errorf("GLANCE_DEBOUNCE must be > 0")
	}
	if c.Clipboard && c.ClipboardInterval <= 0 {
		return fmt.Errorf("GLANCE_CLIPBOARD_INTERVAL must be > 0")
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		return fmt.Errorf("GLANCE_LOG_LEVEL is required")
	}
	return nil
}
