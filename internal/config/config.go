package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// RetryConfig bounds the delay between event pump restarts.
type RetryConfig struct {
	InitialMS int `json:"initial_ms"`
	MaxMS     int `json:"max_ms"`
}

// Config holds the application configuration
type Config struct {
	// Shortcuts is the editable shortcut list, "id:description[:trigger]"
	// entries separated by commas.
	Shortcuts        string      `json:"shortcuts"`
	ParentWindow     string      `json:"parent_window"`
	Backend          string      `json:"backend"`
	UseNotifications bool        `json:"use_notifications"`
	PumpRetry        RetryConfig `json:"pump_retry"`
	DiffContextLines int         `json:"diff_context_lines"`

	// Non-JSON fields (runtime state)
	configPath string
}

const (
	DefaultShortcuts        = "screenshot:Take a screenshot:<Primary><Shift>s,mute:Toggle microphone:<Primary><Alt>m,notes:Open notes"
	DefaultBackend          = "auto"
	DefaultRetryInitial     = 500 * time.Millisecond
	DefaultRetryMax         = 30 * time.Second
	DefaultDiffContextLines = 2
)

var validBackends = []string{"auto", "portal", "legacy"}

// GetConfigPath returns the path to the configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// RetryDelays returns the pump backoff bounds, falling back to the defaults
// for unset values.
func (c *Config) RetryDelays() (initial, max time.Duration) {
	initial, max = DefaultRetryInitial, DefaultRetryMax
	if c.PumpRetry.InitialMS > 0 {
		initial = time.Duration(c.PumpRetry.InitialMS) * time.Millisecond
	}
	if c.PumpRetry.MaxMS > 0 {
		max = time.Duration(c.PumpRetry.MaxMS) * time.Millisecond
	}
	if max < initial {
		max = initial
	}
	return initial, max
}

// Validate rejects values the application cannot act on. The shortcut text
// itself is checked when a session starts.
func (c *Config) Validate() error {
	backend := strings.ToLower(strings.TrimSpace(c.Backend))
	known := backend == ""
	for _, b := range validBackends {
		if backend == b {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unknown backend %q (want one of %s)", c.Backend, strings.Join(validBackends, ", "))
	}
	if c.PumpRetry.InitialMS < 0 || c.PumpRetry.MaxMS < 0 {
		return fmt.Errorf("pump_retry delays must not be negative (initial_ms=%d, max_ms=%d)",
			c.PumpRetry.InitialMS, c.PumpRetry.MaxMS)
	}
	if c.DiffContextLines < 0 {
		return fmt.Errorf("diff_context_lines must not be negative (got %d)", c.DiffContextLines)
	}
	return nil
}

// Load reads, parses and validates the configuration file, creating a
// default one if it does not exist.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("Config file '%s' not found. Attempting to create default.", configPath)
		if createErr := CreateDefaultConfig(configPath); createErr != nil {
			return nil, fmt.Errorf("config file not found and failed to create default '%s': %w", configPath, createErr)
		}
	}
	return Reload(configPath)
}

// Reload reads, parses and validates an existing configuration file. A
// missing file is an error wrapping os.ErrNotExist; nothing is created.
func Reload(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configPath, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file '%s': %w", configPath, err)
	}

	// Store config path for future saves
	config.configPath = configPath
	return &config, nil
}

// Save writes the current configuration back to its file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("config has no file path")
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.configPath, data, 0600)
}

// Default returns the configuration written for a new install.
func Default() *Config {
	return &Config{
		Shortcuts:        DefaultShortcuts,
		Backend:          DefaultBackend,
		UseNotifications: true,
		PumpRetry: RetryConfig{
			InitialMS: int(DefaultRetryInitial / time.Millisecond),
			MaxMS:     int(DefaultRetryMax / time.Millisecond),
		},
		DiffContextLines: DefaultDiffContextLines,
	}
}

// CreateDefaultConfig creates a default configuration file if none exists
func CreateDefaultConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return nil // File exists, don't overwrite
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("error checking config path '%s': %w", configPath, err)
	}

	log.Printf("Creating default configuration file at: %s", configPath)

	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal default config to JSON: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write default config file '%s': %w", configPath, err)
	}

	log.Printf("Default configuration file created successfully.")
	return nil
}
