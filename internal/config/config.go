package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

type Config struct {
	LogLevel      string       `json:"log_level"`
	DataDir       string       `json:"data_dir"` // empty = platform data dir
	HistoryLimit  int          `json:"history_limit"`
	QueueLimit    int          `json:"queue_limit"`
	Notifications bool         `json:"notifications"`
	Timing        TimingConfig `json:"timing"`

	path string
}

// TimingConfig holds the clipboard transaction windows in milliseconds.
type TimingConfig struct {
	PasteRestoreMs   int `json:"paste_restore_ms"`
	CapturePollMs    int `json:"capture_poll_ms"`
	CaptureTimeoutMs int `json:"capture_timeout_ms"`
	CaptureRestoreMs int `json:"capture_restore_ms"`
}

func (t TimingConfig) PasteRestoreDelay() time.Duration {
	return time.Duration(t.PasteRestoreMs) * time.Millisecond
}

func (t TimingConfig) CapturePollInterval() time.Duration {
	return time.Duration(t.CapturePollMs) * time.Millisecond
}

func (t TimingConfig) CaptureTimeout() time.Duration {
	return time.Duration(t.CaptureTimeoutMs) * time.Millisecond
}

func (t TimingConfig) CaptureRestoreDelay() time.Duration {
	return time.Duration(t.CaptureRestoreMs) * time.Millisecond
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		HistoryLimit:  1000,
		QueueLimit:    16,
		Notifications: true,
		Timing: TimingConfig{
			PasteRestoreMs:   150,
			CapturePollMs:    10,
			CaptureTimeoutMs: 600,
			CaptureRestoreMs: 20,
		},
	}
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	return LoadFrom(configPath())
}

// LoadFrom reads the config at path. A missing file yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	// Load existing config if it exists
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.normalize()
	return cfg, nil
}

// normalize replaces zero or negative values with defaults
func (c *Config) normalize() {
	def := Default()
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = def.HistoryLimit
	}
	if c.QueueLimit <= 0 {
		c.QueueLimit = def.QueueLimit
	}
	if c.Timing.PasteRestoreMs <= 0 {
		c.Timing.PasteRestoreMs = def.Timing.PasteRestoreMs
	}
	if c.Timing.CapturePollMs <= 0 {
		c.Timing.CapturePollMs = def.Timing.CapturePollMs
	}
	if c.Timing.CaptureTimeoutMs <= 0 {
		c.Timing.CaptureTimeoutMs = def.Timing.CaptureTimeoutMs
	}
	if c.Timing.CaptureRestoreMs <= 0 {
		c.Timing.CaptureRestoreMs = def.Timing.CaptureRestoreMs
	}
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = configPath()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DataPath returns the directory holding registers, history and settings.
func (c *Config) DataPath() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return DataPath()
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "keyregisters", "config.json")
}

// DataPath returns the platform-specific data directory path
func DataPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, "keyregisters")
}
