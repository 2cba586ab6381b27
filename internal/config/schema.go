package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version" toml:"version"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Roster   RosterConfig   `yaml:"roster" toml:"roster"`
	Layout   LayoutConfig   `yaml:"layout" toml:"layout"`
	History  HistoryConfig  `yaml:"history" toml:"history"`
	Log      LogConfig      `yaml:"log" toml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string   `yaml:"addr" toml:"addr" validate:"required"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	AllowedOrigins  []string `yaml:"allowed_origins,omitempty" toml:"allowed_origins,omitempty"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path" validate:"required"`
}

// RosterConfig points at the character manifest and headshot directory
type RosterConfig struct {
	Manifest string   `yaml:"manifest" toml:"manifest"`
	ImageDir string   `yaml:"image_dir" toml:"image_dir"`
	Watch    bool     `yaml:"watch" toml:"watch"`
	Debounce Duration `yaml:"debounce" toml:"debounce"`
}

// LayoutConfig holds circular layout defaults
type LayoutConfig struct {
	Padding float64 `yaml:"padding" toml:"padding" validate:"gte=0"`
	Mobile  bool    `yaml:"mobile" toml:"mobile"`
}

// HistoryConfig bounds the undo stack. Zero keeps every checkpoint.
type HistoryConfig struct {
	Limit int `yaml:"limit" toml:"limit" validate:"gte=0"`
}

// LogConfig controls logging output
type LogConfig struct {
	Level      string `yaml:"level" toml:"level" validate:"omitempty,oneof=debug info warn error"`
	File       string `yaml:"file,omitempty" toml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups" validate:"gte=0"`
}

// Duration wraps time.Duration for YAML and TOML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by the TOML decoder
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
