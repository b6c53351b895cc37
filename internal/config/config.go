// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/tomato/internal/theme"
	"github.com/jmylchreest/tomato/internal/timer"
)

// appName is used for the XDG directory names.
const appName = "tomato"

// Default configuration values.
const (
	DefaultVolume      = 80
	DefaultColorScheme = string(theme.SchemeSystem)
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "25m", "90s", "1h30m", or a quoted count of seconds ("300").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Bare integers are seconds
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '25m', '90s', '1h30m' or seconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the tomato configuration.
type Config struct {
	Timer         TimerConfig         `toml:"timer"`
	Audio         AudioConfig         `toml:"audio"`
	Theme         ThemeConfig         `toml:"theme"`
	Notifications NotificationsConfig `toml:"notifications"`
	History       HistoryConfig       `toml:"history"`
}

// TimerConfig holds interval lengths and the long-break cadence.
type TimerConfig struct {
	Work            Duration `toml:"work"`
	ShortBreak      Duration `toml:"short_break"`
	LongBreak       Duration `toml:"long_break"`
	LongBreakEvery  int      `toml:"long_break_every"` // Work intervals per long break
	TransitionDelay Duration `toml:"transition_delay"` // Pause before the next mode is selected; must be positive
}

// AudioConfig holds completion sound settings.
type AudioConfig struct {
	Enabled bool   `toml:"enabled"`
	Volume  int    `toml:"volume"` // 0-100
	Sound   string `toml:"sound"`  // WAV, OGG or MP3; empty rings the terminal bell
}

// ThemeConfig holds theme settings.
type ThemeConfig struct {
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// NotificationsConfig holds desktop notification settings.
type NotificationsConfig struct {
	Desktop bool `toml:"desktop"`
}

// HistoryConfig holds completed-interval log settings.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Empty = $XDG_DATA_HOME/tomato/history.jsonl
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Timer: TimerConfig{
			Work:            Duration(timer.DefaultWork),
			ShortBreak:      Duration(timer.DefaultShortBreak),
			LongBreak:       Duration(timer.DefaultLongBreak),
			LongBreakEvery:  timer.DefaultLongBreakEvery,
			TransitionDelay: Duration(timer.DefaultTransitionDelay),
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  DefaultVolume,
		},
		Theme: ThemeConfig{
			ColorScheme: DefaultColorScheme,
		},
		Notifications: NotificationsConfig{
			Desktop: true,
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// Durations converts the timer section for the engine.
func (c TimerConfig) Durations() timer.Durations {
	return timer.Durations{
		Work:       c.Work.Duration(),
		ShortBreak: c.ShortBreak.Duration(),
		LongBreak:  c.LongBreak.Duration(),
	}
}

// Scheme returns the configured color scheme.
func (c ThemeConfig) Scheme() theme.Scheme {
	return theme.Scheme(c.ColorScheme)
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appName, "config.toml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, appName)
}

// StatePath returns the path to the state directory used for logs.
// Uses XDG_STATE_HOME if set, otherwise ~/.local/state.
func StatePath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, appName)
}

// LogPath returns the log file used while the TUI owns the terminal.
func LogPath() string {
	return filepath.Join(StatePath(), appName+".log")
}

// HistoryPath returns the completed-interval log path, honouring an
// explicit history.path setting.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return expandPath(c.History.Path)
	}
	return filepath.Join(DataPath(), "history.jsonl")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed and replaces the file atomically.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	durations := []struct {
		name  string
		value Duration
	}{
		{"timer.work", c.Timer.Work},
		{"timer.short_break", c.Timer.ShortBreak},
		{"timer.long_break", c.Timer.LongBreak},
	}
	for _, d := range durations {
		if d.value.Duration() < time.Second {
			return fmt.Errorf("%s must be at least 1s, got %s", d.name, d.value.Duration())
		}
	}
	if c.Timer.TransitionDelay.Duration() <= 0 {
		return fmt.Errorf("timer.transition_delay must be positive, got %s", c.Timer.TransitionDelay.Duration())
	}
	if c.Timer.LongBreakEvery < 1 {
		return fmt.Errorf("timer.long_break_every must be at least 1, got %d", c.Timer.LongBreakEvery)
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	validScheme := false
	for _, s := range theme.ValidSchemes() {
		if c.Theme.Scheme() == s {
			validScheme = true
			break
		}
	}
	if !validScheme {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Theme.ColorScheme, theme.ValidSchemes())
	}

	return nil
}

// SoundPath returns the configured sound file with ~ expanded.
func (a AudioConfig) SoundPath() string {
	return expandPath(a.Sound)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 1 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
