package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/tasknest/internal/clierr"
	"github.com/twiced-technology-gmbh/tasknest/internal/task"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no tasknest config found (run 'tasknest init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the tasknest configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Reminders RemindersConfig `yaml:"reminders"`
	Hierarchy HierarchyConfig `yaml:"hierarchy"`
	TUI       TUIConfig       `yaml:"tui"`
	Log       LogConfig       `yaml:"log"`
	Seed      string          `yaml:"seed,omitempty"`

	// dir is the absolute path to the config directory (not serialized).
	dir string `yaml:"-"`
}

// DefaultsConfig holds default values for new tasks.
type DefaultsConfig struct {
	Priority string `yaml:"priority"`
	Color    string `yaml:"color,omitempty"`
}

// RemindersConfig holds reminder settings.
type RemindersConfig struct {
	Window string `yaml:"window"` // duration string, e.g. "1h"
}

// HierarchyConfig controls subtask nesting checks.
type HierarchyConfig struct {
	// StrictMoves rejects moves that would nest deeper than one level.
	StrictMoves bool `yaml:"strict_moves"`
}

// TUIConfig holds TUI-specific display settings.
type TUIConfig struct {
	Refresh               string `yaml:"refresh"`
	ShowCompletedSubtasks bool   `yaml:"show_completed_subtasks"`
}

// LogConfig controls the activity log.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"` // relative paths resolve against the config directory
}

// Dir returns the absolute path to the config directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the config directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// LogPath returns the activity log path.
func (c *Config) LogPath() string {
	if c.Log.File == "" {
		return filepath.Join(c.dir, DefaultLogFile)
	}
	return c.resolve(c.Log.File)
}

// SeedPath returns the seed file path, or "" when none is configured.
func (c *Config) SeedPath() string {
	if c.Seed == "" {
		return ""
	}
	return c.resolve(c.Seed)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	return &Config{
		Version:   CurrentVersion,
		Defaults:  DefaultsConfig{Priority: DefaultPriority},
		Reminders: RemindersConfig{Window: DefaultReminderWindow},
		TUI:       TUIConfig{Refresh: DefaultRefresh},
		Log:       LogConfig{Level: DefaultLogLevel},
	}
}

// applyDefaults fills fields a hand-written config may leave out.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = CurrentVersion
	}
	if c.Defaults.Priority == "" {
		c.Defaults.Priority = DefaultPriority
	}
	if c.Reminders.Window == "" {
		c.Reminders.Window = DefaultReminderWindow
	}
	if c.TUI.Refresh == "" {
		c.TUI.Refresh = DefaultRefresh
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version > CurrentVersion {
		return fmt.Errorf("%w: config version %d is newer than supported version %d (upgrade tasknest)",
			ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if task.PriorityIndex(c.Defaults.Priority) < 0 {
		return fmt.Errorf("%w: default priority %q not in priorities list", ErrInvalid, c.Defaults.Priority)
	}
	if _, err := task.NormalizeColor(c.Defaults.Color); err != nil {
		return fmt.Errorf("%w: defaults.color: %w", ErrInvalid, err)
	}
	if err := validateDuration("reminders.window", c.Reminders.Window, time.Nanosecond); err != nil {
		return err
	}
	if err := validateDuration("tui.refresh", c.TUI.Refresh, minRefresh); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	return nil
}

func validateDuration(key, value string, lowest time.Duration) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: invalid %s %q: %w", ErrInvalid, key, value, err)
	}
	if d < lowest {
		return fmt.Errorf("%w: %s must be at least %s", ErrInvalid, key, lowest)
	}
	return nil
}

// ReminderWindow returns the parsed reminder window.
func (c *Config) ReminderWindow() time.Duration {
	return parseOr(c.Reminders.Window, time.Hour)
}

// RefreshInterval returns the parsed TUI refresh interval.
func (c *Config) RefreshInterval() time.Duration {
	return parseOr(c.TUI.Refresh, 30*time.Second) //nolint:mnd // mirrors DefaultRefresh
}

// LogLevel returns the parsed log level, info when unparseable.
func (c *Config) LogLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func parseOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Init writes a default config into dir, creating it when needed.
func Init(dir string) (*Config, error) {
	const dirMode = 0o750

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := NewDefault()
	cfg.SetDir(absDir)

	if _, err := os.Stat(cfg.ConfigPath()); err == nil {
		return nil, clierr.Newf(clierr.ConfigExists, "tasknest already initialized in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}
	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given config directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing config: %w", ErrInvalid, err)
	}
	cfg.dir = absDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindDir walks upward from startDir looking for a .tasknest directory
// containing config.yml, then falls back to the user config directory.
// Returns the absolute path to the config directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the config directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if filepath.Base(dir) == DefaultDir {
			if _, err := os.Stat(candidate); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if userDir, err := UserDir(); err == nil {
		if _, err := os.Stat(filepath.Join(userDir, ConfigFileName)); err == nil {
			return userDir, nil
		}
	}
	return "", clierr.New(clierr.ConfigNotFound, ErrNotFound.Error())
}

// UserDir returns the per-user config directory, ~/.config/tasknest on Linux.
func UserDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(base, UserDirName), nil
}
