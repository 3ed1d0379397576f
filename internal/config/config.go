package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/lumina/internal/clierr"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no task list found (run 'lumina init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the task list configuration.
type Config struct {
	Version    int             `yaml:"version"`
	List       ListConfig      `yaml:"list"`
	TasksDir   string          `yaml:"tasks_dir"`
	Priorities []string        `yaml:"priorities"`
	Defaults   DefaultsConfig  `yaml:"defaults"`
	Scheduler  SchedulerConfig `yaml:"scheduler"`
	Store      StoreConfig     `yaml:"store"`
	TUI        TUIConfig       `yaml:"tui,omitempty"`
	Serve      ServeConfig     `yaml:"serve,omitempty"`

	// dir is the absolute path to the list directory (not serialized).
	dir string `yaml:"-"`
}

// ListConfig holds list metadata.
type ListConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// DefaultsConfig holds default values for new tasks.
type DefaultsConfig struct {
	Priority string `yaml:"priority,omitempty"`
}

// SchedulerConfig controls the deadline alert engine.
type SchedulerConfig struct {
	Interval             string `yaml:"interval"`
	TimedOffset          string `yaml:"timed_offset"`
	DateOnlyOffset       string `yaml:"date_only_offset"`
	DesktopNotifications *bool  `yaml:"desktop_notifications,omitempty"`
}

// StoreConfig selects the task store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url,omitempty"`
}

// TUIConfig holds TUI-specific display settings.
type TUIConfig struct {
	BannerDuration string `yaml:"banner_duration,omitempty"`
	HideCompleted  bool   `yaml:"hide_completed,omitempty"`
}

// ServeConfig holds HTTP API settings.
type ServeConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Dir returns the absolute path to the list directory.
func (c *Config) Dir() string {
	return c.dir
}

// TasksPath returns the absolute path to the tasks directory.
func (c *Config) TasksPath() string {
	return filepath.Join(c.dir, c.TasksDir)
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// LockPath returns the path of the advisory lock guarding task writes.
func (c *Config) LockPath() string {
	return filepath.Join(c.dir, ".lock")
}

// NewDefault creates a Config with default values.
func NewDefault(name string) *Config {
	return &Config{
		Version:    CurrentVersion,
		List:       ListConfig{Name: name},
		TasksDir:   DefaultTasksDir,
		Priorities: append([]string{}, DefaultPriorities...),
		Defaults:   DefaultsConfig{Priority: DefaultPriority},
		Scheduler: SchedulerConfig{
			Interval:             DefaultInterval,
			TimedOffset:          DefaultTimedOffset,
			DateOnlyOffset:       DefaultDateOnlyOffset,
			DesktopNotifications: boolPtr(true),
		},
		Store: StoreConfig{Driver: DefaultStoreDriver},
		TUI:   TUIConfig{BannerDuration: DefaultBannerDuration},
		Serve: ServeConfig{Addr: DefaultServeAddr},
	}
}

// SetDir sets the list directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.List.Name == "" {
		return fmt.Errorf("%w: list.name is required", ErrInvalid)
	}
	if c.TasksDir == "" {
		return fmt.Errorf("%w: tasks_dir is required", ErrInvalid)
	}
	if len(c.Priorities) < 1 {
		return fmt.Errorf("%w: at least 1 priority is required", ErrInvalid)
	}
	if hasDuplicates(c.Priorities) {
		return fmt.Errorf("%w: priorities contain duplicates", ErrInvalid)
	}
	if c.Defaults.Priority != "" && !contains(c.Priorities, c.Defaults.Priority) {
		return fmt.Errorf("%w: default priority %q not in priorities list", ErrInvalid, c.Defaults.Priority)
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	if !contains(StoreDrivers, c.Store.Driver) {
		return fmt.Errorf("%w: store.driver %q must be one of %s",
			ErrInvalid, c.Store.Driver, strings.Join(StoreDrivers, ", "))
	}
	if c.TUI.BannerDuration != "" {
		if err := validatePositiveDuration("tui.banner_duration", c.TUI.BannerDuration); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if err := validatePositiveDuration("scheduler.interval", c.Scheduler.Interval); err != nil {
		return err
	}
	if err := validateOffset("scheduler.timed_offset", c.Scheduler.TimedOffset); err != nil {
		return err
	}
	return validateOffset("scheduler.date_only_offset", c.Scheduler.DateOnlyOffset)
}

func validatePositiveDuration(field, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: invalid %s %q: %w", ErrInvalid, field, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, field)
	}
	return nil
}

func validateOffset(field, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: invalid %s %q: %w", ErrInvalid, field, value, err)
	}
	if d < 0 {
		return fmt.Errorf("%w: %s must be >= 0", ErrInvalid, field)
	}
	return nil
}

// SchedulerInterval returns the evaluation cadence.
func (c *Config) SchedulerInterval() time.Duration {
	return parseDurationOr(c.Scheduler.Interval, DefaultInterval)
}

// TimedOffset returns the automatic alert lead time for tasks with a time of day.
func (c *Config) TimedOffset() time.Duration {
	return parseDurationOr(c.Scheduler.TimedOffset, DefaultTimedOffset)
}

// DateOnlyOffset returns the automatic alert lead time for date-only tasks.
func (c *Config) DateOnlyOffset() time.Duration {
	return parseDurationOr(c.Scheduler.DateOnlyOffset, DefaultDateOnlyOffset)
}

// DesktopNotificationsEnabled reports whether OS notifications should be sent.
// Unset means enabled.
func (c *Config) DesktopNotificationsEnabled() bool {
	if c.Scheduler.DesktopNotifications == nil {
		return true
	}
	return *c.Scheduler.DesktopNotifications
}

// BannerDuration returns how long the TUI keeps an alert banner visible.
func (c *Config) BannerDuration() time.Duration {
	return parseDurationOr(c.TUI.BannerDuration, DefaultBannerDuration)
}

// DatabaseURL returns the Postgres URL, preferring the LUMINA_DATABASE_URL environment variable.
func (c *Config) DatabaseURL() string {
	if v := strings.TrimSpace(os.Getenv(DatabaseURLEnv)); v != "" {
		return v
	}
	return c.Store.DatabaseURL
}

// ServeAddr returns the HTTP listen address.
func (c *Config) ServeAddr() string {
	if c.Serve.Addr == "" {
		return DefaultServeAddr
	}
	return c.Serve.Addr
}

// parseDurationOr parses s, falling back to def when s is empty or invalid.
func parseDurationOr(s, def string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	d, _ := time.ParseDuration(def)
	return d
}

// Init creates a new task list in the given directory with default settings.
// It creates the list directory, tasks subdirectory, and config file.
func Init(dir, name string) (*Config, error) {
	const dirMode = 0o750

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := NewDefault(name)
	cfg.SetDir(absDir)

	if err := os.MkdirAll(cfg.TasksPath(), dirMode); err != nil {
		return nil, fmt.Errorf("creating tasks directory: %w", err)
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

// Load reads and validates a config from the given list directory.
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
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	// Migrate old config versions forward before validating.
	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}

	// Persist migrated config so future loads skip re-migration.
	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a list directory
// containing config.yml. Returns the absolute path to the list directory.
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

		// Also check if we're inside the list directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.ListNotFound,
				"no task list found (run 'lumina init' to create one)")
		}
		dir = parent
	}
}

// PriorityIndex returns the index of a priority in the configured order, or -1.
func (c *Config) PriorityIndex(priority string) int {
	return IndexOf(c.Priorities, priority)
}

func contains(slice []string, item string) bool {
	return IndexOf(slice, item) >= 0
}

// IndexOf returns the index of item in slice, or -1 if not found.
func IndexOf(slice []string, item string) int {
	for i, s := range slice {
		if s == item {
			return i
		}
	}
	return -1
}

func hasDuplicates(slice []string) bool {
	seen := make(map[string]bool, len(slice))
	for _, s := range slice {
		if seen[s] {
			return true
		}
		seen[s] = true
	}
	return false
}
