package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds user preferences
type Config struct {
	// Storage
	Storage     string `yaml:"storage" json:"storage"`           // file, sqlite, postgres
	Fallback    string `yaml:"fallback" json:"fallback"`         // backend used when the primary fails
	DataDir     string `yaml:"data_dir" json:"data_dir"`         // directory for app-data.json and focusboard.db
	DatabaseURL string `yaml:"database_url" json:"database_url"` // postgres connection string
	Profile     string `yaml:"profile" json:"profile"`           // row key for the postgres backend

	// Time
	Timezone string `yaml:"timezone" json:"timezone"` // IANA zone, empty means local

	// Reminders
	ReminderInterval time.Duration `yaml:"reminder_interval" json:"reminder_interval"`

	// Calendar sync
	SyncCron     string        `yaml:"sync_cron" json:"sync_cron"`         // cron schedule for auto-sync pulls
	SyncDebounce time.Duration `yaml:"sync_debounce" json:"sync_debounce"` // quiet period before a pull after local event changes
	ICSURL       string        `yaml:"ics_url" json:"ics_url"`             // read-only ICS subscription

	// Server
	Listen   string `yaml:"listen" json:"listen"`
	APIToken string `yaml:"api_token" json:"api_token"` // bearer token required by the API when set

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// HomeDir returns ~/.focusboard
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".focusboard"
	}
	return filepath.Join(home, ".focusboard")
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	base := HomeDir()

	return &Config{
		Storage:          getEnv("FOCUSBOARD_STORAGE", BackendFile),
		Fallback:         BackendSQLite,
		DataDir:          base,
		DatabaseURL:      getEnv("FOCUSBOARD_DATABASE_URL", ""),
		Profile:          "default",
		ReminderInterval: time.Minute,
		SyncCron:         "*/15 * * * *",
		SyncDebounce:     5 * time.Second,
		Listen:           "127.0.0.1:8080",
		APIToken:         getEnv("FOCUSBOARD_API_TOKEN", ""),
		LogLevel:         getEnv("FOCUSBOARD_LOG_LEVEL", "INFO"),
		LogFile:          getEnv("FOCUSBOARD_LOG_FILE", filepath.Join(base, "logs", "focusboard.log")),
		LogConsole:       getEnv("FOCUSBOARD_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Normalize fills in missing values so older config files keep working.
func (c *Config) Normalize() {
	def := DefaultConfig()

	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case BackendFile, BackendSQLite, BackendPostgres, BackendMemory:
	default:
		c.Storage = def.Storage
	}
	c.Fallback = strings.ToLower(strings.TrimSpace(c.Fallback))
	if c.Fallback == c.Storage {
		c.Fallback = ""
	}
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.Profile == "" {
		c.Profile = def.Profile
	}
	if c.ReminderInterval <= 0 {
		c.ReminderInterval = def.ReminderInterval
	}
	if c.SyncCron == "" {
		c.SyncCron = def.SyncCron
	}
	if c.SyncDebounce <= 0 {
		c.SyncDebounce = def.SyncDebounce
	}
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Path returns the config file path
func Path() string {
	if p := os.Getenv("FOCUSBOARD_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(HomeDir(), "config.yaml")
}

// Load loads config from ~/.focusboard/config.yaml
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom loads config from path, returning defaults if it does not exist.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Normalize()

	return cfg, nil
}

// Save saves config to ~/.focusboard/config.yaml
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config atomically (temp file + rename, 0600).
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
