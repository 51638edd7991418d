// ABOUTME: Willow configuration with tasklist backend selection
// ABOUTME: JSON file at the XDG config path, environment overrides and the store factory

package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/harper/willow/internal/storage"
)

// Defaults applied when a field is empty.
const (
	DefaultBackend       = "yaml"
	DefaultPrefix        = "?"
	DefaultSweepInterval = 5 * time.Minute
	DefaultMapCacheSize  = 128
	DefaultLogLevel      = "info"
)

// EnvPrefix namespaces environment overrides, e.g. WILLOW_DATA_DIR.
const EnvPrefix = "WILLOW_"

// Config stores willow configuration.
type Config struct {
	// DataDir is the root directory for maps and the tasklist.
	// Supports ~ expansion. Defaults to ~/.local/share/willow.
	DataDir string `json:"data_dir,omitempty" env:"DATA_DIR"`

	// TasklistBackend selects the tasklist store: "yaml" (default), "sqlite" or "badger".
	TasklistBackend string `json:"tasklist_backend,omitempty" env:"TASKLIST_BACKEND"`

	CommandPrefix string `json:"command_prefix,omitempty" env:"COMMAND_PREFIX"`

	// MapURL is the web viewer base address linked from help.
	MapURL string `json:"map_url,omitempty" env:"MAP_URL"`

	// MaintainerID is the author id allowed to reset other servers' maps.
	MaintainerID string `json:"maintainer_id,omitempty" env:"MAINTAINER_ID"`

	// SweepInterval is a Go duration string such as "5m".
	SweepInterval string `json:"sweep_interval,omitempty" env:"SWEEP_INTERVAL"`

	MapCacheSize int `json:"map_cache_size,omitempty" env:"MAP_CACHE_SIZE"`

	LogLevel string `json:"log_level,omitempty" env:"LOG_LEVEL"`
}

// firstRunConfig is written when no config file exists.
func firstRunConfig() *Config {
	return &Config{
		TasklistBackend: DefaultBackend,
		CommandPrefix:   DefaultPrefix,
		SweepInterval:   DefaultSweepInterval.String(),
	}
}

// GetBackend returns the configured tasklist backend, defaulting to "yaml".
func (c *Config) GetBackend() string {
	if c.TasklistBackend == "" {
		return DefaultBackend
	}
	return strings.ToLower(c.TasklistBackend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// MapsDir is where per-server map documents live.
func (c *Config) MapsDir() string {
	return filepath.Join(c.GetDataDir(), "maps")
}

// GetPrefix returns the command prefix, defaulting to "?".
func (c *Config) GetPrefix() string {
	if c.CommandPrefix == "" {
		return DefaultPrefix
	}
	return c.CommandPrefix
}

// GetSweepInterval parses SweepInterval, defaulting to five minutes.
func (c *Config) GetSweepInterval() (time.Duration, error) {
	if c.SweepInterval == "" {
		return DefaultSweepInterval, nil
	}
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid sweep_interval %q: %w", c.SweepInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid sweep_interval %q: must be positive", c.SweepInterval)
	}
	return d, nil
}

// GetMapCacheSize returns how many maps to keep loaded.
func (c *Config) GetMapCacheSize() int {
	if c.MapCacheSize <= 0 {
		return DefaultMapCacheSize
	}
	return c.MapCacheSize
}

// GetLogLevel parses LogLevel, defaulting to info.
func (c *Config) GetLogLevel() (log.Level, error) {
	if c.LogLevel == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// NewLogger returns a logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) (*log.Logger, error) {
	level, err := c.GetLogLevel()
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "willow",
	}), nil
}

// defaultDataDir returns the default XDG data directory for willow.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "willow")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// TasklistPath returns where the configured backend keeps the tasklist.
func (c *Config) TasklistPath() (string, error) {
	dataDir := c.GetDataDir()
	switch c.GetBackend() {
	case "yaml":
		return filepath.Join(dataDir, "tasklist.yaml"), nil
	case "sqlite":
		return filepath.Join(dataDir, "tasklist.db"), nil
	case "badger":
		return filepath.Join(dataDir, "tasklist.badger"), nil
	default:
		return "", fmt.Errorf("unknown backend: %q", c.TasklistBackend)
	}
}

// OpenTaskStore creates the tasklist store for the configured backend.
func (c *Config) OpenTaskStore() (storage.TaskStore, error) {
	path, err := c.TasklistPath()
	if err != nil {
		return nil, err
	}

	switch c.GetBackend() {
	case "sqlite":
		return storage.NewSQLiteTaskStore(path)
	case "badger":
		return storage.NewBadgerTaskStore(path)
	default:
		return storage.NewYAMLTaskStore(path), nil
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "willow", "config.json")
}

// Load reads config from disk, writing defaults on first run, then applies
// WILLOW_* environment overrides. A .env file in the working directory is
// loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := GetConfigPath()
	var cfg *Config
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		cfg = firstRunConfig()
		if saveErr := cfg.Save(); saveErr != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save default config: %v\n", saveErr)
		}
	case err != nil:
		return nil, err
	default:
		cfg = &Config{}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from WILLOW_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return storage.AtomicWrite(path, data)
}
