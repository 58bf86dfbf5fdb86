package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds server settings loaded from a YAML file. Flags and
// environment variables override file values, the file overrides the
// built-in defaults.
type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	ConfigDir string `yaml:"config_dir"`

	Persistence PersistenceConfig `yaml:"persistence"`

	Cleanup CleanupConfig `yaml:"cleanup"`

	Ngrok NgrokConfig `yaml:"ngrok"`
}

// PersistenceConfig selects and configures the session persistence backend
type PersistenceConfig struct {
	// Backend is "file" (default) or "redis"
	Backend string `yaml:"backend"`

	// SessionsDir is the save directory for the file backend
	SessionsDir string `yaml:"sessions_dir"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis persistence backend
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// CleanupConfig controls the background session cleanup routine
type CleanupConfig struct {
	Interval time.Duration `yaml:"interval"`
	MaxAge   time.Duration `yaml:"max_age"`
}

// NgrokConfig controls the optional ngrok tunnel
type NgrokConfig struct {
	Enabled bool   `yaml:"enabled"`
	Domain  string `yaml:"domain"`
}

// DefaultServerConfig returns the built-in server settings
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:      "localhost",
		Port:      8080,
		ConfigDir: "configs",
		Persistence: PersistenceConfig{
			Backend:     "file",
			SessionsDir: "sessions",
			Redis: RedisConfig{
				Addr: "localhost:6379",
				TTL:  0, // no expiry
			},
		},
		Cleanup: CleanupConfig{
			Interval: 1 * time.Hour,
			MaxAge:   24 * time.Hour,
		},
	}
}

// LoadServerConfig reads settings from the given YAML file, layered over the
// defaults. A missing file is not an error; a malformed one is.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg := DefaultServerConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks settings that would otherwise fail at an awkward time
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}

	switch c.Persistence.Backend {
	case "", "file", "redis":
	default:
		return fmt.Errorf("unknown persistence backend %q (expected file or redis)", c.Persistence.Backend)
	}

	if c.Persistence.Backend == "redis" && c.Persistence.Redis.Addr == "" {
		return fmt.Errorf("redis backend selected but no addr configured")
	}

	if c.Cleanup.Interval < 0 || c.Cleanup.MaxAge < 0 {
		return fmt.Errorf("cleanup intervals must be non-negative")
	}

	return nil
}
