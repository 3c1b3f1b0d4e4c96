// Package config handles aether-settingsd server configuration.
// Configuration is read from a TOML file; a missing file yields defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the server configuration.
type Config struct {
	ListenAddress string        `toml:"listen_address"`
	LogLevel      string        `toml:"log_level"`
	Storage       StorageConfig `toml:"storage"`
}

// StorageConfig selects and parameterizes the durable backend.
type StorageConfig struct {
	// Backend is one of memory, file, sqlite, postgres, redis.
	Backend string `toml:"backend"`
	// Path is the database or document path for the file and sqlite backends.
	Path string `toml:"path"`
	// DSN is the connection string for the postgres backend.
	DSN string `toml:"dsn"`
	// Encrypt wraps the backend with AES-256-GCM value encryption keyed
	// from the AETHER_SETTINGS_KEY environment variable.
	Encrypt bool `toml:"encrypt"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		ListenAddress: ":8080",
		LogLevel:      "info",
		Storage: StorageConfig{
			Backend: "file",
			Path:    "aether-settings.json",
		},
	}
}

// Load reads the configuration at path. A missing file returns defaults;
// a malformed file is an error so typos do not silently fall back.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "file", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if (c.Storage.Backend == "file" || c.Storage.Backend == "sqlite") && c.Storage.Path == "" {
		return fmt.Errorf("storage backend %q requires a path", c.Storage.Backend)
	}
	if c.Storage.Backend == "postgres" && c.Storage.DSN == "" {
		return fmt.Errorf("storage backend postgres requires a dsn")
	}
	if c.Storage.Backend == "redis" && c.Storage.RedisAddr == "" {
		return fmt.Errorf("storage backend redis requires redis_addr")
	}
	return nil
}
