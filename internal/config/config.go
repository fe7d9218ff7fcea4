package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/inspector/pkg/database"
	"github.com/JaimeStill/inspector/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvInspectorEnv             = "INSPECTOR_ENV"
	EnvInspectorShutdownTimeout = "INSPECTOR_SHUTDOWN_TIMEOUT"
	EnvInspectorVersion         = "INSPECTOR_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "INSPECTOR_DB_HOST",
	Port:            "INSPECTOR_DB_PORT",
	Name:            "INSPECTOR_DB_NAME",
	User:            "INSPECTOR_DB_USER",
	Password:        "INSPECTOR_DB_PASSWORD",
	SSLMode:         "INSPECTOR_DB_SSL_MODE",
	ApplicationName: "INSPECTOR_DB_APPLICATION_NAME",
	MaxOpenConns:    "INSPECTOR_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "INSPECTOR_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "INSPECTOR_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "INSPECTOR_DB_CONN_TIMEOUT",
	StartupRetries:  "INSPECTOR_DB_STARTUP_RETRIES",
}

var storageEnv = &storage.Env{
	ContainerName:    "INSPECTOR_STORAGE_CONTAINER_NAME",
	ConnectionString: "INSPECTOR_STORAGE_CONNECTION_STRING",
	AccountURL:       "INSPECTOR_STORAGE_ACCOUNT_URL",
}

// Config is the root configuration for the inspection service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Agent           AgentConfig     `toml:"agent"`
	Pipeline        PipelineConfig  `toml:"pipeline"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the INSPECTOR_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvInspectorEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// Load reads config.toml when present, merges the config.<INSPECTOR_ENV>.toml overlay
// when present, then applies defaults, INSPECTOR_* environment overrides, and
// validation to every section. With no files, defaults and the environment supply
// everything.
func Load() (*Config, error) {
	cfg, err := loadOptional(BaseConfigFile)
	if err != nil {
		return nil, err
	}

	if env := os.Getenv(EnvInspectorEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		overlay, err := loadOptional(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Pipeline.Merge(&overlay.Pipeline)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"agent", c.Agent.Finalize},
		{"pipeline", c.Pipeline.Finalize},
	}
	for _, section := range sections {
		if err := section.finalize(); err != nil {
			return fmt.Errorf("%s: %w", section.name, err)
		}
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvInspectorShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvInspectorVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

// loadOptional parses path, returning an empty Config when the file does not exist.
func loadOptional(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
