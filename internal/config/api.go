package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/JaimeStill/inspector/pkg/formatting"
	"github.com/JaimeStill/inspector/pkg/middleware"
	"github.com/JaimeStill/inspector/pkg/pagination"
)

const (
	EnvAPIBasePath      = "INSPECTOR_API_BASE_PATH"
	EnvAPIMaxUploadSize = "INSPECTOR_API_MAX_UPLOAD_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "INSPECTOR_CORS_ENABLED",
	Origins:          "INSPECTOR_CORS_ORIGINS",
	AllowedMethods:   "INSPECTOR_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "INSPECTOR_CORS_ALLOWED_HEADERS",
	AllowCredentials: "INSPECTOR_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "INSPECTOR_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "INSPECTOR_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "INSPECTOR_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds the API module prefix, the image upload limit, CORS, and pagination.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`

	maxUploadBytes int64
}

// MaxUploadSizeBytes returns the parsed upload limit. Valid after Finalize.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	if c.maxUploadBytes == 0 {
		c.maxUploadBytes, _ = formatting.ParseBytes(c.MaxUploadSize)
	}
	return c.maxUploadBytes
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
		c.maxUploadBytes = 0
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
}

func (c *APIConfig) validate() error {
	name, ok := strings.CutPrefix(c.BasePath, "/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("base_path must be a single path segment such as /api: %q", c.BasePath)
	}

	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadBytes = size
	return nil
}
