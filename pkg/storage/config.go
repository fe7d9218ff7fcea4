package storage

import (
	"fmt"
	"os"
	"strings"
)

// Config holds Azure Blob Storage connection parameters.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
	AccountURL       string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	for dst, v := range c.fields(overlay) {
		if v != "" {
			*dst = v
		}
	}
}

// fields pairs each setting of c with the matching value from other.
func (c *Config) fields(other *Config) map[*string]string {
	return map[*string]string{
		&c.ContainerName:    other.ContainerName,
		&c.ConnectionString: other.ConnectionString,
		&c.AccountURL:       other.AccountURL,
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "inspections"
	}
}

func (c *Config) loadEnv(env *Env) {
	names := c.fields(&Config{
		ContainerName:    env.ContainerName,
		ConnectionString: env.ConnectionString,
		AccountURL:       env.AccountURL,
	})
	for dst, name := range names {
		if name == "" {
			continue
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
}

func (c *Config) validate() error {
	if err := validateContainer(c.ContainerName); err != nil {
		return err
	}
	if c.ConnectionString != "" {
		return nil
	}
	if c.AccountURL == "" {
		return fmt.Errorf("connection_string or account_url required")
	}
	if !strings.HasPrefix(c.AccountURL, "https://") && !strings.HasPrefix(c.AccountURL, "http://") {
		return fmt.Errorf("account_url must be an http(s) URL")
	}
	return nil
}

// validateContainer enforces the blob service naming rules: 3-63 characters of
// lowercase letters, digits and single hyphens, starting and ending alphanumeric.
func validateContainer(name string) error {
	if name == "" {
		return fmt.Errorf("container_name required")
	}
	if len(name) < 3 || len(name) > 63 {
		return fmt.Errorf("container_name %q must be 3-63 characters", name)
	}
	if name[0] == '-' || name[len(name)-1] == '-' || strings.Contains(name, "--") {
		return fmt.Errorf("container_name %q has misplaced hyphens", name)
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return fmt.Errorf("container_name %q must be lowercase alphanumeric", name)
		}
	}
	return nil
}
