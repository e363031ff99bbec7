package storage

import (
	"fmt"
	"os"

	"github.com/JaimeStill/promptvault/pkg/formatting"
)

// Storage providers.
const (
	ProviderFilesystem = "filesystem"
	ProviderAzure      = "azure"
)

// Config selects a storage provider and holds its connection parameters.
// Quota is a human-readable capacity ceiling ("5MB"); empty means unbounded.
type Config struct {
	Provider         string `toml:"provider"`
	Root             string `toml:"root"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
	Quota            string `toml:"quota"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	Root             string
	ContainerName    string
	ConnectionString string
	AccountURL       string
	Quota            string
}

// QuotaBytes returns Quota as a byte count, or 0 when no ceiling is configured.
func (c *Config) QuotaBytes() int64 {
	if c.Quota == "" {
		return 0
	}
	n, err := formatting.ParseBytes(c.Quota)
	if err != nil {
		return 0
	}
	return n
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
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Root != "" {
		c.Root = overlay.Root
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.AccountURL != "" {
		c.AccountURL = overlay.AccountURL
	}
	if overlay.Quota != "" {
		c.Quota = overlay.Quota
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderFilesystem
	}
	if c.Root == "" {
		c.Root = ".promptvault"
	}
	if c.ContainerName == "" {
		c.ContainerName = "promptvault"
	}
	if c.Quota == "" {
		c.Quota = "5MB"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Provider != "" {
		if v := os.Getenv(env.Provider); v != "" {
			c.Provider = v
		}
	}
	if env.Root != "" {
		if v := os.Getenv(env.Root); v != "" {
			c.Root = v
		}
	}
	if env.ContainerName != "" {
		if v := os.Getenv(env.ContainerName); v != "" {
			c.ContainerName = v
		}
	}
	if env.ConnectionString != "" {
		if v := os.Getenv(env.ConnectionString); v != "" {
			c.ConnectionString = v
		}
	}
	if env.AccountURL != "" {
		if v := os.Getenv(env.AccountURL); v != "" {
			c.AccountURL = v
		}
	}
	if env.Quota != "" {
		if v := os.Getenv(env.Quota); v != "" {
			c.Quota = v
		}
	}
}

func (c *Config) validate() error {
	if _, err := formatting.ParseBytes(c.Quota); err != nil {
		return fmt.Errorf("invalid quota: %w", err)
	}

	switch c.Provider {
	case ProviderFilesystem:
		if c.Root == "" {
			return fmt.Errorf("root required")
		}
	case ProviderAzure:
		if c.ContainerName == "" {
			return fmt.Errorf("container_name required")
		}
		if c.ConnectionString == "" && c.AccountURL == "" {
			return fmt.Errorf("connection_string or account_url required")
		}
	default:
		return fmt.Errorf("unknown provider: %q", c.Provider)
	}
	return nil
}
