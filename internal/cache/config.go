package cache

import (
	"fmt"
	"os"

	"github.com/JaimeStill/promptvault/pkg/formatting"
)

// Config holds local cache parameters.
type Config struct {
	Key     string `toml:"key"`
	MaxSize string `toml:"max_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Key     string
	MaxSize string
}

// MaxSizeBytes returns MaxSize as a byte count.
func (c *Config) MaxSizeBytes() int64 {
	n, err := formatting.ParseBytes(c.MaxSize)
	if err != nil {
		return 4 * 1024 * 1024
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
	if overlay.Key != "" {
		c.Key = overlay.Key
	}
	if overlay.MaxSize != "" {
		c.MaxSize = overlay.MaxSize
	}
}

func (c *Config) loadDefaults() {
	if c.Key == "" {
		c.Key = DefaultKey
	}
	if c.MaxSize == "" {
		c.MaxSize = "4MB"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Key != "" {
		if v := os.Getenv(env.Key); v != "" {
			c.Key = v
		}
	}
	if env.MaxSize != "" {
		if v := os.Getenv(env.MaxSize); v != "" {
			c.MaxSize = v
		}
	}
}

func (c *Config) validate() error {
	n, err := formatting.ParseBytes(c.MaxSize)
	if err != nil {
		return fmt.Errorf("invalid max_size: %w", err)
	}
	if n <= 0 {
		return fmt.Errorf("max_size must be positive")
	}
	return nil
}
