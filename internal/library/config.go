package library

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Fetch failure policies.
const (
	// PolicyPreserve keeps the in-memory set and cache when a remote fetch fails.
	PolicyPreserve = "preserve"
	// PolicyOverwrite treats a failed fetch as an empty remote and replaces state.
	PolicyOverwrite = "overwrite"
)

// Config holds synchronization parameters.
type Config struct {
	RemoteTimeout      string `toml:"remote_timeout"`
	FetchFailurePolicy string `toml:"fetch_failure_policy"`
	MigrationAttempts  int    `toml:"migration_attempts"`
	MigrationDelay     string `toml:"migration_delay"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	RemoteTimeout      string
	FetchFailurePolicy string
	MigrationAttempts  string
	MigrationDelay     string
}

// RemoteTimeoutDuration returns RemoteTimeout as a time.Duration.
func (c *Config) RemoteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RemoteTimeout)
	return d
}

// MigrationDelayDuration returns MigrationDelay as a time.Duration.
func (c *Config) MigrationDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.MigrationDelay)
	return d
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
	if overlay.RemoteTimeout != "" {
		c.RemoteTimeout = overlay.RemoteTimeout
	}
	if overlay.FetchFailurePolicy != "" {
		c.FetchFailurePolicy = overlay.FetchFailurePolicy
	}
	if overlay.MigrationAttempts != 0 {
		c.MigrationAttempts = overlay.MigrationAttempts
	}
	if overlay.MigrationDelay != "" {
		c.MigrationDelay = overlay.MigrationDelay
	}
}

func (c *Config) loadDefaults() {
	if c.RemoteTimeout == "" {
		c.RemoteTimeout = "10s"
	}
	if c.FetchFailurePolicy == "" {
		c.FetchFailurePolicy = PolicyPreserve
	}
	if c.MigrationAttempts <= 0 {
		c.MigrationAttempts = 3
	}
	if c.MigrationDelay == "" {
		c.MigrationDelay = "500ms"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.RemoteTimeout != "" {
		if v := os.Getenv(env.RemoteTimeout); v != "" {
			c.RemoteTimeout = v
		}
	}
	if env.FetchFailurePolicy != "" {
		if v := os.Getenv(env.FetchFailurePolicy); v != "" {
			c.FetchFailurePolicy = v
		}
	}
	if env.MigrationAttempts != "" {
		if v := os.Getenv(env.MigrationAttempts); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MigrationAttempts = n
			}
		}
	}
	if env.MigrationDelay != "" {
		if v := os.Getenv(env.MigrationDelay); v != "" {
			c.MigrationDelay = v
		}
	}
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.RemoteTimeout)
	if err != nil {
		return fmt.Errorf("invalid remote_timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("remote_timeout must be positive")
	}
	if _, err := time.ParseDuration(c.MigrationDelay); err != nil {
		return fmt.Errorf("invalid migration_delay: %w", err)
	}
	switch c.FetchFailurePolicy {
	case PolicyPreserve, PolicyOverwrite:
	default:
		return fmt.Errorf("fetch_failure_policy must be %s or %s, got %q", PolicyPreserve, PolicyOverwrite, c.FetchFailurePolicy)
	}
	if c.MigrationAttempts < 1 {
		return fmt.Errorf("migration_attempts must be at least 1")
	}
	return nil
}
