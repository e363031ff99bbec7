package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/promptvault/internal/cache"
	"github.com/JaimeStill/promptvault/internal/export"
	"github.com/JaimeStill/promptvault/internal/library"
	"github.com/JaimeStill/promptvault/pkg/database"
	"github.com/JaimeStill/promptvault/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvPromptVaultEnv             = "PROMPTVAULT_ENV"
	EnvPromptVaultShutdownTimeout = "PROMPTVAULT_SHUTDOWN_TIMEOUT"
	EnvPromptVaultVersion         = "PROMPTVAULT_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "PROMPTVAULT_DB_HOST",
	Port:            "PROMPTVAULT_DB_PORT",
	Name:            "PROMPTVAULT_DB_NAME",
	User:            "PROMPTVAULT_DB_USER",
	Password:        "PROMPTVAULT_DB_PASSWORD",
	SSLMode:         "PROMPTVAULT_DB_SSL_MODE",
	MaxOpenConns:    "PROMPTVAULT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PROMPTVAULT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PROMPTVAULT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PROMPTVAULT_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "PROMPTVAULT_STORAGE_PROVIDER",
	Root:             "PROMPTVAULT_STORAGE_ROOT",
	ContainerName:    "PROMPTVAULT_STORAGE_CONTAINER_NAME",
	ConnectionString: "PROMPTVAULT_STORAGE_CONNECTION_STRING",
	AccountURL:       "PROMPTVAULT_STORAGE_ACCOUNT_URL",
	Quota:            "PROMPTVAULT_STORAGE_QUOTA",
}

var cacheEnv = &cache.Env{
	Key:     "PROMPTVAULT_CACHE_KEY",
	MaxSize: "PROMPTVAULT_CACHE_MAX_SIZE",
}

var syncEnv = &library.Env{
	RemoteTimeout:      "PROMPTVAULT_SYNC_REMOTE_TIMEOUT",
	FetchFailurePolicy: "PROMPTVAULT_SYNC_FETCH_FAILURE_POLICY",
	MigrationAttempts:  "PROMPTVAULT_SYNC_MIGRATION_ATTEMPTS",
	MigrationDelay:     "PROMPTVAULT_SYNC_MIGRATION_DELAY",
}

var exportEnv = &export.Env{
	Format:   "PROMPTVAULT_EXPORT_FORMAT",
	Filename: "PROMPTVAULT_EXPORT_FILENAME",
	PageSize: "PROMPTVAULT_EXPORT_PAGE_SIZE",
	FontDir:  "PROMPTVAULT_EXPORT_FONT_DIR",
}

// Config is the root configuration for PromptVault.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Cache           cache.Config    `toml:"cache"`
	Sync            library.Config  `toml:"sync"`
	Export          export.Config   `toml:"export"`
	API             APIConfig       `toml:"api"`
	Logging         LoggingConfig   `toml:"logging"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the PROMPTVAULT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvPromptVaultEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFile(BaseConfigFile)
}

// LoadFile is Load with an explicit base config path. The environment
// overlay is looked up beside base.
func LoadFile(base string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(filepath.Dir(base)); path != "" {
		overlay, err := load(path)
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
	c.Cache.Merge(&overlay.Cache)
	c.Sync.Merge(&overlay.Sync)
	c.Export.Merge(&overlay.Export)
	c.API.Merge(&overlay.API)
	c.Logging.Merge(&overlay.Logging)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Sync.Finalize(syncEnv); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := c.Export.Finalize(exportEnv); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
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
	if v := os.Getenv(EnvPromptVaultShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvPromptVaultVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvPromptVaultEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
