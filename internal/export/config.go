package export

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// Config holds export parameters.
type Config struct {
	Format   string `toml:"format"`
	Filename string `toml:"filename"`
	PageSize string `toml:"page_size"`
	// FontDir is where the PDF encoder installs its embedded fonts.
	FontDir string `toml:"font_dir"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Format   string
	Filename string
	PageSize string
	FontDir  string
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
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if overlay.Filename != "" {
		c.Filename = overlay.Filename
	}
	if overlay.PageSize != "" {
		c.PageSize = overlay.PageSize
	}
	if overlay.FontDir != "" {
		c.FontDir = overlay.FontDir
	}
}

func (c *Config) loadDefaults() {
	if c.Format == "" {
		c.Format = FormatDOCX
	}
	if c.Filename == "" {
		c.Filename = "teaching_materials"
	}
	if c.PageSize == "" {
		c.PageSize = "A4"
	}
	if c.FontDir == "" {
		c.FontDir = filepath.Join(os.TempDir(), "promptvault-fonts")
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Format != "" {
		if v := os.Getenv(env.Format); v != "" {
			c.Format = v
		}
	}
	if env.Filename != "" {
		if v := os.Getenv(env.Filename); v != "" {
			c.Filename = v
		}
	}
	if env.PageSize != "" {
		if v := os.Getenv(env.PageSize); v != "" {
			c.PageSize = v
		}
	}
	if env.FontDir != "" {
		if v := os.Getenv(env.FontDir); v != "" {
			c.FontDir = v
		}
	}
}

func (c *Config) validate() error {
	if !slices.Contains(Formats(), c.Format) {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Format)
	}
	if _, ok := pageSizes[c.PageSize]; !ok {
		return fmt.Errorf("unsupported page_size %q", c.PageSize)
	}
	return nil
}
