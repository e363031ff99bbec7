// Package cache implements the local on-device copy of the prompt library.
// The cache is a convenience for fast startup, not a durability guarantee:
// every failure degrades to "no cache" and is never returned to callers.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/JaimeStill/promptvault/internal/metrics"
	"github.com/JaimeStill/promptvault/internal/prompts"
	"github.com/JaimeStill/promptvault/pkg/formatting"
	"github.com/JaimeStill/promptvault/pkg/storage"
)

// DefaultKey is the storage key holding the serialized record array.
const DefaultKey = "promptvault_db"

// SaveStatus reports what Save did with the record set.
type SaveStatus string

const (
	// Saved means the record set was written.
	Saved SaveStatus = "saved"
	// Skipped means the payload exceeded the size threshold; the prior entry is untouched.
	Skipped SaveStatus = "skipped"
	// Cleared means the store ran out of capacity and the entry was removed.
	Cleared SaveStatus = "cleared"
	// Failed means serialization or I/O failed; the failure was logged.
	Failed SaveStatus = "failed"
)

// Cache persists the full record set under a single storage key.
type Cache struct {
	store   storage.System
	key     string
	maxSize int64
	schema  *jsonschema.Schema
	logger  *slog.Logger
}

// New creates a cache writing to store under cfg.Key.
func New(store storage.System, cfg *Config, logger *slog.Logger) (*Cache, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	return &Cache{
		store:   store,
		key:     cfg.Key,
		maxSize: cfg.MaxSizeBytes(),
		schema:  schema,
		logger:  logger.With("system", "cache"),
	}, nil
}

// Save serializes records and writes them under the cache key.
// Payloads over the size threshold are skipped. When the store reports a
// quota condition the existing entry is cleared so later writes do not keep
// failing against a full store.
func (c *Cache) Save(ctx context.Context, records []prompts.Prompt) SaveStatus {
	status := c.save(ctx, records)
	metrics.RecordCacheWrite(string(status))
	return status
}

func (c *Cache) save(ctx context.Context, records []prompts.Prompt) SaveStatus {
	if records == nil {
		records = []prompts.Prompt{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		c.logger.Error("cache serialization failed", "error", err)
		return Failed
	}

	if size := int64(len(data)); size > c.maxSize {
		c.logger.Warn(
			"cache write skipped, payload exceeds threshold",
			"size", formatting.FormatBytes(size, 1),
			"threshold", formatting.FormatBytes(c.maxSize, 1),
			"records", len(records),
		)
		return Skipped
	}

	err = c.store.Upload(ctx, c.key, bytes.NewReader(data), "application/json")
	if err == nil {
		c.logger.Debug("cache saved", "records", len(records), "bytes", len(data))
		return Saved
	}

	if errors.Is(err, storage.ErrQuotaExceeded) {
		c.logger.Warn("cache quota exceeded, clearing entry", "error", err)
		if err := c.Clear(ctx); err != nil {
			c.logger.Error("cache clear failed", "error", err)
		}
		return Cleared
	}

	c.logger.Error("cache write failed", "error", err)
	return Failed
}

// Load returns the cached record set, or an empty slice when no entry exists
// or the entry cannot be read, validated, or decoded.
func (c *Cache) Load(ctx context.Context) []prompts.Prompt {
	records, err := c.load(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn("cache unreadable, treating as empty", "error", err)
		}
		return []prompts.Prompt{}
	}
	return records
}

func (c *Cache) load(ctx context.Context) ([]prompts.Prompt, error) {
	rc, err := c.store.Download(ctx, c.key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode cache: %w", err)
	}
	if err := c.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("cache shape mismatch: %w", err)
	}

	var records []prompts.Prompt
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode cache records: %w", err)
	}

	for i := range records {
		if records[i].Tags == nil {
			records[i].Tags = []string{}
		}
	}

	return records, nil
}

// Clear removes the cache entry. A missing entry is not an error.
func (c *Cache) Clear(ctx context.Context) error {
	err := c.store.Delete(ctx, c.key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}
