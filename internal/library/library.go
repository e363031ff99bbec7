// Package library owns the in-memory prompt set and keeps it synchronized
// with the local cache and the remote store. Mutations commit locally first
// and then propagate to the remote store; remote failures are reported in the
// returned Result and never roll back the local change.
package library

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/JaimeStill/promptvault/internal/cache"
	"github.com/JaimeStill/promptvault/internal/metrics"
	"github.com/JaimeStill/promptvault/internal/prompts"
)

// Cache is the local persistence target for the full record set.
type Cache interface {
	Save(ctx context.Context, records []prompts.Prompt) cache.SaveStatus
	Load(ctx context.Context) []prompts.Prompt
}

// Status describes the reconciliation state of the library.
type Status struct {
	Records   int       `json:"records"`
	Selected  int       `json:"selected"`
	Syncing   bool      `json:"syncing"`
	Synced    bool      `json:"synced"`
	LastSync  time.Time `json:"last_sync,omitzero"`
	LastError string    `json:"last_error,omitempty"`
}

// Library is the single owner of the prompt record set and the export
// selection. All reads return copies.
type Library struct {
	mu        sync.RWMutex
	records   []prompts.Prompt
	selection map[string]struct{}
	status    Status

	// fetching counts in-flight remote fetches; journal holds the mutations
	// committed while any is in flight.
	fetching int
	journal  []change

	// version numbers record set snapshots; saved is the newest one written
	// to the cache.
	version uint64
	saveMu  sync.Mutex
	saved   uint64

	store  prompts.Store
	cache  Cache
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes a Library.
type Option func(*Library)

// WithClock overrides the time source used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Library) {
		l.now = now
	}
}

// New creates an empty library. Call Load to populate it.
func New(store prompts.Store, c Cache, cfg *Config, logger *slog.Logger, opts ...Option) *Library {
	l := &Library{
		records:   []prompts.Prompt{},
		selection: make(map[string]struct{}),
		store:     store,
		cache:     c,
		cfg:       *cfg,
		logger:    logger.With("system", "library"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load paints the record set from the local cache, then reconciles with the
// remote store in the background. The returned channel receives the
// reconciliation result and is closed afterwards.
func (l *Library) Load(ctx context.Context) <-chan error {
	local := l.cache.Load(ctx)

	l.mu.Lock()
	l.records = local
	l.pruneSelection()
	l.status.Syncing = true
	l.mu.Unlock()

	l.logger.Info("library painted from cache", "records", len(local))

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- l.Reconcile(ctx)
	}()
	return done
}

// Reconcile fetches the full record set from the remote store and replaces
// the in-memory set and local cache with it. A successful fetch always wins,
// including an empty one, except that mutations committed locally while the
// fetch was in flight are applied again on top of it. A failed fetch is
// handled by the configured policy.
func (l *Library) Reconcile(ctx context.Context) error {
	l.mu.Lock()
	l.fetching++
	l.mu.Unlock()

	var remote []prompts.Prompt
	err := l.remote(ctx, "fetch", func(ctx context.Context) error {
		var err error
		remote, err = l.store.FetchAll(ctx)
		return err
	})

	l.mu.Lock()

	l.fetching--
	journal := l.journal
	if l.fetching == 0 {
		l.journal = nil
	}

	l.status.Syncing = false

	if err != nil {
		l.status.Synced = false
		l.status.LastError = err.Error()

		if l.cfg.FetchFailurePolicy == PolicyPreserve {
			l.mu.Unlock()
			l.logger.Warn("remote fetch failed, keeping local state", "error", err)
			return err
		}

		l.logger.Warn("remote fetch failed, clearing local state", "error", err)
		remote = []prompts.Prompt{}
	} else {
		l.status.Synced = true
		l.status.LastError = ""
		l.status.LastSync = l.now()
	}

	if remote == nil {
		remote = []prompts.Prompt{}
	}
	if len(journal) > 0 {
		remote = replay(remote, journal)
		l.logger.Info("reapplied local changes made during fetch", "changes", len(journal))
	}

	l.records = remote
	l.pruneSelection()
	snap := l.snapshot()
	l.mu.Unlock()

	l.persist(ctx, snap)

	l.logger.Info("library reconciled", "records", len(remote))
	return err
}

// Records returns a copy of the record set in library order.
func (l *Library) Records() []prompts.Prompt {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.records)
}

// Find returns the record with the given id.
func (l *Library) Find(id string) (prompts.Prompt, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.index(id)
	if i < 0 {
		return prompts.Prompt{}, prompts.ErrNotFound
	}
	return l.records[i], nil
}

// Models returns the distinct model names in the record set.
func (l *Library) Models() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return prompts.Models(l.records)
}

// Status returns the current reconciliation state.
func (l *Library) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := l.status
	s.Records = len(l.records)
	s.Selected = len(l.selection)
	return s
}

// Ready reports whether the first reconciliation attempt has finished,
// successfully or not.
func (l *Library) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return !l.status.Syncing && (l.status.Synced || l.status.LastError != "")
}

// remote runs fn against the remote store bounded by the configured timeout
// and records its outcome.
func (l *Library) remote(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	rctx, cancel := context.WithTimeout(ctx, l.cfg.RemoteTimeoutDuration())
	defer cancel()

	start := time.Now()
	err := fn(rctx)
	if err != nil && errors.Is(rctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		err = errors.Join(err, context.DeadlineExceeded)
	}
	metrics.RecordRemote(op, err, time.Since(start))
	return err
}

type snapshot struct {
	version uint64
	records []prompts.Prompt
}

// snapshot copies the record set for persist.
// The caller must hold the write lock.
func (l *Library) snapshot() snapshot {
	l.version++
	return snapshot{version: l.version, records: slices.Clone(l.records)}
}

// persist writes snap to the local cache unless a newer snapshot has been
// written already. It runs outside l.mu so cache I/O never blocks readers.
func (l *Library) persist(ctx context.Context, snap snapshot) {
	l.saveMu.Lock()
	defer l.saveMu.Unlock()

	if snap.version <= l.saved {
		return
	}
	l.cache.Save(ctx, snap.records)
	l.saved = snap.version
}

// change is a local mutation: record is the committed state, or nil when
// the record was deleted.
type change struct {
	id     string
	record *prompts.Prompt
}

// track journals a committed mutation for any in-flight fetch.
// The caller must hold the write lock.
func (l *Library) track(id string, record *prompts.Prompt) {
	if l.fetching == 0 {
		return
	}
	if record != nil {
		r := *record
		record = &r
	}
	l.journal = append(l.journal, change{id: id, record: record})
}

// replay applies journaled changes to a fetched record set, keeping it
// ordered newest first.
func replay(records []prompts.Prompt, journal []change) []prompts.Prompt {
	for _, c := range journal {
		i := slices.IndexFunc(records, func(p prompts.Prompt) bool {
			return p.ID == c.id
		})

		switch {
		case c.record == nil:
			if i >= 0 {
				records = slices.Delete(records, i, i+1)
			}
		case i >= 0:
			records[i] = *c.record
		default:
			at := slices.IndexFunc(records, func(p prompts.Prompt) bool {
				return p.CreatedAt < c.record.CreatedAt
			})
			if at < 0 {
				at = len(records)
			}
			records = slices.Insert(records, at, *c.record)
		}
	}
	return records
}

// index returns the position of id in the record set or -1.
// The caller must hold the lock.
func (l *Library) index(id string) int {
	return slices.IndexFunc(l.records, func(p prompts.Prompt) bool {
		return p.ID == id
	})
}
