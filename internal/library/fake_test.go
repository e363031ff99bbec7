package library_test

import (
	"cmp"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/promptvault/internal/cache"
	"github.com/JaimeStill/promptvault/internal/library"
	"github.com/JaimeStill/promptvault/internal/prompts"
	"github.com/JaimeStill/promptvault/pkg/storage"
)

var errTransport = errors.New("connection refused")

// fakeStore is an in-memory prompts.Store with failure injection.
type fakeStore struct {
	mu   sync.Mutex
	rows map[string]prompts.Prompt

	fetchErr    error
	upsertErr   error
	deleteErr   error
	favoriteErr error

	// failures counts remaining upsert failures per id.
	failures map[string]int
	// block, when set, holds FetchAll until closed or the context ends.
	block chan struct{}
	// entered, when set, receives once FetchAll is waiting on block.
	entered chan struct{}

	upserts   []string
	deletes   []string
	favorites map[string]bool
}

func newFakeStore(rows ...prompts.Prompt) *fakeStore {
	s := &fakeStore{
		rows:      make(map[string]prompts.Prompt),
		failures:  make(map[string]int),
		favorites: make(map[string]bool),
	}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *fakeStore) FetchAll(ctx context.Context) ([]prompts.Prompt, error) {
	s.mu.Lock()
	block, entered := s.block, s.entered
	s.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return []prompts.Prompt{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fetchErr != nil {
		return []prompts.Prompt{}, s.fetchErr
	}

	out := make([]prompts.Prompt, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b prompts.Prompt) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
	return out, nil
}

func (s *fakeStore) Upsert(ctx context.Context, p prompts.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upserts = append(s.upserts, p.ID)

	if n := s.failures[p.ID]; n > 0 {
		s.failures[p.ID] = n - 1
		return errTransport
	}
	if s.upsertErr != nil {
		return s.upsertErr
	}

	s.rows[p.ID] = p
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deletes = append(s.deletes, id)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.rows[id]; !ok {
		return prompts.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *fakeStore) SetFavorite(ctx context.Context, id string, favorite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites[id] = favorite
	if s.favoriteErr != nil {
		return s.favoriteErr
	}
	r, ok := s.rows[id]
	if !ok {
		return prompts.ErrNotFound
	}
	r.IsFavorite = favorite
	s.rows[id] = r
	return nil
}

func (s *fakeStore) upserted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.upserts)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCache(t *testing.T) *cache.Cache {
	t.Helper()

	store, err := storage.New(&storage.Config{
		Provider: storage.ProviderFilesystem,
		Root:     t.TempDir(),
	}, discard())
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}

	cfg := &cache.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("cache Finalize() error = %v", err)
	}

	c, err := cache.New(store, cfg, discard())
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}
	return c
}

func newConfig(t *testing.T, policy string) *library.Config {
	t.Helper()

	cfg := &library.Config{
		RemoteTimeout:      "2s",
		FetchFailurePolicy: policy,
		MigrationDelay:     "1ms",
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	return cfg
}

type fixture struct {
	lib   *library.Library
	store *fakeStore
	cache *cache.Cache
}

func newFixture(t *testing.T, policy string, rows ...prompts.Prompt) fixture {
	t.Helper()

	store := newFakeStore(rows...)
	c := newCache(t)
	clock := time.UnixMilli(1_700_000_000_000)

	lib := library.New(store, c, newConfig(t, policy), discard(), library.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))

	return fixture{lib: lib, store: store, cache: c}
}

func (f fixture) load(t *testing.T) error {
	t.Helper()
	return <-f.lib.Load(context.Background())
}

func record(id string, created int64) prompts.Prompt {
	return prompts.Prompt{
		ID:        id,
		Title:     "Prompt " + id,
		Content:   "content " + id,
		Category:  prompts.CategoryText,
		Model:     "GPT-4",
		Tags:      []string{},
		CreatedAt: created,
	}
}

func textCommand(title string) prompts.CreateCommand {
	return prompts.CreateCommand{
		Title:    title,
		Content:  "C",
		Category: prompts.CategoryText,
		Model:    "M",
	}
}
