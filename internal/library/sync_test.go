package library_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/promptvault/internal/cache"
	"github.com/JaimeStill/promptvault/internal/library"
	"github.com/JaimeStill/promptvault/internal/prompts"
)

func TestReconcileKeepsChangesMadeDuringFetch(t *testing.T) {
	ctx := context.Background()
	a, b := record("a", 10), record("b", 5)

	f := newFixture(t, library.PolicyPreserve, a, b)
	f.cache.Save(ctx, []prompts.Prompt{a, b})

	// Remote writes fail so the fetched set cannot already contain them.
	f.store.upsertErr = errTransport
	f.store.deleteErr = errTransport
	f.store.favoriteErr = errTransport

	release := make(chan struct{})
	f.store.block = release
	f.store.entered = make(chan struct{}, 1)

	done := f.lib.Load(ctx)
	<-f.store.entered

	created, err := f.lib.Create(ctx, textCommand("During fetch"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := f.lib.ToggleFavorite(ctx, "a"); err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	if _, err := f.lib.Delete(ctx, "b", true); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("reconcile error = %v", err)
	}

	want := []string{created.Prompt.ID, "a"}
	if got := ids(f.lib.Records()); !slices.Equal(got, want) {
		t.Errorf("records = %v, want %v", got, want)
	}
	if got := ids(f.cache.Load(ctx)); !slices.Equal(got, want) {
		t.Errorf("cache = %v, want %v", got, want)
	}
	if p, _ := f.lib.Find("a"); !p.IsFavorite {
		t.Error("favorite toggled during fetch was lost")
	}
}

func TestReconcileAfterFetchForgetsChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, library.PolicyPreserve)
	if err := f.load(t); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	f.store.upsertErr = errTransport
	if _, err := f.lib.Create(ctx, textCommand("Local only")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := f.lib.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if got := len(f.lib.Records()); got != 0 {
		t.Errorf("records = %d, want the fetched empty set to win", got)
	}
}

// gatedCache holds Save until released.
type gatedCache struct {
	*cache.Cache
	entered chan struct{}
	release chan struct{}
}

func (c *gatedCache) Save(ctx context.Context, records []prompts.Prompt) cache.SaveStatus {
	c.entered <- struct{}{}
	<-c.release
	return c.Cache.Save(ctx, records)
}

func TestCacheSaveDoesNotBlockReads(t *testing.T) {
	ctx := context.Background()
	gated := &gatedCache{
		Cache:   newCache(t),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	lib := library.New(newFakeStore(), gated, newConfig(t, library.PolicyPreserve), discard())

	created := make(chan error, 1)
	go func() {
		_, err := lib.Create(ctx, textCommand("Slow cache"))
		created <- err
	}()

	<-gated.entered

	read := make(chan []prompts.Prompt, 1)
	go func() { read <- lib.Records() }()

	select {
	case got := <-read:
		if len(got) != 1 {
			t.Errorf("records = %d, want the committed record visible", len(got))
		}
	case <-time.After(time.Second):
		t.Fatal("Records() blocked behind a cache save")
	}

	close(gated.release)
	if err := <-created; err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got := len(gated.Cache.Load(ctx)); got != 1 {
		t.Errorf("cache = %d, want 1", got)
	}
}

func TestConcurrentMutationsLeaveNewestCache(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)
	lib := library.New(newFakeStore(), c, newConfig(t, library.PolicyPreserve), discard())

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			if _, err := lib.Create(ctx, textCommand("Concurrent")); err != nil {
				t.Errorf("Create() error = %v", err)
			}
		})
	}
	wg.Wait()

	want := ids(lib.Records())
	if len(want) != 8 {
		t.Fatalf("records = %d, want 8", len(want))
	}
	if got := ids(c.Load(ctx)); !slices.Equal(got, want) {
		t.Errorf("cache = %v, want %v", got, want)
	}
}
