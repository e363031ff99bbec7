package library

import (
	"context"
	"slices"

	"github.com/JaimeStill/promptvault/internal/prompts"
)

// Result reports the outcome of a mutation. The local commit has always
// happened when a Result is returned; Synced reports whether the remote
// store accepted the change and Warning carries the reason when it did not.
type Result struct {
	Prompt  *prompts.Prompt `json:"prompt,omitempty"`
	Synced  bool            `json:"synced"`
	Warning string          `json:"warning,omitempty"`
}

func (l *Library) result(p *prompts.Prompt, op string, err error) Result {
	if err == nil {
		return Result{Prompt: p, Synced: true}
	}

	l.logger.Warn("remote write failed, local copy retained", "op", op, "error", err)
	return Result{
		Prompt:  p,
		Synced:  false,
		Warning: "saved locally only: " + err.Error(),
	}
}

// Create validates cmd, prepends the new record, persists the cache, and
// upserts the record to the remote store. Validation failures leave state
// untouched.
func (l *Library) Create(ctx context.Context, cmd prompts.CreateCommand) (Result, error) {
	p, err := prompts.New(cmd, l.now())
	if err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	l.records = slices.Insert(l.records, 0, p)
	l.track(p.ID, &p)
	snap := l.snapshot()
	l.mu.Unlock()

	l.persist(ctx, snap)

	l.logger.Info("prompt created", "id", p.ID, "title", p.Title)

	err = l.remote(ctx, "upsert", func(ctx context.Context) error {
		return l.store.Upsert(ctx, p)
	})
	return l.result(&p, "upsert", err), nil
}

// Update applies cmd to the record with the given id in place, persists the
// cache, and upserts the record to the remote store.
func (l *Library) Update(ctx context.Context, id string, cmd prompts.UpdateCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	i := l.index(id)
	if i < 0 {
		l.mu.Unlock()
		return Result{}, prompts.ErrNotFound
	}

	p, err := cmd.Apply(l.records[i])
	if err != nil {
		l.mu.Unlock()
		return Result{}, err
	}

	l.records[i] = p
	l.track(id, &p)
	snap := l.snapshot()
	l.mu.Unlock()

	l.persist(ctx, snap)

	l.logger.Info("prompt updated", "id", p.ID)

	err = l.remote(ctx, "upsert", func(ctx context.Context) error {
		return l.store.Upsert(ctx, p)
	})
	return l.result(&p, "upsert", err), nil
}

// Delete removes the record and evicts it from the selection, persists the
// cache, and deletes the remote row. confirmed must be true.
func (l *Library) Delete(ctx context.Context, id string, confirmed bool) (Result, error) {
	if !confirmed {
		return Result{}, ErrConfirmationRequired
	}

	l.mu.Lock()
	i := l.index(id)
	if i < 0 {
		l.mu.Unlock()
		return Result{}, prompts.ErrNotFound
	}

	l.records = slices.Delete(l.records, i, i+1)
	delete(l.selection, id)
	l.track(id, nil)
	snap := l.snapshot()
	l.mu.Unlock()

	l.persist(ctx, snap)

	l.logger.Info("prompt deleted", "id", id)

	err := l.remote(ctx, "delete", func(ctx context.Context) error {
		return l.store.Delete(ctx, id)
	})
	return l.result(nil, "delete", err), nil
}

// ToggleFavorite flips the favorite flag, persists the cache, and updates
// the remote row.
func (l *Library) ToggleFavorite(ctx context.Context, id string) (Result, error) {
	l.mu.Lock()
	i := l.index(id)
	if i < 0 {
		l.mu.Unlock()
		return Result{}, prompts.ErrNotFound
	}

	l.records[i].IsFavorite = !l.records[i].IsFavorite
	p := l.records[i]
	l.track(id, &p)
	snap := l.snapshot()
	l.mu.Unlock()

	l.persist(ctx, snap)

	err := l.remote(ctx, "favorite", func(ctx context.Context) error {
		return l.store.SetFavorite(ctx, id, p.IsFavorite)
	})
	return l.result(&p, "favorite", err), nil
}
