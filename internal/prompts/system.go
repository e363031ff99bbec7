package prompts

import "context"

// Store defines the remote store contract: a row-oriented CRUD service
// holding the durable copy of every prompt.
type Store interface {
	// FetchAll returns every prompt ordered by creation time, newest first.
	FetchAll(ctx context.Context) ([]Prompt, error)
	// Upsert inserts the prompt or fully replaces the row with the same id.
	Upsert(ctx context.Context, p Prompt) error
	// Delete removes the prompt with the given id.
	Delete(ctx context.Context, id string) error
	// SetFavorite updates only the favorite flag of the given prompt.
	SetFavorite(ctx context.Context, id string, favorite bool) error
}
