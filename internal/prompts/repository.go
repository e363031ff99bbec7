package prompts

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JaimeStill/promptvault/pkg/query"
	"github.com/JaimeStill/promptvault/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates the PostgreSQL-backed remote store.
func NewStore(db *sql.DB, logger *slog.Logger) Store {
	return &repo{
		db:     db,
		logger: logger.With("system", "remote"),
	}
}

// FetchAll returns an empty slice alongside any error so callers that only
// look at the slice see "no rows"; callers deciding whether to trust the
// result must check err.
func (r *repo) FetchAll(ctx context.Context) ([]Prompt, error) {
	q, args := query.NewBuilder(projection, defaultSort).Build()

	rows, err := repository.QueryMany(ctx, r.db, q, args, rowScanner(pgtype.NewMap()))
	if err != nil {
		r.logger.Error("fetch prompts failed", "error", err)
		return []Prompt{}, storeError("fetch prompts", err)
	}

	result := make([]Prompt, 0, len(rows))
	for _, row := range rows {
		p, err := row.Prompt()
		if err != nil {
			r.logger.Warn("skipping untranslatable row", "id", row.ID, "error", err)
			continue
		}
		result = append(result, p)
	}

	r.logger.Info("prompts fetched", "count", len(result))
	return result, nil
}

func (r *repo) Upsert(ctx context.Context, p Prompt) error {
	q := `
		INSERT INTO prompts(id, title, content, type, model, tags, image_base64, notes, created_at, is_favorite)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			type = EXCLUDED.type,
			model = EXCLUDED.model,
			tags = EXCLUDED.tags,
			image_base64 = EXCLUDED.image_base64,
			notes = EXCLUDED.notes,
			created_at = EXCLUDED.created_at,
			is_favorite = EXCLUDED.is_favorite`

	row := ToRow(p)
	args := []any{
		row.ID,
		row.Title,
		row.Content,
		row.Type,
		row.Model,
		row.Tags,
		row.ImageBase64,
		row.Notes,
		row.CreatedAt,
		row.IsFavorite,
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		_, err := tx.ExecContext(ctx, q, args...)
		return struct{}{}, err
	})

	if err != nil {
		return storeError("upsert prompt", err)
	}

	r.logger.Info("prompt upserted", "id", p.ID, "title", p.Title)
	return nil
}

// Delete is idempotent: removing a row that is already gone succeeds.
func (r *repo) Delete(ctx context.Context, id string) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		_, err := tx.ExecContext(ctx, "DELETE FROM prompts WHERE id = $1", id)
		return struct{}{}, err
	})

	if err != nil {
		return storeError("delete prompt", err)
	}

	r.logger.Info("prompt deleted", "id", id)
	return nil
}

func (r *repo) SetFavorite(ctx context.Context, id string, favorite bool) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"UPDATE prompts SET is_favorite = $1 WHERE id = $2",
			favorite, id,
		)
	})

	if err != nil {
		return storeError("set favorite", err)
	}

	r.logger.Info("prompt favorite updated", "id", id, "favorite", favorite)
	return nil
}

// storeError maps err to a domain sentinel where one applies and wraps it
// with the store's message and detail.
func storeError(op string, err error) error {
	mapped := repository.MapError(err, ErrNotFound, ErrDuplicate)

	se := &StoreError{Op: op, Message: err.Error(), Err: mapped}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		se.Message = pgErr.Message
		se.Detail = pgErr.Detail
	}

	return se
}
