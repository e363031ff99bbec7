package prompts

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// stubResult is what the stub driver answers for one statement.
type stubResult struct {
	rows     [][]driver.Value
	affected int64
	err      error
}

type stubCall struct {
	query string
	args  []any
}

// stubBackend answers statements by their leading keyword and records every call.
type stubBackend struct {
	mu      sync.Mutex
	answers map[string]stubResult
	calls   []stubCall
}

func (b *stubBackend) handle(query string, args []driver.NamedValue) stubResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	values := make([]any, len(args))
	for i, a := range args {
		values[i] = a.Value
	}
	b.calls = append(b.calls, stubCall{query: query, args: values})

	verb := strings.ToUpper(strings.Fields(query)[0])
	return b.answers[verb]
}

func (b *stubBackend) last(verb string) stubCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.calls) - 1; i >= 0; i-- {
		if strings.HasPrefix(strings.TrimSpace(b.calls[i].query), verb) {
			return b.calls[i]
		}
	}
	return stubCall{}
}

type stubConnector struct{ b *stubBackend }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return &stubConn{b: c.b}, nil }
func (c stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open through the connector")
}

type stubConn struct{ b *stubBackend }

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *stubConn) Close() error              { return nil }
func (c *stubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }

// CheckNamedValue passes arrays and sql.Null* values through untouched, as pgx does.
func (c *stubConn) CheckNamedValue(*driver.NamedValue) error { return nil }

func (c *stubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	r := c.b.handle(query, args)
	if r.err != nil {
		return nil, r.err
	}
	return &stubRows{rows: r.rows}, nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	r := c.b.handle(query, args)
	if r.err != nil {
		return nil, r.err
	}
	return driver.RowsAffected(r.affected), nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct {
	rows [][]driver.Value
	i    int
}

func (r *stubRows) Columns() []string {
	return []string{"id", "title", "content", "type", "model", "tags", "image_base64", "notes", "created_at", "is_favorite"}
}

func (r *stubRows) Close() error { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.i >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.i])
	r.i++
	return nil
}

func newStubRepo(t *testing.T, answers map[string]stubResult) (*repo, *stubBackend) {
	t.Helper()
	b := &stubBackend{answers: answers}
	db := sql.OpenDB(stubConnector{b: b})
	t.Cleanup(func() { db.Close() })
	return NewStore(db, slog.New(slog.DiscardHandler)).(*repo), b
}

func TestStoreError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		sentinel   error
		wantMsg    string
		wantDetail string
	}{
		{
			name: "unique violation",
			err: &pgconn.PgError{
				Code:    "23505",
				Message: `duplicate key value violates unique constraint "prompts_pkey"`,
				Detail:  "Key (id)=(a) already exists.",
			},
			sentinel:   ErrDuplicate,
			wantMsg:    `duplicate key value violates unique constraint "prompts_pkey"`,
			wantDetail: "Key (id)=(a) already exists.",
		},
		{
			name: "check violation keeps store message",
			err: &pgconn.PgError{
				Code:    "23514",
				Message: `new row for relation "prompts" violates check constraint "prompts_type_check"`,
				Detail:  "Failing row contains (a, ...).",
			},
			wantMsg:    `new row for relation "prompts" violates check constraint "prompts_type_check"`,
			wantDetail: "Failing row contains (a, ...).",
		},
		{
			name:     "no rows",
			err:      sql.ErrNoRows,
			sentinel: ErrNotFound,
			wantMsg:  sql.ErrNoRows.Error(),
		},
		{
			name:     "transport",
			err:      context.DeadlineExceeded,
			sentinel: context.DeadlineExceeded,
			wantMsg:  context.DeadlineExceeded.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storeError("upsert prompt", tt.err)

			var se *StoreError
			if !errors.As(err, &se) {
				t.Fatalf("storeError() = %T, want *StoreError", err)
			}
			if se.Op != "upsert prompt" || se.Message != tt.wantMsg || se.Detail != tt.wantDetail {
				t.Errorf("StoreError = %+v", se)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
			if tt.wantDetail != "" && !strings.Contains(err.Error(), tt.wantDetail) {
				t.Errorf("Error() = %q, want detail included", err.Error())
			}
		})
	}
}

func TestRepoFetchAll(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 15, 250_000_000, time.UTC)

	r, _ := newStubRepo(t, map[string]stubResult{
		"SELECT": {rows: [][]driver.Value{
			{"a", "Báseň", "Napiš báseň", "Text", "GPT-4", "{school,poetry}", nil, "tip", created, true},
			{"b", "Bad", "c", "Music", "m", "{}", nil, nil, created, false},
			{"c", "Cat", "c", "Generování Obrázků", "Midjourney", "{}", "data:image/png;base64,AA==", nil, created.Add(-time.Hour), false},
		}},
	})

	got, err := r.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("FetchAll() ids = %v, want [a c] with the untranslatable row skipped", got)
	}

	a := got[0]
	if a.CreatedAt != created.UnixMilli() {
		t.Errorf("CreatedAt = %d, want %d", a.CreatedAt, created.UnixMilli())
	}
	if !slices.Equal(a.Tags, []string{"school", "poetry"}) {
		t.Errorf("Tags = %v", a.Tags)
	}
	if a.Title != "Báseň" || a.ImageBase64 != "" || a.Notes != "tip" || !a.IsFavorite {
		t.Errorf("record = %+v", a)
	}

	c := got[1]
	if c.Category != CategoryImage || c.ImageBase64 == "" || c.Notes != "" || len(c.Tags) != 0 || c.Tags == nil {
		t.Errorf("record = %+v", c)
	}
}

func TestRepoFetchAllFailure(t *testing.T) {
	r, _ := newStubRepo(t, map[string]stubResult{
		"SELECT": {err: errors.New("connection refused")},
	})

	got, err := r.FetchAll(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("FetchAll() = %v, want empty non-nil slice", got)
	}

	var se *StoreError
	if !errors.As(err, &se) || se.Message != "connection refused" {
		t.Errorf("FetchAll() error = %v, want StoreError carrying the store message", err)
	}
}

func TestRepoUpsert(t *testing.T) {
	r, b := newStubRepo(t, map[string]stubResult{"INSERT": {affected: 1}})

	p := Prompt{
		ID:        "a",
		Title:     "T",
		Content:   "C",
		Category:  CategoryImage,
		Model:     "M",
		Tags:      []string{"x", "x"},
		CreatedAt: 1709285415250,
	}
	if err := r.Upsert(context.Background(), p); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	call := b.last("INSERT")
	if !strings.Contains(call.query, "ON CONFLICT (id) DO UPDATE") {
		t.Errorf("query = %q, want upsert on id", call.query)
	}
	if len(call.args) != 10 {
		t.Fatalf("args = %d, want 10", len(call.args))
	}
	if call.args[3] != "Image-generation" {
		t.Errorf("type arg = %v, want Image-generation", call.args[3])
	}
	if tags, ok := call.args[5].([]string); !ok || !slices.Equal(tags, []string{"x", "x"}) {
		t.Errorf("tags arg = %#v", call.args[5])
	}
	if img, ok := call.args[6].(sql.NullString); !ok || img.Valid {
		t.Errorf("image arg = %#v, want NULL", call.args[6])
	}
	if call.args[8] != "2024-03-01T09:30:15.250Z" {
		t.Errorf("created_at arg = %v", call.args[8])
	}
}

func TestRepoUpsertFailureCarriesStoreDetail(t *testing.T) {
	r, _ := newStubRepo(t, map[string]stubResult{
		"INSERT": {err: &pgconn.PgError{Code: "23505", Message: "duplicate key", Detail: "Key (id)=(a) already exists."}},
	})

	err := r.Upsert(context.Background(), Prompt{ID: "a", Category: CategoryText, Tags: []string{}})

	var se *StoreError
	if !errors.As(err, &se) || se.Detail != "Key (id)=(a) already exists." {
		t.Fatalf("Upsert() error = %v, want StoreError with detail", err)
	}
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("Upsert() error should match ErrDuplicate")
	}
}

func TestRepoDeleteAndFavorite(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		run      func(r *repo) error
		want     error
	}{
		{"delete existing", 1, func(r *repo) error { return r.Delete(context.Background(), "a") }, nil},
		{"delete missing is idempotent", 0, func(r *repo) error { return r.Delete(context.Background(), "a") }, nil},
		{"favorite existing", 1, func(r *repo) error { return r.SetFavorite(context.Background(), "a", true) }, nil},
		{"favorite missing", 0, func(r *repo) error { return r.SetFavorite(context.Background(), "a", true) }, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newStubRepo(t, map[string]stubResult{
				"DELETE": {affected: tt.affected},
				"UPDATE": {affected: tt.affected},
			})

			err := tt.run(r)
			if tt.want == nil && err != nil {
				t.Fatalf("error = %v, want nil", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRepoSetFavoriteArgs(t *testing.T) {
	r, b := newStubRepo(t, map[string]stubResult{"UPDATE": {affected: 1}})

	if err := r.SetFavorite(context.Background(), "a", true); err != nil {
		t.Fatalf("SetFavorite() error = %v", err)
	}

	call := b.last("UPDATE")
	if len(call.args) != 2 || call.args[0] != true || call.args[1] != "a" {
		t.Errorf("args = %v, want [true a]", call.args)
	}
}
