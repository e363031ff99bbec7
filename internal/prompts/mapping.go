package prompts

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"

	"github.com/JaimeStill/promptvault/pkg/query"
	"github.com/JaimeStill/promptvault/pkg/repository"
)

// TimestampLayout is the ISO-8601 form stored in created_at.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Project("id", "ID").
	Project("title", "Title").
	Project("content", "Content").
	Project("type", "Category").
	Project("model", "Model").
	Project("tags", "Tags").
	Project("image_base64", "ImageBase64").
	Project("notes", "Notes").
	Project("created_at", "CreatedAt").
	Project("is_favorite", "IsFavorite")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Row is a prompt in the remote store's column layout.
type Row struct {
	ID          string
	Title       string
	Content     string
	Type        string
	Model       string
	Tags        []string
	ImageBase64 sql.NullString
	Notes       sql.NullString
	CreatedAt   string
	IsFavorite  bool
}

// ToRow translates a prompt into the store's column layout.
// Empty optional fields become NULL and CreatedAt becomes an ISO-8601 string.
func ToRow(p Prompt) Row {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	return Row{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		Type:        string(p.Category),
		Model:       p.Model,
		Tags:        tags,
		ImageBase64: nullString(p.ImageBase64),
		Notes:       nullString(p.Notes),
		CreatedAt:   FormatTimestamp(p.CreatedAt),
		IsFavorite:  p.IsFavorite,
	}
}

// Prompt translates a stored row back into the record model.
// Unknown categories are rejected rather than passed through.
func (r Row) Prompt() (Prompt, error) {
	category, err := ParseCategory(r.Type)
	if err != nil {
		return Prompt{}, fmt.Errorf("row %s: %w", r.ID, err)
	}

	created, err := ParseTimestamp(r.CreatedAt)
	if err != nil {
		return Prompt{}, fmt.Errorf("row %s: %w", r.ID, err)
	}

	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}

	return Prompt{
		ID:          r.ID,
		Title:       r.Title,
		Content:     r.Content,
		Category:    category,
		Model:       r.Model,
		Tags:        tags,
		ImageBase64: r.ImageBase64.String,
		Notes:       r.Notes.String,
		CreatedAt:   created,
		IsFavorite:  r.IsFavorite,
	}, nil
}

// FormatTimestamp converts epoch milliseconds to an ISO-8601 UTC string.
func FormatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(TimestampLayout)
}

// ParseTimestamp converts an ISO-8601 string to epoch milliseconds.
func ParseTimestamp(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UnixMilli(), nil
}

// Filter narrows the in-memory record set. Empty fields and "All" impose no
// constraint. Search matches the title or any tag, case-insensitively.
type Filter struct {
	Category string `json:"type,omitempty"`
	Model    string `json:"model,omitempty"`
	Search   string `json:"search,omitempty"`
}

// Matches reports whether p satisfies every constraint of the filter.
func (f Filter) Matches(p Prompt) bool {
	if f.Category != "" && f.Category != "All" && p.Category != filterCategory(f.Category) {
		return false
	}
	if f.Model != "" && f.Model != "All" && p.Model != f.Model {
		return false
	}
	if f.Search == "" {
		return true
	}

	needle := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(p.Title), needle) {
		return true
	}
	return lo.SomeBy(p.Tags, func(t string) bool {
		return strings.Contains(strings.ToLower(t), needle)
	})
}

// filterCategory resolves aliases so "Image" filters Image-generation records.
func filterCategory(s string) Category {
	if c, err := ParseCategory(s); err == nil {
		return c
	}
	return Category(s)
}

// Apply returns the prompts matching the filter, preserving order.
func (f Filter) Apply(items []Prompt) []Prompt {
	return lo.Filter(items, func(p Prompt, _ int) bool {
		return f.Matches(p)
	})
}

// FilterFromQuery extracts filter values from URL query parameters.
func FilterFromQuery(values url.Values) Filter {
	category := values.Get("type")
	if category == "" {
		category = values.Get("category")
	}
	return Filter{
		Category: category,
		Model:    values.Get("model"),
		Search:   values.Get("search"),
	}
}

// Models returns the distinct model names in first-seen order.
func Models(items []Prompt) []string {
	return lo.Uniq(lo.Map(items, func(p Prompt, _ int) string {
		return p.Model
	}))
}

// rowScanner returns a scan function decoding text[] through m.
// A pgtype.Map is not safe for concurrent use, so each query gets its own.
func rowScanner(m *pgtype.Map) repository.ScanFunc[Row] {
	return func(s repository.Scanner) (Row, error) {
		return scanRow(m, s)
	}
}

func scanRow(m *pgtype.Map, s repository.Scanner) (Row, error) {
	var r Row
	err := s.Scan(
		&r.ID,
		&r.Title,
		&r.Content,
		&r.Type,
		&r.Model,
		m.SQLScanner(&r.Tags),
		&r.ImageBase64,
		&r.Notes,
		&r.CreatedAt,
		&r.IsFavorite,
	)
	return r, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
