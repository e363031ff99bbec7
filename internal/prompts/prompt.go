// Package prompts implements the prompt record domain for PromptVault.
// It provides the record model, input validation, in-memory filtering,
// and the remote store adapter that persists prompts to PostgreSQL.
package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prompt is a single library record. The JSON shape is the local cache
// format: camel-case keys with CreatedAt as epoch milliseconds.
type Prompt struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Category    Category `json:"type"`
	Model       string   `json:"model"`
	Tags        []string `json:"tags"`
	ImageBase64 string   `json:"imageBase64,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
	IsFavorite  bool     `json:"isFavorite"`
}

// HasImage reports whether the prompt carries a sample image payload.
func (p Prompt) HasImage() bool {
	return p.ImageBase64 != ""
}

// HasNotes reports whether the prompt carries notes.
func (p Prompt) HasNotes() bool {
	return strings.TrimSpace(p.Notes) != ""
}

// CreatedTime returns CreatedAt as a time.Time.
func (p Prompt) CreatedTime() time.Time {
	return time.UnixMilli(p.CreatedAt)
}

// CreateCommand carries the data needed to create a new prompt.
type CreateCommand struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Category    Category `json:"type"`
	Model       string   `json:"model"`
	Tags        []string `json:"tags"`
	ImageBase64 string   `json:"imageBase64"`
	Notes       string   `json:"notes"`
}

// UpdateCommand carries the editable fields of an existing prompt.
// IsFavorite is only applied when non-nil.
type UpdateCommand struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Category    Category `json:"type"`
	Model       string   `json:"model"`
	Tags        []string `json:"tags"`
	ImageBase64 string   `json:"imageBase64"`
	Notes       string   `json:"notes"`
	IsFavorite  *bool    `json:"isFavorite,omitempty"`
}

// Validate checks the required fields of a create command.
func (c CreateCommand) Validate() error {
	return validate(c.Title, c.Content, c.Model, c.Category)
}

// Validate checks the required fields of an update command.
func (c UpdateCommand) Validate() error {
	return validate(c.Title, c.Content, c.Model, c.Category)
}

// New builds a prompt from a validated command with a fresh identifier
// and a creation time of now.
func New(cmd CreateCommand, now time.Time) (Prompt, error) {
	if err := cmd.Validate(); err != nil {
		return Prompt{}, err
	}

	return Prompt{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(cmd.Title),
		Content:     cmd.Content,
		Category:    cmd.Category,
		Model:       strings.TrimSpace(cmd.Model),
		Tags:        normalizeTags(cmd.Tags),
		ImageBase64: cmd.ImageBase64,
		Notes:       cmd.Notes,
		CreatedAt:   now.UnixMilli(),
	}, nil
}

// Apply returns p with the command's fields applied. ID and CreatedAt are
// never changed; IsFavorite changes only when the command sets it.
func (c UpdateCommand) Apply(p Prompt) (Prompt, error) {
	if err := c.Validate(); err != nil {
		return Prompt{}, err
	}

	p.Title = strings.TrimSpace(c.Title)
	p.Content = c.Content
	p.Category = c.Category
	p.Model = strings.TrimSpace(c.Model)
	p.Tags = normalizeTags(c.Tags)
	p.ImageBase64 = c.ImageBase64
	p.Notes = c.Notes

	if c.IsFavorite != nil {
		p.IsFavorite = *c.IsFavorite
	}

	return p, nil
}

// ParseTags splits comma-separated tag input. Whitespace is trimmed and empty
// entries dropped; order and duplicates are preserved.
func ParseTags(input string) []string {
	tags := make([]string, 0)
	for part := range strings.SplitSeq(input, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func validate(title, content, model string, category Category) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title required", ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content required", ErrValidation)
	}
	if strings.TrimSpace(model) == "" {
		return fmt.Errorf("%w: model required", ErrValidation)
	}
	if _, err := ParseCategory(string(category)); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
