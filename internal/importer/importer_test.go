package importer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/promptvault/internal/export"
	"github.com/JaimeStill/promptvault/internal/importer"
	"github.com/JaimeStill/promptvault/internal/prompts"
	"github.com/JaimeStill/promptvault/pkg/routes"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sample() []prompts.Prompt {
	return []prompts.Prompt{{
		ID:       "1",
		Title:    "Lesson plan",
		Content:  "Describe photosynthesis\nin three steps",
		Category: prompts.CategoryText,
		Model:    "GPT-4",
		Notes:    "keep it simple",
	}}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		filename string
		data     string
	}{
		{"notes.txt", "plain text"},
		{"README.MD", "# heading"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := importer.Extract(tt.filename, []byte(tt.data))
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got.Content != tt.data || got.Type != importer.TypeText {
				t.Errorf("Extract() = %+v", got)
			}
		})
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     error
	}{
		{"unsupported", "image.png", []byte{0x89}, importer.ErrUnsupportedType},
		{"no extension", "Makefile", []byte("x"), importer.ErrUnsupportedType},
		{"invalid utf8", "bad.txt", []byte{0xff, 0xfe, 0xfd}, importer.ErrInvalidFile},
		{"corrupt docx", "bad.docx", []byte("not a zip"), importer.ErrInvalidFile},
		{"corrupt pdf", "bad.pdf", []byte("not a pdf"), importer.ErrInvalidFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := importer.Extract(tt.filename, tt.data); !errors.Is(err, tt.want) {
				t.Errorf("Extract() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExtractDOCX(t *testing.T) {
	data, err := export.NewDOCX().Encode(context.Background(), export.Assemble(sample()))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := importer.Extract("lesson.docx", data)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := "Lesson plan\nModel: GPT-4 | Category: Text\nDescribe photosynthesis\nin three steps\nTip for students: keep it simple"
	if got.Content != want {
		t.Errorf("Content = %q, want %q", got.Content, want)
	}
	if got.Type != importer.TypeDOCX {
		t.Errorf("Type = %q", got.Type)
	}
}

func TestExtractPDF(t *testing.T) {
	data, err := export.NewPDF("A4", t.TempDir(), discard()).Encode(context.Background(), export.Assemble(sample()))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := importer.Extract("lesson.pdf", data)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if got.Type != importer.TypePDF || got.Pages != 1 {
		t.Errorf("Extract() = %+v", got)
	}
	if !strings.Contains(got.Content, "Lesson plan") {
		t.Errorf("Content = %q, want title text", got.Content)
	}
	if !strings.HasSuffix(got.Content, "\n\n") {
		t.Error("pages should be terminated by a blank line")
	}
}

func upload(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandlerImport(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, importer.NewHandler(discard(), 1<<20).Routes())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, upload(t, "prompt.txt", []byte("hello")))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var result importer.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if result.Content != "hello" || result.Type != "txt" {
		t.Errorf("result = %+v", result)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, upload(t, "photo.png", []byte("x")))
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("unsupported status = %d, want 415", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import", strings.NewReader("")))
	if rec.Code == http.StatusOK {
		t.Error("request without multipart body should fail")
	}
}

func TestHandlerImportTooLarge(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, importer.NewHandler(discard(), 64).Routes())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, upload(t, "big.txt", bytes.Repeat([]byte("a"), 4096)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}
