package export_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/promptvault/internal/export"
	"github.com/JaimeStill/promptvault/internal/importer"
	"github.com/JaimeStill/promptvault/internal/prompts"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRecords(t *testing.T) []prompts.Prompt {
	t.Helper()

	first := plain("Sunset <over> the sea & sky")
	first.ImageBase64 = dataURL("png", encodeImage(t, "png"))
	first.Notes = "mention the horizon"

	second := plain("Essay")
	second.Content = "line one\nline two"
	second.ImageBase64 = "data:image/png;base64,@@@"

	third := plain("Poem")
	third.ImageBase64 = dataURL("jpeg", encodeImage(t, "jpeg"))

	return []prompts.Prompt{first, second, third}
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		files[f.Name] = string(b)
	}
	return files
}

func TestDOCXEncode(t *testing.T) {
	blocks := export.Assemble(sampleRecords(t))

	data, err := export.NewDOCX().Encode(context.Background(), blocks)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	files := readZip(t, data)

	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"word/document.xml",
		"word/styles.xml",
		"word/_rels/document.xml.rels",
		"word/media/image1.png",
		"word/media/image2.jpeg",
	} {
		if _, ok := files[name]; !ok {
			t.Errorf("missing part %s", name)
		}
	}

	doc := files["word/document.xml"]

	checks := []struct {
		name string
		want string
	}{
		{"escaped title", "Sunset &lt;over&gt; the sea &amp; sky"},
		{"meta", "Model: GPT-4 | Category: Text"},
		{"tip", "Tip for students: mention the horizon"},
		{"image error", export.ImageErrorText},
		{"line break", "line one</w:t><w:br/>"},
		{"monospace body", "Courier New"},
		{"centered image", `<w:jc w:val="center"/>`},
		{"image extent", `cx="3810000" cy="3810000"`},
	}
	for _, c := range checks {
		if !strings.Contains(doc, c.want) {
			t.Errorf("%s: document.xml missing %q", c.name, c.want)
		}
	}

	if got := strings.Count(doc, "<w:pageBreakBefore/>"); got != 2 {
		t.Errorf("page breaks = %d, want 2", got)
	}

	rels := files["word/_rels/document.xml.rels"]
	if !strings.Contains(rels, `Target="media/image2.jpeg"`) {
		t.Errorf("rels missing jpeg target: %s", rels)
	}
}

func TestDOCXEncodeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := export.NewDOCX().Encode(ctx, export.Assemble([]prompts.Prompt{plain("A")})); err == nil {
		t.Error("expected context error")
	}
}

func TestPDFEncode(t *testing.T) {
	blocks := export.Assemble(sampleRecords(t))

	data, err := export.NewPDF("A4", t.TempDir(), discard()).Encode(context.Background(), blocks)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 8)])
	}

	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("PageCount() error = %v", err)
	}
	if pages != 3 {
		t.Errorf("pages = %d, want 3", pages)
	}
}

func TestPDFEncodeOverflowsOntoNewPage(t *testing.T) {
	long := plain("Long")
	long.Content = strings.Repeat("word ", 3000)

	data, err := export.NewPDF("Letter", t.TempDir(), discard()).Encode(context.Background(), export.Assemble([]prompts.Prompt{long}))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("PageCount() error = %v", err)
	}
	if pages < 2 {
		t.Errorf("pages = %d, want overflow onto at least 2", pages)
	}
}

func TestPDFEncodeKeepsNonASCIIText(t *testing.T) {
	p := plain("Báseň o přírodě")
	p.Content = "Napiš báseň o přírodě\n\tŽluťoučký kůň úpěl ďábelské ódy"
	p.Notes = "Použij rýmy"

	data, err := export.NewPDF("A4", t.TempDir(), discard()).Encode(context.Background(), export.Assemble([]prompts.Prompt{p}))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := importer.Extract("poem.pdf", data)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	for _, want := range []string{"Báseň o přírodě", "Napiš báseň o přírodě", "Žluťoučký kůň úpěl ďábelské ódy", "Použij rýmy"} {
		if !strings.Contains(got.Content, want) {
			t.Errorf("extracted text missing %q:\n%s", want, got.Content)
		}
	}
}

func TestPDFEncodeRejectsUnrenderableText(t *testing.T) {
	tests := []struct {
		name string
		edit func(p *prompts.Prompt)
	}{
		{"title", func(p *prompts.Prompt) { p.Title = "猫の写真" }},
		{"body", func(p *prompts.Prompt) { p.Content = "Draw 猫" }},
		{"tip", func(p *prompts.Prompt) { p.Notes = "используй 🙂" }},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := plain("Cat")
			tt.edit(&p)

			_, err := export.NewPDF("A4", dir, discard()).Encode(context.Background(), export.Assemble([]prompts.Prompt{p}))
			if !errors.Is(err, export.ErrEncode) || !errors.Is(err, export.ErrUnsupportedText) {
				t.Fatalf("Encode() error = %v, want ErrUnsupportedText", err)
			}
		})
	}
}

func TestNewEncoder(t *testing.T) {
	cfg := &export.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	tests := []struct {
		format      string
		contentType string
		wantErr     bool
	}{
		{export.FormatDOCX, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", false},
		{export.FormatPDF, "application/pdf", false},
		{"odt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			enc, err := export.NewEncoder(tt.format, cfg, discard())
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewEncoder() error = %v", err)
			}
			if enc.ContentType() != tt.contentType {
				t.Errorf("ContentType() = %q", enc.ContentType())
			}
		})
	}
}
