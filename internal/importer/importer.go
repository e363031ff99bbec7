// Package importer extracts plain text from uploaded documents so it can be
// appended to a prompt's content.
package importer

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Source types reported with extracted text.
const (
	TypeText = "txt"
	TypeDOCX = "docx"
	TypePDF  = "pdf"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrInvalidFile     = errors.New("invalid file")
	ErrFileTooLarge    = errors.New("file too large")
)

// Result is the text extracted from a document.
type Result struct {
	Content string `json:"content"`
	Type    string `json:"type"`
	Pages   int    `json:"pages,omitempty"`
}

// Extract dispatches on the filename extension: .txt and .md are read as
// UTF-8 text, .docx paragraphs come from word/document.xml, and .pdf page
// text is joined by blank lines.
func Extract(filename string, data []byte) (Result, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	switch ext {
	case "txt", "md":
		if !utf8.Valid(data) {
			return Result{}, fmt.Errorf("%w: %s is not UTF-8 text", ErrInvalidFile, filename)
		}
		return Result{Content: string(data), Type: TypeText}, nil
	case "docx":
		text, err := extractDOCX(data)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}
		return Result{Content: text, Type: TypeDOCX}, nil
	case "pdf":
		return extractPDF(data)
	default:
		return Result{}, fmt.Errorf("%w: .%s", ErrUnsupportedType, ext)
	}
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	f, err := zr.Open("word/document.xml")
	if err != nil {
		return "", fmt.Errorf("docx has no document part: %w", err)
	}
	defer f.Close()

	return paragraphs(f)
}

// paragraphs walks WordprocessingML and returns one line per paragraph.
func paragraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out    []string
		line   strings.Builder
		inText bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				line.WriteByte('\t')
			case "br", "cr":
				line.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out = append(out, line.String())
				line.Reset()
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		}
	}

	return strings.TrimRight(strings.Join(out, "\n"), "\n"), nil
}

func extractPDF(data []byte) (Result, error) {
	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	defer doc.Close()

	var sb strings.Builder
	for i := range doc.NumPage() {
		text, err := doc.Text(i)
		if err != nil {
			return Result{}, fmt.Errorf("%w: page %d: %w", ErrInvalidFile, i+1, err)
		}
		sb.WriteString(strings.Join(strings.Fields(text), " "))
		sb.WriteString("\n\n")
	}

	return Result{Content: sb.String(), Type: TypePDF, Pages: pages}, nil
}
