package export

import (
	"context"
	"fmt"
	"log/slog"
)

// Export formats.
const (
	FormatDOCX = "docx"
	FormatPDF  = "pdf"
)

// Encoder renders a block sequence as a binary document.
type Encoder interface {
	Encode(ctx context.Context, blocks []Block) ([]byte, error)
	ContentType() string
}

// Formats returns the supported export formats.
func Formats() []string {
	return []string{FormatDOCX, FormatPDF}
}

// NewEncoder returns the encoder for format.
func NewEncoder(format string, cfg *Config, logger *slog.Logger) (Encoder, error) {
	switch format {
	case FormatDOCX:
		return NewDOCX(), nil
	case FormatPDF:
		return NewPDF(cfg.PageSize, cfg.FontDir, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
