package export

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/promptvault/internal/metrics"
	"github.com/JaimeStill/promptvault/internal/prompts"
)

// Selection supplies the records to export and is cleared afterwards.
type Selection interface {
	Selected() []prompts.Prompt
	ClearSelection()
}

// Document is an encoded export ready for download.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
	Records     int
}

// Exporter renders the current selection with the configured encoder.
type Exporter struct {
	sel    Selection
	cfg    Config
	logger *slog.Logger
}

// NewExporter creates an Exporter over sel.
func NewExporter(sel Selection, cfg *Config, logger *slog.Logger) *Exporter {
	return &Exporter{
		sel:    sel,
		cfg:    *cfg,
		logger: logger.With("system", "export"),
	}
}

// Export encodes the selected records in library order. An empty format
// selects the configured default. With nothing selected it returns
// ErrEmptySelection without invoking an encoder. A successful export clears
// the selection.
func (e *Exporter) Export(ctx context.Context, format string) (*Document, error) {
	if format == "" {
		format = e.cfg.Format
	}

	enc, err := NewEncoder(format, &e.cfg, e.logger)
	if err != nil {
		return nil, err
	}

	records := e.sel.Selected()
	if len(records) == 0 {
		return nil, ErrEmptySelection
	}

	doc, err := e.Render(ctx, enc, format, records)
	metrics.RecordExport(format, err)
	if err != nil {
		e.logger.Error("export failed", "format", format, "records", len(records), "error", err)
		return nil, err
	}

	e.sel.ClearSelection()
	e.logger.Info("export complete", "format", format, "records", len(records), "bytes", len(doc.Data))
	return doc, nil
}

// Render assembles records and encodes them with enc.
func (e *Exporter) Render(ctx context.Context, enc Encoder, format string, records []prompts.Prompt) (*Document, error) {
	if len(records) == 0 {
		return nil, ErrEmptySelection
	}

	data, err := enc.Encode(ctx, Assemble(records))
	if err != nil {
		return nil, err
	}

	return &Document{
		Filename:    e.cfg.Filename + "." + format,
		ContentType: enc.ContentType(),
		Data:        data,
		Records:     len(records),
	}, nil
}
