package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/promptvault/pkg/handlers"
	"github.com/JaimeStill/promptvault/pkg/routes"
)

// Handler provides the HTTP export endpoint.
type Handler struct {
	exp    *Exporter
	logger *slog.Logger
}

// NewHandler creates a Handler over exp.
func NewHandler(exp *Exporter, logger *slog.Logger) *Handler {
	return &Handler{
		exp:    exp,
		logger: logger.With("handler", "export"),
	}
}

// Routes returns the route group definition for export endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/export",
		Tags:        []string{"Export"},
		Description: "Teaching document export",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Export, OpenAPI: spec.Export},
			{Method: "GET", Pattern: "/formats", Handler: h.Formats, OpenAPI: spec.Formats},
		},
	}
}

// Export renders the current selection as an attachment. The optional
// format query parameter selects docx or pdf.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.exp.Export(r.Context(), r.URL.Query().Get("format"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		h.logger.Warn("export write interrupted", "error", err)
	}
}

func (h *Handler) Formats(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Formats())
}
