package importer

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/promptvault/pkg/handlers"
	"github.com/JaimeStill/promptvault/pkg/routes"
)

// Handler provides the HTTP import endpoint.
type Handler struct {
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler accepting uploads up to maxUploadSize bytes.
func NewHandler(logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		logger:        logger.With("handler", "import"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for import endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/import",
		Tags:        []string{"Import"},
		Description: "Text extraction for prompt content",
		Schemas:     schemas(),
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Import, OpenAPI: importOp},
		},
	}
}

// Import extracts text from the multipart "file" field.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	result, err := Extract(header.Filename, data)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.logger.Info("document imported", "filename", header.Filename, "type", result.Type, "chars", len(result.Content))
	handlers.RespondJSON(w, http.StatusOK, result)
}

// MapHTTPStatus maps import errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
