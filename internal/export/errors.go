package export

import (
	"errors"
	"net/http"
)

var (
	ErrEmptySelection = errors.New("no prompts selected for export")
	ErrUnknownFormat  = errors.New("unknown export format")
	ErrImageDecode    = errors.New("image decode failed")
	ErrEncode         = errors.New("document encoding failed")

	// ErrUnsupportedText means a character has no glyph in the PDF fonts.
	ErrUnsupportedText = errors.New("text has characters the PDF fonts cannot render")
)

// MapHTTPStatus maps export errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrEmptySelection):
		return http.StatusConflict
	case errors.Is(err, ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedText):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
