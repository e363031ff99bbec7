package library

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/promptvault/internal/prompts"
)

var (
	ErrConfirmationRequired = errors.New("operation requires confirmation")
	ErrConfirmationMismatch = errors.New("confirmed count does not match pending migration")
)

// MapHTTPStatus maps library and prompt errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrConfirmationRequired) || errors.Is(err, ErrConfirmationMismatch) {
		return http.StatusPreconditionFailed
	}
	return prompts.MapHTTPStatus(err)
}
