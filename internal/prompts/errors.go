package prompts

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for prompt operations.
var (
	ErrNotFound        = errors.New("prompt not found")
	ErrDuplicate       = errors.New("prompt id already exists")
	ErrInvalidCategory = errors.New("category must be Text, Image-generation, Video, Audio, or Other")
	ErrValidation      = errors.New("invalid prompt")
)

// StoreError carries the remote store's message and detail for a failed operation.
type StoreError struct {
	Op      string
	Message string
	Detail  string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// MapHTTPStatus maps prompt domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidCategory) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
