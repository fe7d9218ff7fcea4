package findings

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inspector/pkg/repository"
)

// Domain errors for finding operations.
var (
	ErrNotFound      = errors.New("finding not found")
	ErrDuplicate     = errors.New("finding already exists")
	ErrRoomNotFound  = errors.New("room not found")
	ErrInvalidStatus = errors.New("status must be pending, processed, or failed")
	ErrEmptyNote     = errors.New("note text must not be empty")
	ErrInvalidImage  = errors.New("upload must be a non-empty image")
	ErrFileTooLarge  = errors.New("file exceeds maximum upload size")
	ErrInvalidID     = errors.New("invalid id")
)

// MapHTTPStatus maps finding domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrEmptyNote),
		errors.Is(err, ErrInvalidImage),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrInvariantViolation):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
