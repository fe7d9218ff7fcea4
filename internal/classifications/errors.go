package classifications

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inspector/pkg/repository"
)

// Domain errors for classification operations.
var (
	// ErrClassificationFailed covers capability errors, timeouts, and malformed responses.
	ErrClassificationFailed = errors.New("classification failed")
	// ErrUnreadableSource marks an image that is missing, oversized, or not an image.
	ErrUnreadableSource = errors.New("source content unreadable")
	ErrFindingNotFound  = errors.New("finding not found")
	ErrCancelled        = errors.New("classification cancelled")
	ErrEmptyBatch       = errors.New("batch must contain at least one finding id")
	ErrBatchTooLarge    = errors.New("batch exceeds maximum size")
	ErrInvalidID        = errors.New("invalid finding id")
)

// MapHTTPStatus maps classification domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrFindingNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyBatch), errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, ErrBatchTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnreadableSource):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrClassificationFailed):
		return http.StatusBadGateway
	case errors.Is(err, repository.ErrInvariantViolation):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
