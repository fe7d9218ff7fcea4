package summaries

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inspector/pkg/repository"
)

// Domain errors for summary assembly.
var (
	// ErrSummarizationFailed marks summarizer output that was discarded in favor of the
	// fallback. It is logged, never returned to callers of Summarize.
	ErrSummarizationFailed = errors.New("summarization failed")
	ErrPropertyNotFound    = errors.New("property not found")
	ErrInvalidID           = errors.New("invalid id")
)

// MapHTTPStatus maps summary domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrPropertyNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrInvariantViolation):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
