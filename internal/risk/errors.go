package risk

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inspector/pkg/repository"
)

// Domain errors for risk aggregation.
var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrRoomNotFound     = errors.New("room not found")
	ErrInvalidLevel     = errors.New("risk category must be Low, Medium, or High")
	ErrInvalidID        = errors.New("invalid id")
)

// MapHTTPStatus maps risk domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrPropertyNotFound), errors.Is(err, ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidLevel), errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrInvariantViolation):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
