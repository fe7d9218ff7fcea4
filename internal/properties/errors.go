package properties

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inspector/pkg/repository"
)

// Domain errors for property operations.
var (
	ErrNotFound        = errors.New("property not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrDuplicate       = errors.New("property already exists")
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidFilter   = errors.New("invalid filter value")
	ErrInvalidLocation = errors.New("location must not be empty")
	ErrInvalidDate     = errors.New("inspection_date must use the YYYY-MM-DD layout")
	ErrInvalidRoomType = errors.New("room_type must not be empty")
)

// MapHTTPStatus maps property domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidFilter),
		errors.Is(err, ErrInvalidLocation),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidRoomType):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrInvariantViolation):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
