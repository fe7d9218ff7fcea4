package audit

import (
	"errors"
	"net/http"
)

// Domain errors for audit operations.
var (
	ErrNotFound  = errors.New("audit record not found")
	ErrDuplicate = errors.New("audit record already exists")
	ErrInvalidID = errors.New("invalid id")
)

// MapHTTPStatus maps audit domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidID) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
