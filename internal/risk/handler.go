package risk

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/routes"
)

// Handler provides HTTP endpoints for property risk.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "risk"),
	}
}

// Routes returns the route group for risk endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/properties",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}/risk", Handler: h.Breakdown},
			{Method: "POST", Pattern: "/{id}/risk", Handler: h.Recompute},
		},
	}
}

// Breakdown returns the per-room risk of a property computed from its current tags.
func (h *Handler) Breakdown(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	a, err := h.sys.Breakdown(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// Recompute rebuilds and persists the risk of a property.
func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	a, err := h.sys.Recompute(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}
