package summaries

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/routes"
)

// Handler provides HTTP endpoints for property summaries.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "summaries"),
	}
}

// Routes returns the route group for summary endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/properties",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{id}/summary", Handler: h.Summarize},
		},
	}
}

// Summarize regenerates and persists the summary of a property.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	s, err := h.sys.Summarize(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}
