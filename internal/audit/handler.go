package audit

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/pagination"
	"github.com/JaimeStill/inspector/pkg/routes"
)

// Handler provides HTTP endpoints for classification history and the error log.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "audit"),
		pagination: pagination,
	}
}

// Routes returns the route group for the error log.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/errors",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Errors},
		},
	}
}

// HistoryRoutes returns the route group for classification history.
func (h *Handler) HistoryRoutes() routes.Group {
	return routes.Group{
		Prefix: "/classifications/history",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{findingId}", Handler: h.History},
		},
	}
}

// History returns the superseded classifications of a finding, oldest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("findingId"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	records, err := h.sys.History(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, records)
}

// Errors returns a page of error log entries, newest first. Messages are sanitized.
func (h *Handler) Errors(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.Errors(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	for i := range result.Data {
		if handlers.Sensitive(result.Data[i].Message) {
			result.Data[i].Message = handlers.MessageSensitive
		}
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
