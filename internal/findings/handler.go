package findings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/pkg/formatting"
	"github.com/JaimeStill/inspector/pkg/handlers"
	"github.com/JaimeStill/inspector/pkg/routes"
	"github.com/JaimeStill/inspector/pkg/storage"
)

// Handler provides HTTP endpoints for finding ingestion and retrieval.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "findings"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group for finding retrieval endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/findings",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/image", Handler: h.Image},
		},
	}
}

// RoomRoutes returns the route group for creating findings within a room.
func (h *Handler) RoomRoutes() routes.Group {
	return routes.Group{
		Prefix: "/rooms",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/{id}/findings", Handler: h.CreateText},
			{Method: "POST", Pattern: "/{id}/images", Handler: h.CreateImage},
		},
	}
}

// Find returns a finding and its current tags.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	d, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, d)
}

// Image streams the stored image of an image finding.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	rc, contentType, err := h.sys.Image(r.Context(), id)
	if err != nil {
		status := MapHTTPStatus(err)
		if status == http.StatusInternalServerError {
			status = storage.MapHTTPStatus(err)
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, rc)
}

// CreateText records a pending text finding from a JSON body {"note": "..."}.
func (h *Handler) CreateText(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	var cmd CreateTextCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptyNote)
		return
	}

	f, err := h.sys.CreateText(r.Context(), roomID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, f)
}

// CreateImage records a pending image finding from a multipart upload with a "file" part.
func (h *Handler) CreateImage(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || r.ContentLength > h.maxUploadSize {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge,
				fmt.Errorf("%w: limit %s", ErrFileTooLarge, formatting.FormatBytes(h.maxUploadSize, 1)))
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidImage)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidImage)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidImage)
		return
	}

	cmd := CreateImageCommand{
		Data:        data,
		Filename:    header.Filename,
		ContentType: detectContentType(header.Header.Get("Content-Type"), data),
	}

	f, err := h.sys.CreateImage(r.Context(), roomID, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, f)
}
