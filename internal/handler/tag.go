package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/handler/dto"
	"github.com/recipebox/recipebox/internal/service"
)

// TagHandler handles HTTP requests for tag operations.
type TagHandler struct {
	svc    *service.TagService
	logger *slog.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(svc *service.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /recipe/tags.
//
// The assigned_only query parameter, when truthy, restricts the result
// to tags attached to at least one recipe.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	assignedOnly, ok := parseAssignedOnly(w, r)
	if !ok {
		return
	}

	tags, err := h.svc.ListTags(r.Context(), authCtx.UserID, assignedOnly)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTagListResponse(tags))
}

// Update handles PATCH /recipe/tags/{id}.
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	tag, err := h.svc.UpdateTag(r.Context(), authCtx.UserID, id, req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("tag_updated", "tag_id", tag.ID, "user_id", authCtx.UserID)

	writeJSON(w, http.StatusOK, dto.TagResponse{ID: tag.ID, Name: tag.Name})
}

// Delete handles DELETE /recipe/tags/{id}.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id, ok := urlID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteTag(r.Context(), authCtx.UserID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("tag_deleted", "tag_id", id, "user_id", authCtx.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *TagHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTagNotFound):
		writeError(w, http.StatusNotFound, "TAG_NOT_FOUND", "Tag not found")
	case errors.Is(err, service.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "NAME_REQUIRED", "Name is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// urlID parses the {id} URL parameter for tag and ingredient routes.
func urlID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "ID must be a positive integer")
		return 0, false
	}
	return id, true
}

// parseAssignedOnly parses the assigned_only query parameter. Absent
// means false; anything strconv.ParseBool rejects is a client error.
func parseAssignedOnly(w http.ResponseWriter, r *http.Request) (bool, bool) {
	raw := r.URL.Query().Get("assigned_only")
	if raw == "" {
		return false, true
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FILTER", "assigned_only must be a boolean")
		return false, false
	}
	return value, true
}
