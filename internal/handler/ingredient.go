package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/handler/dto"
	"github.com/recipebox/recipebox/internal/service"
)

// IngredientHandler handles HTTP requests for ingredient operations.
type IngredientHandler struct {
	svc    *service.IngredientService
	logger *slog.Logger
}

// NewIngredientHandler creates a new IngredientHandler.
func NewIngredientHandler(svc *service.IngredientService, logger *slog.Logger) *IngredientHandler {
	return &IngredientHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /recipe/ingredients. Supports the same assigned_only
// filtering as tags.
func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	assignedOnly, ok := parseAssignedOnly(w, r)
	if !ok {
		return
	}

	ingredients, err := h.svc.ListIngredients(r.Context(), authCtx.UserID, assignedOnly)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToIngredientListResponse(ingredients))
}

// Update handles PATCH /recipe/ingredients/{id}.
func (h *IngredientHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	ingredient, err := h.svc.UpdateIngredient(r.Context(), authCtx.UserID, id, req.Name)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("ingredient_updated", "ingredient_id", ingredient.ID, "user_id", authCtx.UserID)

	writeJSON(w, http.StatusOK, dto.IngredientResponse{ID: ingredient.ID, Name: ingredient.Name})
}

// Delete handles DELETE /recipe/ingredients/{id}.
func (h *IngredientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id, ok := urlID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteIngredient(r.Context(), authCtx.UserID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("ingredient_deleted", "ingredient_id", id, "user_id", authCtx.UserID)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *IngredientHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrIngredientNotFound):
		writeError(w, http.StatusNotFound, "INGREDIENT_NOT_FOUND", "Ingredient not found")
	case errors.Is(err, service.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "NAME_REQUIRED", "Name is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
