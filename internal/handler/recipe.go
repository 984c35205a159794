package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/handler/dto"
	"github.com/recipebox/recipebox/internal/service"
)

// RecipeHandler handles HTTP requests for recipe operations.
type RecipeHandler struct {
	svc    *service.RecipeService
	logger *slog.Logger
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(svc *service.RecipeService, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /recipe/recipes.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.CreateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	recipe, err := h.svc.CreateRecipe(r.Context(), service.CreateRecipeInput{
		UserID:      authCtx.UserID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Link:        req.Link,
		TimeMinutes: req.TimeMinutes,
		Tags:        dto.RefNames(req.Tags),
		Ingredients: dto.RefNames(req.Ingredients),
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_created",
		"recipe_id", recipe.ID,
		"user_id", authCtx.UserID,
	)

	writeJSON(w, http.StatusCreated, dto.ToRecipeDetailResponse(recipe, h.svc.ImageURL(recipe)))
}

// Get handles GET /recipe/recipes/{id}.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id, ok := h.recipeID(w, r)
	if !ok {
		return
	}

	recipe, err := h.svc.GetRecipe(r.Context(), authCtx.UserID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecipeDetailResponse(recipe, h.svc.ImageURL(recipe)))
}

// List handles GET /recipe/recipes.
//
// Query parameters:
//   - tags: comma-separated tag IDs; only recipes carrying at least one
//     of them are returned
//   - ingredients: comma-separated ingredient IDs, same semantics
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	query := r.URL.Query()

	tagIDs, err := parseIDList(query.Get("tags"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_FILTER", "tags must be a comma-separated list of IDs")
		return
	}

	ingredientIDs, err := parseIDList(query.Get("ingredients"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_FILTER", "ingredients must be a comma-separated list of IDs")
		return
	}

	recipes, err := h.svc.ListRecipes(r.Context(), service.ListRecipesInput{
		UserID:        authCtx.UserID,
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRecipeListResponse(recipes))
}

// Update handles PATCH /recipe/recipes/{id}.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id, ok := h.recipeID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.UpdateRecipeInput{
		UserID:      authCtx.UserID,
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Link:        req.Link,
		TimeMinutes: req.TimeMinutes,
	}
	if req.Tags != nil {
		names := dto.RefNames(*req.Tags)
		input.Tags = &names
	}
	if req.Ingredients != nil {
		names := dto.RefNames(*req.Ingredients)
		input.Ingredients = &names
	}

	recipe, err := h.svc.UpdateRecipe(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_updated",
		"recipe_id", recipe.ID,
		"user_id", authCtx.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToRecipeDetailResponse(recipe, h.svc.ImageURL(recipe)))
}

// Delete handles DELETE /recipe/recipes/{id}.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id, ok := h.recipeID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteRecipe(r.Context(), authCtx.UserID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_deleted",
		"recipe_id", id,
		"user_id", authCtx.UserID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /recipe/recipes/{id}/upload-image.
// The image arrives as the "image" part of a multipart form.
func (h *RecipeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id, ok := h.recipeID(w, r)
	if !ok {
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "MISSING_IMAGE", "Multipart field 'image' is required")
		return
	}
	defer file.Close()

	recipe, err := h.svc.AttachImage(r.Context(), authCtx.UserID, id, file)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("recipe_image_uploaded",
		"recipe_id", recipe.ID,
		"user_id", authCtx.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToRecipeDetailResponse(recipe, h.svc.ImageURL(recipe)))
}

// recipeID parses the {id} URL parameter. A non-integer ID is a client
// error, not a lookup miss.
func (h *RecipeHandler) recipeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "INVALID_ID", "Recipe ID must be a positive integer")
		return 0, false
	}
	return id, true
}

// parseIDList parses a comma-separated list of positive integer IDs.
// An empty string yields a nil slice. Any malformed element fails the
// whole list.
func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.New("malformed ID list")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// handleServiceError maps service errors to HTTP responses.
func (h *RecipeHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		h.writeError(w, http.StatusNotFound, "RECIPE_NOT_FOUND", "Recipe not found")
	case errors.Is(err, service.ErrTitleRequired):
		h.writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Title is required")
	case errors.Is(err, service.ErrInvalidPrice):
		h.writeError(w, http.StatusBadRequest, "INVALID_PRICE", "Price must be a decimal with at most 2 fraction digits")
	case errors.Is(err, service.ErrInvalidTime):
		h.writeError(w, http.StatusBadRequest, "INVALID_TIME", "time_minutes must not be negative")
	case errors.Is(err, service.ErrInvalidImage):
		h.writeError(w, http.StatusBadRequest, "INVALID_IMAGE", "Uploaded file is not a supported image")
	case errors.Is(err, service.ErrImageTooLarge):
		h.writeError(w, http.StatusBadRequest, "IMAGE_TOO_LARGE", "Uploaded image exceeds the maximum allowed size")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *RecipeHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeError(w, status, code, message)
}
