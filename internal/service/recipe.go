package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/internal/storage"
)

// Recipe service errors.
var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrTitleRequired  = errors.New("title is required")
	ErrInvalidPrice   = errors.New("price must be a decimal with at most 2 fraction digits")
	ErrInvalidTime    = errors.New("time_minutes must not be negative")
	ErrInvalidImage   = errors.New("uploaded file is not a valid image")
	ErrImageTooLarge  = errors.New("uploaded image is too large")
)

// priceRegex accepts fixed-point decimals with at most two fraction digits.
var priceRegex = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)

// RecipeService handles recipe business logic.
type RecipeService struct {
	repo    *repository.Repository
	images  *storage.ImageStore
	metrics metrics.Recorder
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(repo *repository.Repository, images *storage.ImageStore, recorder metrics.Recorder) *RecipeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RecipeService{
		repo:    repo,
		images:  images,
		metrics: recorder,
	}
}

// CreateRecipeInput defines input for creating a recipe. Tags and
// Ingredients are names; each is get-or-created within the caller's scope.
type CreateRecipeInput struct {
	UserID      string
	Title       string
	Description string
	Price       string
	Link        string
	TimeMinutes *int
	Tags        []string
	Ingredients []string
}

// CreateRecipe validates and persists a new recipe for the caller.
func (s *RecipeService) CreateRecipe(ctx context.Context, input CreateRecipeInput) (*model.Recipe, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	price, err := normalizePrice(input.Price)
	if err != nil {
		return nil, err
	}

	timeMinutes := model.DefaultTimeMinutes
	if input.TimeMinutes != nil {
		if *input.TimeMinutes < 0 {
			return nil, ErrInvalidTime
		}
		timeMinutes = *input.TimeMinutes
	}

	now := time.Now().UTC()
	recipe := &model.Recipe{
		UserID:      input.UserID,
		Title:       input.Title,
		Description: input.Description,
		Price:       price,
		Link:        input.Link,
		TimeMinutes: timeMinutes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateRecipe(ctx, recipe, input.Tags, input.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	s.metrics.IncRecipeCreated()

	return recipe, nil
}

// GetRecipe retrieves one of the caller's recipes with associations loaded.
func (s *RecipeService) GetRecipe(ctx context.Context, userID string, id int64) (*model.Recipe, error) {
	recipe, err := s.repo.GetRecipe(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

// ListRecipesInput defines input for listing recipes.
type ListRecipesInput struct {
	UserID        string
	TagIDs        []int64
	IngredientIDs []int64
}

// ListRecipes retrieves the caller's recipes, newest first, optionally
// narrowed by tag/ingredient ID membership.
func (s *RecipeService) ListRecipes(ctx context.Context, input ListRecipesInput) ([]*model.Recipe, error) {
	filter := repository.RecipeFilter{
		TagIDs:        input.TagIDs,
		IngredientIDs: input.IngredientIDs,
	}

	recipes, err := s.repo.ListRecipes(ctx, input.UserID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	return recipes, nil
}

// UpdateRecipeInput defines input for a partial recipe update. Nil fields
// are left untouched; a non-nil Tags/Ingredients slice replaces the
// association set (empty slice clears it).
type UpdateRecipeInput struct {
	UserID      string
	ID          int64
	Title       *string
	Description *string
	Price       *string
	Link        *string
	TimeMinutes *int
	Tags        *[]string
	Ingredients *[]string
}

// UpdateRecipe applies a partial update to one of the caller's recipes and
// returns the updated detail representation.
func (s *RecipeService) UpdateRecipe(ctx context.Context, input UpdateRecipeInput) (*model.Recipe, error) {
	recipe, err := s.GetRecipe(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleRequired
		}
		recipe.Title = *input.Title
	}
	if input.Description != nil {
		recipe.Description = *input.Description
	}
	if input.Price != nil {
		price, err := normalizePrice(*input.Price)
		if err != nil {
			return nil, err
		}
		recipe.Price = price
	}
	if input.Link != nil {
		recipe.Link = *input.Link
	}
	if input.TimeMinutes != nil {
		if *input.TimeMinutes < 0 {
			return nil, ErrInvalidTime
		}
		recipe.TimeMinutes = *input.TimeMinutes
	}

	recipe.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateRecipe(ctx, recipe, input.Tags, input.Ingredients); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	s.metrics.IncRecipeUpdated()

	// Reload associations when they were not replaced in this call.
	if input.Tags == nil || input.Ingredients == nil {
		return s.GetRecipe(ctx, input.UserID, input.ID)
	}

	return recipe, nil
}

// DeleteRecipe removes one of the caller's recipes.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID string, id int64) error {
	if err := s.repo.DeleteRecipe(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	s.metrics.IncRecipeDeleted()

	return nil
}

// AttachImage validates and stores an uploaded image for one of the
// caller's recipes. A replaced image file is removed best-effort after the
// new reference is committed; validation failure leaves the prior
// reference untouched.
func (s *RecipeService) AttachImage(ctx context.Context, userID string, id int64, payload io.Reader) (*model.Recipe, error) {
	start := time.Now()

	// Reject before touching the database so a bad payload cannot
	// disturb existing state.
	relPath, err := s.images.Save(payload)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImageType) {
			return nil, ErrInvalidImage
		}
		if errors.Is(err, storage.ErrImageTooLarge) {
			return nil, ErrImageTooLarge
		}
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	oldPath, err := s.repo.SetRecipeImage(ctx, userID, id, relPath)
	if err != nil {
		// The recipe is gone or not ours: clean up the orphan file.
		_ = s.images.Remove(relPath)
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if oldPath != "" && oldPath != relPath {
		_ = s.images.Remove(oldPath)
	}

	s.metrics.ObserveImageUpload(time.Since(start))

	recipe, err := s.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// ImageURL maps a recipe's stored image path to its public URL.
func (s *RecipeService) ImageURL(recipe *model.Recipe) string {
	return s.images.URLPath(recipe.ImagePath)
}

// normalizePrice validates the fixed-point price format and pads the
// fraction to two digits so "5.5" and "5.50" store identically.
func normalizePrice(price string) (string, error) {
	if price == "" {
		return "0.00", nil
	}
	if !priceRegex.MatchString(price) {
		return "", ErrInvalidPrice
	}

	dot := -1
	for i, c := range price {
		if c == '.' {
			dot = i
			break
		}
	}

	switch {
	case dot == -1:
		return price + ".00", nil
	case len(price)-dot-1 == 1:
		return price + "0", nil
	default:
		return price, nil
	}
}
