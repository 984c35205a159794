package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

// ErrIngredientNotFound indicates the ingredient is not in the caller's scope.
var ErrIngredientNotFound = errors.New("ingredient not found")

// IngredientService handles ingredient business logic. Same shape as
// TagService; ingredients are created through recipe writes.
type IngredientService struct {
	repo *repository.Repository
}

// NewIngredientService creates a new IngredientService.
func NewIngredientService(repo *repository.Repository) *IngredientService {
	return &IngredientService{repo: repo}
}

// ListIngredients retrieves the caller's ingredients ordered by name
// descending, optionally restricted to those assigned to a recipe.
func (s *IngredientService) ListIngredients(ctx context.Context, userID string, assignedOnly bool) ([]*model.Ingredient, error) {
	ingredients, err := s.repo.ListIngredients(ctx, userID, assignedOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

// UpdateIngredient renames one of the caller's ingredients.
func (s *IngredientService) UpdateIngredient(ctx context.Context, userID string, id int64, name string) (*model.Ingredient, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	ingredient, err := s.repo.UpdateIngredient(ctx, userID, id, name)
	if err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return ingredient, nil
}

// DeleteIngredient removes one of the caller's ingredients.
func (s *IngredientService) DeleteIngredient(ctx context.Context, userID string, id int64) error {
	if err := s.repo.DeleteIngredient(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return ErrIngredientNotFound
		}
		return err
	}
	return nil
}
