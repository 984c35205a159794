package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/recipebox/recipebox/internal/model"
)

// ErrIngredientNotFound indicates the ingredient does not exist within the
// caller's owned scope.
var ErrIngredientNotFound = errors.New("ingredient not found")

// ListIngredients retrieves all ingredients owned by userID, ordered by
// name descending. Same assignedOnly semantics as ListTags.
func (r *Repository) ListIngredients(ctx context.Context, userID string, assignedOnly bool) ([]*model.Ingredient, error) {
	query := `
		SELECT i.id, i.user_id, i.name
		FROM ingredients i
		WHERE i.user_id = $1
	`
	if assignedOnly {
		query += ` AND EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.ingredient_id = i.id)`
	}
	query += ` ORDER BY i.name DESC, i.id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := make([]*model.Ingredient, 0)
	for rows.Next() {
		var ing model.Ingredient
		if err := rows.Scan(&ing.ID, &ing.UserID, &ing.Name); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, &ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredients: %w", err)
	}

	return ingredients, nil
}

// GetIngredient retrieves an ingredient by ID within the owner's scope.
func (r *Repository) GetIngredient(ctx context.Context, userID string, id int64) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name FROM ingredients WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&ing.ID, &ing.UserID, &ing.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	return &ing, nil
}

// UpdateIngredient renames an ingredient within the owner's scope.
func (r *Repository) UpdateIngredient(ctx context.Context, userID string, id int64, name string) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := r.pool.QueryRow(ctx,
		`UPDATE ingredients SET name = $3 WHERE user_id = $1 AND id = $2 RETURNING id, user_id, name`,
		userID, id, name,
	).Scan(&ing.ID, &ing.UserID, &ing.Name)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to update ingredient: %w", err)
	}
	return &ing, nil
}

// DeleteIngredient removes an ingredient within the owner's scope.
func (r *Repository) DeleteIngredient(ctx context.Context, userID string, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ingredients WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIngredientNotFound
	}
	return nil
}
