package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/recipebox/recipebox/internal/model"
)

// ErrRecipeNotFound indicates the recipe does not exist within the caller's
// owned scope. Out-of-scope rows are indistinguishable from missing ones.
var ErrRecipeNotFound = errors.New("recipe not found")

// RecipeFilter narrows a recipe list. A nil/empty slice means the predicate
// is absent. Each present slice matches recipes associated with at least
// one of its IDs; present predicates compose with AND.
type RecipeFilter struct {
	TagIDs        []int64
	IngredientIDs []int64
}

const recipeColumns = `r.id, r.user_id, r.title, r.description, r.price::text, r.link, r.time_minutes, COALESCE(r.image_path, ''), r.created_at, r.updated_at`

// CreateRecipe inserts a recipe together with its tag and ingredient
// associations. Tags and ingredients are resolved get-or-create by name
// within the owner's scope; the whole write is one transaction.
func (r *Repository) CreateRecipe(ctx context.Context, recipe *model.Recipe, tagNames, ingredientNames []string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO recipes (user_id, title, description, price, link, time_minutes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`

		err := tx.QueryRow(ctx, query,
			recipe.UserID,
			recipe.Title,
			recipe.Description,
			recipe.Price,
			recipe.Link,
			recipe.TimeMinutes,
			recipe.CreatedAt,
			recipe.UpdatedAt,
		).Scan(&recipe.ID)
		if err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}

		recipe.Tags, err = r.attachTags(ctx, tx, recipe.UserID, recipe.ID, tagNames)
		if err != nil {
			return err
		}

		recipe.Ingredients, err = r.attachIngredients(ctx, tx, recipe.UserID, recipe.ID, ingredientNames)
		if err != nil {
			return err
		}

		return nil
	})
}

// GetRecipe retrieves a recipe by ID within the owner's scope, with its
// tags and ingredients loaded.
func (r *Repository) GetRecipe(ctx context.Context, userID string, id int64) (*model.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `
		FROM recipes r
		WHERE r.user_id = $1 AND r.id = $2
	`

	recipe, err := scanRecipe(r.pool.QueryRow(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	if err := r.loadAssociations(ctx, recipe); err != nil {
		return nil, err
	}

	return recipe, nil
}

// ListRecipes retrieves all recipes owned by userID, newest first
// (descending ID). Tag/ingredient predicates use IN-subqueries, so a recipe
// matching several IDs still appears exactly once.
func (r *Repository) ListRecipes(ctx context.Context, userID string, filter RecipeFilter) ([]*model.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `
		FROM recipes r
		WHERE r.user_id = $1
	`
	args := []any{userID}
	argIndex := 2

	if len(filter.TagIDs) > 0 {
		query += fmt.Sprintf(" AND r.id IN (SELECT recipe_id FROM recipe_tags WHERE tag_id = ANY($%d))", argIndex)
		args = append(args, filter.TagIDs)
		argIndex++
	}

	if len(filter.IngredientIDs) > 0 {
		query += fmt.Sprintf(" AND r.id IN (SELECT recipe_id FROM recipe_ingredients WHERE ingredient_id = ANY($%d))", argIndex)
		args = append(args, filter.IngredientIDs)
		argIndex++
	}

	query += " ORDER BY r.id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]*model.Recipe, 0)
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}

	return recipes, nil
}

// UpdateRecipe persists field changes for a recipe within the owner's
// scope. When tagNames or ingredientNames is non-nil the association set is
// replaced wholesale (an empty slice clears it); nil leaves it untouched.
func (r *Repository) UpdateRecipe(ctx context.Context, recipe *model.Recipe, tagNames, ingredientNames *[]string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE recipes
			SET title = $3, description = $4, price = $5, link = $6, time_minutes = $7, updated_at = $8
			WHERE user_id = $1 AND id = $2
		`

		tag, err := tx.Exec(ctx, query,
			recipe.UserID,
			recipe.ID,
			recipe.Title,
			recipe.Description,
			recipe.Price,
			recipe.Link,
			recipe.TimeMinutes,
			recipe.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrRecipeNotFound
		}

		if tagNames != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, recipe.ID); err != nil {
				return fmt.Errorf("failed to clear recipe tags: %w", err)
			}
			recipe.Tags, err = r.attachTags(ctx, tx, recipe.UserID, recipe.ID, *tagNames)
			if err != nil {
				return err
			}
		}

		if ingredientNames != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipe.ID); err != nil {
				return fmt.Errorf("failed to clear recipe ingredients: %w", err)
			}
			recipe.Ingredients, err = r.attachIngredients(ctx, tx, recipe.UserID, recipe.ID, *ingredientNames)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// DeleteRecipe removes a recipe within the owner's scope. Join rows cascade.
func (r *Repository) DeleteRecipe(ctx context.Context, userID string, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recipes WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// SetRecipeImage records a new image path on the recipe and returns the
// previous one so the caller can remove the orphaned file. The row is
// locked for the duration of the transaction to serialize concurrent
// replacements.
func (r *Repository) SetRecipeImage(ctx context.Context, userID string, id int64, path string) (string, error) {
	var oldPath string

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`SELECT COALESCE(image_path, '') FROM recipes WHERE user_id = $1 AND id = $2 FOR UPDATE`,
			userID, id,
		).Scan(&oldPath)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRecipeNotFound
			}
			return fmt.Errorf("failed to lock recipe row: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE recipes SET image_path = $3, updated_at = $4 WHERE user_id = $1 AND id = $2`,
			userID, id, path, time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to set recipe image: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return oldPath, nil
}

// loadAssociations populates Tags and Ingredients for a single recipe.
// Nested collections are ordered by name ascending for stable output.
func (r *Repository) loadAssociations(ctx context.Context, recipe *model.Recipe) error {
	tagRows, err := r.pool.Query(ctx, `
		SELECT t.id, t.user_id, t.name
		FROM tags t
		JOIN recipe_tags rt ON rt.tag_id = t.id
		WHERE rt.recipe_id = $1
		ORDER BY t.name, t.id
	`, recipe.ID)
	if err != nil {
		return fmt.Errorf("failed to load recipe tags: %w", err)
	}
	defer tagRows.Close()

	recipe.Tags = make([]*model.Tag, 0)
	for tagRows.Next() {
		var t model.Tag
		if err := tagRows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return fmt.Errorf("failed to scan recipe tag: %w", err)
		}
		recipe.Tags = append(recipe.Tags, &t)
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate recipe tags: %w", err)
	}

	ingRows, err := r.pool.Query(ctx, `
		SELECT i.id, i.user_id, i.name
		FROM ingredients i
		JOIN recipe_ingredients ri ON ri.ingredient_id = i.id
		WHERE ri.recipe_id = $1
		ORDER BY i.name, i.id
	`, recipe.ID)
	if err != nil {
		return fmt.Errorf("failed to load recipe ingredients: %w", err)
	}
	defer ingRows.Close()

	recipe.Ingredients = make([]*model.Ingredient, 0)
	for ingRows.Next() {
		var ing model.Ingredient
		if err := ingRows.Scan(&ing.ID, &ing.UserID, &ing.Name); err != nil {
			return fmt.Errorf("failed to scan recipe ingredient: %w", err)
		}
		recipe.Ingredients = append(recipe.Ingredients, &ing)
	}
	if err := ingRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate recipe ingredients: %w", err)
	}

	return nil
}

// attachTags get-or-creates tags by name within the owner's scope and links
// them to the recipe. Runs inside the caller's transaction.
func (r *Repository) attachTags(ctx context.Context, tx pgx.Tx, userID string, recipeID int64, names []string) ([]*model.Tag, error) {
	tags := make([]*model.Tag, 0, len(names))

	for _, name := range names {
		var t model.Tag
		err := tx.QueryRow(ctx,
			`SELECT id, user_id, name FROM tags WHERE user_id = $1 AND name = $2 ORDER BY id LIMIT 1`,
			userID, name,
		).Scan(&t.ID, &t.UserID, &t.Name)

		if errors.Is(err, pgx.ErrNoRows) {
			t = model.Tag{UserID: userID, Name: name}
			err = tx.QueryRow(ctx,
				`INSERT INTO tags (user_id, name) VALUES ($1, $2) RETURNING id`,
				userID, name,
			).Scan(&t.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get or create tag %q: %w", name, err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			recipeID, t.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to link tag %q: %w", name, err)
		}

		tags = append(tags, &t)
	}

	return tags, nil
}

// attachIngredients mirrors attachTags for the ingredients table.
func (r *Repository) attachIngredients(ctx context.Context, tx pgx.Tx, userID string, recipeID int64, names []string) ([]*model.Ingredient, error) {
	ingredients := make([]*model.Ingredient, 0, len(names))

	for _, name := range names {
		var ing model.Ingredient
		err := tx.QueryRow(ctx,
			`SELECT id, user_id, name FROM ingredients WHERE user_id = $1 AND name = $2 ORDER BY id LIMIT 1`,
			userID, name,
		).Scan(&ing.ID, &ing.UserID, &ing.Name)

		if errors.Is(err, pgx.ErrNoRows) {
			ing = model.Ingredient{UserID: userID, Name: name}
			err = tx.QueryRow(ctx,
				`INSERT INTO ingredients (user_id, name) VALUES ($1, $2) RETURNING id`,
				userID, name,
			).Scan(&ing.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get or create ingredient %q: %w", name, err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO recipe_ingredients (recipe_id, ingredient_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			recipeID, ing.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to link ingredient %q: %w", name, err)
		}

		ingredients = append(ingredients, &ing)
	}

	return ingredients, nil
}

func scanRecipe(row rowScanner) (*model.Recipe, error) {
	var recipe model.Recipe
	err := row.Scan(
		&recipe.ID,
		&recipe.UserID,
		&recipe.Title,
		&recipe.Description,
		&recipe.Price,
		&recipe.Link,
		&recipe.TimeMinutes,
		&recipe.ImagePath,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}
