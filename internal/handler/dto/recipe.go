package dto

import (
	"github.com/recipebox/recipebox/internal/model"
)

// NamedRef is a tag or ingredient referenced by name on the recipe write
// path. Unknown names are created on the fly, scoped to the caller.
type NamedRef struct {
	Name string `json:"name"`
}

// CreateRecipeRequest represents the request body for creating a recipe.
type CreateRecipeRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Price       string     `json:"price,omitempty"`
	Link        string     `json:"link,omitempty"`
	TimeMinutes *int       `json:"time_minutes,omitempty"`
	Tags        []NamedRef `json:"tags,omitempty"`
	Ingredients []NamedRef `json:"ingredients,omitempty"`
}

// UpdateRecipeRequest represents the request body for a partial recipe
// update. A present tags or ingredients array replaces the whole
// association set; an absent one leaves it alone.
type UpdateRecipeRequest struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Price       *string     `json:"price,omitempty"`
	Link        *string     `json:"link,omitempty"`
	TimeMinutes *int        `json:"time_minutes,omitempty"`
	Tags        *[]NamedRef `json:"tags,omitempty"`
	Ingredients *[]NamedRef `json:"ingredients,omitempty"`
}

// RecipeResponse is the base recipe representation used on the list path.
// Associations and the image URL are detail-only fields.
type RecipeResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	TimeMinutes int    `json:"time_minutes"`
	Price       string `json:"price"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

// RecipeDetailResponse represents a single recipe in detail responses.
type RecipeDetailResponse struct {
	RecipeResponse
	Tags        []TagResponse        `json:"tags"`
	Ingredients []IngredientResponse `json:"ingredients"`
	Image       *string              `json:"image"`
}

// RecipeListResponse wraps a list of recipes.
type RecipeListResponse struct {
	Data []RecipeResponse `json:"data"`
}

// TagResponse represents a tag in API responses.
type TagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// IngredientResponse represents an ingredient in API responses.
type IngredientResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UpdateNameRequest is the request body for renaming a tag or ingredient.
type UpdateNameRequest struct {
	Name string `json:"name"`
}

// TagListResponse wraps a list of tags.
type TagListResponse struct {
	Data []TagResponse `json:"data"`
}

// IngredientListResponse wraps a list of ingredients.
type IngredientListResponse struct {
	Data []IngredientResponse `json:"data"`
}

// RefNames extracts the name field from a slice of refs.
func RefNames(refs []NamedRef) []string {
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return names
}

// ToRecipeResponse converts a Recipe model to RecipeResponse DTO.
func ToRecipeResponse(recipe *model.Recipe) *RecipeResponse {
	return &RecipeResponse{
		ID:          recipe.ID,
		Title:       recipe.Title,
		TimeMinutes: recipe.TimeMinutes,
		Price:       recipe.Price,
		Link:        recipe.Link,
		Description: recipe.Description,
	}
}

// ToRecipeDetailResponse converts a Recipe model to the detail DTO.
// imageURL is the public URL for the recipe image, or "" when no image
// has been uploaded.
func ToRecipeDetailResponse(recipe *model.Recipe, imageURL string) *RecipeDetailResponse {
	resp := &RecipeDetailResponse{
		RecipeResponse: *ToRecipeResponse(recipe),
		Tags:           ToTagResponses(recipe.Tags),
		Ingredients:    ToIngredientResponses(recipe.Ingredients),
	}
	if imageURL != "" {
		resp.Image = &imageURL
	}
	return resp
}

// ToRecipeListResponse converts a slice of Recipe models to the list DTO.
func ToRecipeListResponse(recipes []*model.Recipe) *RecipeListResponse {
	responses := make([]RecipeResponse, len(recipes))
	for i, recipe := range recipes {
		responses[i] = *ToRecipeResponse(recipe)
	}
	return &RecipeListResponse{Data: responses}
}

// ToTagResponses converts tag models to DTOs. Always returns a non-nil
// slice so the JSON field encodes as [] rather than null.
func ToTagResponses(tags []*model.Tag) []TagResponse {
	responses := make([]TagResponse, len(tags))
	for i, tag := range tags {
		responses[i] = TagResponse{ID: tag.ID, Name: tag.Name}
	}
	return responses
}

// ToIngredientResponses converts ingredient models to DTOs.
func ToIngredientResponses(ingredients []*model.Ingredient) []IngredientResponse {
	responses := make([]IngredientResponse, len(ingredients))
	for i, ing := range ingredients {
		responses[i] = IngredientResponse{ID: ing.ID, Name: ing.Name}
	}
	return responses
}

// ToTagListResponse converts tag models to the list DTO.
func ToTagListResponse(tags []*model.Tag) *TagListResponse {
	return &TagListResponse{Data: ToTagResponses(tags)}
}

// ToIngredientListResponse converts ingredient models to the list DTO.
func ToIngredientListResponse(ingredients []*model.Ingredient) *IngredientListResponse {
	return &IngredientListResponse{Data: ToIngredientResponses(ingredients)}
}
