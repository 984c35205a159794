// Package model defines domain entities for the application.
package model

import "time"

// DefaultTimeMinutes is applied when a recipe is created without a
// preparation time.
const DefaultTimeMinutes = 5

// Recipe represents a recipe owned by a single user. Tags and Ingredients
// are loaded on the detail path only; list responses omit them.
type Recipe struct {
	ID          int64         `json:"id"`
	UserID      string        `json:"-"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Price       string        `json:"price"`
	Link        string        `json:"link"`
	TimeMinutes int           `json:"time_minutes"`
	ImagePath   string        `json:"-"`
	Tags        []*Tag        `json:"tags,omitempty"`
	Ingredients []*Ingredient `json:"ingredients,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// HasImage reports whether an image has been attached to the recipe.
func (r *Recipe) HasImage() bool {
	return r.ImagePath != ""
}
