package model

// Tag is a user-defined label attached to recipes. Names are unique per
// user by convention only; the database does not enforce it.
type Tag struct {
	ID     int64  `json:"id"`
	UserID string `json:"-"`
	Name   string `json:"name"`
}

// Ingredient is a user-defined recipe component. Same ownership and naming
// rules as Tag.
type Ingredient struct {
	ID     int64  `json:"id"`
	UserID string `json:"-"`
	Name   string `json:"name"`
}
