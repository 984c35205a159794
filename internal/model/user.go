// Package model defines domain entities for the application.
package model

import "time"

// User represents an account identified by email. Users own all other
// entities in the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthContext carries the resolved identity of an authenticated request.
// It is injected into the request context by the auth middleware.
type AuthContext struct {
	TokenID     string
	UserID      string
	Email       string
	IsStaff     bool
	IsSuperuser bool
}
