package auth

import (
	"context"

	"github.com/recipebox/recipebox/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const authContextKey contextKey = "auth_context"

// ContextWithAuth adds the resolved identity to the context.
func ContextWithAuth(ctx context.Context, ac *model.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// AuthFromContext retrieves the identity from the context.
// Returns nil if the request was not authenticated.
func AuthFromContext(ctx context.Context) *model.AuthContext {
	ac, ok := ctx.Value(authContextKey).(*model.AuthContext)
	if !ok {
		return nil
	}
	return ac
}

// MustAuthFromContext retrieves the identity from the context.
// Panics if not present (use only behind the auth middleware).
func MustAuthFromContext(ctx context.Context) *model.AuthContext {
	ac := AuthFromContext(ctx)
	if ac == nil {
		panic("auth context not found - ensure auth middleware is applied")
	}
	return ac
}
