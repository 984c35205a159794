package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/recipebox/recipebox/internal/model"
)

const (
	// authCachePrefix is the Redis key prefix for auth context cache.
	authCachePrefix = "auth:token:"
	// authCacheTTL bounds how long a revoked token can keep
	// authenticating through a stale cache entry.
	authCacheTTL = 5 * time.Minute
)

// cachedAuthContext is the Redis representation of a resolved identity.
type cachedAuthContext struct {
	TokenID     string `json:"token_id"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// GetAuthContext retrieves a cached auth context by cache key.
// Returns nil on a miss; a corrupted entry is treated as a miss.
func (c *Cache) GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error) {
	data, err := c.client.Get(ctx, authCachePrefix+cacheKey).Bytes()
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	var cached cachedAuthContext
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, nil //nolint:nilerr
	}

	return &model.AuthContext{
		TokenID:     cached.TokenID,
		UserID:      cached.UserID,
		Email:       cached.Email,
		IsStaff:     cached.IsStaff,
		IsSuperuser: cached.IsSuperuser,
	}, nil
}

// SetAuthContext caches a resolved identity under the token's cache key.
func (c *Cache) SetAuthContext(ctx context.Context, cacheKey string, ac *model.AuthContext) error {
	cached := cachedAuthContext{
		TokenID:     ac.TokenID,
		UserID:      ac.UserID,
		Email:       ac.Email,
		IsStaff:     ac.IsStaff,
		IsSuperuser: ac.IsSuperuser,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}

	return c.client.Set(ctx, authCachePrefix+cacheKey, data, authCacheTTL).Err()
}

// DeleteAuthContext removes a cached auth context.
// Called when a token is revoked.
func (c *Cache) DeleteAuthContext(ctx context.Context, cacheKey string) error {
	return c.client.Del(ctx, authCachePrefix+cacheKey).Err()
}
