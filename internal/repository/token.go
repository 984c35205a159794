package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/recipebox/recipebox/internal/model"
)

// ErrTokenNotFound indicates no token row matches the given digest.
var ErrTokenNotFound = errors.New("token not found")

// CreateToken inserts a new auth token.
func (r *Repository) CreateToken(ctx context.Context, token *model.AuthToken) error {
	query := `
		INSERT INTO auth_tokens (id, token_digest, user_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.Digest,
		token.UserID,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// GetTokenWithUser resolves a token digest to the token row and its owning
// user in one round trip. This is the auth hot path.
func (r *Repository) GetTokenWithUser(ctx context.Context, digest string) (*model.AuthToken, *model.User, error) {
	query := `
		SELECT t.id, t.token_digest, t.user_id, t.created_at, t.last_used_at,
		       u.id, u.email, u.name, u.password_hash, u.is_active, u.is_staff, u.is_superuser, u.created_at, u.updated_at
		FROM auth_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token_digest = $1
	`

	var token model.AuthToken
	var user model.User
	err := r.pool.QueryRow(ctx, query, digest).Scan(
		&token.ID,
		&token.Digest,
		&token.UserID,
		&token.CreatedAt,
		&token.LastUsedAt,
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsStaff,
		&user.IsSuperuser,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrTokenNotFound
		}
		return nil, nil, fmt.Errorf("failed to get token: %w", err)
	}

	return &token, &user, nil
}

// DeleteToken removes a token by digest. Used for logout/revocation.
func (r *Repository) DeleteToken(ctx context.Context, digest string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE token_digest = $1`, digest)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// UpdateTokenLastUsed records the last time a token authenticated a request.
// Called asynchronously from the auth middleware; failures are non-fatal.
func (r *Repository) UpdateTokenLastUsed(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE auth_tokens SET last_used_at = $2 WHERE id = $1`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update token last_used_at: %w", err)
	}
	return nil
}
