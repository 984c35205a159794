// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/cache"
	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

// User service errors.
var (
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrEmailExists        = errors.New("email already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 5

// UserService handles account lifecycle and token issuance.
type UserService struct {
	repo    *repository.Repository
	cache   *cache.Cache
	metrics metrics.Recorder
}

// NewUserService creates a new UserService. cache may be nil in contexts
// without Redis (bootstrap scripts); token revocation then skips cache
// invalidation.
func NewUserService(repo *repository.Repository, cacheClient *cache.Cache, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		repo:    repo,
		cache:   cacheClient,
		metrics: recorder,
	}
}

// CreateUserInput defines input for registering a user.
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
}

// CreateUser registers a new user. The email's domain part is lower-cased;
// the local part is preserved. The password is stored as an Argon2id hash,
// never as plaintext.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		Name:         input.Name,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// CreateSuperuser registers a user with staff and superuser flags set.
// Same failure conditions as CreateUser.
func (s *UserService) CreateSuperuser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	user, err := s.CreateUser(ctx, input)
	if err != nil {
		return nil, err
	}

	user.IsStaff = true
	user.IsSuperuser = true
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to promote superuser: %w", err)
	}

	return user, nil
}

// IssueToken authenticates email+password and mints a new opaque bearer
// token. Every failure mode collapses to ErrInvalidCredentials so callers
// cannot probe which accounts exist or are disabled.
func (s *UserService) IssueToken(ctx context.Context, email, password string) (string, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match || !user.IsActive {
		return "", ErrInvalidCredentials
	}

	tok, err := auth.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	record := &model.AuthToken{
		ID:        ulid.Make().String(),
		Digest:    tok.Digest,
		UserID:    user.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateToken(ctx, record); err != nil {
		return "", fmt.Errorf("failed to persist token: %w", err)
	}

	s.metrics.IncTokenIssued()

	return tok.Plaintext, nil
}

// RevokeToken deletes a bearer token and evicts its cached auth context.
// Revoking a token that no longer exists is a no-op, so retries are safe.
func (s *UserService) RevokeToken(ctx context.Context, token string) error {
	if !auth.ValidateTokenFormat(token) {
		return nil
	}

	digest := auth.TokenDigest(token)
	if err := s.repo.DeleteToken(ctx, digest); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil
		}
		return err
	}

	if s.cache != nil {
		_ = s.cache.DeleteAuthContext(ctx, auth.QuickHash(token))
	}

	return nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUserInput defines input for updating a profile. Nil fields are
// left untouched.
type UpdateUserInput struct {
	Name     *string
	Password *string
}

// UpdateUser applies profile changes. A supplied password is re-hashed; an
// absent one leaves the stored hash exactly as it was, so it is never
// hashed twice.
func (s *UserService) UpdateUser(ctx context.Context, userID string, input UpdateUserInput) (*model.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}

	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < minPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// normalizeEmail validates the address shape and lower-cases only the
// domain portion, preserving the case of the local part.
func normalizeEmail(email string) (string, error) {
	if email == "" {
		return "", ErrEmailRequired
	}

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", ErrInvalidEmail
	}

	local := email[:at]
	domain := email[at+1:]

	return local + "@" + strings.ToLower(domain), nil
}
