//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/testutil"
)

func seedToken(t *testing.T, ctx context.Context, repo *Repository) (*model.AuthToken, *model.User) {
	t.Helper()

	user := testutil.NewTestUser(t, testutil.UniqueEmail("token"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	token := &model.AuthToken{
		ID:        testutil.UniqueID("tok"),
		Digest:    testutil.UniqueID("digest"),
		UserID:    user.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateToken(ctx, token); err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	return token, user
}

func TestIntegrationTokenRepository_GetTokenWithUser(t *testing.T) {
	ctx, repo := newTestEnv(t)

	token, user := seedToken(t, ctx, repo)

	gotToken, gotUser, err := repo.GetTokenWithUser(ctx, token.Digest)
	if err != nil {
		t.Fatalf("GetTokenWithUser failed: %v", err)
	}
	if gotToken.ID != token.ID {
		t.Errorf("token ID mismatch: got %q, want %q", gotToken.ID, token.ID)
	}
	if gotUser.ID != user.ID {
		t.Errorf("user ID mismatch: got %q, want %q", gotUser.ID, user.ID)
	}
	if gotToken.LastUsedAt != nil {
		t.Error("LastUsedAt should be nil for a fresh token")
	}
}

func TestIntegrationTokenRepository_GetTokenWithUser_NotFound(t *testing.T) {
	ctx, repo := newTestEnv(t)

	_, _, err := repo.GetTokenWithUser(ctx, "no-such-digest")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound, got: %v", err)
	}
}

func TestIntegrationTokenRepository_UpdateTokenLastUsed(t *testing.T) {
	ctx, repo := newTestEnv(t)

	token, _ := seedToken(t, ctx, repo)

	if err := repo.UpdateTokenLastUsed(ctx, token.ID); err != nil {
		t.Fatalf("UpdateTokenLastUsed failed: %v", err)
	}

	gotToken, _, err := repo.GetTokenWithUser(ctx, token.Digest)
	if err != nil {
		t.Fatalf("GetTokenWithUser failed: %v", err)
	}
	if gotToken.LastUsedAt == nil {
		t.Error("LastUsedAt should be set after UpdateTokenLastUsed")
	}
}

func TestIntegrationTokenRepository_DeleteToken(t *testing.T) {
	ctx, repo := newTestEnv(t)

	token, _ := seedToken(t, ctx, repo)

	if err := repo.DeleteToken(ctx, token.Digest); err != nil {
		t.Fatalf("DeleteToken failed: %v", err)
	}

	_, _, err := repo.GetTokenWithUser(ctx, token.Digest)
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound after delete, got: %v", err)
	}

	if err := repo.DeleteToken(ctx, token.Digest); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound on second delete, got: %v", err)
	}
}

func TestIntegrationTokenRepository_CascadeOnUserDelete(t *testing.T) {
	ctx, repo := newTestEnv(t)

	token, user := seedToken(t, ctx, repo)

	if _, err := repo.Pool().Exec(ctx, "DELETE FROM users WHERE id = $1", user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	_, _, err := repo.GetTokenWithUser(ctx, token.Digest)
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Expected token to cascade away with user, got: %v", err)
	}
}
