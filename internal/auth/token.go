package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Token format: rcp_{secret}
// Example: rcp_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b4f8d2e1b
//
// The secret is 20 random bytes hex encoded. Only a SHA-256 digest of the
// full token string is persisted; lookup is by digest since the token
// itself carries enough entropy to act as its own key.
const tokenSecretLen = 40

var (
	// ErrInvalidTokenFormat indicates the bearer token is malformed.
	ErrInvalidTokenFormat = errors.New("invalid token format")

	tokenFormatRegex = regexp.MustCompile(`^rcp_[a-f0-9]{40}$`)
)

// GeneratedToken contains the parts of a newly issued bearer token.
type GeneratedToken struct {
	Plaintext string // full token, shown once to the caller
	Digest    string // SHA-256 hex digest for storage and lookup
}

// GenerateToken creates a new opaque bearer token.
func GenerateToken() (*GeneratedToken, error) {
	secret := make([]byte, tokenSecretLen/2)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate token secret: %w", err)
	}

	plaintext := "rcp_" + hex.EncodeToString(secret)

	return &GeneratedToken{
		Plaintext: plaintext,
		Digest:    TokenDigest(plaintext),
	}, nil
}

// TokenDigest returns the SHA-256 hex digest of a token string.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateTokenFormat checks if the token matches the expected format.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}
