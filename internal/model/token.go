package model

import "time"

// AuthToken is a persisted bearer credential. Only the SHA-256 digest of
// the opaque token string is stored; the plaintext is returned once at
// issue time and never kept.
type AuthToken struct {
	ID         string     `json:"id"`
	Digest     string     `json:"-"`
	UserID     string     `json:"user_id"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}
