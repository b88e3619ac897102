package models

import "time"

type TokenClaims struct {
	UserID      int64     `json:"user_id"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	ExpiresAt   time.Time `json:"exp"`
	IssuedAt    time.Time `json:"iat"`
}

// Refresh tokens carry their own identifier so they can be rotated
// independently of access tokens.
type RefreshTokenClaims struct {
	UserID    int64     `json:"user_id"`
	TokenID   string    `json:"jti"`
	ExpiresAt time.Time `json:"exp"`
}
