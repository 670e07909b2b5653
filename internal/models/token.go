package models

import (
	"time"
)

// Persisted refresh token
// Valid iff not revoked and not past ExpiresAt
type RefreshToken struct {
	ID         int64
	Token      string
	UserID     int64
	IsRevoked  bool
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastUsedAt *time.Time // nil until the token mints its first access token
}

// Access token that has been explicitly invalidated before its expiry
type BlacklistedToken struct {
	ID            int64
	Token         string
	BlacklistedAt time.Time
	ExpiresAt     time.Time
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by the auth service on login or refresh
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
