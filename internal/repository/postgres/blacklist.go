package postgres

import (
	"context"
	"fmt"
	"time"
)

type BlacklistRepo struct {
	DB DBTX
}

const addToBlacklist = `-- name: AddToBlacklist
INSERT INTO token_blacklist (token, expires_at)
VALUES ($1, $2)
ON CONFLICT (token) DO NOTHING
`

// Add token to the blacklist
// Inserting an already blacklisted token is a no-op
func (r *BlacklistRepo) Add(ctx context.Context, tokenString string, expiresAt time.Time) error {
	_, err := r.DB.Exec(ctx, addToBlacklist, tokenString, expiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const isBlacklisted = `-- name: IsBlacklisted
SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE token = $1)
`

func (r *BlacklistRepo) IsBlacklisted(ctx context.Context, tokenString string) (bool, error) {
	var blacklisted bool
	err := r.DB.QueryRow(ctx, isBlacklisted, tokenString).Scan(&blacklisted)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return blacklisted, nil
}

const purgeBlacklist = `-- name: PurgeBlacklist
DELETE FROM token_blacklist
WHERE expires_at < now()
`

// Expired entries are redundant: expiry alone rejects the token
func (r *BlacklistRepo) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.DB.Exec(ctx, purgeBlacklist)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}
