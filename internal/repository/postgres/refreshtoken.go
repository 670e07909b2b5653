package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ndanilov/staffdesk/internal/apperrors"
	"github.com/ndanilov/staffdesk/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const createRefreshToken = `-- name: CreateRefreshToken
INSERT INTO refresh_tokens (token, user_id, expires_at)
VALUES ($1, $2, $3)
RETURNING id, token, user_id, is_revoked, created_at, expires_at, last_used_at
`

func (r *RefreshTokenRepo) Create(ctx context.Context, token string, userID int64, expiresAt time.Time) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, createRefreshToken, token, userID, expiresAt)
	rt, err := pgx.CollectOneRow(rows, rowToRefreshToken)
	if err != nil {
		return rt, fmt.Errorf("db error: %w", err)
	}
	return rt, nil
}

const getRefreshToken = `-- name: GetRefreshToken
SELECT id, token, user_id, is_revoked, created_at, expires_at, last_used_at
FROM refresh_tokens
WHERE token = $1
`

// Get token record by its string
// Returns the record even if it's revoked or expired already
func (r *RefreshTokenRepo) Get(ctx context.Context, tokenString string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getRefreshToken, tokenString)
	rt, err := pgx.CollectOneRow(rows, rowToRefreshToken)

	switch {
	case err == nil:
		return rt, nil
	case errors.Is(err, pgx.ErrNoRows):
		return rt, apperrors.ErrRefreshTokenNotFound
	default:
		return rt, fmt.Errorf("db error: %w", err)
	}
}

const refreshTokenIsValid = `-- name: RefreshTokenIsValid
SELECT EXISTS (
	SELECT 1 FROM refresh_tokens
	WHERE token = $1 AND NOT is_revoked AND expires_at > now()
)
`

func (r *RefreshTokenRepo) IsValid(ctx context.Context, tokenString string) (bool, error) {
	var valid bool
	err := r.DB.QueryRow(ctx, refreshTokenIsValid, tokenString).Scan(&valid)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return valid, nil
}

const revokeRefreshToken = `-- name: RevokeRefreshToken
UPDATE refresh_tokens
SET is_revoked = TRUE
WHERE token = $1
`

func (r *RefreshTokenRepo) Revoke(ctx context.Context, tokenString string) (bool, error) {
	tag, err := r.DB.Exec(ctx, revokeRefreshToken, tokenString)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

const revokeAllForUser = `-- name: RevokeAllForUser
UPDATE refresh_tokens
SET is_revoked = TRUE
WHERE user_id = $1 AND NOT is_revoked
`

func (r *RefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.DB.Exec(ctx, revokeAllForUser, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

const touchLastUsed = `-- name: TouchLastUsed
UPDATE refresh_tokens
SET last_used_at = now()
WHERE token = $1
`

func (r *RefreshTokenRepo) TouchLastUsed(ctx context.Context, tokenString string) (bool, error) {
	tag, err := r.DB.Exec(ctx, touchLastUsed, tokenString)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

const purgeRefreshTokens = `-- name: PurgeRefreshTokens
DELETE FROM refresh_tokens
WHERE expires_at < now() OR is_revoked
`

// Delete rows that can never validate again: expired or revoked
func (r *RefreshTokenRepo) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.DB.Exec(ctx, purgeRefreshTokens)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.Token, &t.UserID, &t.IsRevoked, &t.CreatedAt, &t.ExpiresAt, &t.LastUsedAt)
	return t, err
}
