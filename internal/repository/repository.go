package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndanilov/staffdesk/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, passwordHash string) (models.User, error)

	// Get user by id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)

	// Report whether user with username exists
	UserExists(ctx context.Context, username string) (bool, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Persist new refresh token for the user
	Create(ctx context.Context, token string, userID int64, expiresAt time.Time) (models.RefreshToken, error)

	// Return the token record even if it's revoked or expired
	// If not found must return apperrors.ErrRefreshTokenNotFound
	Get(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Report whether the token exists, is not revoked and not expired
	IsValid(ctx context.Context, tokenString string) (bool, error)

	// Flip the revoked flag; reports whether a row was affected
	Revoke(ctx context.Context, tokenString string) (bool, error)

	// Revoke every non-revoked token owned by the user, returns affected count
	RevokeAllForUser(ctx context.Context, userID int64) (int64, error)

	// Update last_used_at; best effort, reports whether a row was affected
	TouchLastUsed(ctx context.Context, tokenString string) (bool, error)

	// Delete rows that are expired or revoked, returns deleted count
	PurgeExpired(ctx context.Context) (int64, error)
}

// Blacklist of access tokens invalidated before their natural expiry
type BlacklistRepo interface {
	// Insert token into the blacklist
	// Must not fail if the token is blacklisted already
	Add(ctx context.Context, tokenString string, expiresAt time.Time) error

	// Report whether the token is blacklisted
	IsBlacklisted(ctx context.Context, tokenString string) (bool, error)

	// Delete entries past their expiry, returns deleted count
	PurgeExpired(ctx context.Context) (int64, error)
}

// Filter, sorting and pagination parameters for staff listing
type StaffFilter struct {
	Status    string
	Name      string // case-insensitive substring match
	SalaryMin *decimal.Decimal
	SalaryMax *decimal.Decimal
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Partial update: nil fields are left unchanged
type StaffUpdate struct {
	StaffID *string
	Name    *string
	DOB     *time.Time
	Salary  *decimal.Decimal
	Status  *string
}

// Staff repository interface
type StaffRepo interface {
	// Create staff record
	// If staff_id is taken must return apperrors.ErrStaffAlreadyExists
	Create(ctx context.Context, staff models.Staff) (models.Staff, error)

	// Get staff by business identifier
	// If not found must return apperrors.ErrStaffNotFound
	GetByStaffID(ctx context.Context, staffID string) (models.Staff, error)

	// List staff matching the filter, returns page items and total match count
	List(ctx context.Context, filter StaffFilter) ([]models.Staff, int64, error)

	// Apply partial update to staff identified by staffID
	Update(ctx context.Context, staffID string, upd StaffUpdate) (models.Staff, error)

	// Delete staff by business identifier
	Delete(ctx context.Context, staffID string) error
}

// Storage aggregates repositories sharing one underlying connection
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Blacklist() BlacklistRepo
	Staff() StaffRepo

	// Run fn in a database transaction
	// fn receives a Storage bound to the transaction; any error rolls it back
	InTx(ctx context.Context, fn func(Storage) error) error
}
