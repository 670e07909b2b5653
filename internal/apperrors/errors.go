package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Returned for any access token that can't be accepted: bad signature,
	// malformed payload, expired or blacklisted. Handlers must not tell
	// these cases apart in responses.
	ErrTokenInvalid = errors.New("token is invalid")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token is revoked")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")

	ErrStaffAlreadyExists = errors.New("staff with this staff_id already exists")
	ErrStaffNotFound      = errors.New("staff not found")
)
