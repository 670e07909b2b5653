package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ndanilov/staffdesk/internal/apperrors"
	"github.com/ndanilov/staffdesk/internal/models"
	"github.com/ndanilov/staffdesk/internal/repository"
	"github.com/ndanilov/staffdesk/internal/service/auth/tokenmanager"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Hasher used during registration and login
	// Defaults to DefaultHasher (bcrypt)
	Hasher PasswordHasher
}

// AuthService orchestrates registration, login, logout, token refresh
// and bearer-token authentication
type AuthService struct {
	token   *tokenmanager.TokenManager
	hasher  PasswordHasher
	storage repository.Storage
}

func NewService(cfg Config, token *tokenmanager.TokenManager, storage repository.Storage) (*AuthService, error) {
	if token == nil || storage == nil {
		return nil, errors.New("token manager and storage must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	return &AuthService{
		token:   token,
		hasher:  hasher,
		storage: storage,
	}, nil
}

// Usernames are stored case-normalized: "John" and "john" are the same account
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Register creates a new user account
// Returns apperrors.ErrUserAlreadyExists if the normalized username is taken
func (s *AuthService) Register(ctx context.Context, username string, password string) (models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	return s.storage.User().CreateUser(ctx, normalizeUsername(username), hash)
}

// Login verifies credentials and issues an access and refresh token pair.
// Unknown username and wrong password both come back as ErrInvalidCredentials,
// so callers can't probe which usernames exist.
// The refresh token is persisted before the pair is returned: if persisting
// fails no tokens are issued at all.
func (s *AuthService) Login(ctx context.Context, username string, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.storage.User().GetUserByUsername(ctx, normalizeUsername(username))
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return pair, apperrors.ErrInvalidCredentials
	case err != nil:
		return pair, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return pair, apperrors.ErrInvalidCredentials
	}

	return s.issuePair(ctx, user)
}

// Refresh mints a new access token for a valid refresh token.
// Refresh tokens are not rotated: the same refresh string is returned and
// stays usable until it expires or is revoked.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	rt, err := s.storage.Refresh().Get(ctx, refresh)
	if err != nil {
		return pair, err
	}

	switch {
	case rt.IsRevoked:
		return pair, apperrors.ErrRefreshTokenRevoked
	// Valid strictly until expiry: a token at exactly expires_at is dead,
	// matching the repo's expires_at > now() check
	case !rt.ExpiresAt.After(time.Now()):
		return pair, apperrors.ErrRefreshTokenExpired
	}

	// The account may have been deleted after the token was issued
	user, err := s.storage.User().GetUserByID(ctx, rt.UserID)
	if err != nil {
		return pair, err
	}

	// Best effort, a failed touch must not fail the refresh
	_, _ = s.storage.Refresh().TouchLastUsed(ctx, refresh)

	access, err := s.token.IssueAccess(user.Username)
	if err != nil {
		return pair, err
	}

	return models.TokenPair{
		Access:  access,
		Refresh: models.IssuedToken{Value: rt.Token, ExpiresAt: rt.ExpiresAt},
	}, nil
}

// Logout blacklists the access token and revokes every refresh token the
// user owns. Both writes commit in one transaction: a blacklisted access
// token with live refresh tokens would be a half-applied logout.
func (s *AuthService) Logout(ctx context.Context, accessToken string, userID int64) error {
	claims, err := s.token.ParseAccess(accessToken)
	if err != nil {
		return err
	}

	return s.storage.InTx(ctx, func(st repository.Storage) error {
		if err := st.Blacklist().Add(ctx, accessToken, claims.ExpiresAt.Time); err != nil {
			return err
		}

		_, err := st.Refresh().RevokeAllForUser(ctx, userID)
		return err
	})
}

// Authenticate resolves the acting user from a bearer access token.
// Blacklist is checked before the signature: it's the cheapest reject and
// closes the logged-out-but-not-yet-expired window. Every failure collapses
// into ErrTokenInvalid.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (models.User, error) {
	var user models.User

	blacklisted, err := s.storage.Blacklist().IsBlacklisted(ctx, accessToken)
	switch {
	case err != nil:
		return user, err
	case blacklisted:
		return user, apperrors.ErrTokenInvalid
	}

	claims, err := s.token.ParseAccess(accessToken)
	if err != nil {
		return user, err
	}

	user, err = s.storage.User().GetUserByUsername(ctx, claims.Subject)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return user, apperrors.ErrTokenInvalid
	}

	return user, err
}

func (s *AuthService) issuePair(ctx context.Context, user models.User) (models.TokenPair, error) {
	var pair models.TokenPair

	access, err := s.token.IssueAccess(user.Username)
	if err != nil {
		return pair, err
	}

	refresh, err := s.token.IssueRefresh()
	if err != nil {
		return pair, err
	}

	_, err = s.storage.Refresh().Create(ctx, refresh.Value, user.ID, refresh.ExpiresAt)
	if err != nil {
		return pair, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}
