package tokenmanager

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ndanilov/staffdesk/internal/apperrors"
	"github.com/ndanilov/staffdesk/internal/models"
)

const (
	defaultAccessTokenTTL  = 30 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultSigningMethod   = "HS256"

	// Refresh tokens carry no claims, they are pure entropy
	refreshTokenBytesLen = 48
)

type AccessTokenClaims struct {
	jwt.RegisteredClaims
}

// Token manager config with sensible defaults
type Config struct {
	// Secret key to sign access tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set then default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set then default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenManager mints and verifies access tokens and generates refresh tokens.
// Access tokens are stateless JWTs verified on every request; refresh tokens
// are opaque lookup keys into the refresh token store. It never touches
// storage itself.
type TokenManager struct {
	// Secret key to sign access tokens
	key string

	// JWT MAC algorithm
	alg jwt.SigningMethod

	// Access and refresh token lifetimes
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg := jwt.GetSigningMethod(cfg.Alg)
	if alg == nil {
		return nil, fmt.Errorf("unknown signing method %q", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		key:        cfg.SecretKey,
		alg:        alg,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// IssueAccess mints a signed access token with the username as subject
func (m *TokenManager) IssueAccess(username string) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.accessTTL)

	token := jwt.NewWithClaims(
		m.alg,
		AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   username,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
		},
	)
	signed, err := token.SignedString([]byte(m.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// IssueRefresh generates an opaque random refresh token
// The caller is responsible for persisting it
func (m *TokenManager) IssueRefresh() (models.IssuedToken, error) {
	b := make([]byte, refreshTokenBytesLen)
	_, err := rand.Read(b)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while generating refresh token. Err: %w", err)
	}

	return models.IssuedToken{
		Value:     base64.RawURLEncoding.EncodeToString(b),
		ExpiresAt: time.Now().Truncate(time.Second).Add(m.refreshTTL),
	}, nil
}

// ParseAccess verifies signature, structure and expiry of an access token.
// Blacklist state is the caller's concern. Any failure, including an expired
// token, comes back as apperrors.ErrTokenInvalid.
func (m *TokenManager) ParseAccess(tokenString string) (AccessTokenClaims, error) {
	claims := AccessTokenClaims{}

	_, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return claims, fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, err)
	}

	if claims.Subject == "" {
		return claims, fmt.Errorf("%w: subject claim is missing", apperrors.ErrTokenInvalid)
	}

	return claims, nil
}
