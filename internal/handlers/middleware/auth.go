package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ndanilov/staffdesk/internal/apperrors"
	"github.com/ndanilov/staffdesk/internal/handlers/render"
	"github.com/ndanilov/staffdesk/internal/handlers/userctx"
	"github.com/ndanilov/staffdesk/internal/models"
)

type authService interface {
	// Resolve the acting user from a bearer access token
	Authenticate(ctx context.Context, accessToken string) (models.User, error)
}

type Auth struct {
	auth authService
}

func NewAuth(auth authService) *Auth {
	return &Auth{auth: auth}
}

// Wrap gates the next handler behind bearer-token authentication.
// On success the user and the raw token are placed into the request context.
func (m *Auth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			unauthorized(w)
			return
		}

		user, err := m.auth.Authenticate(r.Context(), token)
		switch {
		case errors.Is(err, apperrors.ErrTokenInvalid):
			unauthorized(w)
			return
		case err != nil:
			// Storage failure, not the caller's fault
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		ctx := userctx.New(r.Context(), user)
		ctx = userctx.NewWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errors.New("authorization header is not a bearer token")
	}

	return token, nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
}
