package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ndanilov/staffdesk/internal/apperrors"
	"github.com/ndanilov/staffdesk/internal/handlers/render"
	"github.com/ndanilov/staffdesk/internal/handlers/userctx"
	"github.com/ndanilov/staffdesk/internal/models"
)

type authService interface {
	// Register user with username and password
	// Has to return apperrors.ErrUserAlreadyExists if the username is taken
	Register(ctx context.Context, username string, password string) (models.User, error)

	// Login with username and password
	// Has to return apperrors.ErrInvalidCredentials on unknown user or wrong password
	Login(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Refresh mints a new access token for a valid refresh token
	// Has to return apperrors.ErrRefreshToken* on invalid, revoked or expired token
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Logout blacklists the access token and revokes the user's refresh tokens
	Logout(ctx context.Context, accessToken string, userID int64) error
}

type AuthHandler struct {
	auth authService
}

func NewAuth(auth authService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Token envelope returned on login and refresh
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required,min=3,max=50,username_charset"`
		Password string `json:"password" validate:"required,min=8,max=72"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	user, err := h.auth.Register(r.Context(), data.Username, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}, http.StatusCreated)
}

// Login accepts form-encoded credentials, the way OAuth2 password flows do
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render.ServiceError(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		render.ServiceError(w, "Username and password are required", http.StatusUnprocessableEntity)
		return
	}

	pair, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Incorrect username or password", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, TokenResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
		TokenType:    "bearer",
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshRequest struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	data, err := render.BindAndValidate[RefreshRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.auth.Refresh(r.Context(), data.RefreshToken)
	if err != nil {
		// One message for not found, revoked and expired: the caller only
		// needs to know it must authenticate again
		switch {
		case errors.Is(err, apperrors.ErrRefreshTokenNotFound),
			errors.Is(err, apperrors.ErrRefreshTokenRevoked),
			errors.Is(err, apperrors.ErrRefreshTokenExpired),
			errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "Refresh failed, please log in again", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, TokenResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
		TokenType:    "bearer",
	})
}

// Logout is mounted behind the auth middleware, so both the user and the
// raw bearer token are in the request context already
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	type LogoutResponse struct {
		Message string `json:"message"`
	}

	user, okUser := userctx.FromContext(r.Context())
	token, okToken := userctx.TokenFromContext(r.Context())
	if !okUser || !okToken {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	err := h.auth.Logout(r.Context(), token, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTokenInvalid):
			w.Header().Set("WWW-Authenticate", "Bearer")
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, LogoutResponse{Message: "Successfully logged out"})
}
