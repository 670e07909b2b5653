package auth

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ndanilov/staffdesk/internal/testutil"
	"github.com/ndanilov/staffdesk/tests/integration"
)

const (
	LogoutURL = "/api/v1/auth/logout"
)

func postWithBearer(t *testing.T, url string, token string) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp, string(body)
}

func Test_Logout(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("full logout flow", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			_, err := s.AuthService.Register(t.Context(), "pushkin", "StrongEnoughPassword")
			require.NoError(t, err)
			pair, err := s.AuthService.Login(t.Context(), "pushkin", "StrongEnoughPassword")
			require.NoError(t, err)

			t.Log("logout succeeds with a valid token")
			resp, body := postWithBearer(t, srvURL+LogoutURL, pair.Access.Value)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"message": "Successfully logged out"
				}`, body)

			t.Log("blacklisted access token stops working immediately")
			req, err := http.NewRequest(http.MethodGet, srvURL+"/api/v1/staff", nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+pair.Access.Value)
			protected, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			_ = protected.Body.Close()
			require.Equal(t, http.StatusUnauthorized, protected.StatusCode)
			require.Equal(t, "Bearer", protected.Header.Get("WWW-Authenticate"))

			t.Log("refresh token is revoked too")
			refreshResp, refreshBody := postJSON(t, srvURL+RefreshURL, `{"refresh_token": "`+pair.Refresh.Value+`"}`)
			require.Equalf(t, http.StatusUnauthorized, refreshResp.StatusCode, "not expected code. Body: %s", refreshBody)
		})
	})

	t.Run("logout without token returns 401", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			resp, body := postWithBearer(t, srvURL+LogoutURL, "")

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
		})
	})

	t.Run("logout with garbage token returns 401", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			resp, _ := postWithBearer(t, srvURL+LogoutURL, "not.a.token")

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	})
}
