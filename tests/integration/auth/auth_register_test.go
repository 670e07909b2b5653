package auth

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ndanilov/staffdesk/internal/testutil"
	"github.com/ndanilov/staffdesk/tests/integration"
)

const (
	RegisterURL = "/api/v1/auth/register"
)

func postJSON(t *testing.T, url string, data string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(data))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp, string(body)
}

func Test_Register(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("register ok", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			data := `{"username": "pushkin", "password": "StrongEnoughPassword"}`

			resp, body := postJSON(t, srvURL+RegisterURL, data)

			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, `"username":"pushkin"`)
			require.Contains(t, body, `"id"`)
			require.NotContains(t, body, "password", "password must never appear in the response")
		})
	})

	t.Run("username is normalized before storing", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			data := `{"username": "PuShKiN", "password": "StrongEnoughPassword"}`

			resp, body := postJSON(t, srvURL+RegisterURL, data)

			require.Equal(t, http.StatusCreated, resp.StatusCode)
			require.Contains(t, body, `"username":"pushkin"`)
		})
	})

	t.Run("conflict on duplicate username", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, s integration.Services) {
			_, err := s.AuthService.Register(t.Context(), "pushkin", "StrongEnoughPassword")
			require.NoError(t, err)

			data := `{"username": "Pushkin", "password": "OtherPassword42"}`
			resp, body := postJSON(t, srvURL+RegisterURL, data)

			require.Equalf(t, http.StatusConflict, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "User already exists"
				}`, body)
		})
	})

	t.Run("validation failures return 422", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			tests := []struct {
				name string
				data string
			}{
				{name: "short username", data: `{"username": "ab", "password": "StrongEnoughPassword"}`},
				{name: "short password", data: `{"username": "pushkin", "password": "short"}`},
				{name: "password over 72 bytes", data: `{"username": "pushkin", "password": "` + strings.Repeat("a", 73) + `"}`},
				{name: "username with spaces", data: `{"username": "bad user", "password": "StrongEnoughPassword"}`},
				{name: "missing fields", data: `{}`},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					resp, body := postJSON(t, srvURL+RegisterURL, tt.data)

					require.Equalf(t, http.StatusUnprocessableEntity, resp.StatusCode, "not expected code. Body: %s", body)
					require.Contains(t, body, "validation_failed")
				})
			}
		})
	})

	t.Run("broken json returns 400", func(t *testing.T) {
		integration.RunTx(pg.Pool, t, func(srvURL string, _ integration.Services) {
			resp, body := postJSON(t, srvURL+RegisterURL, `{"username": `)

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, "decoding_failed")
		})
	})
}
