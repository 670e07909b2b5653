package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndanilov/staffdesk/internal/apperrors"
	"github.com/ndanilov/staffdesk/internal/models"
	"github.com/ndanilov/staffdesk/internal/testutil"
)

// Refresh tokens reference users, so every subtest starts with one
func createUserRecord(t *testing.T, tx pgx.Tx, username string) models.User {
	t.Helper()

	user, err := (&UserRepo{DB: tx}).CreateUser(t.Context(), username, "hashed-password")
	require.NoError(t, err, "Error happened when creating user for the test")
	return user
}

func Test_RefreshTokenRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	farFuture := time.Now().Add(time.Hour).Truncate(time.Microsecond)

	t.Run("create token ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createUserRecord(t, tx, "pushkin")
			repo := RefreshTokenRepo{DB: tx}

			got, err := repo.Create(t.Context(), "secret-token", user.ID, farFuture)

			require.NoError(t, err)
			require.NotZero(t, got.ID)
			require.Equal(t, "secret-token", got.Token)
			require.Equal(t, user.ID, got.UserID)
			require.False(t, got.IsRevoked, "Fresh token must not be revoked")
			require.WithinDuration(t, farFuture, got.ExpiresAt, time.Microsecond)
			require.Nil(t, got.LastUsedAt, "Fresh token must not be marked as used")
		})
	})

	t.Run("get token ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createUserRecord(t, tx, "pushkin")
			repo := RefreshTokenRepo{DB: tx}
			_, err := repo.Create(t.Context(), "secret-token", user.ID, farFuture)
			require.NoError(t, err)

			got, err := repo.Get(t.Context(), "secret-token")

			require.NoError(t, err)
			require.Equal(t, "secret-token", got.Token)
			require.Equal(t, user.ID, got.UserID)
		})
	})

	t.Run("get returns revoked token too", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createUserRecord(t, tx, "pushkin")
			repo := RefreshTokenRepo{DB: tx}
			_, err := repo.Create(t.Context(), "secret-token", user.ID, farFuture)
			require.NoError(t, err)
			revoked, err := repo.Revoke(t.Context(), "secret-token")
			require.NoError(t, err)
			require.True(t, revoked)

			got, err := repo.Get(t.Context(), "secret-token")

			require.NoError(t, err, "Get must return the record so the caller can tell why it's unusable")
			require.True(t, got.IsRevoked)
		})
	})

	t.Run("fail get not existed token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}

			_, err := repo.Get(t.Context(), "never-issued")

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("is valid", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createUserRecord(t, tx, "pushkin")
			repo := RefreshTokenRepo{DB: tx}
			_, err := repo.Create(t.Context(), "live-token", user.ID, farFuture)
			require.NoError(t, err)
			_, err = repo.Create(t.Context(), "expired-token", user.ID, time.Now().Add(-time.Hour))
			require.NoError(t, err)
			_, err = repo.Create(t.Context(), "revoked-token", user.ID, farFuture)
			require.NoError(t, err)
			_, err = repo.Revoke(t.Context(), "revoked-token")
			require.NoError(t, err)

			live, err := repo.IsValid(t.Context(), "live-token")
			require.NoError(t, err)
			expired, err := repo.IsValid(t.Context(), "expired-token")
			require.NoError(t, err)
			revoked, err := repo.IsValid(t.Context(), "revoked-token")
			require.NoError(t, err)
			missing, err := repo.IsValid(t.Context(), "never-issued")
			require.NoError(t, err)

			assert.True(t, live)
			assert.False(t, expired)
			assert.False(t, revoked)
			assert.False(t, missing)
		})
	})

	t.Run("revoke not existed token reports false", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}

			revoked, err := repo.Revoke(t.Context(), "never-issued")

			require.NoError(t, err)
			assert.False(t, revoked)
		})
	})

	t.Run("revoke all for user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createUserRecord(t, tx, "pushkin")
			other := createUserRecord(t, tx, "gogol")
			repo := RefreshTokenRepo{DB: tx}
			for _, token := range []string{"first", "second", "third"} {
				_, err := repo.Create(t.Context(), token, user.ID, farFuture)
				require.NoError(t, err)
			}
			_, err := repo.Create(t.Context(), "other-users-token", other.ID, farFuture)
			require.NoError(t, err)

			count, err := repo.RevokeAllForUser(t.Context(), user.ID)

			require.NoError(t, err)
			assert.Equal(t, int64(3), count)

			stillValid, err := repo.IsValid(t.Context(), "other-users-token")
			require.NoError(t, err)
			assert.True(t, stillValid, "Other user's tokens must survive")
		})
	})

	t.Run("revoke all skips already revoked", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createUserRecord(t, tx, "pushkin")
			repo := RefreshTokenRepo{DB: tx}
			_, err := repo.Create(t.Context(), "first", user.ID, farFuture)
			require.NoError(t, err)
			_, err = repo.Create(t.Context(), "second", user.ID, farFuture)
			require.NoError(t, err)
			_, err = repo.Revoke(t.Context(), "first")
			require.NoError(t, err)

			count, err := repo.RevokeAllForUser(t.Context(), user.ID)

			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})
	})

	t.Run("touch last used", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createUserRecord(t, tx, "pushkin")
			repo := RefreshTokenRepo{DB: tx}
			_, err := repo.Create(t.Context(), "secret-token", user.ID, farFuture)
			require.NoError(t, err)

			touched, err := repo.TouchLastUsed(t.Context(), "secret-token")
			require.NoError(t, err)
			require.True(t, touched)

			got, err := repo.Get(t.Context(), "secret-token")
			require.NoError(t, err)
			require.NotNil(t, got.LastUsedAt)
			assert.WithinDuration(t, time.Now(), *got.LastUsedAt, 5*time.Second)
		})
	})

	t.Run("purge removes expired and revoked only", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createUserRecord(t, tx, "pushkin")
			repo := RefreshTokenRepo{DB: tx}
			_, err := repo.Create(t.Context(), "live-token", user.ID, farFuture)
			require.NoError(t, err)
			_, err = repo.Create(t.Context(), "expired-token", user.ID, time.Now().Add(-time.Hour))
			require.NoError(t, err)
			_, err = repo.Create(t.Context(), "revoked-token", user.ID, farFuture)
			require.NoError(t, err)
			_, err = repo.Revoke(t.Context(), "revoked-token")
			require.NoError(t, err)

			count, err := repo.PurgeExpired(t.Context())

			require.NoError(t, err)
			assert.Equal(t, int64(2), count)

			_, err = repo.Get(t.Context(), "live-token")
			assert.NoError(t, err, "Live token must survive the purge")
			_, err = repo.Get(t.Context(), "expired-token")
			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
			_, err = repo.Get(t.Context(), "revoked-token")
			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("tokens removed with user", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			user := createUserRecord(t, tx, "pushkin")
			repo := RefreshTokenRepo{DB: tx}
			_, err := repo.Create(t.Context(), "secret-token", user.ID, farFuture)
			require.NoError(t, err)

			_, err = tx.Exec(t.Context(), "DELETE FROM users WHERE id = $1", user.ID)
			require.NoError(t, err)

			_, err = repo.Get(t.Context(), "secret-token")
			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound, "Tokens must cascade on user delete")
		})
	})
}
