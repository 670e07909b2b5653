package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndanilov/staffdesk/internal/apperrors"
	"github.com/ndanilov/staffdesk/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			got, err := repo.CreateUser(t.Context(), "pushkin", "hashed-password")

			require.NoError(t, err)
			require.NotZero(t, got.ID, "ID must be assigned by the database")
			require.Equal(t, "pushkin", got.Username)
			require.Equal(t, "hashed-password", got.HashedPassword)
			require.WithinDuration(t, time.Now(), got.CreatedAt, 5*time.Second)
			require.WithinDuration(t, time.Now(), got.UpdatedAt, 5*time.Second)
		})
	})

	t.Run("fail create if username taken", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			_, err := repo.CreateUser(t.Context(), "pushkin", "hashed-password")
			require.NoError(t, err)

			_, err = repo.CreateUser(t.Context(), "pushkin", "other-hash")

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("get user by id", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			created, err := repo.CreateUser(t.Context(), "pushkin", "hashed-password")
			require.NoError(t, err)

			got, err := repo.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			require.Equal(t, created.ID, got.ID)
			require.Equal(t, created.Username, got.Username)
		})
	})

	t.Run("get user by username", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			created, err := repo.CreateUser(t.Context(), "pushkin", "hashed-password")
			require.NoError(t, err)

			got, err := repo.GetUserByUsername(t.Context(), "pushkin")

			require.NoError(t, err)
			require.Equal(t, created.ID, got.ID)
			require.Equal(t, created.HashedPassword, got.HashedPassword)
		})
	})

	t.Run("fail get if user not found", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			_, errByID := repo.GetUserByID(t.Context(), 404404)
			_, errByName := repo.GetUserByUsername(t.Context(), "nobody")

			assert.ErrorIs(t, errByID, apperrors.ErrUserNotFound)
			assert.ErrorIs(t, errByName, apperrors.ErrUserNotFound)
		})
	})

	t.Run("user exists", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}
			_, err := repo.CreateUser(t.Context(), "pushkin", "hashed-password")
			require.NoError(t, err)

			exists, err := repo.UserExists(t.Context(), "pushkin")
			require.NoError(t, err)
			notExists, err2 := repo.UserExists(t.Context(), "nobody")
			require.NoError(t, err2)

			assert.True(t, exists)
			assert.False(t, notExists)
		})
	})
}
