package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	hasher := BcryptHasher{}

	t.Run("hash password", func(t *testing.T) {
		t.Parallel()

		hash, err := hasher.Hash("whatever")

		require.NoError(t, err)
		require.NotEqual(t, "whatever", hash, "Hash must not be the password itself")
		require.True(t, strings.HasPrefix(hash, "$2a$"), "Expected bcrypt formatted hash, got %q", hash)
	})

	t.Run("compare password ok", func(t *testing.T) {
		t.Parallel()

		hash, err := hasher.Hash("whatever")
		require.NoError(t, err)

		err = hasher.Compare(hash, "whatever")

		require.NoError(t, err)
	})

	t.Run("fail compare if wrong password", func(t *testing.T) {
		t.Parallel()

		hash, err := hasher.Hash("whatever")
		require.NoError(t, err)

		err = hasher.Compare(hash, "not-whatever")

		require.Error(t, err)
	})

	t.Run("hashes are salted", func(t *testing.T) {
		t.Parallel()

		first, err := hasher.Hash("whatever")
		require.NoError(t, err)
		second, err := hasher.Hash("whatever")
		require.NoError(t, err)

		require.NotEqual(t, first, second, "Same password must not produce the same hash twice")
	})

	t.Run("fail hash if password longer than 72 bytes", func(t *testing.T) {
		t.Parallel()

		_, err := hasher.Hash(strings.Repeat("a", 73))

		require.Error(t, err)
	})
}
