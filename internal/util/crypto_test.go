package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("generates 64 hex characters", func(t *testing.T) {
		token, err := GenerateToken()
		require.NoError(t, err)
		assert.Len(t, token, 64)
	})

	t.Run("generates unique tokens", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			token, err := GenerateToken()
			require.NoError(t, err)
			assert.False(t, seen[token], "duplicate token generated")
			seen[token] = true
		}
	})
}

func TestGenerateJTI(t *testing.T) {
	t.Run("generates 32 hex characters", func(t *testing.T) {
		jti, err := GenerateJTI()
		require.NoError(t, err)
		assert.Len(t, jti, 32)
	})

	t.Run("generates unique values per call", func(t *testing.T) {
		a, err := GenerateJTI()
		require.NoError(t, err)
		b, err := GenerateJTI()
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestPasswordHashing(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		hash, err := HashPassword("Admin@123")
		require.NoError(t, err)
		assert.True(t, CheckPasswordHash("Admin@123", hash))
		assert.False(t, CheckPasswordHash("wrong", hash))
	})

	t.Run("rejects malformed hash", func(t *testing.T) {
		assert.False(t, CheckPasswordHash("Admin@123", "not-a-bcrypt-hash"))
	})
}
