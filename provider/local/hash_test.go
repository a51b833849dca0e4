package local

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := hashPassword("secret123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, comparePasswordAndHash("secret123", hash))
	assert.ErrorIs(t, comparePasswordAndHash("wrong-pass", hash), errMismatchedHashAndPassword)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := hashPassword("")
	assert.Error(t, err)
}

func TestComparePasswordAndHashWithGarbageHash(t *testing.T) {
	err := comparePasswordAndHash("secret123", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errMismatchedHashAndPassword)
}
