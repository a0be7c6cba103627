package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple", 4)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, "correct horse battery"))
	assert.False(t, VerifyPassword("", "anything"))
}

func TestHashPasswordDiffersPerCall(t *testing.T) {
	h1, err := HashPassword("pw-123456", 4)
	require.NoError(t, err)
	h2, err := HashPassword("pw-123456", 4)
	require.NoError(t, err)
	// Different salts, both valid.
	assert.NotEqual(t, h1, h2)
	assert.True(t, VerifyPassword(h1, "pw-123456"))
	assert.True(t, VerifyPassword(h2, "pw-123456"))
}
