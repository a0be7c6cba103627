package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessTokenClaims(t *testing.T) {
	at, err := NewAccessToken("secret", "6f1c9b52-1111-2222-3333-444455556666", "admin", 15)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), at.Exp, 5*time.Second)

	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "6f1c9b52-1111-2222-3333-444455556666", claims["sub"])
	assert.Equal(t, "admin", claims["role"])
}

func TestNewAccessTokenRejectsWrongSecret(t *testing.T) {
	at, err := NewAccessToken("secret", "user-1", "user", 15)
	require.NoError(t, err)

	_, err = jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	assert.Error(t, err)
}

func TestRefreshAndActionCodes(t *testing.T) {
	r, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, r.Raw, 96) // 48 bytes hex encoded
	assert.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), r.Exp, 5*time.Second)

	code, err := NewActionCode(60)
	require.NoError(t, err)
	assert.Len(t, code.Raw, 64)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), code.Exp, 5*time.Second)

	// Hashing is deterministic and never echoes the raw value.
	assert.Equal(t, HashRefreshRaw(r.Raw), HashRefreshRaw(r.Raw))
	assert.NotEqual(t, HashRefreshRaw(r.Raw), HashRefreshRaw(code.Raw))
	assert.Len(t, HashRefreshRaw(r.Raw), 64)
	assert.NotContains(t, HashRefreshRaw(r.Raw), r.Raw)
}
