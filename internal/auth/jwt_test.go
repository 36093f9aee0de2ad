package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPairRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, 24*time.Hour)
	user := &User{ID: 42, Email: "a@example.com", IsAdmin: true}

	pair, err := tm.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := tm.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "access", claims.Type)

	refresh, err := tm.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refresh.Type)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-one", time.Hour, time.Hour)
	pair, err := tm.GenerateTokenPair(&User{ID: 1, Email: "a@example.com"})
	require.NoError(t, err)

	other := NewTokenManager("secret-two", time.Hour, time.Hour)
	_, err = other.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute, time.Hour)
	pair, err := tm.GenerateTokenPair(&User{ID: 1, Email: "a@example.com"})
	require.NoError(t, err)

	_, err = tm.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, time.Hour)
	_, err := tm.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
