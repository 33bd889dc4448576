package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testIdentity() Identity {
	return Identity{Subject: "42", Role: "user", Username: "alice", Email: "alice@example.com"}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, testIdentity(), 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Value)
	require.NotEmpty(t, tok.JTI)

	parsed, err := ParseToken(testSecret, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, parsed.Type)
	assert.Equal(t, "42", parsed.Subject)
	assert.Equal(t, "user", parsed.Role)
	assert.Equal(t, "alice", parsed.Username)
	assert.Equal(t, "alice@example.com", parsed.Email)
	assert.Equal(t, tok.JTI, parsed.JTI)
	assert.WithinDuration(t, tok.Exp, parsed.Exp, time.Second)
}

func TestRefreshTokenCarriesRefreshType(t *testing.T) {
	tok, err := NewRefreshToken(testSecret, testIdentity(), 7)
	require.NoError(t, err)

	parsed, err := ParseToken(testSecret, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, parsed.Type)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken(testSecret, testIdentity(), 15*time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", tok.Value)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tok, err := NewAccessToken(testSecret, testIdentity(), -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, tok.Value)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseToken(testSecret, "not.a.jwt")
	assert.Error(t, err)
}

func TestEachTokenGetsUniqueJTI(t *testing.T) {
	a, err := NewAccessToken(testSecret, testIdentity(), time.Minute)
	require.NoError(t, err)
	b, err := NewAccessToken(testSecret, testIdentity(), time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, a.JTI, b.JTI)
}
