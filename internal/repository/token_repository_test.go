package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The Redis path needs a live server; these tests cover the process-local
// fallback used when no Redis client could be constructed.

func TestTokenRepoLocalRevoke(t *testing.T) {
	repo := NewTokenRepo(nil)
	ctx := context.Background()

	revoked, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// other token ids are unaffected
	revoked, err = repo.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenRepoSkipsExpiredTokens(t *testing.T) {
	repo := NewTokenRepo(nil)
	ctx := context.Background()

	// a token past its expiry needs no blacklist entry
	require.NoError(t, repo.Revoke(ctx, "stale", time.Now().Add(-time.Minute)))

	revoked, err := repo.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenRepoLocalEntriesExpire(t *testing.T) {
	repo := NewTokenRepo(nil)
	ctx := context.Background()

	require.NoError(t, repo.Revoke(ctx, "short", time.Now().Add(30*time.Millisecond)))

	revoked, err := repo.IsRevoked(ctx, "short")
	require.NoError(t, err)
	assert.True(t, revoked)

	time.Sleep(50 * time.Millisecond)

	revoked, err = repo.IsRevoked(ctx, "short")
	require.NoError(t, err)
	assert.False(t, revoked)
}
