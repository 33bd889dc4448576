package repository

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepo is the revocation store for access and refresh tokens.  Logout
// records the token's jti with a TTL matching the token's remaining
// lifetime; the JWT middleware rejects any presented token whose jti is
// found here.  Redis makes revocation survive restarts and is shared
// across instances.  When no Redis client could be constructed the repo
// falls back to a process-local set, which keeps single-node deployments
// working but is lost on restart.
type TokenRepo struct {
	rdb *redis.Client

	mu    sync.Mutex
	local map[string]time.Time // jti -> expiry, fallback only
}

func NewTokenRepo(rdb *redis.Client) *TokenRepo {
	return &TokenRepo{rdb: rdb, local: make(map[string]time.Time)}
}

const revokedKeyPrefix = "revoked:"

// Revoke blacklists a token ID until its natural expiry.  Tokens already
// past expiry need no entry at all.
func (r *TokenRepo) Revoke(ctx context.Context, jti string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	if r.rdb != nil {
		return r.rdb.SetEx(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.local[jti] = exp
	return nil
}

// IsRevoked reports whether a token ID has been blacklisted.  Store errors
// fail closed on the Redis path: an unreachable revocation store must not
// silently re-admit logged-out tokens.
func (r *TokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r.rdb != nil {
		n, err := r.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
		if err != nil {
			return true, err
		}
		return n > 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.local[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(r.local, jti)
		return false, nil
	}
	return true, nil
}
