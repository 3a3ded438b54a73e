package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dkozyrev/voicedesk/internal/logger"
)

// SessionCacheRepository caches token -> user id lookups in Redis. The
// users table stays the source of truth; callers must re-check the token
// against the user row on a cache hit, since cached entries can outlive a
// re-login until their TTL expires.
type SessionCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached sessions
}

// NewSessionCacheRepository creates a new repository instance with optional TTL
func NewSessionCacheRepository(client *redis.Client, expiration time.Duration) *SessionCacheRepository {
	return &SessionCacheRepository{
		client: client,
		exp:    expiration,
	}
}

// Get fetches the cached user id for a session token.
func (r *SessionCacheRepository) Get(ctx context.Context, token string) (uuid.UUID, error) {
	key := fmt.Sprintf("session:%s", token)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Debugw("session cache get",
			"key", key,
			"error", err,
		)
		if err == redis.Nil {
			return uuid.Nil, fmt.Errorf("session not found in cache")
		}
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		logger.Log.Debugw("session cache get",
			"key", key,
			"value", val,
			"error", err,
		)
		return uuid.Nil, err
	}

	logger.Log.Debugw("session cache get",
		"key", key,
		"result", userID,
		"error", nil,
	)

	return userID, nil
}

// Set caches a session token for a user with expiration.
func (r *SessionCacheRepository) Set(ctx context.Context, token string, userID uuid.UUID) error {
	key := fmt.Sprintf("session:%s", token)
	err := r.client.Set(ctx, key, userID.String(), r.exp).Err()

	logger.Log.Debugw("session cache set",
		"key", key,
		"user_id", userID,
		"error", err,
	)

	return err
}
