package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client     *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:     client,
		ttl:        ttl,
		retryDelay: 25 * time.Millisecond,
	}
}

// Acquire polls until the lock is free or ctx is done.
// The lock expires after ttl even if never released.
func (l *RedisLocker) Acquire(ctx context.Context, sessionID string) (ReleaseFunc, error) {
	key := lockKey(sessionID)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryDelay)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("redis setnx failed: %w", err)
		}
		if ok {
			return l.releaser(key, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, sessionID)
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) releaser(key, token string) ReleaseFunc {
	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int64()
		if err != nil {
			return fmt.Errorf("redis release failed: %w", err)
		}
		if n == 0 {
			return ErrNotOwner
		}
		return nil
	}
}

func lockKey(sessionID string) string {
	return fmt.Sprintf("cart-lock:%s", sessionID)
}
