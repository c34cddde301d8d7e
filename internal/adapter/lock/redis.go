package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lease never removes a lock taken over by another writer.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

type RedisLocker struct {
	client        *redis.Client
	retryInterval time.Duration
	maxWait       time.Duration
	newToken      func() string
}

func NewRedisLocker(client *redis.Client, maxWait time.Duration) *RedisLocker {
	return &RedisLocker{
		client:        client,
		retryInterval: 50 * time.Millisecond,
		maxWait:       maxWait,
		newToken:      uuid.NewString,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ports.Lease, error) {
	token := l.newToken()
	deadline := time.Now().Add(l.maxWait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}

		if ok {
			return &redisLease{client: l.client, key: key, token: token}, nil
		}

		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: %s", domain.ErrLockNotAcquired, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryInterval):
		}
	}
}

type redisLease struct {
	client *redis.Client
	key    string
	token  string
}

func (l *redisLease) Release(ctx context.Context) error {
	if err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.key, err)
	}

	return nil
}
