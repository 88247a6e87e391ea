package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanLockKey = "rentwatch:scan:lock"

// RedisStore provides the cross-process scan lock. The scheduled trigger and
// on-demand triggers share it so no two scan batches ever interleave, even
// across replicas.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// AcquireScanLock takes the batch lock with a TTL guarding against a crashed
// holder. Returns false when another batch holds it.
func (s *RedisStore) AcquireScanLock(ctx context.Context, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, scanLockKey, "1", ttl).Result()
}

// ReleaseScanLock drops the batch lock.
func (s *RedisStore) ReleaseScanLock(ctx context.Context) error {
	return s.client.Del(ctx, scanLockKey).Err()
}
