package cooldown

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "portal:2fa:cooldown:"

// RedisStore keeps cooldown windows in Redis so every portal replica
// enforces the same resend window.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Acquire(ctx context.Context, key string, d time.Duration) (bool, time.Duration, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, "1", d).Result()
	if err != nil {
		return false, 0, err
	}
	if ok {
		return true, 0, nil
	}
	left, err := s.Remaining(ctx, key)
	return false, left, err
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

// Remaining maps TTL's negative sentinels (-2 missing, -1 no expiry) to zero.
func (s *RedisStore) Remaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, keyPrefix+key).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
