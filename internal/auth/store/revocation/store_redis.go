package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var isRevokedDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "superadmin_is_token_revoked_duration_ms",
	Help:    "Latency of forced-logout revocation checks in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

const revokedKeyPrefix = "portal:revoked:"

// RedisStore shares forced-logout state across portal instances, so a token
// revoked on one replica is rejected by all of them.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Revoke marks key revoked until ttl elapses.
func (s *RedisStore) Revoke(ctx context.Context, key string, ttl time.Duration) error {
	if key == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	return s.client.Set(ctx, revokedKeyPrefix+key, "1", ttl).Err()
}

// IsRevoked returns false once the key has expired.
func (s *RedisStore) IsRevoked(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	defer func() {
		isRevokedDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if key == "" {
		return false, nil
	}
	err := s.client.Get(ctx, revokedKeyPrefix+key).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
