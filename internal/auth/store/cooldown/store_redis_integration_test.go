//go:build integration

package cooldown_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"superadmin/internal/auth/store/cooldown"
	"superadmin/pkg/testutil/containers"
)

type RedisCooldownSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *cooldown.RedisStore
}

func TestRedisCooldownSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCooldownSuite))
}

func (s *RedisCooldownSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = cooldown.NewRedis(s.redis.Client)
}

func (s *RedisCooldownSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCooldownSuite) TestAcquireIsExclusive() {
	ctx := context.Background()

	started, _, err := s.store.Acquire(ctx, "challenge", 60*time.Second)
	s.Require().NoError(err)
	s.True(started)

	started, left, err := s.store.Acquire(ctx, "challenge", 60*time.Second)
	s.Require().NoError(err)
	s.False(started)
	s.Greater(left, 55*time.Second)
	s.LessOrEqual(left, 60*time.Second)
}

func (s *RedisCooldownSuite) TestReleaseAllowsImmediateResend() {
	ctx := context.Background()

	_, _, err := s.store.Acquire(ctx, "challenge", 60*time.Second)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Release(ctx, "challenge"))

	left, err := s.store.Remaining(ctx, "challenge")
	s.Require().NoError(err)
	s.Zero(left)
}
