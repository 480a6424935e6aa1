package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowFallsBackToWallClock(t *testing.T) {
	before := time.Now()
	got := Now(context.Background())
	assert.False(t, got.Before(before))
}

func TestWithTime(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := WithTime(context.Background(), fixed)
	assert.Equal(t, fixed, Now(ctx))
}

func TestClientMetadata(t *testing.T) {
	ctx := WithClientMetadata(context.Background(), "10.0.0.1", "curl/8.0", "curl")
	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
	assert.Equal(t, "curl/8.0", UserAgent(ctx))
	assert.Equal(t, "curl", Device(ctx))
	assert.Empty(t, RequestID(ctx))
}

func TestOperator(t *testing.T) {
	_, ok := CurrentOperator(context.Background())
	assert.False(t, ok)

	ctx := WithOperator(context.Background(), Operator{ID: "u-1", Email: "ops@example.com"})
	op, ok := CurrentOperator(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u-1", op.ID)
}
