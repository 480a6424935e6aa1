package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "superadmin/pkg/platform/audit"
	"superadmin/pkg/platform/audit/store/memory"
	"superadmin/pkg/requestcontext"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		ActorID: "op-1",
		Action:  string(audit.EventLoginSucceeded),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventLoginSucceeded), events[0].Action)
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{
			ActorID: "op-1",
			Action:  string(audit.EventSettingUpdated),
		}))
	}

	pub.Close()
	pub.Close()

	events, err := store.ListByActor(context.Background(), "op-1")
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

type blockingStore struct {
	release chan struct{}
}

func (b *blockingStore) Append(context.Context, audit.Event) error {
	<-b.release
	return nil
}

func TestPublisher_BufferFull(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	pub := NewPublisher(store, WithAsyncBuffer(1))

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- pub.Emit(context.Background(), audit.Event{Action: "x"})
		}()
	}
	wg.Wait()
	close(errs)
	close(store.release)
	pub.Close()

	var full int
	for err := range errs {
		if errors.Is(err, ErrBufferFull) {
			full++
		}
	}
	assert.Positive(t, full, "at least one event should be rejected")
}

func TestPublisher_StampsTimestampAndRequestMetadata(t *testing.T) {
	store := memory.NewInMemoryStore()
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	pub := NewPublisher(store, WithClock(func() time.Time { return fixed }))
	defer pub.Close()

	ctx := requestcontext.WithRequestID(context.Background(), "req-42")
	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.1", "curl/8", "Unknown device")
	require.NoError(t, pub.Emit(ctx, audit.Event{Action: string(audit.EventLoggedOut)}))

	events, err := pub.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.Equal(t, "10.0.0.1", events[0].IP)
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Action:    string(audit.EventUserDeleted),
		Timestamp: customTime,
	}))

	events, err := pub.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}
