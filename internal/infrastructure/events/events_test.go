package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waste3d/codelearn/internal/logging"
)

type publisher interface {
	Publish(ctx context.Context, e Event) error
	Subscribe(ctx context.Context) (*Subscription, error)
}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case e, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func testBus(t *testing.T, bus publisher) {
	ctx := context.Background()
	sub, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	userID := uuid.New()
	require.NoError(t, bus.Publish(ctx, New(SignedIn, userID, "sid-1")))

	e := receive(t, sub)
	assert.Equal(t, SignedIn, e.Kind)
	assert.Equal(t, userID, e.UserID)
	assert.Equal(t, "sid-1", e.SessionID)

	sub.Close()
	_, ok := <-sub.C
	assert.False(t, ok)

	sub.Close()
}

func TestLocalBus(t *testing.T) {
	testBus(t, NewLocalBus())
}

func TestRedisBus(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	testBus(t, NewRedisBus(client, logging.Discard()))
}

func TestLocalBus_ContextCancelClosesSubscription(t *testing.T) {
	bus := NewLocalBus()
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed after cancel")
	}
	require.NoError(t, bus.Publish(context.Background(), New(SignedOut, uuid.New(), "")))
}

func TestLocalBus_FanOut(t *testing.T) {
	bus := NewLocalBus()
	ctx := context.Background()
	a, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	defer a.Close()
	b, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, bus.Publish(ctx, New(ProfileChanged, uuid.New(), "")))
	assert.Equal(t, ProfileChanged, receive(t, a).Kind)
	assert.Equal(t, ProfileChanged, receive(t, b).Kind)
}
