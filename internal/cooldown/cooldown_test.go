package cooldown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore_Window(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	s := NewMemoryStore().WithClock(clock.Now)
	defer s.Close()
	ctx := context.Background()

	_, ok, err := s.Acquire(ctx, "u1", DefaultWindow)
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(10 * time.Second)
	left, ok, err := s.Acquire(ctx, "u1", DefaultWindow)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 20*time.Second, left)

	// Other requesters are independent.
	_, ok, _ = s.Acquire(ctx, "u2", DefaultWindow)
	assert.True(t, ok)

	clock.Advance(20 * time.Second)
	_, ok, err = s.Acquire(ctx, "u1", DefaultWindow)
	require.NoError(t, err)
	assert.True(t, ok, "window over, lazily expired")
}

func TestMemoryStore_TimerRemovesEntry(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	_, ok, err := s.Acquire(context.Background(), "u1", 20*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, s.Len())

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestGuard(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := NewMemoryStore().WithClock(clock.Now)
	defer store.Close()
	g := NewGuard(store, 0, []string{"admin"}, zerolog.Nop())
	ctx := context.Background()

	assert.Equal(t, DefaultWindow, g.Window)

	_, ok := g.Check(ctx, "u1")
	assert.True(t, ok)

	clock.Advance(time.Second)
	left, ok := g.Check(ctx, "u1")
	assert.False(t, ok)
	assert.Greater(t, left, time.Duration(0))
	assert.Equal(t, 29, Seconds(left))

	clock.Advance(30 * time.Second)
	_, ok = g.Check(ctx, "u1")
	assert.True(t, ok)

	for i := 0; i < 3; i++ {
		_, ok = g.Check(ctx, "admin")
		assert.True(t, ok, "admin is exempt")
	}
	assert.Equal(t, 1, store.Len(), "admin never enters the store")
}

type brokenStore struct{}

func (brokenStore) Acquire(context.Context, string, time.Duration) (time.Duration, bool, error) {
	return 0, false, errors.New("store down")
}

func TestGuard_FailsOpen(t *testing.T) {
	g := NewGuard(brokenStore{}, time.Minute, nil, zerolog.Nop())
	_, ok := g.Check(context.Background(), "u1")
	assert.True(t, ok)
}

func TestGuard_RedisUnavailableFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	g := NewGuard(NewRedisStore(client, ""), time.Minute, nil, zerolog.Nop())
	_, ok := g.Check(context.Background(), "u1")
	assert.True(t, ok)
}

func TestWaitError(t *testing.T) {
	err := fmt.Errorf("manual trigger: %w", &WaitError{Remaining: 1500 * time.Millisecond})
	assert.ErrorIs(t, err, ErrCooldown)

	left, ok := Remaining(err)
	assert.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, left)
	assert.Contains(t, err.Error(), "retry in 2s")

	_, ok = Remaining(errors.New("other"))
	assert.False(t, ok)

	assert.Equal(t, 0, Seconds(-time.Second))
	assert.Equal(t, 30, Seconds(DefaultWindow))
}
