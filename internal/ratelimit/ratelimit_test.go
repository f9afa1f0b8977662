package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// exercise runs the shared sliding-window scenario against any limiter.
func exercise(t *testing.T, l Limiter, c *clock) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := l.Allow(ctx, "guest_a")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
		c.advance(time.Second)
	}

	ok, err := l.Allow(ctx, "guest_a")
	require.NoError(t, err)
	assert.False(t, ok, "sixth request inside the window")

	ok, err = l.Allow(ctx, "guest_b")
	require.NoError(t, err)
	assert.True(t, ok, "other sessions are unaffected")

	// First request was at +0s; at +60s it has left the window.
	c.advance(55 * time.Second)
	ok, err = l.Allow(ctx, "guest_a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "guest_a")
	require.NoError(t, err)
	assert.False(t, ok, "window is full again")
}

func TestMemory_SlidingWindow(t *testing.T) {
	c := newClock()
	exercise(t, NewMemory(DefaultPolicy, c.now), c)
}

func TestMemory_RejectedRequestsAreNotRecorded(t *testing.T) {
	c := newClock()
	m := NewMemory(Policy{Max: 1, Window: 10 * time.Second}, c.now)
	ctx := context.Background()

	ok, _ := m.Allow(ctx, "k")
	assert.True(t, ok)
	for i := 0; i < 3; i++ {
		c.advance(3 * time.Second)
		ok, _ = m.Allow(ctx, "k")
		assert.False(t, ok)
	}
	c.advance(time.Second)
	ok, _ = m.Allow(ctx, "k")
	assert.True(t, ok)
}

func TestMemory_Prune(t *testing.T) {
	c := newClock()
	m := NewMemory(DefaultPolicy, c.now)
	ctx := context.Background()

	_, _ = m.Allow(ctx, "old")
	c.advance(30 * time.Second)
	_, _ = m.Allow(ctx, "recent")
	c.advance(45 * time.Second)

	assert.Equal(t, 1, m.Prune())
	assert.Equal(t, 1, m.Len())
}

func TestPolicyDefaults(t *testing.T) {
	p := Policy{}.normalized()
	assert.Equal(t, DefaultPolicy, p)
}

func TestRedis_SlidingWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := newClock()
	exercise(t, NewRedis(rdb, DefaultPolicy, c.now), c)
}

func TestRedis_BackendDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	_, err := NewRedis(rdb, DefaultPolicy, nil).Allow(context.Background(), "guest_a")
	assert.Error(t, err)
}
