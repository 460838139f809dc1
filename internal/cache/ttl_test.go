package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache(window time.Duration) (*Cache[string, time.Time], *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewWithClock[string, time.Time](window, clk.Now), clk
}

func TestCache_SetAndGet(t *testing.T) {
	c, clk := newTestCache(15 * time.Minute)

	expiry := clk.Now().Add(15 * time.Minute)
	c.Set("chan1", expiry)

	got, ok := c.Get("chan1")
	require.True(t, ok)
	assert.Equal(t, expiry, got)
	assert.True(t, c.Has("chan1"))
}

func TestCache_LazyExpiry(t *testing.T) {
	c, clk := newTestCache(15 * time.Minute)

	c.Set("chan1", clk.Now().Add(15*time.Minute))
	clk.Advance(15*time.Minute + time.Second)

	_, ok := c.Get("chan1")
	assert.False(t, ok)
	assert.False(t, c.Has("chan1"))
	// The stale entry was removed on read, not just hidden.
	assert.Equal(t, 0, c.Len())
}

func TestCache_FreshAtWindowBoundary(t *testing.T) {
	c, clk := newTestCache(time.Minute)

	c.Set("k", clk.Now())
	clk.Advance(time.Minute)

	// Exactly at the window the entry is still fresh; expiry requires
	// strictly more than the window to have elapsed.
	assert.True(t, c.Has("k"))
}

func TestCache_SetResetsWindow(t *testing.T) {
	c, clk := newTestCache(time.Minute)

	c.Set("k", clk.Now())
	clk.Advance(50 * time.Second)
	c.Set("k", clk.Now())
	clk.Advance(50 * time.Second)

	assert.True(t, c.Has("k"))
}

func TestCache_DeleteAndClear(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	c.Set("a", time.Time{})
	c.Set("b", time.Time{})

	c.Delete("a")
	assert.False(t, c.Has("a"))
	assert.True(t, c.Has("b"))

	c.Clear()
	assert.False(t, c.Has("b"))
	assert.Equal(t, 0, c.Len())
}

func TestCache_GetMissingReturnsZero(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	got, ok := c.Get("nope")
	assert.False(t, ok)
	assert.True(t, got.IsZero())
}
