package cache

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysphere/internal/core"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newClockedCache[T any](size int, ttl time.Duration) (*LRUCache[T], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[T](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache[string](3, time.Hour)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")
	c.Set("key4", "value4")

	_, found := c.Get("key1")
	assert.False(t, found, "key1 should have been evicted")
	for _, key := range []string{"key2", "key3", "key4"} {
		_, found := c.Get(key)
		assert.True(t, found, key)
	}
	assert.Equal(t, 3, c.Size())
}

func TestLRUCache_AccessRefreshesRecency(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)

	_, _ = c.Get("a")
	c.Set("c", 3)

	_, found := c.Get("b")
	assert.False(t, found, "b was least recently used")
	v, found := c.Get("a")
	assert.True(t, found)
	assert.Equal(t, 1, v)
}

func TestLRUCache_TTL(t *testing.T) {
	c, clock := newClockedCache[string](10, time.Minute)
	c.Set("k", "v")

	clock.advance(59 * time.Second)
	_, found := c.Get("k")
	assert.True(t, found)

	clock.advance(2 * time.Second)
	_, found = c.Get("k")
	assert.False(t, found)
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_NoTTL(t *testing.T) {
	c, clock := newClockedCache[string](10, 0)
	c.Set("k", "v")
	clock.advance(24 * time.Hour)

	_, found := c.Get("k")
	assert.True(t, found)
	assert.Equal(t, 0, c.CleanExpired())
}

func TestLRUCache_CleanExpired(t *testing.T) {
	c, clock := newClockedCache[int](10, time.Minute)
	c.Set("old1", 1)
	c.Set("old2", 2)
	clock.advance(30 * time.Second)
	c.Set("fresh", 3)
	clock.advance(45 * time.Second)

	assert.Equal(t, 2, c.CleanExpired())
	assert.Equal(t, 1, c.Size())
}

func TestLRUCache_DeletePrefix(t *testing.T) {
	c := NewLRUCache[any](10, time.Hour)
	c.Set(Key(core.KindExpense, "summary", nil), 1)
	c.Set(Key(core.KindExpense, "stats", nil), 2)
	c.Set(Key(core.KindWholesale, "stats", nil), 3)

	assert.Equal(t, 2, Invalidate(c, core.KindExpense))
	assert.Equal(t, 1, c.Size())
	_, found := c.Get(Key(core.KindWholesale, "stats", nil))
	assert.True(t, found)
}

func TestKey(t *testing.T) {
	a := Key(core.KindBodyWeight, "trends", url.Values{"limit": {"3"}, "period": {"monthly"}})
	b := Key(core.KindBodyWeight, "trends", url.Values{"period": {"monthly"}, "limit": {"3"}})
	assert.Equal(t, a, b)
	assert.Equal(t, "body_weight:trends?limit=3&period=monthly", a)
	assert.Equal(t, "expense:stats", Key(core.KindExpense, "stats", url.Values{}))
}

func TestMemoize(t *testing.T) {
	c := NewLRUCache[any](10, time.Hour)
	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := Memoize(c, "expense:stats", load)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err := Memoize(c, "expense:other", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	_, found := c.Get("expense:other")
	assert.False(t, found, "errors are not cached")

	v, err := Memoize[int](nil, "anything", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}

func TestManager_StopIsIdempotent(t *testing.T) {
	m := NewManager()
	m.Register(NewLRUCache[int](1, time.Millisecond))
	m.StartCleanup(time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	m.Stop()
	m.Stop()

	NewManager().Stop()
}
