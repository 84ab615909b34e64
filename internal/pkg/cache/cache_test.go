package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	at time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{at: time.Date(2025, time.April, 21, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) now() time.Time { return f.at }

func (f *fakeClock) advance(d time.Duration) { f.at = f.at.Add(d) }

func TestCache_SetThenGet(t *testing.T) {
	t.Parallel()
	c := New(time.Minute, 10)

	c.Set("employeeWeek:2025-W17", 42)
	got, ok := c.Get("employeeWeek:2025-W17")
	require.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	t.Parallel()
	c := New(time.Minute, 10)

	got, ok := c.Get("nope")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_TTLExpiry(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	c := New(30*time.Minute, 10)
	c.setClock(clock.now)

	c.Set("employeeWeek:2025-W17", "payload")

	clock.advance(29 * time.Minute)
	_, ok := c.Get("employeeWeek:2025-W17")
	assert.True(t, ok, "entry must survive within TTL")

	clock.advance(2 * time.Minute)
	got, ok := c.Get("employeeWeek:2025-W17")
	assert.False(t, ok)
	assert.Nil(t, got)

	// Expired entry is gone from stats too.
	assert.NotContains(t, c.Stats().Keys, "employeeWeek:2025-W17")
	assert.Zero(t, c.Stats().Total)
}

func TestCache_EvictsLeastRecentlyAccessed(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	c := New(time.Hour, 3)
	c.setClock(clock.now)

	c.Set("k:1", 1)
	clock.advance(time.Second)
	c.Set("k:2", 2)
	clock.advance(time.Second)
	c.Set("k:3", 3)
	clock.advance(time.Second)

	// Touch the oldest-inserted key so its access time is freshest.
	_, ok := c.Get("k:1")
	require.True(t, ok)
	clock.advance(time.Second)

	// Capacity is 3, so this evicts exactly one entry: k:2, the least
	// recently accessed, not k:1, the oldest inserted.
	c.Set("k:4", 4)

	_, ok = c.Get("k:1")
	assert.True(t, ok, "recently accessed key must survive eviction")
	_, ok = c.Get("k:2")
	assert.False(t, ok, "least recently accessed key must be evicted")
	_, ok = c.Get("k:3")
	assert.True(t, ok)
	_, ok = c.Get("k:4")
	assert.True(t, ok)
}

func TestCache_UpdateExistingKeyDoesNotEvict(t *testing.T) {
	t.Parallel()
	c := New(time.Hour, 2)

	c.Set("k:1", 1)
	c.Set("k:2", 2)
	c.Set("k:1", 10) // overwrite, still 2 entries

	_, ok := c.Get("k:2")
	assert.True(t, ok)
	got, _ := c.Get("k:1")
	assert.Equal(t, 10, got)
}

func TestCache_LastWriteWins(t *testing.T) {
	t.Parallel()
	c := New(time.Hour, 10)

	c.Set("k:1", "first")
	c.Set("k:1", "second")

	got, _ := c.Get("k:1")
	assert.Equal(t, "second", got)
}

func TestCache_DeleteAndClear(t *testing.T) {
	t.Parallel()
	c := New(time.Hour, 10)

	c.Set("employeeWeek:2025-W17", 1)
	c.Set("employeeMonth:2025-M04", 2)

	c.Delete("employeeWeek:2025-W17")
	_, ok := c.Get("employeeWeek:2025-W17")
	assert.False(t, ok)

	c.Clear()
	assert.Zero(t, c.Stats().Total)
}

func TestCache_StatsByKind(t *testing.T) {
	t.Parallel()
	c := New(time.Hour, 10)

	c.Set("employeeWeek:2025-W17", 1)
	c.Set("employeeWeek:2025-W18", 2)
	c.Set("employeeMonth:2025-M04", 3)

	stats := c.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByKind["employeeWeek"])
	assert.Equal(t, 1, stats.ByKind["employeeMonth"])
	assert.Len(t, stats.Keys, 3)
}

func TestCache_FullCapacityChurn(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	c := New(time.Hour, 5)
	c.setClock(clock.now)

	for i := 0; i < 20; i++ {
		c.Set(fmt.Sprintf("k:%d", i), i)
		clock.advance(time.Second)
	}

	stats := c.Stats()
	assert.Equal(t, 5, stats.Total)
	// The five most recent keys survive.
	for i := 15; i < 20; i++ {
		_, ok := c.Get(fmt.Sprintf("k:%d", i))
		assert.True(t, ok, "k:%d", i)
	}
}
