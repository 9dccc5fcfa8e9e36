package cache

import (
	"context"
	"sync"
	"testing"
	"time"

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
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return NewMemoryStoreWithClock(clock.Now), clock
}

func TestMemoryStoreGetSetExpiry(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	clock.Advance(time.Minute)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStoreSetNX(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore()

	ok, err := store.SetNX(ctx, "lock", []byte("a"), time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.SetNX(ctx, "lock", []byte("b"), time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	clock.Advance(2 * time.Second)
	ok, err = store.SetNX(ctx, "lock", []byte("c"), time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	got, _ := store.Get(ctx, "lock")
	assert.Equal(t, "c", string(got))
}

func TestMemoryStoreIncrWindow(t *testing.T) {
	ctx := context.Background()
	store, clock := newTestStore()

	for want := int64(1); want <= 3; want++ {
		n, err := store.Incr(ctx, "attempts", 10*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	// окно считается от первого инкремента, а не продлевается
	clock.Advance(9 * time.Minute)
	n, err := store.Incr(ctx, "attempts", 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	clock.Advance(time.Minute)
	n, err = store.Incr(ctx, "attempts", 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStoreConcurrentIncr(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Incr(ctx, "n", 0)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, "50", string(got))
}

func TestMemoryStoreDeleteAndCopy(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	value := []byte("orig")
	require.NoError(t, store.Set(ctx, "k", value, 0))
	value[0] = 'X'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "orig", string(got))

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}
