// Package storetest holds the behaviour every claims challenge store must share.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/taskclient/client/auth/store"
)

// Factory creates an empty store configured with options.
type Factory func(t *testing.T, options ...store.Option) store.Store

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock { return &Clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Run exercises a store implementation.
func Run(t *testing.T, factory Factory) {
	t.Run("PutLookup", func(t *testing.T) { testPutLookup(t, factory) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, factory) })
	t.Run("DeleteClear", func(t *testing.T) { testDeleteClear(t, factory) })
	t.Run("MaxAge", func(t *testing.T) { testMaxAge(t, factory) })
}

func testPutLookup(t *testing.T, factory Factory) {
	ctx := context.Background()
	aStore := factory(t)

	_, ok, err := aStore.Lookup(ctx, "PUT")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, aStore.Put(ctx, "PUT", "eyJhYmMiOnRydWV9"))
	claims, ok, err := aStore.Lookup(ctx, "PUT")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "eyJhYmMiOnRydWV9", claims)

	claims, ok, err = aStore.Lookup(ctx, "put")
	assert.NoError(t, err)
	assert.True(t, ok, "method lookup is case-insensitive")
	assert.Equal(t, "eyJhYmMiOnRydWV9", claims)

	_, ok, err = aStore.Lookup(ctx, "GET")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func testOverwrite(t *testing.T, factory Factory) {
	ctx := context.Background()
	aStore := factory(t)
	assert.NoError(t, aStore.Put(ctx, "POST", "Zmlyc3Q="))
	assert.NoError(t, aStore.Put(ctx, "POST", "c2Vjb25k"))
	claims, ok, err := aStore.Lookup(ctx, "POST")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c2Vjb25k", claims)

	entries, err := aStore.List(ctx)
	assert.NoError(t, err)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "POST", entries[0].Method)
		assert.Equal(t, "c2Vjb25k", entries[0].Claims)
	}
}

func testDeleteClear(t *testing.T, factory Factory) {
	ctx := context.Background()
	aStore := factory(t)
	assert.NoError(t, aStore.Put(ctx, "DELETE", "ZGVs"))
	assert.NoError(t, aStore.Put(ctx, "PATCH", "cGF0"))
	assert.NoError(t, aStore.Put(ctx, "POST", "cG9z"))

	assert.NoError(t, aStore.Delete(ctx, "DELETE"))
	_, ok, err := aStore.Lookup(ctx, "DELETE")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, aStore.Delete(ctx, "DELETE"), "deleting a missing entry is not an error")

	entries, err := aStore.List(ctx)
	assert.NoError(t, err)
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "PATCH", entries[0].Method)
		assert.Equal(t, "POST", entries[1].Method)
	}

	assert.NoError(t, aStore.Clear(ctx))
	entries, err = aStore.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func testMaxAge(t *testing.T, factory Factory) {
	ctx := context.Background()
	clock := NewClock()
	aStore := factory(t, store.WithMaxAge(time.Minute), store.WithClock(clock.Now))
	assert.NoError(t, aStore.Put(ctx, "PUT", "cHV0"))

	clock.Advance(30 * time.Second)
	_, ok, err := aStore.Lookup(ctx, "PUT")
	assert.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(time.Minute)
	_, ok, err = aStore.Lookup(ctx, "PUT")
	assert.NoError(t, err)
	assert.False(t, ok)
	entries, err := aStore.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
