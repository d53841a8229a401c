package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/taskclient/client/auth/store"
	"github.com/viant/taskclient/client/auth/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T, options ...store.Option) store.Store {
		return store.NewMemoryStore(options...)
	})
}

func TestMemoryStore_ExpiredLookupKeepsNewerEntry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	var aStore store.Store
	var interleave bool
	clock := func() time.Time {
		if interleave {
			interleave = false
			require.NoError(t, aStore.Put(ctx, "POST", "fresh"))
		}
		return now
	}
	aStore = store.NewMemoryStore(store.WithMaxAge(time.Minute), store.WithClock(clock))
	require.NoError(t, aStore.Put(ctx, "POST", "stale"))

	now = now.Add(2 * time.Minute)
	interleave = true
	_, ok, err := aStore.Lookup(ctx, "POST")
	require.NoError(t, err)
	assert.False(t, ok)

	claims, ok, err := aStore.Lookup(ctx, "POST")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fresh", claims)
}

func TestFileStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T, options ...store.Option) store.Store {
		aStore, err := store.NewFileStore(context.Background(), filepath.Join(t.TempDir(), "challenges.json"), options...)
		if err != nil {
			t.Fatalf("failed to create file store: %v", err)
		}
		return aStore
	})
}

func TestFileStore_Reload(t *testing.T) {
	ctx := context.Background()
	location := filepath.Join(t.TempDir(), "challenges.json")

	first, err := store.NewFileStore(ctx, location)
	if !assert.NoError(t, err) {
		return
	}
	assert.NoError(t, first.Put(ctx, "put", "eyJhYmMiOnRydWV9"))
	assert.NoError(t, first.Put(ctx, "DELETE", "ZGVs"))
	assert.NoError(t, first.Delete(ctx, "DELETE"))

	second, err := store.NewFileStore(ctx, location)
	if !assert.NoError(t, err) {
		return
	}
	claims, ok, err := second.Lookup(ctx, "PUT")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "eyJhYmMiOnRydWV9", claims)
	_, ok, _ = second.Lookup(ctx, "DELETE")
	assert.False(t, ok)
}

func TestFileStore_Invalid(t *testing.T) {
	location := filepath.Join(t.TempDir(), "challenges.json")
	assert.NoError(t, os.WriteFile(location, []byte("{not json"), 0o600))
	_, err := store.NewFileStore(context.Background(), location)
	assert.Error(t, err)
}
