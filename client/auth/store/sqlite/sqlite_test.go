package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/taskclient/client/auth/store"
	"github.com/viant/taskclient/client/auth/store/storetest"
)

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T, options ...store.Option) store.Store {
		aStore, err := Open(context.Background(), ":memory:", options...)
		if err != nil {
			t.Fatalf("failed to open sqlite store: %v", err)
		}
		t.Cleanup(func() { _ = aStore.Close() })
		return aStore
	})
}

func TestSQLiteStore_Persistent(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "challenges.db")

	first, err := Open(ctx, dsn)
	if !assert.NoError(t, err) {
		return
	}
	assert.NoError(t, first.Put(ctx, "PATCH", "cGF0Y2g="))
	assert.NoError(t, first.Close())

	second, err := Open(ctx, dsn)
	if !assert.NoError(t, err) {
		return
	}
	defer second.Close()
	claims, ok, err := second.Lookup(ctx, "patch")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cGF0Y2g=", claims)
}
