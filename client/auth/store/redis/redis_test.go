package redis

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/viant/taskclient/client/auth/store"
	"github.com/viant/taskclient/client/auth/store/storetest"
)

func TestRedisStore(t *testing.T) {
	// Skip test if Redis is not available
	client := redis.NewClient(&redis.Options{
		Addr: "127.0.0.1:6379",
		DB:   3,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer client.Close()

	storetest.Run(t, func(t *testing.T, options ...store.Option) store.Store {
		aStore, err := New(client, "taskclient:test:"+t.Name()+":", options...)
		if err != nil {
			t.Fatalf("failed to create redis store: %v", err)
		}
		if err = aStore.Clear(ctx); err != nil {
			t.Fatalf("failed to clear redis store: %v", err)
		}
		t.Cleanup(func() { _ = aStore.Clear(ctx) })
		return aStore
	})
}

func TestNew_RequiresClient(t *testing.T) {
	if _, err := New(nil, ""); err == nil {
		t.Fatal("expected error for nil client")
	}
}
