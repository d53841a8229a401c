// Package redis provides a Redis-backed claims challenge store, shared by every
// client process pointing at the same Redis database.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/viant/taskclient/client/auth/store"
)

// DefaultKeyPrefix prefixes every challenge key.
const DefaultKeyPrefix = "taskclient:claims:"

// Config for a Redis-backed store; fields can be overridden from the environment with envdecode.
type Config struct {
	// Addr like "localhost:6379" (default).
	Addr string `env:"TASKS_REDIS_ADDR" long:"addr" description:"redis address" yaml:"addr,omitempty" json:"addr,omitempty"`
	// DB selects the Redis database. ENV: TASKS_REDIS_DB
	DB int `env:"TASKS_REDIS_DB" long:"db" description:"redis database" yaml:"db,omitempty" json:"db,omitempty"`
	// KeyPrefix for all keys. ENV: TASKS_REDIS_KEY_PREFIX
	KeyPrefix string `env:"TASKS_REDIS_KEY_PREFIX" long:"key-prefix" description:"redis key prefix" yaml:"keyPrefix,omitempty" json:"keyPrefix,omitempty"`
}

// Store keeps one JSON encoded store.Entry per method key.
type Store struct {
	client    *redis.Client
	keyPrefix string
	options   *store.Options
}

// New creates a store using an existing client.
func New(client *redis.Client, keyPrefix string, options ...store.Option) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Store{client: client, keyPrefix: keyPrefix, options: store.NewOptions(options)}, nil
}

// Open connects to Redis described by cfg and verifies the connection.
func Open(ctx context.Context, cfg Config, options ...store.Option) (*Store, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: cfg.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(client, cfg.KeyPrefix, options...)
}

// Close closes the Redis client.
func (s *Store) Close() error { return s.client.Close() }

func (s *Store) key(method string) string { return s.keyPrefix + store.Key(method) }

func (s *Store) Lookup(ctx context.Context, method string) (string, bool, error) {
	entry, err := s.get(ctx, s.key(method))
	if err != nil || entry == nil {
		return "", false, err
	}
	return entry.Claims, true, nil
}

func (s *Store) Put(ctx context.Context, method, claims string) error {
	key := store.Key(method)
	data, err := json.Marshal(&store.Entry{Method: key, Claims: claims, Created: s.options.Now()})
	if err != nil {
		return err
	}
	// Redis expiry runs on the server clock; the entry stamp is still checked on read.
	if err = s.client.Set(ctx, s.key(method), data, s.options.MaxAge()).Err(); err != nil {
		return fmt.Errorf("failed to store challenge for %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, method string) error {
	if err := s.client.Del(ctx, s.key(method)).Err(); err != nil {
		return fmt.Errorf("failed to delete challenge for %s: %w", store.Key(method), err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*store.Entry, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}
	var result []*store.Entry
	for _, key := range keys {
		entry, err := s.get(ctx, key)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			result = append(result, entry)
		}
	}
	store.SortEntries(result)
	return result, nil
}

func (s *Store) Clear(ctx context.Context) error {
	keys, err := s.keys(ctx)
	if err != nil || len(keys) == 0 {
		return err
	}
	if err = s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear challenges: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (*store.Entry, error) {
	result := s.client.Get(ctx, key)
	if err := result.Err(); err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	entry := &store.Entry{}
	if err := json.Unmarshal([]byte(result.Val()), entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge %s: %w", key, err)
	}
	if s.options.Expired(entry.Created) {
		return nil, nil
	}
	return entry, nil
}

func (s *Store) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan challenges: %w", err)
	}
	return keys, nil
}
