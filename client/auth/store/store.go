package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/viant/taskclient/internal/collection"
)

// Entry is a claims challenge stored for an HTTP method.
type Entry struct {
	Method string `json:"method"`
	// Claims is the challenge as transmitted by the server (base64).
	Claims  string    `json:"claims"`
	Created time.Time `json:"created"`
}

// Store is a pluggable persistence layer for claims challenges.
// The in-memory default is fine for a single process; use the file, redis or
// sqlite stores to share challenges across processes.
type Store interface {
	// Lookup returns the raw claims challenge stored for method.
	Lookup(ctx context.Context, method string) (string, bool, error)
	// Put stores claims for method, replacing any previous challenge.
	Put(ctx context.Context, method, claims string) error
	// Delete removes the challenge stored for method.
	Delete(ctx context.Context, method string) error
	// List returns all live entries ordered by method.
	List(ctx context.Context) ([]*Entry, error)
	// Clear removes all challenges.
	Clear(ctx context.Context) error
}

// Key normalizes a method name into a store key.
func Key(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

// SortEntries orders entries by method.
func SortEntries(entries []*Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Method < entries[j].Method })
}

type memoryStore struct {
	options *Options
	entries *collection.SyncMap[string, *Entry]
}

func (m *memoryStore) Lookup(_ context.Context, method string) (string, bool, error) {
	entry, ok := m.entries.Get(Key(method))
	if !ok {
		return "", false, nil
	}
	if m.options.Expired(entry.Created) {
		m.entries.DeleteIf(entry.Method, func(current *Entry) bool { return current == entry })
		return "", false, nil
	}
	return entry.Claims, true, nil
}

func (m *memoryStore) Put(_ context.Context, method, claims string) error {
	key := Key(method)
	m.entries.Put(key, &Entry{Method: key, Claims: claims, Created: m.options.Now()})
	return nil
}

func (m *memoryStore) Delete(_ context.Context, method string) error {
	m.entries.Delete(Key(method))
	return nil
}

func (m *memoryStore) List(_ context.Context) ([]*Entry, error) {
	var result []*Entry
	m.entries.Range(func(_ string, entry *Entry) bool {
		if !m.options.Expired(entry.Created) {
			result = append(result, entry)
		}
		return true
	})
	SortEntries(result)
	return result, nil
}

func (m *memoryStore) Clear(_ context.Context) error {
	m.entries.Clear()
	return nil
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(options ...Option) Store {
	return &memoryStore{
		options: NewOptions(options),
		entries: collection.NewSyncMap[string, *Entry](),
	}
}
