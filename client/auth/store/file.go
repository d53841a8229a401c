package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/viant/afs"
)

// FileStore persists challenges to a JSON document at an afs URL (local path,
// file://, mem:// or any registered storage scheme) while serving lookups from
// memory. It survives process restarts the way a browser session store survives
// page reloads.
type FileStore struct {
	mu     sync.Mutex
	URL    string
	fs     afs.Service
	memory *memoryStore
}

type fileSnapshot struct {
	Challenges []*Entry `json:"challenges"`
}

// NewFileStore creates a store persisted at URL, loading existing challenges.
func NewFileStore(ctx context.Context, URL string, options ...Option) (*FileStore, error) {
	ret := &FileStore{
		URL:    URL,
		fs:     afs.New(),
		memory: NewMemoryStore(options...).(*memoryStore),
	}
	if err := ret.load(ctx); err != nil {
		return nil, err
	}
	return ret, nil
}

func (f *FileStore) Lookup(ctx context.Context, method string) (string, bool, error) {
	return f.memory.Lookup(ctx, method)
}

func (f *FileStore) Put(ctx context.Context, method, claims string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.memory.Put(ctx, method, claims); err != nil {
		return err
	}
	return f.save(ctx)
}

func (f *FileStore) Delete(ctx context.Context, method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.memory.Delete(ctx, method); err != nil {
		return err
	}
	return f.save(ctx)
}

func (f *FileStore) List(ctx context.Context) ([]*Entry, error) {
	return f.memory.List(ctx)
}

func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.memory.Clear(ctx); err != nil {
		return err
	}
	return f.save(ctx)
}

// ---- persistence ----

func (f *FileStore) save(ctx context.Context) error {
	entries, err := f.memory.List(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(fileSnapshot{Challenges: entries}, "", "  ")
	if err != nil {
		return err
	}
	if err = f.fs.Upload(ctx, f.URL, 0o600, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save challenges to %v: %w", f.URL, err)
	}
	return nil
}

func (f *FileStore) load(ctx context.Context) error {
	exists, err := f.fs.Exists(ctx, f.URL)
	if err != nil {
		return fmt.Errorf("failed to check %v: %w", f.URL, err)
	}
	if !exists {
		return nil
	}
	data, err := f.fs.DownloadWithURL(ctx, f.URL)
	if err != nil {
		return fmt.Errorf("failed to load challenges from %v: %w", f.URL, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	var snapshot fileSnapshot
	if err = json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("invalid challenge file %v: %w", f.URL, err)
	}
	for _, entry := range snapshot.Challenges {
		if entry == nil || entry.Method == "" {
			continue
		}
		entry.Method = Key(entry.Method)
		f.memory.entries.Put(entry.Method, entry)
	}
	return nil
}
