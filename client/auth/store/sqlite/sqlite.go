// Package sqlite provides a SQLite-backed claims challenge store using the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/viant/taskclient/client/auth/store"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS claims_challenge (
	method  TEXT PRIMARY KEY,
	claims  TEXT NOT NULL,
	created INTEGER NOT NULL
)`

type Store struct {
	db      *sql.DB
	options *store.Options
}

// Open opens (creating when needed) the database at dsn, e.g. "file:challenges.db".
func Open(ctx context.Context, dsn string, options ...store.Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases consistent
	db.SetMaxOpenConns(1)
	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create claims_challenge table: %w", err)
	}
	return &Store{db: db, options: store.NewOptions(options)}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Lookup(ctx context.Context, method string) (string, bool, error) {
	var claims string
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT claims, created FROM claims_challenge WHERE method = ?`, store.Key(method)).Scan(&claims, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to lookup challenge for %s: %w", store.Key(method), err)
	}
	if s.options.Expired(time.Unix(0, created)) {
		return "", false, nil
	}
	return claims, true, nil
}

func (s *Store) Put(ctx context.Context, method, claims string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO claims_challenge (method, claims, created) VALUES (?, ?, ?)
		ON CONFLICT(method) DO UPDATE SET claims = excluded.claims, created = excluded.created`,
		store.Key(method), claims, s.options.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to store challenge for %s: %w", store.Key(method), err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, method string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM claims_challenge WHERE method = ?`, store.Key(method)); err != nil {
		return fmt.Errorf("failed to delete challenge for %s: %w", store.Key(method), err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*store.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT method, claims, created FROM claims_challenge ORDER BY method`)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()
	var result []*store.Entry
	for rows.Next() {
		var created int64
		entry := &store.Entry{}
		if err = rows.Scan(&entry.Method, &entry.Claims, &created); err != nil {
			return nil, err
		}
		entry.Created = time.Unix(0, created)
		if !s.options.Expired(entry.Created) {
			result = append(result, entry)
		}
	}
	return result, rows.Err()
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM claims_challenge`); err != nil {
		return fmt.Errorf("failed to clear challenges: %w", err)
	}
	return nil
}
