// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package storage persists the portal's browser storage: a key/value store
// with a session scope (cleared when the browser session ends) and a local
// scope (kept across sessions). Every reader and writer goes through the
// typed keys in keys.go. Writes are last-write-wins.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/lispendens/pkg/types"
)

// ErrMalformed is returned by GetJSON when a stored value does not decode.
var ErrMalformed = errors.New("storage: malformed value")

// KV is the key/value contract consumed by the flow components.
type KV interface {
	Get(ctx context.Context, key Key) (string, bool, error)
	Set(ctx context.Context, key Key, value string) error
	Remove(ctx context.Context, key Key) error
}

// Store is the SQLite-backed KV.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the storage database at cfg.Path.
func Open(cfg types.StorageConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("storage path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		scope TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (scope, key)
	)`)
	return err
}

// Get returns the value stored under key and whether it exists.
func (s *Store) Get(ctx context.Context, key Key) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM entries WHERE scope = ? AND key = ?`,
		string(key.Scope()), string(key),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key Key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(scope, key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		string(key.Scope()), string(key), value, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Store) Remove(ctx context.Context, key Key) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE scope = ? AND key = ?`,
		string(key.Scope()), string(key),
	)
	if err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// ClearScope removes every entry in scope. Clearing ScopeSession ends the
// browser session.
func (s *Store) ClearScope(ctx context.Context, scope Scope) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE scope = ?`, string(scope)); err != nil {
		return fmt.Errorf("clearing %s storage: %w", scope, err)
	}
	return nil
}

// Entry is one stored key with its last write time.
type Entry struct {
	Scope     Scope  `json:"scope"`
	Key       Key    `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

// Entries lists all stored entries ordered by scope and key.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT scope, key, value, updated_at FROM entries ORDER BY scope, key`)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var scope, key string
		if err := rows.Scan(&scope, &key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Scope = Scope(scope)
		e.Key = Key(key)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetJSON decodes the value under key into v. It reports false when the key
// is absent and ErrMalformed when the value does not decode.
func GetJSON(ctx context.Context, kv KV, key Key, v any) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrMalformed, key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, kv KV, key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return kv.Set(ctx, key, string(data))
}
