// Package client is the client-side backing store: the ephemeral
// url->endpoint memoization table consulted by the local cache lookup
// (internal/client), and the stacks table of registered
// content-rendering plugins.
package client

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/jroosing/wireweb/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite connection holding the ephemeral and stacks
// tables. Writes are single-writer per process under the shared-resource
// policy; mu serializes them alongside the SQLite driver's own locking.
type Store struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// Open opens or creates the client store at path, applying migrations.
func Open(path string) (*Store, error) {
	conn, err := store.Open(path, migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Reset drops and recreates the ephemeral and stacks tables, backing the
// --overwrite bootstrap flag.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn.Exec(`DROP TABLE IF EXISTS stacks`); err != nil {
		return fmt.Errorf("drop stacks: %w", err)
	}
	if _, err := s.conn.Exec(`DROP TABLE IF EXISTS ephemeral`); err != nil {
		return fmt.Errorf("drop ephemeral: %w", err)
	}
	if err := store.RunMigrations(s.conn, migrationsFS, "migrations"); err != nil {
		return fmt.Errorf("recreate tables: %w", err)
	}
	return nil
}

// GetEndpoint looks up the endpoint previously cached for url (a host or
// any right-anchored suffix of one).
func (s *Store) GetEndpoint(url string) (endpoint string, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.conn.QueryRow(`SELECT ip FROM ephemeral WHERE url = ?`, url).Scan(&endpoint)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get endpoint %s: %w", url, err)
	}
	return endpoint, true, nil
}

// PutEndpoint records (or overwrites) the endpoint cached for url.
func (s *Store) PutEndpoint(url, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		INSERT INTO ephemeral (url, ip, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(url) DO UPDATE SET
			ip = excluded.ip,
			updated_at = CURRENT_TIMESTAMP
	`, url, endpoint)
	if err != nil {
		return fmt.Errorf("put endpoint %s: %w", url, err)
	}
	return nil
}

// DeleteEndpoint removes the row for url. Invoked on validation-on-hit
// mismatch.
func (s *Store) DeleteEndpoint(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`DELETE FROM ephemeral WHERE url = ?`, url)
	if err != nil {
		return fmt.Errorf("delete endpoint %s: %w", url, err)
	}
	return nil
}

// Stack is one row of the stacks table: a five-byte content-type tag and
// the filesystem path of its rendering plugin.
type Stack struct {
	Tag     string
	Library string
}

// GetStack looks up the plugin registered for tag.
func (s *Store) GetStack(tag string) (stack Stack, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stack.Tag = tag
	err = s.conn.QueryRow(`SELECT library FROM stacks WHERE stack = ?`, tag).Scan(&stack.Library)
	if err == sql.ErrNoRows {
		return Stack{}, false, nil
	}
	if err != nil {
		return Stack{}, false, fmt.Errorf("get stack %s: %w", tag, err)
	}
	return stack, true, nil
}

// ListStacks returns every registered stack, ordered by tag.
func (s *Store) ListStacks() ([]Stack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(`SELECT stack, library FROM stacks ORDER BY stack`)
	if err != nil {
		return nil, fmt.Errorf("list stacks: %w", err)
	}
	defer rows.Close()

	var out []Stack
	for rows.Next() {
		var st Stack
		if err := rows.Scan(&st.Tag, &st.Library); err != nil {
			return nil, fmt.Errorf("scan stack: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stacks: %w", err)
	}
	return out, nil
}

// PutStack registers or replaces the plugin for tag.
func (s *Store) PutStack(tag, library string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		INSERT INTO stacks (stack, library) VALUES (?, ?)
		ON CONFLICT(stack) DO UPDATE SET library = excluded.library
	`, tag, library)
	if err != nil {
		return fmt.Errorf("put stack %s: %w", tag, err)
	}
	return nil
}
