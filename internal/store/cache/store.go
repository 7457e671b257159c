// Package cache is the backing store for a cache server: the dns_cache
// table of terminal, already-resolved answers. Unlike the authority
// store it carries no dns_* chaining columns.
package cache

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/jroosing/wireweb/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// WildcardName is the special row name used for server-relocation.
const WildcardName = "."

// Entry is one row of the dns_cache table.
type Entry struct {
	Name       string
	DomainIP   sql.NullString
	DomainPort sql.NullInt64
}

// HasDomain reports whether e carries a populated domain_* endpoint.
func (e Entry) HasDomain() bool { return e.DomainIP.Valid }

// Endpoint renders the domain_* fields as a "HOST:PORT" string.
func (e Entry) Endpoint() string {
	return fmt.Sprintf("%s:%d", e.DomainIP.String, e.DomainPort.Int64)
}

// Store wraps a SQLite connection holding the dns_cache table.
type Store struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// Open opens or creates the cache store at path, applying migrations.
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

// Reset drops and recreates the dns_cache table, backing the --overwrite
// bootstrap flag.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn.Exec(`DROP TABLE IF EXISTS dns_cache`); err != nil {
		return fmt.Errorf("drop dns_cache: %w", err)
	}
	if err := store.RunMigrations(s.conn, migrationsFS, "migrations"); err != nil {
		return fmt.Errorf("recreate dns_cache: %w", err)
	}
	return nil
}

// GetEntry looks up a single name's cache entry.
func (s *Store) GetEntry(name string) (entry Entry, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.conn.QueryRow(`SELECT name, domain_ip, domain_port FROM dns_cache WHERE name = ?`, name)
	if err := row.Scan(&entry.Name, &entry.DomainIP, &entry.DomainPort); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("get entry %s: %w", name, err)
	}
	return entry, true, nil
}

// GetWildcard looks up the "." server-relocation row.
func (s *Store) GetWildcard() (Entry, bool, error) {
	return s.GetEntry(WildcardName)
}

// UpsertEntry inserts or replaces the cache row for entry.Name. This is
// how a successful terminal authority resolution is promoted into the
// cache server's store (an admin/bootstrap operation, out of scope for
// the core resolution path itself).
func (s *Store) UpsertEntry(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		INSERT INTO dns_cache (name, domain_ip, domain_port, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			domain_ip = excluded.domain_ip,
			domain_port = excluded.domain_port,
			updated_at = CURRENT_TIMESTAMP
	`, entry.Name, entry.DomainIP, entry.DomainPort)
	if err != nil {
		return fmt.Errorf("upsert entry %s: %w", entry.Name, err)
	}
	return nil
}

// DeleteEntry removes the cache row for name.
func (s *Store) DeleteEntry(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`DELETE FROM dns_cache WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", name, err)
	}
	return nil
}

// ListEntries returns every row, ordered by name, for admin listing.
func (s *Store) ListEntries() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(`SELECT name, domain_ip, domain_port FROM dns_cache ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.DomainIP, &e.DomainPort); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}
