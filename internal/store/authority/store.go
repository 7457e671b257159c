// Package authority is the backing store for an authority server: the
// dns_records table of label rows. Reads are shared read-only across
// connection handlers; writes are a bootstrap/admin concern (see
// internal/adminapi).
package authority

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/jroosing/wireweb/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// WildcardName is the special row name that represents the server's own
// self-relocation / fallback record.
const WildcardName = "."

// Record is one row of the dns_records table. A zero-value NullString/
// NullInt64 field means the column is unset (NULL).
type Record struct {
	Name       string
	DomainIP   sql.NullString
	DomainPort sql.NullInt64
	DNSIP      sql.NullString
	DNSPort    sql.NullInt64
}

// HasDomain reports whether r carries a populated domain_* endpoint.
func (r Record) HasDomain() bool { return r.DomainIP.Valid }

// HasDNS reports whether r carries a populated dns_* endpoint.
func (r Record) HasDNS() bool { return r.DNSIP.Valid }

// DomainEndpoint renders the domain_* fields as a "HOST:PORT" string.
func (r Record) DomainEndpoint() string {
	return fmt.Sprintf("%s:%d", r.DomainIP.String, r.DomainPort.Int64)
}

// DNSEndpoint renders the dns_* fields as a "HOST:PORT" string.
func (r Record) DNSEndpoint() string {
	return fmt.Sprintf("%s:%d", r.DNSIP.String, r.DNSPort.Int64)
}

// Store wraps a SQLite connection holding the dns_records table.
type Store struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// Open opens or creates the authority store at path, applying migrations.
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

// Reset drops and recreates the dns_records table, backing the --overwrite
// bootstrap flag.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn.Exec(`DROP TABLE IF EXISTS dns_records`); err != nil {
		return fmt.Errorf("drop dns_records: %w", err)
	}
	if err := store.RunMigrations(s.conn, migrationsFS, "migrations"); err != nil {
		return fmt.Errorf("recreate dns_records: %w", err)
	}
	return nil
}

// GetRecord looks up a single label's record. ok is false if no row with
// that name exists.
func (s *Store) GetRecord(name string) (rec Record, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.conn.QueryRow(
		`SELECT name, domain_ip, domain_port, dns_ip, dns_port FROM dns_records WHERE name = ?`,
		name,
	)
	rec, err = scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get record %s: %w", name, err)
	}
	return rec, true, nil
}

// GetWildcard looks up the "." self-relocation/fallback row.
func (s *Store) GetWildcard() (Record, bool, error) {
	return s.GetRecord(WildcardName)
}

func scanRecord(row *sql.Row) (Record, error) {
	var rec Record
	if err := row.Scan(&rec.Name, &rec.DomainIP, &rec.DomainPort, &rec.DNSIP, &rec.DNSPort); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// UpsertRecord inserts or replaces the record for rec.Name.
func (s *Store) UpsertRecord(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		INSERT INTO dns_records (name, domain_ip, domain_port, dns_ip, dns_port, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			domain_ip = excluded.domain_ip,
			domain_port = excluded.domain_port,
			dns_ip = excluded.dns_ip,
			dns_port = excluded.dns_port,
			updated_at = CURRENT_TIMESTAMP
	`, rec.Name, rec.DomainIP, rec.DomainPort, rec.DNSIP, rec.DNSPort)
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", rec.Name, err)
	}
	return nil
}

// DeleteRecord removes the record for name.
func (s *Store) DeleteRecord(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`DELETE FROM dns_records WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", name, err)
	}
	return nil
}

// ListRecords returns every row, ordered by name, for admin listing.
func (s *Store) ListRecords() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(`SELECT name, domain_ip, domain_port, dns_ip, dns_port FROM dns_records ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Name, &rec.DomainIP, &rec.DomainPort, &rec.DNSIP, &rec.DNSPort); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
