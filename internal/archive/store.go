// Package archive keeps a queryable history of surveillance reports in
// DuckDB: one row per report run and one row per reported resistance call.
package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// ErrNoArchive is returned by OpenExisting when the database file is absent.
var ErrNoArchive = errors.New("archive not found")

// Store manages a DuckDB connection for the report archive.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// OpenExisting opens an archive that must already exist on disk, for
// read-only queries.
func OpenExisting(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoArchive, path)
		}
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	return Open(path)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for an in-memory store.
func (s *Store) Path() string {
	return s.path
}

// SetClock sets the clock used for archive timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS report_runs (
		run_id VARCHAR PRIMARY KEY,
		sample_id VARCHAR,
		report_date VARCHAR,
		archived_at TIMESTAMP,
		title VARCHAR,
		pipeline_name VARCHAR,
		pipeline_version VARCHAR,
		lineage_code VARCHAR,
		lineage_name VARCHAR,
		reference_path VARCHAR,
		reference_size BIGINT,
		reference_mtime TIMESTAMP,
		genes BIGINT,
		drug_calls BIGINT
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS resistance_calls (
		run_id VARCHAR,
		sample_id VARCHAR,
		position BIGINT,
		gene VARCHAR,
		nuc_change VARCHAR,
		aa_change VARCHAR,
		drug VARCHAR,
		confidence VARCHAR
	)`)
	return err
}
