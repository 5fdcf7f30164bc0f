// Package sqlite implements the embedded local backend: keyed asset blobs
// and the single invitation snapshot in one SQLite database file.
// See docs/ARCHITECTURE.md § Local Backend.
package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/linkwed/linkwed/pkg/types"
)

// dbFileName is the database file created inside the data directory.
const dbFileName = "linkwed.db"

// Store provides AssetStore and SnapshotStore over a single SQLite file.
// The database is the source of truth; Attach never recreates it.
type Store struct {
	mu     sync.RWMutex
	open   bool
	config types.Config
	db     *sql.DB
}

// NewStore creates an unopened store; call Attach with a Config to
// initialize.
func NewStore() *Store {
	return &Store{}
}

// Attach opens (creating if needed) the database under config.DataDir and
// ensures the schema exists. Returns ErrAlreadyOpen if called while open.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return types.ErrAlreadyOpen
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.config = config
	s.open = true
	return nil
}

// Detach closes the database. Idempotent: repeated calls succeed. After
// Detach, store operations return ErrStoreClosed.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}
	s.open = false
	return nil
}

// conn returns the open database handle or ErrStoreClosed. The caller must
// hold s.mu (read or write).
func (s *Store) conn() (*sql.DB, error) {
	if !s.open || s.db == nil {
		return nil, types.ErrStoreClosed
	}
	return s.db, nil
}
