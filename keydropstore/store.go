// Package keydropstore is the SQLite-backed implementation of
// [github.com/minsu-steven-kim/keydrop2/session.Store]: the vault
// container, the biometric slot, and the sync/device state a local
// client needs between runs.
package keydropstore

import (
	"database/sql"
	"embed"
	"fmt"

	// Package sqlite is a CGo-free port of SQLite/SQLite3.
	_ "modernc.org/sqlite"

	"github.com/ladzaretti/migrate"

	"github.com/minsu-steven-kim/keydrop2/session"
)

var _ session.Store = (*Store)(nil)

var (
	//go:embed migrations/sqlite
	embedFS embed.FS

	embeddedMigrations = migrate.EmbeddedMigrations{
		FS:   embedFS,
		Path: "migrations/sqlite",
	}
)

// Store is a single client's local persistence: one vault container,
// one optional biometric slot, and the device/token state the sync
// engine needs to authenticate.
type Store struct {
	db *sql.DB
}

func errf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// New opens (creating if absent) the SQLite database at path and
// applies any unapplied schema migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errf("sqlite open: %v", err)
	}

	m := migrate.New(db, migrate.SQLiteDialect{})

	if _, err := m.Apply(embeddedMigrations); err != nil {
		return nil, errf("migration: %v", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
