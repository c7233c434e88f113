// Package sqlite persists registers between editor sessions.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is an open register database.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens the database at path, creating the file and its directory
// if needed, and applies pending migrations. An existing database is
// copied to path+".bak" before it is migrated.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	_, statErr := os.Stat(path)
	existed := statErr == nil

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(existed); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Registers returns the register repository.
func (db *DB) Registers() *RegisterRepository {
	return newRegisterRepository(db.conn)
}

// SchemaVersion returns the last applied migration version.
func (db *DB) SchemaVersion() (uint, error) {
	var v uint
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// migrate applies every embedded up migration newer than the schema
// version. Each migration and its version bump commit together.
func (db *DB) migrate(existed bool) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	defer func() { _ = src.Close() }()

	current, err := db.SchemaVersion()
	if err != nil {
		return err
	}
	pending, err := pendingVersions(src, current)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	if existed {
		if err := db.backup(); err != nil {
			return err
		}
	}

	for _, version := range pending {
		if err := db.apply(src, version); err != nil {
			return err
		}
	}
	return nil
}

func pendingVersions(src source.Driver, current uint) ([]uint, error) {
	var versions []uint
	v, err := src.First()
	for err == nil {
		if v > current {
			versions = append(versions, v)
		}
		v, err = src.Next(v)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}
	return versions, nil
}

func (db *DB) apply(src source.Driver, version uint) error {
	r, name, err := src.ReadUp(version)
	if err != nil {
		return fmt.Errorf("reading migration %d: %w", version, err)
	}
	body, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil {
		return fmt.Errorf("reading migration %d: %w", version, err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("migration %d_%s: %w", version, name, err)
	}
	if _, err := tx.Exec(string(body)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d_%s: %w", version, name, err)
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d_%s: %w", version, name, err)
	}
	return tx.Commit()
}

// backup writes a consistent copy of the database next to it.
func (db *DB) backup() error {
	dst := db.path + ".bak"
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing old backup: %w", err)
	}
	if _, err := db.conn.Exec("VACUUM INTO ?", dst); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}
