// Package cache persists scanned filesystem entries in a SQLite database so
// repeated scans of an unchanged tree can be served from disk instead of a
// fresh walk. It implements the durable side of a scan session: upserting
// entries seen during a walk, pruning the ones that weren't, and verifying
// that stored aggregate sizes are internally consistent.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	schemaVersion = 1

	pruneMaxAge    = 30 * 24 * 3600 // seconds
	pruneMaxBytes  = 512 * 1024 * 1024
	pruneBatchSize = 512
)

var logger = log.New(log.Writer(), "dusk/cache: ", log.LstdFlags)

// Store is a handle onto one SQLite-backed entry cache. It wraps a single
// *sql.DB; database/sql already serializes and pools access for concurrent
// callers, so Store needs no locking of its own.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the cache database at path, ensuring its directory
// exists, initializing the schema on first use, and upgrading it otherwise.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}

	store := &Store{db: db, path: path}
	if err := store.configureConnection(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := store.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := store.upgradeSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) configureConnection(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := s.db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("cache: pragma %q: %w", p, err)
		}
	}
	return nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS roots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			canonical_path TEXT NOT NULL UNIQUE,
			last_scan_utc INTEGER NOT NULL DEFAULT 0,
			scan_count INTEGER NOT NULL DEFAULT 0,
			last_pruned_utc INTEGER NOT NULL DEFAULT 0,
			schema_version INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			root_id INTEGER NOT NULL REFERENCES roots(id) ON DELETE CASCADE,
			relative_path TEXT NOT NULL,
			parent_path TEXT,
			has_parent INTEGER NOT NULL DEFAULT 0,
			kind INTEGER NOT NULL,
			direct_size INTEGER NOT NULL DEFAULT 0,
			aggregate_size INTEGER NOT NULL DEFAULT 0,
			mtime_utc INTEGER NOT NULL DEFAULT 0,
			ctime_utc INTEGER NOT NULL DEFAULT 0,
			last_seen_utc INTEGER NOT NULL DEFAULT 0,
			flags INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (root_id, relative_path)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_parent ON entries(root_id, parent_path)`,
		`CREATE TABLE IF NOT EXISTS ui_state (
			root_id INTEGER PRIMARY KEY REFERENCES roots(id) ON DELETE CASCADE,
			payload TEXT NOT NULL,
			version INTEGER NOT NULL,
			updated_utc INTEGER NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("cache: create schema: %w", err)
		}
	}
	return nil
}

// upgradeSchema adds columns that a previous, older version of this store
// may not have created, and stamps the current user_version pragma.
func (s *Store) upgradeSchema(ctx context.Context) error {
	cols, err := s.columnNames(ctx, "roots")
	if err != nil {
		return err
	}
	wanted := map[string]string{
		"schema_version":  "INTEGER NOT NULL DEFAULT 1",
		"scan_count":      "INTEGER NOT NULL DEFAULT 0",
		"last_pruned_utc": "INTEGER NOT NULL DEFAULT 0",
	}
	for name, ddl := range wanted {
		if cols[name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE roots ADD COLUMN %s %s", name, ddl)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("cache: add column %s: %w", name, err)
		}
	}

	var userVersion int
	row := s.db.QueryRowContext(ctx, "PRAGMA user_version")
	if err := row.Scan(&userVersion); err != nil {
		return fmt.Errorf("cache: read user_version: %w", err)
	}
	if userVersion > len(globalMigrations) {
		// Written by a newer version of this store: leave it untouched.
		return nil
	}
	for _, migration := range globalMigrations[userVersion:] {
		if err := migration(ctx, s.db); err != nil {
			return fmt.Errorf("cache: migration: %w", err)
		}
	}
	if userVersion < len(globalMigrations) {
		stmt := fmt.Sprintf("PRAGMA user_version=%d", len(globalMigrations))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("cache: stamp user_version: %w", err)
		}
	}
	return nil
}

// globalMigrations holds schema changes that apply across all roots,
// gated by the user_version pragma rather than per-root schema_version.
// None are needed yet; future migrations append here.
var globalMigrations []func(ctx context.Context, db *sql.DB) error

func (s *Store) columnNames(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("cache: table_info(%s): %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			dfltValue  any
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &primaryKey); err != nil {
			return nil, fmt.Errorf("cache: scan table_info(%s): %w", table, err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ResolveRoot returns the stable id for canonicalPath, inserting a new root
// row if one does not already exist.
func (s *Store) ResolveRoot(ctx context.Context, canonicalPath string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM roots WHERE canonical_path = ?`, canonicalPath).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("cache: resolve root: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO roots (canonical_path, schema_version) VALUES (?, ?)`, canonicalPath, schemaVersion)
	if err != nil {
		// Another caller may have inserted concurrently; re-select.
		if e2 := s.db.QueryRowContext(ctx, `SELECT id FROM roots WHERE canonical_path = ?`, canonicalPath).Scan(&id); e2 == nil {
			return id, nil
		}
		return 0, fmt.Errorf("cache: insert root: %w", err)
	}
	return res.LastInsertId()
}

// LoadRoot resolves canonicalPath and returns every entry under it.
func (s *Store) LoadRoot(ctx context.Context, canonicalPath string) (int64, []Row, error) {
	rootID, err := s.ResolveRoot(ctx, canonicalPath)
	if err != nil {
		return 0, nil, err
	}
	rows, err := s.allEntries(ctx, rootID)
	if err != nil {
		return 0, nil, err
	}
	return rootID, rows, nil
}

func (s *Store) allEntries(ctx context.Context, rootID int64) ([]Row, error) {
	return s.queryRows(ctx, `SELECT root_id, relative_path, parent_path, has_parent, kind, direct_size,
		aggregate_size, mtime_utc, ctime_utc, last_seen_utc, flags FROM entries WHERE root_id = ?`, rootID)
}

// ClearRoot deletes a root and everything under it. It returns false if no
// such root existed. Entries and UI state are deleted explicitly rather than
// through ON DELETE CASCADE, because the foreign_keys pragma is per
// connection and is only set on the connection Open configured.
func (s *Store) ClearRoot(ctx context.Context, canonicalPath string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("cache: clear root: %w", err)
	}
	defer tx.Rollback()
	for _, table := range []string{"entries", "ui_state"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE root_id IN (SELECT id FROM roots WHERE canonical_path = ?)`, canonicalPath); err != nil {
			return false, fmt.Errorf("cache: clear root: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM roots WHERE canonical_path = ?`, canonicalPath)
	if err != nil {
		return false, fmt.Errorf("cache: clear root: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cache: clear root: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("cache: clear root: %w", err)
	}
	return n > 0, nil
}
