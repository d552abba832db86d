// Package storage provides the application's local database: a single sqlite
// file with versioned schema migration and file-level backups.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Database wraps the sqlite handle for the shell's local data.
type Database struct {
	*sql.DB
	path string
	log  *zap.Logger
}

// Open opens (creating if needed) the sqlite database at path and verifies
// the connection. Foreign keys and WAL are always on.
func Open(path string, log *zap.Logger) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", path, err)
	}

	log.Debug("database opened", zap.String("path", path))
	return &Database{DB: db, path: path, log: log}, nil
}

// Path returns the database file path.
func (d *Database) Path() string { return d.path }

// ── Schema migration ─────────────────────────────────────────────────────────

// migrations is the ordered schema history. PRAGMA user_version tracks the
// last applied index, so Migrate is idempotent and only ever moves forward.
var migrations = []string{
	`CREATE TABLE students (
		id         INTEGER PRIMARY KEY,
		last_name  TEXT NOT NULL,
		first_name TEXT NOT NULL,
		class      TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);
	CREATE TABLE reasons (
		id    INTEGER PRIMARY KEY,
		label TEXT NOT NULL UNIQUE,
		tally INTEGER NOT NULL DEFAULT 1
	);
	CREATE TABLE events (
		id         INTEGER PRIMARY KEY,
		student_id INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		reason_id  INTEGER NOT NULL REFERENCES reasons(id),
		noted_at   TEXT NOT NULL DEFAULT (datetime('now'))
	);`,
	`CREATE TABLE settlements (
		id         INTEGER PRIMARY KEY,
		student_id INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		settled_at TEXT NOT NULL DEFAULT (datetime('now')),
		note       TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX idx_events_student ON events(student_id);`,
}

// Migrate brings the schema up to date. Each pending migration runs in its
// own transaction together with the version bump.
func (d *Database) Migrate(ctx context.Context) error {
	var version int
	if err := d.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("storage: read schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		tx, err := d.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("storage: begin migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("storage: apply migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("storage: bump schema version to %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("storage: commit migration %d: %w", i+1, err)
		}
		d.log.Info("schema migration applied", zap.Int("version", i+1))
	}
	return nil
}

// SchemaVersion returns the current PRAGMA user_version.
func (d *Database) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := d.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
	return version, err
}

// ── Backup ───────────────────────────────────────────────────────────────────

// Backup writes a compacted snapshot of the database into dir and returns the
// snapshot path. Uses VACUUM INTO, so the snapshot is consistent even while
// the database is in use.
func (d *Database) Backup(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create backup directory: %w", err)
	}

	dest := filepath.Join(dir, fmt.Sprintf("observe-%s.db", time.Now().Format("20060102-150405")))
	if _, err := d.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return "", fmt.Errorf("storage: backup into %s: %w", dest, err)
	}

	d.log.Info("database backed up", zap.String("dest", dest))
	return dest, nil
}
