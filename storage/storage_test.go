package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/km-arc/go-hosting/storage"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func open(t *testing.T) *storage.Database {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "data", "observe.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// ── Open ─────────────────────────────────────────────────────────────────────

func TestOpen_CreatesDataDirectoryAndFile(t *testing.T) {
	db := open(t)
	if _, err := os.Stat(db.Path()); err != nil {
		t.Errorf("database file should exist: %v", err)
	}
}

// ── Migrate ──────────────────────────────────────────────────────────────────

func TestMigrate_AppliesAllMigrations(t *testing.T) {
	db := open(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("schema version: %v", err)
	}
	if version < 2 {
		t.Errorf("schema version: got %d, want at least 2", version)
	}

	for _, table := range []string{"students", "reasons", "events", "settlements"} {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s should exist: %v", table, err)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := open(t)
	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	first, _ := db.SchemaVersion(ctx)

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	second, _ := db.SchemaVersion(ctx)

	if first != second {
		t.Errorf("version changed on re-migrate: %d -> %d", first, second)
	}
}

// ── Backup ───────────────────────────────────────────────────────────────────

func TestBackup_ProducesOpenableSnapshot(t *testing.T) {
	db := open(t)
	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.ExecContext(ctx,
		"INSERT INTO students (last_name, first_name, class) VALUES ('Muster', 'Mia', '7b')"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	dest, err := db.Backup(ctx, filepath.Join(t.TempDir(), "backups"))
	if err != nil {
		t.Fatalf("backup: %v", err)
	}

	snap, err := storage.Open(dest, zap.NewNop())
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer snap.Close()

	var count int
	if err := snap.QueryRowContext(ctx, "SELECT count(*) FROM students").Scan(&count); err != nil {
		t.Fatalf("query snapshot: %v", err)
	}
	if count != 1 {
		t.Errorf("snapshot rows: got %d, want 1", count)
	}
}
