package maintenance_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/km-arc/go-hosting/framework/host"
	"github.com/km-arc/go-hosting/maintenance"
	"github.com/km-arc/go-hosting/storage"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newScheduler(t *testing.T) (*maintenance.Scheduler, *host.Context, string) {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "observe.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	h, err := host.NewBuilder().Build(context.Background())
	if err != nil {
		t.Fatalf("build host: %v", err)
	}
	app := h.Context()

	dir := filepath.Join(t.TempDir(), "backups")
	s, err := maintenance.New(db, dir, "0 3 * * *", app, zap.NewNop())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return s, app, dir
}

// ── New ──────────────────────────────────────────────────────────────────────

func TestNew_InvalidCronSpec_Fails(t *testing.T) {
	h, err := host.NewBuilder().Build(context.Background())
	if err != nil {
		t.Fatalf("build host: %v", err)
	}

	db, err := storage.Open(filepath.Join(t.TempDir(), "x.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := maintenance.New(db, t.TempDir(), "not a cron spec", h.Context(), zap.NewNop()); err == nil {
		t.Error("invalid cron spec must fail")
	}
}

// ── Backups ──────────────────────────────────────────────────────────────────

func TestBackupNow_WritesSnapshot(t *testing.T) {
	s, _, dir := newScheduler(t)

	s.BackupNow()

	if s.Runs() != 1 {
		t.Fatalf("runs: got %d, want 1", s.Runs())
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		t.Errorf("backup directory should contain a snapshot (err=%v)", err)
	}
}

func TestBackupNow_SuppressedWhileQuitting(t *testing.T) {
	s, app, dir := newScheduler(t)

	app.BeginQuit()
	s.BackupNow()

	if s.Runs() != 0 {
		t.Errorf("runs: got %d, want 0 while quitting", s.Runs())
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Error("no snapshot may be written while quitting")
	}
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func TestStartStop_StopReturnsCleanly(t *testing.T) {
	s, _, _ := newScheduler(t)

	s.Start()
	if err := s.Stop(); err != nil {
		t.Errorf("stop: %v", err)
	}
}
