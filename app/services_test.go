package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/km-arc/go-hosting/app"
	"github.com/km-arc/go-hosting/framework/container"
	"github.com/km-arc/go-hosting/framework/host"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// buildShell wires the full shell into a temp directory, with the
// diagnostics listener disabled so tests never bind ports.
func buildShell(t *testing.T) *host.Host {
	t.Helper()

	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.yaml")
	yaml := "db:\n  path: " + filepath.Join(dir, "data", "observe.db") + "\n" +
		"backup:\n  dir: " + filepath.Join(dir, "backups") + "\n" +
		"diag:\n  enabled: false\n" +
		"log:\n  level: error\n"
	if err := os.WriteFile(settingsPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	h, err := host.NewBuilder().
		ConfigureServices(app.Services(app.Options{
			SettingsPath: settingsPath,
			EnvFiles:     []string{filepath.Join(dir, "no.env")},
		})).
		Configure(app.Boot()).
		Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return h
}

// ── wiring ───────────────────────────────────────────────────────────────────

func TestShell_StartAndDispose(t *testing.T) {
	h := buildShell(t)
	ctx := context.Background()

	if err := h.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	// The context carries the shared handles after startup.
	if h.Context().Settings() == nil {
		t.Error("settings handle must be installed on the context")
	}

	db, err := container.Get(ctx, h.Provider(), app.DatabaseToken)
	if err != nil {
		t.Fatalf("get database: %v", err)
	}
	version, err := db.SchemaVersion(ctx)
	if err != nil || version == 0 {
		t.Errorf("schema should be migrated during startup (version=%d, err=%v)", version, err)
	}

	again, _ := container.Get(ctx, h.Provider(), app.DatabaseToken)
	if db != again {
		t.Error("database must be a singleton")
	}

	h.Dispose()
	h.Dispose() // idempotent

	// The database was closed by its teardown effect.
	if err := db.Ping(); err == nil {
		t.Error("database should be closed after dispose")
	}
}

func TestShell_DiagnosticsDisabled_NotResolved(t *testing.T) {
	h := buildShell(t)
	defer h.Dispose()

	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if h.Provider().Resolved(app.DiagToken) {
		t.Error("diagnostics must stay unconstructed when disabled")
	}
}
