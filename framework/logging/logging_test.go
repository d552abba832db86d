package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/km-arc/go-hosting/framework/config"
	"github.com/km-arc/go-hosting/framework/logging"
)

func TestNew_InvalidLevel_Fails(t *testing.T) {
	if _, _, err := logging.New(logging.Config{Level: "loud"}); err == nil {
		t.Error("unknown level must fail")
	}
}

func TestNew_InvalidFormat_Fails(t *testing.T) {
	if _, _, err := logging.New(logging.Config{Level: "info", Format: "xml"}); err == nil {
		t.Error("unknown format must fail")
	}
}

func TestNew_FileSink_WritesAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "shell.log")
	log, closeLog, err := logging.New(logging.Config{Level: "info", Format: "console", File: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	log.Info("hello from the shell")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from the shell") {
		t.Errorf("log file should contain the message, got %q", content)
	}
}

func TestFromSettings_Defaults(t *testing.T) {
	s, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := logging.FromSettings(s)
	if cfg.Level != "info" || cfg.Format != "console" || cfg.File != "" {
		t.Errorf("defaults: got %+v, want info/console/no file", cfg)
	}
}
