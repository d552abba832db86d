// Package logging builds the shared zap logger from application settings.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-hosting/framework/config"
)

// Config holds the logging settings.
type Config struct {
	Level  string // debug | info | warn | error
	Format string // console | json
	File   string // optional log file, appended to alongside stderr
}

// FromSettings reads the log.* keys, falling back to console/info.
func FromSettings(s *config.Settings) Config {
	return Config{
		Level:  s.String("log.level", "info"),
		Format: s.String("log.format", "console"),
		File:   s.String("log.file", ""),
	}
}

// New constructs a logger and a flush-and-close function for the teardown
// ledger. The close function syncs the logger and closes the file sink, if
// one was opened:
//
//	log, closeLog, err := logging.New(logging.FromSettings(settings))
//	if err != nil {
//	    return err
//	}
//	app.Effect(closeLog)
func New(cfg Config) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: level %q: %w", cfg.Level, err)
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case "console", "":
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	default:
		return nil, nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
	}

	var file *os.File
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("logging: create log directory: %w", err)
		}
		file, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: open %s: %w", cfg.File, err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.Lock(file), level))
	}

	logger := zap.New(zapcore.NewTee(cores...))

	closeFn := func() error {
		// Sync errors on stderr are expected on some platforms; the file
		// close result is what matters.
		_ = logger.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return logger, closeFn, nil
}
