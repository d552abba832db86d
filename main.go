// The observation shell: a single-process desktop application host. The
// windowing layer attaches as another service; headless, the shell still
// owns the database, settings, diagnostics and housekeeping lifecycles.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/go-hosting/app"
	"github.com/km-arc/go-hosting/framework/host"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	settingsPath := os.Getenv("OBSERVE_SETTINGS")
	if settingsPath == "" {
		settingsPath = "settings.yaml"
	}

	h, err := host.NewBuilder().
		ConfigureServices(app.Services(app.Options{SettingsPath: settingsPath})).
		Configure(app.Boot()).
		Build(ctx)
	if err != nil {
		// No host exists; the shared logger was never built either.
		log.Printf("build failed: %v", err)
		return 1
	}

	if err := h.Start(ctx); err != nil {
		h.Context().Logger().Error("startup failed", zap.Error(err))
		h.Dispose() // release whatever the partial startup acquired
		return 1
	}

	// before-quit: first signal requests shutdown, services stand down via
	// the quitting flag, then teardown effects drain newest-first.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit

	h.Context().BeginQuit()
	h.Context().Logger().Info("shutdown requested", zap.String("signal", sig.String()))
	h.Dispose()
	return 0
}
