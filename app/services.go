package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-hosting/diag"
	"github.com/km-arc/go-hosting/framework/config"
	"github.com/km-arc/go-hosting/framework/container"
	"github.com/km-arc/go-hosting/framework/host"
	"github.com/km-arc/go-hosting/framework/logging"
	"github.com/km-arc/go-hosting/maintenance"
	"github.com/km-arc/go-hosting/storage"
)

// Version is the shell version, overridable via ldflags.
var Version = "0.1.0"

// Options selects the shell's file locations.
type Options struct {
	SettingsPath string   // YAML settings file, "" runs file-less
	EnvFiles     []string // .env files, defaults to [".env"]
}

// ── Service registration ─────────────────────────────────────────────────────

// Services returns the ConfigureServices callback registering every service
// of the shell. Factories pull their dependencies through the resolver and
// pair each acquired resource with a teardown effect.
func Services(opts Options) host.ServicesFunc {
	return func(_ context.Context, col *container.Collection) error {
		err := container.AddSingleton(col, SettingsToken,
			func(_ context.Context, r *container.Resolver) (*config.Settings, error) {
				app, err := container.Resolve(r, host.ContextToken)
				if err != nil {
					return nil, err
				}
				settings, err := config.Load(opts.SettingsPath, opts.EnvFiles...)
				if err != nil {
					return nil, err
				}
				app.SetSettings(settings)
				return settings, nil
			})
		if err != nil {
			return err
		}

		err = container.AddSingleton(col, LoggerToken,
			func(_ context.Context, r *container.Resolver) (*zap.Logger, error) {
				app, err := container.Resolve(r, host.ContextToken)
				if err != nil {
					return nil, err
				}
				settings, err := container.Resolve(r, SettingsToken)
				if err != nil {
					return nil, err
				}
				log, closeLog, err := logging.New(logging.FromSettings(settings))
				if err != nil {
					return nil, err
				}
				// First effect registered, so the logger flushes last and
				// stays usable while every other teardown logs through it.
				app.Effect(closeLog)
				app.SetLogger(log)
				return log, nil
			})
		if err != nil {
			return err
		}

		err = container.AddSingleton(col, DatabaseToken,
			func(_ context.Context, r *container.Resolver) (*storage.Database, error) {
				app, err := container.Resolve(r, host.ContextToken)
				if err != nil {
					return nil, err
				}
				log, err := container.Resolve(r, LoggerToken)
				if err != nil {
					return nil, err
				}
				settings, err := container.Resolve(r, SettingsToken)
				if err != nil {
					return nil, err
				}
				db, err := storage.Open(settings.String("db.path", "data/observe.db"), log)
				if err != nil {
					return nil, err
				}
				app.Effect(db.Close)
				return db, nil
			})
		if err != nil {
			return err
		}

		err = container.AddSingleton(col, DiagToken,
			func(_ context.Context, r *container.Resolver) (*diag.Server, error) {
				log, err := container.Resolve(r, LoggerToken)
				if err != nil {
					return nil, err
				}
				settings, err := container.Resolve(r, SettingsToken)
				if err != nil {
					return nil, err
				}
				addr := settings.String("diag.addr", "127.0.0.1:6060")
				info := diag.Info{Name: "observe", Version: Version, Started: time.Now()}
				return diag.New(addr, r.Provider(), info, log), nil
			})
		if err != nil {
			return err
		}

		return container.AddSingleton(col, MaintenanceToken,
			func(_ context.Context, r *container.Resolver) (*maintenance.Scheduler, error) {
				app, err := container.Resolve(r, host.ContextToken)
				if err != nil {
					return nil, err
				}
				log, err := container.Resolve(r, LoggerToken)
				if err != nil {
					return nil, err
				}
				settings, err := container.Resolve(r, SettingsToken)
				if err != nil {
					return nil, err
				}
				db, err := container.Resolve(r, DatabaseToken)
				if err != nil {
					return nil, err
				}
				return maintenance.New(db,
					settings.String("backup.dir", "backups"),
					settings.String("backup.schedule", "0 3 * * *"),
					app, log)
			})
	}
}

// ── Startup ──────────────────────────────────────────────────────────────────

// Boot returns the Configure callback that brings the shell up. Steps run in
// order and later steps assume earlier ones finished: the logger first (so
// its flush effect drains last), then the settings watcher, the database
// schema, the diagnostics endpoint, and finally the maintenance loop.
func Boot() host.ConfigureFunc {
	return func(ctx context.Context, p *container.Provider, app *host.Context) error {
		log, err := container.Get(ctx, p, LoggerToken)
		if err != nil {
			return err
		}

		settings, err := container.Get(ctx, p, SettingsToken)
		if err != nil {
			return err
		}
		if settings.Path() != "" {
			stopWatch, err := settings.Watch(func() {
				log.Info("settings reloaded", zap.String("path", settings.Path()))
			})
			if err != nil {
				return err
			}
			app.Effect(stopWatch)
		}

		db, err := container.Get(ctx, p, DatabaseToken)
		if err != nil {
			return err
		}
		if err := db.Migrate(ctx); err != nil {
			return err
		}

		if settings.Bool("diag.enabled", true) {
			server, err := container.Get(ctx, p, DiagToken)
			if err != nil {
				return err
			}
			server.Start()
			app.Effect(func() error {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})
		}

		scheduler, err := container.Get(ctx, p, MaintenanceToken)
		if err != nil {
			return err
		}
		scheduler.Start()
		app.Effect(scheduler.Stop)

		log.Info("observation shell ready",
			zap.String("version", Version),
			zap.String("database", db.Path()))
		return nil
	}
}
