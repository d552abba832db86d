package host

import (
	"context"

	"github.com/km-arc/go-hosting/framework/container"
)

// ── Builder ──────────────────────────────────────────────────────────────────

// ServicesFunc populates the service collection during Build.
type ServicesFunc func(ctx context.Context, col *container.Collection) error

// ConfigureFunc performs startup side effects during Start, pulling services
// out of the provider as needed.
type ConfigureFunc func(ctx context.Context, p *container.Provider, app *Context) error

// Builder accumulates configuration callbacks without executing them —
// mirrors .NET's IHostBuilder. Callbacks run in registration order, at Build
// time for ConfigureServices and at Start time for Configure.
type Builder struct {
	services   []ServicesFunc
	configures []ConfigureFunc
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// ConfigureServices appends a service-registration callback.
//
//	// .NET: builder.ConfigureServices((ctx, services) => ...)
func (b *Builder) ConfigureServices(fn ServicesFunc) *Builder {
	b.services = append(b.services, fn)
	return b
}

// Configure appends a startup callback.
//
//	// .NET: builder.Configure(app => ...)
func (b *Builder) Configure(fn ConfigureFunc) *Builder {
	b.configures = append(b.configures, fn)
	return b
}

// Build runs every ConfigureServices callback in registration order against a
// fresh collection, freezes it into a provider and returns the Host wrapping
// provider, context and the pending Configure callbacks.
//
// The shared [Context] is registered under [ContextToken] before any user
// callback runs. If any callback fails, Build returns that error and no Host
// is produced — partial construction is never exposed.
func (b *Builder) Build(ctx context.Context) (*Host, error) {
	col := container.NewCollection()
	app := newContext()

	err := container.AddSingleton(col, ContextToken,
		func(context.Context, *container.Resolver) (*Context, error) {
			return app, nil
		})
	if err != nil {
		return nil, err
	}

	for _, fn := range b.services {
		if err := fn(ctx, col); err != nil {
			return nil, err
		}
	}

	return &Host{
		provider:   col.Build(),
		app:        app,
		configures: b.configures,
		state:      StateBuilt,
	}, nil
}
