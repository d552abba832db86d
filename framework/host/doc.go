// Package host is the composition root of the application shell: a deferred
// [Builder], the built [Host], and the process-wide [Context] shared by every
// service.
//
// It mirrors .NET's Generic Host (IHostBuilder / IHost) as closely as Go
// allows: configuration callbacks accumulate on the builder without running,
// Build materializes the service provider, Start runs the startup callbacks
// in order, and Dispose drains registered teardown effects newest-first.
//
// # Lifecycle
//
//	// .NET: Host.CreateDefaultBuilder().ConfigureServices(...).Build().Run()
//	h, err := host.NewBuilder().
//	    ConfigureServices(app.Services(opts)).
//	    Configure(app.Boot()).
//	    Build(ctx)
//	if err != nil {
//	    // no Host exists; nothing to tear down
//	}
//	if err := h.Start(ctx); err != nil {
//	    h.Dispose() // releases whatever the failed startup acquired
//	}
//	...
//	h.Dispose() // idempotent, never fails outward
//
// The host moves Built → Starting → Started → Disposing → Disposed. Start is
// only valid from Built; Dispose is valid from any later state and
// short-circuits once Disposed.
//
// # Teardown effects
//
// Any resource a service acquires that needs explicit release must be paired
// with exactly one [Context.Effect] registration at acquisition time:
//
//	w, err := settings.Watch(onChange)
//	if err != nil {
//	    return err
//	}
//	app.Effect(w) // released on every exit path once Dispose runs
//
// Effects run in reverse registration order ("last acquired, first
// released"). A failing or panicking effect is logged and the drain
// continues; teardown is best-effort by policy.
package host
