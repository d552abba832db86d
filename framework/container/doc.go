// Package container provides a token-keyed dependency injection container:
// a build-time ServiceCollection and a resolve-time ServiceProvider.
//
// It mirrors the shape of .NET's Microsoft.Extensions.DependencyInjection as
// closely as Go's type system allows. Because Go has no parameterized methods,
// the typed API is exposed as package-level generic functions
// ([AddSingleton], [Resolve], [Get]) operating on the untyped core.
//
// # Tokens
//
// A [Token] is an opaque typed key identifying a service contract. Tokens
// compare by identity, never by name — two tokens created with the same name
// are two distinct registrations:
//
//	// .NET: services.AddSingleton<ILogger>(...)  — keyed by type
//	var LoggerToken = container.NewToken[*zap.Logger]("logger")
//
// The name is carried for diagnostics only.
//
// # Registration
//
//	// .NET: services.AddSingleton<IDb>(sp => new Db(sp.GetRequiredService<ILogger>()))
//	col := container.NewCollection()
//	err := container.AddSingleton(col, DatabaseToken,
//	    func(ctx context.Context, r *container.Resolver) (*storage.Database, error) {
//	        log, err := container.Resolve(r, LoggerToken)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return storage.Open("data/app.db", log)
//	    })
//
// All registrations are singletons: one instance per provider lifetime,
// constructed lazily on first resolution. Registering the same token twice
// fails with [*DuplicateRegistrationError] before any factory runs.
//
// # Resolution
//
//	// .NET: provider.GetRequiredService<IDb>()
//	provider := col.Build()
//	db, err := container.Get(ctx, provider, DatabaseToken)
//
// Factories receive a [Resolver] carrying the resolution chain. A factory may
// resolve its own dependencies through it; the chain is how the provider
// reports cycles ([*CircularDependencyError]) instead of recursing forever.
// Resolving an unregistered token fails with [*UnresolvedTokenError].
package container
