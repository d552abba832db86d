package container

import (
	"context"
	"sync"
)

// ── Collection ───────────────────────────────────────────────────────────────

// Factory builds a service instance. It receives the resolver of the
// resolution that triggered construction, so it can pull its own dependencies.
type Factory func(ctx context.Context, r *Resolver) (any, error)

// registration is one token → factory binding.
type registration struct {
	token   AnyToken
	factory Factory
}

// Collection is the build-time service registry — mirrors .NET's
// IServiceCollection. Registrations are appended in order; order is preserved
// for diagnostics only, resolution is demand-driven.
type Collection struct {
	mu    sync.Mutex
	regs  []registration
	index map[AnyToken]int
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{index: make(map[AnyToken]int)}
}

// AddSingleton registers factory for tok. Exactly one registration per token
// is allowed; a second registration fails with [*DuplicateRegistrationError].
//
//	// .NET: services.AddSingleton<ISettings>(sp => config.Load(path))
//	err := container.AddSingleton(col, SettingsToken,
//	    func(ctx context.Context, r *container.Resolver) (*config.Settings, error) {
//	        return config.Load(path)
//	    })
func AddSingleton[T any](c *Collection, tok *Token[T], factory func(ctx context.Context, r *Resolver) (T, error)) error {
	return c.add(tok, func(ctx context.Context, r *Resolver) (any, error) {
		return factory(ctx, r)
	})
}

// add is the untyped registration path (typed wrappers guarantee that the
// factory's result matches the token's contract type).
func (c *Collection) add(tok AnyToken, factory Factory) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.index[tok]; exists {
		return &DuplicateRegistrationError{Token: tok}
	}
	c.index[tok] = len(c.regs)
	c.regs = append(c.regs, registration{token: tok, factory: factory})
	return nil
}

// Tokens returns the registered tokens in registration order.
func (c *Collection) Tokens() []AnyToken {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]AnyToken, len(c.regs))
	for i, reg := range c.regs {
		out[i] = reg.token
	}
	return out
}

// Build freezes the collection into a [Provider]. The provider takes its own
// copy of the registry; later Add calls on the collection do not affect it.
func (c *Collection) Build() *Provider {
	c.mu.Lock()
	defer c.mu.Unlock()

	regs := make(map[AnyToken]Factory, len(c.regs))
	order := make([]AnyToken, len(c.regs))
	for i, reg := range c.regs {
		regs[reg.token] = reg.factory
		order[i] = reg.token
	}
	return &Provider{
		regs:      regs,
		order:     order,
		instances: make(map[AnyToken]any),
	}
}
