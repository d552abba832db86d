package container

import (
	"context"
	"fmt"
	"sync"
)

// ── Provider ─────────────────────────────────────────────────────────────────

// Provider resolves tokens to singleton instances on demand — mirrors .NET's
// IServiceProvider. Once a token has resolved, every later Get returns the
// identical instance for the provider's lifetime. Nothing is constructed
// before first Get.
type Provider struct {
	mu        sync.RWMutex // guards instances
	resolveMu sync.Mutex   // serializes top-level resolutions

	regs      map[AnyToken]Factory // immutable after Build
	order     []AnyToken           // registration order, diagnostics only
	instances map[AnyToken]any
}

// Get resolves tok, constructing it on first call. Concurrent callers are
// serialized by a coarse resolve lock so an unresolved token is never
// constructed twice.
//
// Do not call Get from inside a factory — factories resolve their
// dependencies through the [Resolver] they receive, which carries the chain
// the cycle check needs.
func (p *Provider) Get(ctx context.Context, tok AnyToken) (any, error) {
	// Fast path: already resolved.
	p.mu.RLock()
	inst, ok := p.instances[tok]
	p.mu.RUnlock()
	if ok {
		return inst, nil
	}

	p.resolveMu.Lock()
	defer p.resolveMu.Unlock()

	r := &Resolver{ctx: ctx, provider: p}
	return r.Get(tok)
}

// Resolved reports whether tok has been constructed already.
func (p *Provider) Resolved(tok AnyToken) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.instances[tok]
	return ok
}

// Tokens returns all registered tokens in registration order.
func (p *Provider) Tokens() []AnyToken {
	out := make([]AnyToken, len(p.order))
	copy(out, p.order)
	return out
}

// ── Resolver ─────────────────────────────────────────────────────────────────

// Resolver is the view of the provider handed to factories during
// construction. It carries the resolution chain, which is how re-entrant
// factory calls are told apart from cycles.
type Resolver struct {
	ctx      context.Context
	provider *Provider
	chain    []AnyToken
}

// Context returns the context of the resolution in progress.
func (r *Resolver) Context() context.Context { return r.ctx }

// Provider returns the provider this resolver resolves against.
func (r *Resolver) Provider() *Provider { return r.provider }

// Get resolves tok within the current resolution.
//
// Algorithm: cached instance wins; a token already on the chain is a cycle;
// an unknown token is unresolved; otherwise the factory runs with tok pushed
// onto the chain and the result is cached. A failed factory caches nothing.
func (r *Resolver) Get(tok AnyToken) (any, error) {
	p := r.provider

	p.mu.RLock()
	inst, ok := p.instances[tok]
	p.mu.RUnlock()
	if ok {
		return inst, nil
	}

	for _, seen := range r.chain {
		if seen == tok {
			chain := make([]AnyToken, 0, len(r.chain)+1)
			chain = append(chain, r.chain...)
			chain = append(chain, tok)
			return nil, &CircularDependencyError{Token: tok, Chain: chain}
		}
	}

	factory, ok := p.regs[tok]
	if !ok {
		return nil, &UnresolvedTokenError{Token: tok}
	}

	child := &Resolver{
		ctx:      r.ctx,
		provider: p,
		chain:    append(r.chain[:len(r.chain):len(r.chain)], tok),
	}
	inst, err := factory(r.ctx, child)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.instances[tok] = inst
	p.mu.Unlock()
	return inst, nil
}

// ── Typed helpers ────────────────────────────────────────────────────────────

// Resolve resolves tok through r and returns the typed instance.
//
//	log, err := container.Resolve(r, LoggerToken)
func Resolve[T any](r *Resolver, tok *Token[T]) (T, error) {
	var zero T
	inst, err := r.Get(tok)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		// Unreachable through the typed registration API.
		panic(fmt.Sprintf("container: token %q resolved to %T, want %T", tok.Name(), inst, zero))
	}
	return typed, nil
}

// Get resolves tok through p and returns the typed instance.
//
//	db, err := container.Get(ctx, provider, DatabaseToken)
func Get[T any](ctx context.Context, p *Provider, tok *Token[T]) (T, error) {
	var zero T
	inst, err := p.Get(ctx, tok)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		panic(fmt.Sprintf("container: token %q resolved to %T, want %T", tok.Name(), inst, zero))
	}
	return typed, nil
}
