package host

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/km-arc/go-hosting/framework/container"
)

// ── State machine ────────────────────────────────────────────────────────────

// State is the lifecycle stage of a [Host].
type State int

const (
	StateBuilt State = iota
	StateStarting
	StateStarted
	StateDisposing
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateStarting:
		return "starting"
	case StateStarted:
		return "started"
	case StateDisposing:
		return "disposing"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ── Host ─────────────────────────────────────────────────────────────────────

// Host is the built, immutable composition: it owns the provider and the
// shared context it was built with — mirrors .NET's IHost.
type Host struct {
	provider   *container.Provider
	app        *Context
	configures []ConfigureFunc

	mu    sync.Mutex
	state State
}

// Provider returns the host's service provider.
func (h *Host) Provider() *container.Provider { return h.provider }

// Context returns the shared application context.
func (h *Host) Context() *Context { return h.app }

// State returns the current lifecycle stage.
func (h *Host) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Start runs the Configure callbacks sequentially in registration order; each
// typically pulls services out of the provider (triggering lazy construction)
// and performs initialization side effects. Later callbacks may assume
// earlier ones finished.
//
// Start is valid only once, from the Built state. The first failing callback
// aborts Start and its error is returned unchanged; callbacks already run are
// not rolled back — release their resources by calling Dispose.
func (h *Host) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.state != StateBuilt {
		state := h.state
		h.mu.Unlock()
		return fmt.Errorf("host: start is only valid once, from the built state (currently %s)", state)
	}
	h.state = StateStarting
	h.mu.Unlock()

	for _, fn := range h.configures {
		if err := fn(ctx, h.provider, h.app); err != nil {
			return err
		}
	}

	h.mu.Lock()
	h.state = StateStarted
	h.mu.Unlock()

	h.app.Logger().Info("host started")
	return nil
}

// Dispose drains the context's teardown ledger in reverse registration order
// ("last acquired, first released"), then marks the host disposed.
//
// It is idempotent: the disposing flag is taken before any teardown runs, so
// overlapping quit signals dispose at most once. Each effect's failure or
// panic is caught and logged individually and the remaining effects still
// run; Dispose never fails outward.
func (h *Host) Dispose() {
	h.mu.Lock()
	if h.state == StateDisposing || h.state == StateDisposed {
		h.mu.Unlock()
		return
	}
	h.state = StateDisposing
	h.mu.Unlock()

	// Snapshot the logger before draining: a logging effect may flush and
	// close sinks mid-drain, but the handle itself stays safe to call.
	log := h.app.Logger()
	effects := h.app.drain()

	for i := len(effects) - 1; i >= 0; i-- {
		runEffect(log, i, effects[i])
	}

	h.mu.Lock()
	h.state = StateDisposed
	h.mu.Unlock()

	log.Info("host disposed", zap.Int("effects", len(effects)))
}

// runEffect runs one teardown effect, isolating its failure modes.
func runEffect(log *zap.Logger, idx int, fn CleanupFunc) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("teardown effect panicked",
				zap.Int("effect", idx),
				zap.Any("panic", rec))
		}
	}()

	if err := fn(); err != nil {
		log.Warn("teardown effect failed",
			zap.Int("effect", idx),
			zap.Error(err))
	}
}
