package host

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/km-arc/go-hosting/framework/config"
	"github.com/km-arc/go-hosting/framework/container"
)

// ContextToken resolves the shared [Context] from any factory:
//
//	app, err := container.Resolve(r, host.ContextToken)
var ContextToken = container.NewToken[*Context]("host.context")

// CleanupFunc is a teardown effect: a zero-argument release action registered
// at resource-acquisition time and run during disposal.
type CleanupFunc func() error

// ── Context ──────────────────────────────────────────────────────────────────

// Context is the process-wide mutable state shared by all services: the
// quitting flag, the logger and settings handles, and the ordered teardown
// ledger. Services hold it by shared reference; the [Host] owns its lifecycle.
type Context struct {
	quitting atomic.Bool

	mu       sync.Mutex
	logger   *zap.Logger
	settings *config.Settings
	effects  []CleanupFunc
	sealed   bool // disposal has begun; the ledger no longer grows
}

func newContext() *Context {
	return &Context{logger: zap.NewNop()}
}

// Effect appends fn to the teardown ledger. Call it at the moment a resource
// is acquired, once per resource. Effects registered after disposal has begun
// are dropped with a warning; they would never run.
func (c *Context) Effect(fn CleanupFunc) {
	c.mu.Lock()
	if c.sealed {
		log := c.logger
		c.mu.Unlock()
		log.Warn("teardown effect registered during disposal, dropping it")
		return
	}
	c.effects = append(c.effects, fn)
	c.mu.Unlock()
}

// BeginQuit sets the quitting flag. The first caller gets true; the flag is
// set at most once and never cleared.
func (c *Context) BeginQuit() bool {
	return c.quitting.CompareAndSwap(false, true)
}

// Quitting reports whether shutdown has been requested. Services consult it
// to suppress new work; in-flight work is not cancelled.
func (c *Context) Quitting() bool { return c.quitting.Load() }

// Logger returns the shared logger. Before SetLogger it is a nop logger, so
// callers never need a nil check.
func (c *Context) Logger() *zap.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logger
}

// SetLogger installs the shared logger handle.
func (c *Context) SetLogger(log *zap.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if log != nil {
		c.logger = log
	}
}

// Settings returns the shared settings handle, or nil before SetSettings.
func (c *Context) Settings() *config.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SetSettings installs the shared settings handle.
func (c *Context) SetSettings(s *config.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s
}

// drain seals the ledger and hands the effects over, exactly once. A second
// drain returns nothing.
func (c *Context) drain() []CleanupFunc {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sealed = true
	effects := c.effects
	c.effects = nil
	return effects
}
