package container

// ── Tokens ───────────────────────────────────────────────────────────────────

// Token is an opaque typed key identifying a service contract.
//
// Tokens compare by identity: every call to [NewToken] produces a distinct
// key, regardless of name. The name only appears in diagnostics and error
// messages.
//
//	var SettingsToken = container.NewToken[*config.Settings]("settings")
type Token[T any] struct {
	name string
}

// NewToken creates a fresh token for the contract type T.
func NewToken[T any](name string) *Token[T] {
	return &Token[T]{name: name}
}

// Name returns the diagnostic name the token was created with.
func (t *Token[T]) Name() string { return t.name }

func (t *Token[T]) String() string { return t.name }

// AnyToken is the untyped view of a [Token], used as the registry key.
// Interface equality on *Token[T] values gives the identity semantics.
type AnyToken interface {
	Name() string
	String() string
}
