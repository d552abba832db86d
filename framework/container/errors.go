package container

import (
	"fmt"
	"strings"
)

// ── Error taxonomy ───────────────────────────────────────────────────────────

// DuplicateRegistrationError reports a token registered twice in one
// [Collection]. It is returned at registration time, before any factory runs.
type DuplicateRegistrationError struct {
	Token AnyToken
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("container: token %q is already registered", e.Token.Name())
}

// UnresolvedTokenError reports a Get on a token that has no registration.
type UnresolvedTokenError struct {
	Token AnyToken
}

func (e *UnresolvedTokenError) Error() string {
	return fmt.Sprintf("container: no registration for token %q", e.Token.Name())
}

// CircularDependencyError reports a factory chain that re-entered itself.
// Chain holds the full resolution path, ending with the repeated token.
type CircularDependencyError struct {
	Token AnyToken
	Chain []AnyToken
}

func (e *CircularDependencyError) Error() string {
	names := make([]string, len(e.Chain))
	for i, tok := range e.Chain {
		names[i] = tok.Name()
	}
	return fmt.Sprintf("container: circular dependency on token %q: %s",
		e.Token.Name(), strings.Join(names, " -> "))
}
