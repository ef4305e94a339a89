package builder

import "errors"

// Emission protocol precondition violations. Every one is fatal to the
// current construction; none are silently recovered. Unresolved shapes or
// types after inference are NOT errors — they are valid unknowns for later
// passes.
var (
	// ErrInvalidScope marks an operation executed against an unexpected
	// scope variant.
	ErrInvalidScope = errors.New("builder: invalid scope")

	// ErrScopeDiscipline marks a locality/visibility violation: a local var
	// where only globals are allowed or vice versa, or EmitOutput /
	// EmitMatchShape against the wrong scope kind.
	ErrScopeDiscipline = errors.New("builder: scope discipline violation")

	// ErrUnboundVariable marks a lookup of a variable with no recorded
	// defining expression.
	ErrUnboundVariable = errors.New("builder: unbound variable")

	// ErrNoModuleScope marks a module-scoped operation with no module-root
	// scope on the stack.
	ErrNoModuleScope = errors.New("builder: no module scope open")

	// ErrTypeMismatch marks an EmitMatchShape value whose static type is
	// neither an abstract shape nor a tensor.
	ErrTypeMismatch = errors.New("builder: type mismatch")

	// ErrUnclosedScopes marks a Close with scopes still on the stack.
	ErrUnclosedScopes = errors.New("builder: unclosed scopes")
)
