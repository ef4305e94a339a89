package scope

import "errors"

// Construction-time precondition violations. All are programming errors in
// the calling front end, never recoverable data conditions.
var (
	// ErrDuplicateName is returned when a name is registered while still
	// live anywhere in the open scope stack.
	ErrDuplicateName = errors.New("scope: duplicate name")

	// ErrEmptyScopeStack is returned by operations that need an open scope
	// when the stack is empty.
	ErrEmptyScopeStack = errors.New("scope: empty scope stack")
)
