package scope

// Stack is an ordered stack of scopes (top = innermost) sharing one
// NameRegistry. It is mutated synchronously by a single build session; the
// LIFO push/pop discipline is the only ordering invariant.
type Stack struct {
	names  *NameRegistry
	scopes []*Scope
}

func NewStack() *Stack {
	return &Stack{names: NewNameRegistry()}
}

// Names returns the shared registry.
func (s *Stack) Names() *NameRegistry { return s.names }

func (s *Stack) Depth() int { return len(s.scopes) }

// Push appends sc and returns it.
func (s *Stack) Push(sc *Scope) *Scope {
	s.scopes = append(s.scopes, sc)
	return sc
}

// Pop removes the innermost scope: teardown callbacks run first in
// registration order, then every name the scope owned is released, then the
// scope (with its payload) is handed to the caller.
func (s *Stack) Pop() (*Scope, error) {
	if len(s.scopes) == 0 {
		return nil, ErrEmptyScopeStack
	}
	top := s.scopes[len(s.scopes)-1]
	s.scopes = s.scopes[:len(s.scopes)-1]
	for _, cb := range top.callbacks {
		cb()
	}
	top.callbacks = nil
	s.names.release(top)
	return top, nil
}

// Current returns the innermost scope, or nil when the stack is empty.
func (s *Stack) Current() *Scope {
	if len(s.scopes) == 0 {
		return nil
	}
	return s.scopes[len(s.scopes)-1]
}

// Enclosing returns the scope just below the innermost one, or nil.
func (s *Stack) Enclosing() *Scope {
	if len(s.scopes) < 2 {
		return nil
	}
	return s.scopes[len(s.scopes)-2]
}

// Nearest walks innermost-to-outermost and returns the first scope of kind
// k, or nil.
func (s *Stack) Nearest(k Kind) *Scope {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if s.scopes[i].kind == k {
			return s.scopes[i]
		}
	}
	return nil
}

// NearestModule returns the symbol table of the nearest module-root scope,
// or nil when none is open.
func (s *Stack) NearestModule() *ModuleScope {
	if sc := s.Nearest(KindModuleRoot); sc != nil {
		return sc.module
	}
	return nil
}

// FreshName generates and registers a collision-free name owned by owner.
// A nil owner means the current scope; with an empty stack this fails with
// ErrEmptyScopeStack because nothing could own the name.
func (s *Stack) FreshName(prefix string, owner *Scope) (string, error) {
	if owner == nil {
		owner = s.Current()
	}
	if owner == nil {
		return "", ErrEmptyScopeStack
	}
	return s.names.FreshName(prefix, owner), nil
}

// Register claims name for the current scope.
func (s *Stack) Register(name string) error {
	cur := s.Current()
	if cur == nil {
		return ErrEmptyScopeStack
	}
	return s.names.Register(name, cur)
}
