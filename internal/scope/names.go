package scope

import (
	"fmt"
	"strconv"

	"rill/internal/source"
)

// NameRegistry tracks every name that is currently live across the open
// scope stack. A name is present iff some open scope registered it and has
// not been popped yet; uniqueness is global while live, not per-scope.
type NameRegistry struct {
	interner *source.Interner
	live     map[source.StringID]*Scope // live name -> owning scope
}

func NewNameRegistry() *NameRegistry {
	return &NameRegistry{
		interner: source.NewInterner(),
		live:     make(map[source.StringID]*Scope),
	}
}

// Contains reports whether name is live in any open scope.
func (r *NameRegistry) Contains(name string) bool {
	id := r.interner.Intern(name)
	_, ok := r.live[id]
	return ok
}

// Len returns the number of currently live names.
func (r *NameRegistry) Len() int {
	return len(r.live)
}

// Register claims name for owner. Registering a name that is live anywhere
// in the stack fails with ErrDuplicateName regardless of which scope owns
// it: that is a build-time programming error, not a recoverable condition.
func (r *NameRegistry) Register(name string, owner *Scope) error {
	id := r.interner.Intern(name)
	if prev, ok := r.live[id]; ok {
		return fmt.Errorf("%w: %q already registered in %s scope", ErrDuplicateName, name, prev.kind)
	}
	r.live[id] = owner
	owner.names = append(owner.names, id)
	return nil
}

// FreshName probes prefix0, prefix1, ... and registers the first free name
// for owner. Deterministic given the current registry state, which keeps
// builds reproducible.
func (r *NameRegistry) FreshName(prefix string, owner *Scope) string {
	for i := 0; ; i++ {
		name := prefix + strconv.Itoa(i)
		id := r.interner.Intern(name)
		if _, ok := r.live[id]; ok {
			continue
		}
		r.live[id] = owner
		owner.names = append(owner.names, id)
		return name
	}
}

// release drops every name owned by s, in any order; called exactly once
// when s is popped.
func (r *NameRegistry) release(s *Scope) {
	for _, id := range s.names {
		delete(r.live, id)
	}
	s.names = nil
}
