// Package opreg is the operator attribute registry: per-operator shape and
// type inference callbacks looked up by operator identity during emission.
// An operator with no entry is not an error; the builder simply leaves the
// binding unresolved for later passes.
package opreg

import (
	"sync"

	"rill/internal/diag"
	"rill/internal/ir"
)

// InferShapeFunc computes the result shape of a call, or nil when the shape
// cannot be determined locally. Diagnostics go into bag; the callback must
// not retain bag past the call.
type InferShapeFunc func(call *ir.Expr, bag *diag.Bag) *ir.Expr

// InferTypeFunc computes the result type of a call, or nil when unknown.
type InferTypeFunc func(call *ir.Expr, bag *diag.Bag) ir.Type

// Attrs bundles the inference callbacks registered for one operator. Either
// field may be nil.
type Attrs struct {
	InferShape InferShapeFunc
	InferType  InferTypeFunc
}

// Registry maps operator identity to inference callbacks. It is the only
// structure shared between concurrent build sessions, hence the lock.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Attrs
}

func New() *Registry {
	return &Registry{ops: make(map[string]Attrs)}
}

// Register installs attrs for op, replacing any previous entry.
func (r *Registry) Register(op string, attrs Attrs) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op] = attrs
}

// Lookup returns the attrs for op and whether any were registered.
func (r *Registry) Lookup(op string) (Attrs, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.ops[op]
	return a, ok
}

// Ops returns the number of registered operators.
func (r *Registry) Ops() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ops)
}

var global = New()

// Global returns the process-wide registry operator packages register into.
// Builders take a registry by injection and default to this one.
func Global() *Registry {
	return global
}
