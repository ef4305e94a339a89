// Package scope implements rill's nested-scope machinery: a stack of tagged
// scopes with registered names and teardown callbacks, a global registry of
// live names with deterministic fresh-name generation, and the module-root
// scope that deduplicates functions by structural content.
//
// Scope kinds form a closed sum. Every call site that depends on the kind
// switches over it exhaustively; there is no open subclassing and no runtime
// downcast to go wrong.
package scope

import (
	"rill/internal/ir"
	"rill/internal/source"
)

// Kind enumerates the scope variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindGeneric owns names and callbacks but carries no payload.
	KindGeneric
	// KindDataflow accumulates bindings whose local vars are invisible
	// outside the block.
	KindDataflow
	// KindBinding accumulates bindings visible to subsequent code in the
	// same function.
	KindBinding
	// KindModuleRoot holds the module's deduplicating symbol table.
	KindModuleRoot
)

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindDataflow:
		return "dataflow"
	case KindBinding:
		return "binding"
	case KindModuleRoot:
		return "module"
	default:
		return "invalid"
	}
}

// Callback is a zero-argument teardown action run when its scope is popped.
type Callback func()

// Scope is one stack entry. It exclusively owns its payload until popped;
// popping hands the materialized result to the caller.
type Scope struct {
	kind      Kind
	names     []source.StringID // registration order
	callbacks []Callback        // registration order

	// Bindings is the payload of dataflow and binding scopes, in emission
	// order.
	Bindings []ir.Binding

	module *ModuleScope // module-root payload
}

func NewGenericScope() *Scope    { return &Scope{kind: KindGeneric} }
func NewDataflowScope() *Scope   { return &Scope{kind: KindDataflow} }
func NewBindingScope() *Scope    { return &Scope{kind: KindBinding} }
func NewModuleRootScope() *Scope { return &Scope{kind: KindModuleRoot, module: NewModuleScope()} }

func (s *Scope) Kind() Kind { return s.kind }

// Module returns the symbol table payload, or nil for non-module scopes.
func (s *Scope) Module() *ModuleScope { return s.module }

// OnExit registers a teardown callback. Callbacks run in registration order
// when the scope is popped.
func (s *Scope) OnExit(fn Callback) {
	if fn != nil {
		s.callbacks = append(s.callbacks, fn)
	}
}

// Append adds a binding to the scope payload. Kind discipline is the
// caller's responsibility; the builder checks it before appending.
func (s *Scope) Append(b ir.Binding) {
	s.Bindings = append(s.Bindings, b)
}
