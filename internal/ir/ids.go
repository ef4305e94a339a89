// Package ir holds the expression/type value model the rill builder reads
// and writes: variables, call/tuple/shape expressions, tensor types, binding
// blocks, functions and modules. It stops at what incremental construction
// touches; full front-end node hierarchies live with their front ends.
package ir

// VarID identifies a variable for the lifetime of one builder.
type VarID uint32

// SymbolID identifies a global symbol within one module scope.
type SymbolID uint32

// Invalid ID constants (zero is sentinel).
const (
	NoVarID    VarID    = 0
	NoSymbolID SymbolID = 0
)

// IsValid returns true if the ID is valid (non-zero).
func (id VarID) IsValid() bool    { return id != NoVarID }
func (id SymbolID) IsValid() bool { return id != NoSymbolID }
