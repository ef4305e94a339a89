package ir

// Function is a function body value: parameters, result annotation and the
// body that computes it. Functions are the unit of structural deduplication.
type Function struct {
	Params []*Var
	Body   *Expr
	Ret    Type // nil when unannotated
	Blocks []BindingBlock
}

// GlobalSymbol is the unique module-level name assigned to a deduplicated
// function. Identity is the ID; Name is for printing and need not survive
// renames.
type GlobalSymbol struct {
	ID   SymbolID
	Name string
}

// Module is an immutable snapshot of a module scope's accumulated functions.
// Symbols preserves insertion order.
type Module struct {
	Symbols []GlobalSymbol
	Funcs   map[SymbolID]*Function
}

// Func returns the function bound to sym, or nil.
func (m *Module) Func(sym GlobalSymbol) *Function {
	if m == nil {
		return nil
	}
	return m.Funcs[sym.ID]
}

// Len returns the number of distinct functions in the module.
func (m *Module) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Symbols)
}
