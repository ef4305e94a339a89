package scope

import (
	"fmt"

	"fortio.org/safecast"

	"rill/internal/ir"
)

// ModuleScope is the payload of a module-root scope: an insertion-ordered
// symbol table that deduplicates functions by structural content. Within one
// module build, two structurally equal functions always map to the same
// GlobalSymbol; the first insertion wins and later name hints are ignored.
type ModuleScope struct {
	symbols []ir.GlobalSymbol
	funcs   map[ir.SymbolID]*ir.Function
	index   map[ir.Key]ir.GlobalSymbol // structural key -> symbol
	used    map[string]int             // name hint -> times taken
}

func NewModuleScope() *ModuleScope {
	return &ModuleScope{
		funcs: make(map[ir.SymbolID]*ir.Function),
		index: make(map[ir.Key]ir.GlobalSymbol),
		used:  make(map[string]int),
	}
}

// Add records fn under a symbol derived from nameHint. If a structurally
// equal function was added before, its existing symbol is returned and no
// new entry is created.
func (m *ModuleScope) Add(nameHint string, fn *ir.Function) (ir.GlobalSymbol, error) {
	key, err := ir.StructuralKey(fn)
	if err != nil {
		return ir.GlobalSymbol{}, fmt.Errorf("scope: add function: %w", err)
	}
	if sym, ok := m.index[key]; ok {
		return sym, nil
	}
	id, err := safecast.Conv[uint32](len(m.symbols) + 1)
	if err != nil {
		panic(fmt.Errorf("scope: symbol id overflow: %w", err))
	}
	sym := ir.GlobalSymbol{ID: ir.SymbolID(id), Name: m.uniqueName(nameHint)}
	m.symbols = append(m.symbols, sym)
	m.funcs[sym.ID] = fn
	m.index[key] = sym
	return sym, nil
}

// uniqueName keeps symbol names distinct within the module without touching
// the scope-stack name registry: module symbols live in their own namespace.
func (m *ModuleScope) uniqueName(hint string) string {
	if hint == "" {
		hint = "fn"
	}
	n := m.used[hint]
	m.used[hint] = n + 1
	if n == 0 {
		return hint
	}
	return fmt.Sprintf("%s_%d", hint, n)
}

// Len returns the number of distinct functions recorded so far.
func (m *ModuleScope) Len() int {
	return len(m.symbols)
}

// Lookup returns the symbol a structurally equal function is already bound
// to, if any.
func (m *ModuleScope) Lookup(fn *ir.Function) (ir.GlobalSymbol, bool) {
	key, err := ir.StructuralKey(fn)
	if err != nil {
		return ir.GlobalSymbol{}, false
	}
	sym, ok := m.index[key]
	return sym, ok
}

// Module materializes the accumulated table as an immutable snapshot. It may
// be called at any time, not only at scope exit; later additions do not
// mutate earlier snapshots.
func (m *ModuleScope) Module() *ir.Module {
	syms := make([]ir.GlobalSymbol, len(m.symbols))
	copy(syms, m.symbols)
	funcs := make(map[ir.SymbolID]*ir.Function, len(m.funcs))
	for id, fn := range m.funcs {
		funcs[id] = fn
	}
	return &ir.Module{Symbols: syms, Funcs: funcs}
}
