// Package builder implements rill's incremental IR construction protocol: a
// state machine over the scope stack with two open-block variants (dataflow
// and plain binding blocks) inside exactly one module-root scope.
//
// A caller begins a block, appends bindings through the Emit family (each
// call runs best-effort local shape/type inference), and ends the block to
// materialize it. Dataflow blocks isolate their local variables; only vars
// promoted through EmitOutput escape. The builder additionally keeps a
// builder-lifetime id→expression map so later code can look up what
// expression defined a variable across block boundaries — deliberately never
// cleared by scope pops.
package builder

import (
	"fmt"

	"fortio.org/safecast"

	"rill/internal/buildcfg"
	"rill/internal/diag"
	"rill/internal/ir"
	"rill/internal/opreg"
	"rill/internal/scope"
	"rill/internal/trace"
)

// Builder drives one single-threaded build session. Independent builders
// may run concurrently; one builder must not be shared between goroutines.
type Builder struct {
	stack   *scope.Stack
	ops     *opreg.Registry
	opts    buildcfg.Options
	tr      trace.Tracer
	session string

	// id2expr survives scope pops for the builder's whole lifetime,
	// enabling cross-block lookup of defining expressions.
	id2expr map[ir.VarID]*ir.Expr
	diags   *diag.Bag
	nextVar uint32
}

// New constructs a builder. A nil registry falls back to opreg.Global(); a
// nil tracer to trace.Nop.
func New(opts buildcfg.Options, reg *opreg.Registry, tr trace.Tracer) (*Builder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = opreg.Global()
	}
	if tr == nil {
		tr = trace.Nop
	}
	return &Builder{
		stack:   scope.NewStack(),
		ops:     reg,
		opts:    opts,
		tr:      tr,
		id2expr: make(map[ir.VarID]*ir.Expr),
		diags:   diag.NewBag(opts.DiagLimit),
	}, nil
}

// NewDefault constructs a builder with default options, the global operator
// registry and no tracing.
func NewDefault() *Builder {
	b, err := New(buildcfg.Default(), nil, nil)
	if err != nil {
		panic(err)
	}
	return b
}

// SetSession tags trace events with a session identity.
func (b *Builder) SetSession(id string) { b.session = id }

// Diagnostics returns everything operator inference callbacks reported
// during this session.
func (b *Builder) Diagnostics() *diag.Bag { return b.diags }

// BeginModule opens the module-root scope. Exactly one may be open per
// builder; nesting modules is caller misuse.
func (b *Builder) BeginModule() error {
	if b.stack.NearestModule() != nil {
		return fmt.Errorf("%w: module scope already open", ErrInvalidScope)
	}
	b.stack.Push(scope.NewModuleRootScope())
	b.trace(trace.LevelSession, "module.begin", "")
	return nil
}

// EndModule pops the module-root scope and returns the materialized module.
func (b *Builder) EndModule() (*ir.Module, error) {
	cur := b.stack.Current()
	if cur == nil {
		return nil, scope.ErrEmptyScopeStack
	}
	if cur.Kind() != scope.KindModuleRoot {
		return nil, fmt.Errorf("%w: EndModule against %s scope", ErrInvalidScope, cur.Kind())
	}
	popped, err := b.stack.Pop()
	if err != nil {
		return nil, err
	}
	b.trace(trace.LevelSession, "module.end", "")
	return popped.Module().Module(), nil
}

// BeginDataflowBlock opens a dataflow block: a region whose only externally
// observable effects are the vars it marks as outputs.
func (b *Builder) BeginDataflowBlock() {
	b.stack.Push(scope.NewDataflowScope())
	b.trace(trace.LevelBlock, "block.begin", "dataflow")
}

// BeginBindingBlock opens a plain binding block whose bindings stay visible
// to subsequent code in the same function.
func (b *Builder) BeginBindingBlock() {
	b.stack.Push(scope.NewBindingScope())
	b.trace(trace.LevelBlock, "block.begin", "binding")
}

// EndBlock pops the current block scope and wraps its bindings. Teardown
// callbacks registered via OnScopeExit run before the block is returned.
func (b *Builder) EndBlock() (ir.BindingBlock, error) {
	cur := b.stack.Current()
	if cur == nil {
		return ir.BindingBlock{}, scope.ErrEmptyScopeStack
	}
	switch cur.Kind() {
	case scope.KindDataflow, scope.KindBinding:
	default:
		return ir.BindingBlock{}, fmt.Errorf("%w: EndBlock against %s scope", ErrInvalidScope, cur.Kind())
	}
	popped, err := b.stack.Pop()
	if err != nil {
		return ir.BindingBlock{}, err
	}
	b.trace(trace.LevelBlock, "block.end", popped.Kind().String())
	return ir.BindingBlock{
		Dataflow: popped.Kind() == scope.KindDataflow,
		Bindings: popped.Bindings,
	}, nil
}

// CurrentBlockIsDataflow reports whether the innermost scope is a dataflow
// block.
func (b *Builder) CurrentBlockIsDataflow() bool {
	cur := b.stack.Current()
	return cur != nil && cur.Kind() == scope.KindDataflow
}

// OnScopeExit registers a teardown action on the current scope, run in
// registration order when the scope is popped.
func (b *Builder) OnScopeExit(fn func()) error {
	cur := b.stack.Current()
	if cur == nil {
		return scope.ErrEmptyScopeStack
	}
	cur.OnExit(fn)
	return nil
}

// LookupBinding returns the expression that defined the variable with the
// given identity, across block boundaries.
func (b *Builder) LookupBinding(id ir.VarID) (*ir.Expr, error) {
	e, ok := b.id2expr[id]
	if !ok {
		return nil, fmt.Errorf("%w: no binding recorded for var #%d", ErrUnboundVariable, id)
	}
	return e, nil
}

// AddFuncToModule records fn in the nearest module-root scope, returning the
// existing symbol when a structurally equal function was already added.
func (b *Builder) AddFuncToModule(fn *ir.Function, nameHint string) (ir.GlobalSymbol, error) {
	mod := b.stack.NearestModule()
	if mod == nil {
		return ir.GlobalSymbol{}, fmt.Errorf("%w: AddFuncToModule(%q)", ErrNoModuleScope, nameHint)
	}
	before := mod.Len()
	sym, err := mod.Add(nameHint, fn)
	if err != nil {
		return ir.GlobalSymbol{}, err
	}
	if mod.Len() == before {
		b.trace(trace.LevelSession, "module.add", sym.Name+" (dedup)")
	} else {
		b.trace(trace.LevelSession, "module.add", sym.Name)
	}
	return sym, nil
}

// Module materializes the nearest module-root scope's symbol table.
func (b *Builder) Module() (*ir.Module, error) {
	mod := b.stack.NearestModule()
	if mod == nil {
		return nil, fmt.Errorf("%w: Module()", ErrNoModuleScope)
	}
	return mod.Module(), nil
}

// Close verifies the scope stack unwound completely. Call after module
// construction; a non-empty stack means a begin without a matching end.
func (b *Builder) Close() error {
	if d := b.stack.Depth(); d != 0 {
		return fmt.Errorf("%w: %d scope(s) still open, innermost is %s",
			ErrUnclosedScopes, d, b.stack.Current().Kind())
	}
	return nil
}

// NewVar allocates a fresh registered variable in the current scope. Use it
// to construct explicit bindings for the non-convenience Emit forms. An
// empty hint picks the configured prefix for the locality.
func (b *Builder) NewVar(nameHint string, local bool) (*ir.Var, error) {
	if nameHint == "" {
		if local {
			nameHint = b.opts.LocalPrefix
		} else {
			nameHint = b.opts.GlobalPrefix
		}
	}
	name, err := b.stack.FreshName(nameHint, nil)
	if err != nil {
		return nil, err
	}
	return &ir.Var{ID: b.allocVarID(), Name: name, Local: local}, nil
}

func (b *Builder) allocVarID() ir.VarID {
	id, err := safecast.Conv[uint32](uint64(b.nextVar) + 1)
	if err != nil {
		panic(fmt.Errorf("builder: var id overflow: %w", err))
	}
	b.nextVar = id
	return ir.VarID(id)
}

func (b *Builder) trace(level trace.Level, op, detail string) {
	if !b.tr.Enabled(level) {
		return
	}
	b.tr.Emit(trace.Event{Level: level, Session: b.session, Op: op, Detail: detail})
}
