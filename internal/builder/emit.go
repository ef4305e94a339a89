package builder

import (
	"fmt"

	"rill/internal/ir"
	"rill/internal/scope"
	"rill/internal/trace"
)

// Emit appends a caller-constructed VarBinding to the current block and
// records its defining expression. Inside a dataflow block the bound var
// must be local; promote block results with EmitOutput instead.
func (b *Builder) Emit(binding ir.Binding) (*ir.Var, error) {
	if binding.Kind != ir.BindVar {
		return nil, fmt.Errorf("%w: Emit expects a VarBinding, got %s", ErrInvalidScope, binding.Kind)
	}
	cur := b.stack.Current()
	if cur == nil {
		return nil, scope.ErrEmptyScopeStack
	}
	switch cur.Kind() {
	case scope.KindDataflow:
		if !binding.Var.Local {
			return nil, fmt.Errorf("%w: Emit of global var %s in a dataflow block, use EmitOutput for block outputs",
				ErrScopeDiscipline, binding.Var)
		}
	case scope.KindBinding:
		// Any locality is accepted here; constructing a local var outside a
		// dataflow block is meaningless under the locality invariant and is
		// the caller's contract to uphold.
	default:
		return nil, fmt.Errorf("%w: Emit against %s scope", ErrInvalidScope, cur.Kind())
	}
	cur.Append(binding)
	b.id2expr[binding.Var.ID] = binding.Value
	b.trace(trace.LevelEmit, "emit", binding.Var.String())
	return binding.Var, nil
}

// EmitOutput promotes a dataflow-local binding to a block output: the value
// is rebound to a fresh global var named from the enclosing scope, which is
// what subsequent code outside the block sees.
func (b *Builder) EmitOutput(binding ir.Binding) (*ir.Var, error) {
	if binding.Kind != ir.BindVar {
		return nil, fmt.Errorf("%w: EmitOutput expects a VarBinding, got %s", ErrInvalidScope, binding.Kind)
	}
	cur := b.stack.Current()
	if cur == nil || cur.Kind() != scope.KindDataflow {
		return nil, fmt.Errorf("%w: EmitOutput must be called inside a dataflow block", ErrScopeDiscipline)
	}
	if !binding.Var.Local {
		return nil, fmt.Errorf("%w: EmitOutput of var %s that is already global", ErrScopeDiscipline, binding.Var)
	}
	out, err := b.newOutputVar("")
	if err != nil {
		return nil, err
	}
	out.Shape = binding.Var.Shape
	out.Type = binding.Var.Type
	cur.Append(ir.VarBinding(out, binding.Value))
	b.id2expr[out.ID] = binding.Value
	b.trace(trace.LevelEmit, "emit.output", out.String())
	return out, nil
}

// EmitMatchShape appends a caller-constructed match-shape binding. Inside a
// dataflow block the var must be local; inside a binding block it must be
// global, since a local-only var cannot leak outside its block.
func (b *Builder) EmitMatchShape(binding ir.Binding) (*ir.Var, error) {
	if binding.Kind != ir.BindMatchShape {
		return nil, fmt.Errorf("%w: EmitMatchShape expects a MatchShapeBinding, got %s", ErrInvalidScope, binding.Kind)
	}
	cur := b.stack.Current()
	if cur == nil {
		return nil, scope.ErrEmptyScopeStack
	}
	switch cur.Kind() {
	case scope.KindDataflow:
		if !binding.Var.Local {
			return nil, fmt.Errorf("%w: EmitMatchShape of global var %s in a dataflow block",
				ErrScopeDiscipline, binding.Var)
		}
	case scope.KindBinding:
		if binding.Var.Local {
			return nil, fmt.Errorf("%w: cannot emit dataflow-local var %s outside a dataflow block",
				ErrScopeDiscipline, binding.Var)
		}
	default:
		return nil, fmt.Errorf("%w: EmitMatchShape against %s scope", ErrInvalidScope, cur.Kind())
	}
	cur.Append(binding)
	// Deliberately no id2expr update: what expression a match-shape-bound
	// var should resolve to is an unresolved design question, so lookups on
	// it fail until a product decision lands.
	b.trace(trace.LevelEmit, "emit.match", binding.Var.String())
	return binding.Var, nil
}

// EmitExpr allocates a scoped var for expr (local in dataflow blocks, global
// in binding blocks), runs shape/type inference, and emits the binding. An
// empty nameHint picks the configured prefix.
func (b *Builder) EmitExpr(expr *ir.Expr, nameHint string) (*ir.Var, error) {
	v, err := b.newScopedVar(nameHint)
	if err != nil {
		return nil, err
	}
	b.inferVarBinding(v, expr)
	return b.Emit(ir.VarBinding(v, expr))
}

// EmitOutputExpr binds expr to a fresh global output var of the current
// dataflow block, with inference.
func (b *Builder) EmitOutputExpr(expr *ir.Expr, nameHint string) (*ir.Var, error) {
	cur := b.stack.Current()
	if cur == nil || cur.Kind() != scope.KindDataflow {
		return nil, fmt.Errorf("%w: EmitOutput must be called inside a dataflow block", ErrScopeDiscipline)
	}
	out, err := b.newOutputVar(nameHint)
	if err != nil {
		return nil, err
	}
	b.inferVarBinding(out, expr)
	cur.Append(ir.VarBinding(out, expr))
	b.id2expr[out.ID] = expr
	b.trace(trace.LevelEmit, "emit.output", out.String())
	return out, nil
}

// EmitMatchShapeExpr binds value to a scoped var refined by pattern:
// an abstract shape value yields a shape-typed var with no tensor shape; a
// ranked tensor value yields a var whose shape is the pattern and whose type
// is a tensor of rank len(pattern) with the original dtype. Any other static
// type fails with ErrTypeMismatch.
func (b *Builder) EmitMatchShapeExpr(value *ir.Expr, pattern []ir.Dim, nameHint string) (*ir.Var, error) {
	v, err := b.newScopedVar(nameHint)
	if err != nil {
		return nil, err
	}
	switch t := value.Type.(type) {
	case ir.ShapeType:
		v.Type = ir.ShapeType{}
	case ir.TensorType:
		v.Shape = ir.NewShape(pattern...)
		v.Type = ir.TensorType{Rank: len(pattern), DType: t.DType}
	case nil:
		return nil, fmt.Errorf("%w: match-shape value %s has unresolved type", ErrTypeMismatch, value)
	default:
		return nil, fmt.Errorf("%w: match-shape value %s must be a tensor or shape, got %s",
			ErrTypeMismatch, value, t)
	}
	return b.EmitMatchShape(ir.MatchShapeBinding(value, pattern, v))
}

// newScopedVar allocates a fresh var whose locality is implied by the
// current scope kind.
func (b *Builder) newScopedVar(nameHint string) (*ir.Var, error) {
	cur := b.stack.Current()
	if cur == nil {
		return nil, scope.ErrEmptyScopeStack
	}
	switch cur.Kind() {
	case scope.KindDataflow:
		return b.NewVar(nameHint, true)
	case scope.KindBinding:
		return b.NewVar(nameHint, false)
	default:
		return nil, fmt.Errorf("%w: cannot allocate a scoped var in %s scope", ErrInvalidScope, cur.Kind())
	}
}

// newOutputVar allocates a fresh global var whose name is owned by the scope
// enclosing the current dataflow block, so it outlives the block.
func (b *Builder) newOutputVar(nameHint string) (*ir.Var, error) {
	if nameHint == "" {
		nameHint = b.opts.GlobalPrefix
	}
	owner := b.stack.Enclosing()
	name, err := b.stack.FreshName(nameHint, owner)
	if err != nil {
		return nil, err
	}
	return &ir.Var{ID: b.allocVarID(), Name: name, Local: false}, nil
}
