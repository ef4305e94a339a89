package builder

import (
	"rill/internal/diag"
	"rill/internal/ir"
)

// inferVarBinding populates v's shape/type from expr, best effort. Cached
// attributes on expr are reused verbatim and never recomputed; whatever
// cannot be determined locally stays unresolved for later passes.
func (b *Builder) inferVarBinding(v *ir.Var, expr *ir.Expr) {
	switch d := expr.Data.(type) {
	case ir.CallData:
		if expr.Shape == nil {
			expr.Shape = b.inferCallShape(expr, d)
		}
		if expr.Type == nil {
			expr.Type = b.inferCallType(expr, d)
		}
		v.Shape = expr.Shape
		v.Type = expr.Type
	case ir.VarRefData:
		// A direct reference copies the referenced var's attributes
		// unchanged.
		v.Shape = d.Var.Shape
		v.Type = d.Var.Type
	case ir.TupleGetItemData:
		v.Shape, v.Type = projectTupleItem(expr, d)
	default:
		v.Shape = expr.Shape
		v.Type = expr.Type
	}
}

// inferCallShape runs the operator's registered shape inference with a
// fresh diagnostic context. No registration means no inference, not an
// error.
func (b *Builder) inferCallShape(call *ir.Expr, d ir.CallData) *ir.Expr {
	attrs, ok := b.ops.Lookup(d.Op)
	if !ok || attrs.InferShape == nil {
		return nil
	}
	bag := diag.NewBag(b.opts.DiagLimit)
	sh := attrs.InferShape(call, bag)
	b.diags.Merge(bag)
	return sh
}

func (b *Builder) inferCallType(call *ir.Expr, d ir.CallData) ir.Type {
	attrs, ok := b.ops.Lookup(d.Op)
	if !ok || attrs.InferType == nil {
		return nil
	}
	bag := diag.NewBag(b.opts.DiagLimit)
	ty := attrs.InferType(call, bag)
	b.diags.Merge(bag)
	return ty
}

// projectTupleItem propagates the i-th element's shape/type when the tuple
// operand is a variable whose attributes are statically a known tuple. Each
// side propagates independently; anything else stays unresolved.
func projectTupleItem(expr *ir.Expr, d ir.TupleGetItemData) (*ir.Expr, ir.Type) {
	shape, typ := expr.Shape, expr.Type
	rv := ir.VarOf(d.Tuple)
	if rv == nil {
		return shape, typ
	}
	if shape == nil && rv.Shape != nil && rv.Shape.Kind == ir.ExprTuple {
		fields := rv.Shape.Data.(ir.TupleData).Fields
		if d.Index >= 0 && d.Index < len(fields) {
			shape = fields[d.Index]
		}
	}
	if typ == nil {
		if tt, ok := rv.Type.(ir.TupleType); ok {
			if d.Index >= 0 && d.Index < len(tt.Fields) {
				typ = tt.Fields[d.Index]
			}
		}
	}
	return shape, typ
}
