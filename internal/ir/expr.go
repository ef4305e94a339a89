package ir

import (
	"fmt"
	"strconv"
)

// ExprKind enumerates the expression kinds the builder understands.
type ExprKind uint8

const (
	// ExprInvalid is the zero kind.
	ExprInvalid ExprKind = iota
	// ExprVar references a variable.
	ExprVar
	// ExprCall applies a registered operator to arguments.
	ExprCall
	// ExprTuple groups expressions into a product value.
	ExprTuple
	// ExprTupleGetItem projects a tuple element at a static index.
	ExprTupleGetItem
	// ExprShape is a shape value: an ordered list of dimension expressions.
	ExprShape
	// ExprConst is a scalar constant (used in function bodies and dims).
	ExprConst
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprVar:
		return "Var"
	case ExprCall:
		return "Call"
	case ExprTuple:
		return "Tuple"
	case ExprTupleGetItem:
		return "TupleGetItem"
	case ExprShape:
		return "Shape"
	case ExprConst:
		return "Const"
	default:
		return "Invalid"
	}
}

// Expr is an expression node. Shape and Type are best-effort caches written
// during construction; nil means unresolved, not an error.
type Expr struct {
	Kind  ExprKind
	Shape *Expr // cached shape value (an ExprShape or ExprTuple of them)
	Type  Type  // cached checked type
	Data  ExprData
}

// ExprData is the interface for expression-specific payloads.
type ExprData interface {
	exprData()
}

// Var is a named value. Local vars are usable only within the dataflow block
// that defines them; global vars cross block boundaries inside their
// function. Locality is fixed at creation.
type Var struct {
	ID    VarID
	Name  string
	Local bool
	Shape *Expr // inferred shape, nil when unresolved
	Type  Type  // inferred type, nil when unresolved
}

func (v *Var) String() string {
	if v.Local {
		return "%" + v.Name
	}
	return "@" + v.Name
}

// VarRefData holds data for ExprVar.
type VarRefData struct {
	Var *Var
}

func (VarRefData) exprData() {}

// CallData holds data for ExprCall. Op is the operator identity used for
// registry lookups.
type CallData struct {
	Op   string
	Args []*Expr
}

func (CallData) exprData() {}

// TupleData holds data for ExprTuple.
type TupleData struct {
	Fields []*Expr
}

func (TupleData) exprData() {}

// TupleGetItemData holds data for ExprTupleGetItem.
type TupleGetItemData struct {
	Tuple *Expr
	Index int
}

func (TupleGetItemData) exprData() {}

// Dim is one dimension of a shape: symbolic (Sym != "") or a constant extent.
type Dim struct {
	Sym   string
	Value int64
}

func (d Dim) String() string {
	if d.Sym != "" {
		return d.Sym
	}
	return strconv.FormatInt(d.Value, 10)
}

// ShapeData holds data for ExprShape.
type ShapeData struct {
	Dims []Dim
}

func (ShapeData) exprData() {}

// ConstData holds data for ExprConst.
type ConstData struct {
	Value int64
}

func (ConstData) exprData() {}

// NewVarRef wraps v in an expression node carrying v's cached shape/type.
func NewVarRef(v *Var) *Expr {
	return &Expr{Kind: ExprVar, Shape: v.Shape, Type: v.Type, Data: VarRefData{Var: v}}
}

// NewCall builds an operator application with unresolved shape/type.
func NewCall(op string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Data: CallData{Op: op, Args: args}}
}

// NewTuple builds a tuple literal.
func NewTuple(fields ...*Expr) *Expr {
	return &Expr{Kind: ExprTuple, Data: TupleData{Fields: fields}}
}

// NewTupleGetItem builds a static projection of field index on tuple.
func NewTupleGetItem(tuple *Expr, index int) *Expr {
	return &Expr{Kind: ExprTupleGetItem, Data: TupleGetItemData{Tuple: tuple, Index: index}}
}

// NewShape builds a shape value from dims.
func NewShape(dims ...Dim) *Expr {
	return &Expr{Kind: ExprShape, Type: ShapeType{}, Data: ShapeData{Dims: dims}}
}

// NewConst builds a scalar integer constant.
func NewConst(v int64) *Expr {
	return &Expr{Kind: ExprConst, Data: ConstData{Value: v}}
}

// VarOf returns the variable referenced by e, or nil if e is not a VarRef.
func VarOf(e *Expr) *Var {
	if e == nil || e.Kind != ExprVar {
		return nil
	}
	d, ok := e.Data.(VarRefData)
	if !ok {
		return nil
	}
	return d.Var
}

func (e *Expr) String() string {
	switch e.Kind {
	case ExprVar:
		return e.Data.(VarRefData).Var.String()
	case ExprCall:
		d := e.Data.(CallData)
		return d.Op + "(...)"
	case ExprTuple:
		return fmt.Sprintf("tuple/%d", len(e.Data.(TupleData).Fields))
	case ExprTupleGetItem:
		d := e.Data.(TupleGetItemData)
		return fmt.Sprintf("%s.%d", d.Tuple, d.Index)
	case ExprShape:
		return fmt.Sprintf("shape%v", e.Data.(ShapeData).Dims)
	case ExprConst:
		return strconv.FormatInt(e.Data.(ConstData).Value, 10)
	default:
		return "<invalid>"
	}
}
