package ir

// BindingKind distinguishes plain variable bindings from match-shape
// refinements.
type BindingKind uint8

const (
	BindInvalid BindingKind = iota
	// BindVar is `var = value`.
	BindVar
	// BindMatchShape is `var = match_shape(value, pattern)`.
	BindMatchShape
)

func (k BindingKind) String() string {
	switch k {
	case BindVar:
		return "VarBinding"
	case BindMatchShape:
		return "MatchShapeBinding"
	default:
		return "Invalid"
	}
}

// Binding is one entry of a binding block.
type Binding struct {
	Kind    BindingKind
	Var     *Var
	Value   *Expr
	Pattern []Dim // BindMatchShape only
}

// VarBinding builds a plain binding.
func VarBinding(v *Var, value *Expr) Binding {
	return Binding{Kind: BindVar, Var: v, Value: value}
}

// MatchShapeBinding builds a shape-refinement binding.
func MatchShapeBinding(value *Expr, pattern []Dim, v *Var) Binding {
	return Binding{Kind: BindMatchShape, Var: v, Value: value, Pattern: pattern}
}

// BindingBlock is a finished block of bindings in emission order. A dataflow
// block's local variables are invisible outside it; only vars promoted via
// EmitOutput escape.
type BindingBlock struct {
	Dataflow bool
	Bindings []Binding
}
