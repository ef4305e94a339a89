package builder

import (
	"errors"
	"testing"

	"rill/internal/buildcfg"
	"rill/internal/ir"
	"rill/internal/opreg"
	"rill/internal/scope"
)

func newTestBuilder(t *testing.T, reg *opreg.Registry) *Builder {
	t.Helper()
	if reg == nil {
		reg = opreg.New()
	}
	b, err := New(buildcfg.Default(), reg, nil)
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	return b
}

func TestDataflowBlockProtocol(t *testing.T) {
	b := newTestBuilder(t, nil)
	if err := b.BeginModule(); err != nil {
		t.Fatalf("begin module: %v", err)
	}
	b.BeginDataflowBlock()
	if !b.CurrentBlockIsDataflow() {
		t.Fatalf("current block must be dataflow")
	}

	lv, err := b.EmitExpr(ir.NewCall("unregistered.op"), "")
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !lv.Local {
		t.Fatalf("emit inside a dataflow block must allocate a local var")
	}
	if lv.Name != "lv0" {
		t.Fatalf("first local name = %q, want lv0", lv.Name)
	}
	if lv.Shape != nil || lv.Type != nil {
		t.Fatalf("unregistered operator must leave shape/type unresolved")
	}

	gv, err := b.EmitOutput(ir.VarBinding(lv, ir.NewVarRef(lv)))
	if err != nil {
		t.Fatalf("emit output: %v", err)
	}
	if gv.Local {
		t.Fatalf("block output must be a fresh global var")
	}
	if gv.ID == lv.ID {
		t.Fatalf("output var must be fresh, got the local var back")
	}
	if gv.Name != "gv0" {
		t.Fatalf("first output name = %q, want gv0", gv.Name)
	}

	block, err := b.EndBlock()
	if err != nil {
		t.Fatalf("end block: %v", err)
	}
	if !block.Dataflow {
		t.Fatalf("expected a dataflow block")
	}
	if len(block.Bindings) != 2 {
		t.Fatalf("block must hold both bindings in emission order, got %d", len(block.Bindings))
	}
	if block.Bindings[0].Var != lv || block.Bindings[1].Var != gv {
		t.Fatalf("bindings out of emission order")
	}

	if _, err := b.EndModule(); err != nil {
		t.Fatalf("end module: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestBindingBlockProtocol(t *testing.T) {
	b := newTestBuilder(t, nil)
	b.BeginBindingBlock()
	gv, err := b.EmitExpr(ir.NewCall("f"), "x")
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if gv.Local {
		t.Fatalf("emit inside a binding block must allocate a global var")
	}
	if gv.Name != "x0" {
		t.Fatalf("name hint must seed the probe, got %q", gv.Name)
	}
	block, err := b.EndBlock()
	if err != nil {
		t.Fatalf("end block: %v", err)
	}
	if block.Dataflow {
		t.Fatalf("expected a plain binding block")
	}
}

func TestEmitGlobalVarInDataflowBlock(t *testing.T) {
	b := newTestBuilder(t, nil)
	b.BeginBindingBlock()
	gv, err := b.NewVar("", false)
	if err != nil {
		t.Fatalf("new var: %v", err)
	}
	b.BeginDataflowBlock()
	_, err = b.Emit(ir.VarBinding(gv, ir.NewConst(1)))
	if !errors.Is(err, ErrScopeDiscipline) {
		t.Fatalf("emit of a global var in a dataflow block must fail discipline, got %v", err)
	}
	if _, err := b.EndBlock(); err != nil {
		t.Fatalf("end block: %v", err)
	}

	// The same binding is fine in the enclosing binding block.
	if _, err := b.Emit(ir.VarBinding(gv, ir.NewConst(1))); err != nil {
		t.Fatalf("emit in binding block: %v", err)
	}
}

func TestEmitOutputOutsideDataflow(t *testing.T) {
	b := newTestBuilder(t, nil)
	b.BeginBindingBlock()
	lv := &ir.Var{ID: 99, Name: "stray", Local: true}
	_, err := b.EmitOutput(ir.VarBinding(lv, ir.NewConst(1)))
	if !errors.Is(err, ErrScopeDiscipline) {
		t.Fatalf("EmitOutput outside a dataflow block must fail discipline, got %v", err)
	}
	if _, err := b.EmitOutputExpr(ir.NewConst(1), ""); !errors.Is(err, ErrScopeDiscipline) {
		t.Fatalf("EmitOutputExpr outside a dataflow block must fail discipline, got %v", err)
	}
}

func TestEmitOutputRequiresLocalVar(t *testing.T) {
	b := newTestBuilder(t, nil)
	b.BeginDataflowBlock()
	gv := &ir.Var{ID: 7, Name: "already_global"}
	_, err := b.EmitOutput(ir.VarBinding(gv, ir.NewConst(1)))
	if !errors.Is(err, ErrScopeDiscipline) {
		t.Fatalf("EmitOutput of a global var must fail discipline, got %v", err)
	}
}

func TestLookupBinding(t *testing.T) {
	b := newTestBuilder(t, nil)
	b.BeginDataflowBlock()
	value := ir.NewCall("op")
	lv, err := b.EmitExpr(value, "")
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	got, err := b.LookupBinding(lv.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != value {
		t.Fatalf("lookup must return the defining expression")
	}
	if _, err := b.LookupBinding(ir.VarID(12345)); !errors.Is(err, ErrUnboundVariable) {
		t.Fatalf("lookup of an unemitted var must fail, got %v", err)
	}
}

// Locks in the open question: match-shape bindings do not record a defining
// expression, so lookups on their vars fail.
func TestMatchShapeDoesNotRecordBinding(t *testing.T) {
	b := newTestBuilder(t, nil)
	b.BeginDataflowBlock()
	value := ir.NewConst(0)
	value.Type = ir.TensorType{Rank: 2, DType: ir.DTypeF32}
	v, err := b.EmitMatchShapeExpr(value, []ir.Dim{{Sym: "n"}, {Sym: "m"}}, "")
	if err != nil {
		t.Fatalf("emit match shape: %v", err)
	}
	if _, err := b.LookupBinding(v.ID); !errors.Is(err, ErrUnboundVariable) {
		t.Fatalf("match-shape-bound var must have no recorded binding, got %v", err)
	}
}

func TestMatchShapeLocalityDiscipline(t *testing.T) {
	b := newTestBuilder(t, nil)
	value := ir.NewConst(0)
	value.Type = ir.ShapeType{}

	b.BeginBindingBlock()
	lv := &ir.Var{ID: 50, Name: "leak", Local: true}
	_, err := b.EmitMatchShape(ir.MatchShapeBinding(value, nil, lv))
	if !errors.Is(err, ErrScopeDiscipline) {
		t.Fatalf("local var in a binding block must fail discipline, got %v", err)
	}

	b.BeginDataflowBlock()
	gv := &ir.Var{ID: 51, Name: "out"}
	_, err = b.EmitMatchShape(ir.MatchShapeBinding(value, nil, gv))
	if !errors.Is(err, ErrScopeDiscipline) {
		t.Fatalf("global var in a dataflow block must fail discipline, got %v", err)
	}
}

func TestEndBlockAgainstModuleScope(t *testing.T) {
	b := newTestBuilder(t, nil)
	if err := b.BeginModule(); err != nil {
		t.Fatalf("begin module: %v", err)
	}
	if _, err := b.EndBlock(); !errors.Is(err, ErrInvalidScope) {
		t.Fatalf("EndBlock against the module scope must fail, got %v", err)
	}
	b.BeginDataflowBlock()
	if _, err := b.EndModule(); !errors.Is(err, ErrInvalidScope) {
		t.Fatalf("EndModule against a block scope must fail, got %v", err)
	}
}

func TestEndBlockOnEmptyStack(t *testing.T) {
	b := newTestBuilder(t, nil)
	if _, err := b.EndBlock(); !errors.Is(err, scope.ErrEmptyScopeStack) {
		t.Fatalf("expected ErrEmptyScopeStack, got %v", err)
	}
}

func TestBeginModuleTwice(t *testing.T) {
	b := newTestBuilder(t, nil)
	if err := b.BeginModule(); err != nil {
		t.Fatalf("begin module: %v", err)
	}
	if err := b.BeginModule(); !errors.Is(err, ErrInvalidScope) {
		t.Fatalf("nested module scopes must be rejected, got %v", err)
	}
}

func TestModuleOperationsRequireModuleScope(t *testing.T) {
	b := newTestBuilder(t, nil)
	b.BeginBindingBlock()
	fn := &ir.Function{Body: ir.NewConst(1)}
	if _, err := b.AddFuncToModule(fn, "f"); !errors.Is(err, ErrNoModuleScope) {
		t.Fatalf("AddFuncToModule without a module scope must fail, got %v", err)
	}
	if _, err := b.Module(); !errors.Is(err, ErrNoModuleScope) {
		t.Fatalf("Module without a module scope must fail, got %v", err)
	}
}

func TestAddFuncToModuleDedup(t *testing.T) {
	b := newTestBuilder(t, nil)
	if err := b.BeginModule(); err != nil {
		t.Fatalf("begin module: %v", err)
	}
	mk := func() *ir.Function {
		x := &ir.Var{ID: 1, Name: "x"}
		return &ir.Function{Params: []*ir.Var{x}, Body: ir.NewCall("relu", ir.NewVarRef(x))}
	}
	a, err := b.AddFuncToModule(mk(), "relu_fn")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	c, err := b.AddFuncToModule(mk(), "other_hint")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if a != c {
		t.Fatalf("structural duplicates must share one symbol")
	}
	mod, err := b.EndModule()
	if err != nil {
		t.Fatalf("end module: %v", err)
	}
	if mod.Len() != 1 {
		t.Fatalf("module must hold one function, got %d", mod.Len())
	}
}

func TestOnScopeExitOrder(t *testing.T) {
	b := newTestBuilder(t, nil)
	b.BeginDataflowBlock()
	var order []int
	b.OnScopeExit(func() { order = append(order, 1) })
	b.OnScopeExit(func() { order = append(order, 2) })
	if _, err := b.EndBlock(); err != nil {
		t.Fatalf("end block: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("teardown callbacks must run in registration order, got %v", order)
	}
	if err := b.OnScopeExit(func() {}); !errors.Is(err, scope.ErrEmptyScopeStack) {
		t.Fatalf("OnScopeExit with no open scope must fail, got %v", err)
	}
}

func TestCloseDetectsUnclosedScopes(t *testing.T) {
	b := newTestBuilder(t, nil)
	b.BeginModule()
	b.BeginDataflowBlock()
	if err := b.Close(); !errors.Is(err, ErrUnclosedScopes) {
		t.Fatalf("close with open scopes must fail, got %v", err)
	}
}

// Output names belong to the enclosing scope, so they survive the dataflow
// block while local names are released for reuse.
func TestOutputNamesSurviveBlock(t *testing.T) {
	b := newTestBuilder(t, nil)
	b.BeginModule()

	b.BeginDataflowBlock()
	lv, _ := b.EmitExpr(ir.NewCall("op"), "")
	b.EmitOutput(ir.VarBinding(lv, ir.NewVarRef(lv)))
	b.EndBlock()

	b.BeginDataflowBlock()
	lv2, err := b.EmitExpr(ir.NewCall("op"), "")
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if lv2.Name != "lv0" {
		t.Fatalf("local names must be reusable after the block pops, got %q", lv2.Name)
	}
	out, err := b.EmitOutputExpr(ir.NewVarRef(lv2), "")
	if err != nil {
		t.Fatalf("emit output: %v", err)
	}
	if out.Name != "gv1" {
		t.Fatalf("gv0 must still be live from the first block, got %q", out.Name)
	}
}
