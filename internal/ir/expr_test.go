package ir

import "testing"

func TestVarRefCarriesCachedAttrs(t *testing.T) {
	v := &Var{
		ID:    1,
		Name:  "gv0",
		Shape: NewShape(Dim{Sym: "n"}, Dim{Value: 8}),
		Type:  TensorType{Rank: 2, DType: DTypeF32},
	}
	ref := NewVarRef(v)
	if ref.Shape != v.Shape {
		t.Fatalf("var ref must alias the var's cached shape")
	}
	if ref.Type != v.Type {
		t.Fatalf("var ref must alias the var's cached type")
	}
	if VarOf(ref) != v {
		t.Fatalf("VarOf must unwrap the referenced var")
	}
	if VarOf(NewConst(1)) != nil {
		t.Fatalf("VarOf on non-var expr must be nil")
	}
}

func TestTypeStrings(t *testing.T) {
	cases := []struct {
		t    Type
		want string
	}{
		{TensorType{Rank: 2, DType: DTypeF32}, "Tensor[2, f32]"},
		{TensorType{Rank: UnknownRank, DType: DTypeF64}, "Tensor[?, f64]"},
		{ShapeType{}, "Shape"},
		{TupleType{Fields: []Type{ShapeType{}, nil}}, "(Shape, ?)"},
	}
	for _, c := range cases {
		if got := c.t.String(); got != c.want {
			t.Fatalf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestVarStringLocality(t *testing.T) {
	local := &Var{Name: "lv0", Local: true}
	global := &Var{Name: "gv0"}
	if local.String() != "%lv0" || global.String() != "@gv0" {
		t.Fatalf("unexpected var rendering: %s / %s", local, global)
	}
}

func TestDimString(t *testing.T) {
	if (Dim{Sym: "n"}).String() != "n" {
		t.Fatalf("symbolic dim renders its symbol")
	}
	if (Dim{Value: 16}).String() != "16" {
		t.Fatalf("constant dim renders its extent")
	}
}
