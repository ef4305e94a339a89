package opreg

import (
	"testing"

	"rill/internal/diag"
	"rill/internal/ir"
)

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	if _, ok := r.Lookup("add"); ok {
		t.Fatalf("empty registry must not resolve operators")
	}

	r.Register("add", Attrs{
		InferType: func(call *ir.Expr, bag *diag.Bag) ir.Type {
			return ir.TensorType{Rank: 2, DType: ir.DTypeF32}
		},
	})

	attrs, ok := r.Lookup("add")
	if !ok {
		t.Fatalf("registered operator must resolve")
	}
	if attrs.InferShape != nil {
		t.Fatalf("shape callback was not registered and must be nil")
	}
	got := attrs.InferType(ir.NewCall("add"), diag.NewBag(4))
	if tt, ok := got.(ir.TensorType); !ok || tt.Rank != 2 {
		t.Fatalf("unexpected inferred type: %v", got)
	}
	if r.Ops() != 1 {
		t.Fatalf("ops = %d, want 1", r.Ops())
	}
}

func TestRegisterReplaces(t *testing.T) {
	r := New()
	r.Register("relu", Attrs{})
	r.Register("relu", Attrs{
		InferType: func(*ir.Expr, *diag.Bag) ir.Type { return ir.ShapeType{} },
	})
	attrs, _ := r.Lookup("relu")
	if attrs.InferType == nil {
		t.Fatalf("second registration must replace the first")
	}
	if r.Ops() != 1 {
		t.Fatalf("replacement must not grow the registry")
	}
}

func TestGlobalRegistryIsShared(t *testing.T) {
	if Global() != Global() {
		t.Fatalf("Global must return a singleton")
	}
}
