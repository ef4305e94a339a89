package ir

import (
	"fmt"
	"strings"
)

// DType enumerates tensor element types.
type DType uint8

const (
	DTypeInvalid DType = iota
	DTypeBool
	DTypeI8
	DTypeI32
	DTypeI64
	DTypeU8
	DTypeF16
	DTypeF32
	DTypeF64
)

func (d DType) String() string {
	switch d {
	case DTypeBool:
		return "bool"
	case DTypeI8:
		return "i8"
	case DTypeI32:
		return "i32"
	case DTypeI64:
		return "i64"
	case DTypeU8:
		return "u8"
	case DTypeF16:
		return "f16"
	case DTypeF32:
		return "f32"
	case DTypeF64:
		return "f64"
	default:
		return "invalid"
	}
}

// Type is the closed sum of static types the builder propagates. A nil Type
// means "unresolved", which is a valid state later passes may fill in.
type Type interface {
	typeNode()
	String() string
}

// UnknownRank marks a tensor whose rank is not statically known.
const UnknownRank = -1

// TensorType is a (possibly rank-erased) tensor type.
type TensorType struct {
	Rank  int // UnknownRank when erased
	DType DType
}

func (TensorType) typeNode() {}

func (t TensorType) String() string {
	if t.Rank == UnknownRank {
		return fmt.Sprintf("Tensor[?, %s]", t.DType)
	}
	return fmt.Sprintf("Tensor[%d, %s]", t.Rank, t.DType)
}

// ShapeType is the abstract type of shape values (rank/dtype-erased).
type ShapeType struct{}

func (ShapeType) typeNode() {}

func (ShapeType) String() string { return "Shape" }

// TupleType is a fixed product of field types. Fields may contain nil for
// not-yet-resolved members.
type TupleType struct {
	Fields []Type
}

func (TupleType) typeNode() {}

func (t TupleType) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		if f == nil {
			parts[i] = "?"
			continue
		}
		parts[i] = f.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
