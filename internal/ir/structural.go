package ir

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Key is the content-addressed identity of a function: a digest over a
// canonical encoding of its structure. Equal content yields equal keys
// regardless of variable IDs, variable names, or object identity.
type Key [sha256.Size]byte

func (k Key) String() string {
	return fmt.Sprintf("%x", k[:8])
}

// StructuralKey computes the dedup key for fn. The encoding is deterministic
// and side-effect-free: variables are numbered by first occurrence (params
// first), cached shape/type annotations on inner nodes are ignored, and only
// declared param/result types participate.
func StructuralKey(fn *Function) (Key, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	w := &structuralWriter{enc: enc, ord: make(map[*Var]int)}
	if err := w.function(fn); err != nil {
		return Key{}, fmt.Errorf("ir: structural key: %w", err)
	}
	return sha256.Sum256(buf.Bytes()), nil
}

type structuralWriter struct {
	enc *msgpack.Encoder
	ord map[*Var]int
}

func (w *structuralWriter) varOrdinal(v *Var) int {
	if n, ok := w.ord[v]; ok {
		return n
	}
	n := len(w.ord)
	w.ord[v] = n
	return n
}

func (w *structuralWriter) function(fn *Function) error {
	if fn == nil {
		return fmt.Errorf("nil function")
	}
	if err := w.enc.EncodeArrayLen(4); err != nil {
		return err
	}
	if err := w.enc.EncodeArrayLen(len(fn.Params)); err != nil {
		return err
	}
	for _, p := range fn.Params {
		w.varOrdinal(p)
		if err := w.typ(p.Type); err != nil {
			return err
		}
	}
	if err := w.typ(fn.Ret); err != nil {
		return err
	}
	if err := w.enc.EncodeArrayLen(len(fn.Blocks)); err != nil {
		return err
	}
	for i := range fn.Blocks {
		if err := w.block(&fn.Blocks[i]); err != nil {
			return err
		}
	}
	return w.expr(fn.Body)
}

func (w *structuralWriter) block(b *BindingBlock) error {
	if err := w.enc.EncodeBool(b.Dataflow); err != nil {
		return err
	}
	if err := w.enc.EncodeArrayLen(len(b.Bindings)); err != nil {
		return err
	}
	for i := range b.Bindings {
		bind := &b.Bindings[i]
		if err := w.enc.EncodeUint8(uint8(bind.Kind)); err != nil {
			return err
		}
		if err := w.enc.EncodeInt(int64(w.varOrdinal(bind.Var))); err != nil {
			return err
		}
		if err := w.dims(bind.Pattern); err != nil {
			return err
		}
		if err := w.expr(bind.Value); err != nil {
			return err
		}
	}
	return nil
}

func (w *structuralWriter) expr(e *Expr) error {
	if e == nil {
		return w.enc.EncodeNil()
	}
	if err := w.enc.EncodeUint8(uint8(e.Kind)); err != nil {
		return err
	}
	switch d := e.Data.(type) {
	case VarRefData:
		return w.enc.EncodeInt(int64(w.varOrdinal(d.Var)))
	case CallData:
		if err := w.enc.EncodeString(d.Op); err != nil {
			return err
		}
		if err := w.enc.EncodeArrayLen(len(d.Args)); err != nil {
			return err
		}
		for _, a := range d.Args {
			if err := w.expr(a); err != nil {
				return err
			}
		}
		return nil
	case TupleData:
		if err := w.enc.EncodeArrayLen(len(d.Fields)); err != nil {
			return err
		}
		for _, f := range d.Fields {
			if err := w.expr(f); err != nil {
				return err
			}
		}
		return nil
	case TupleGetItemData:
		if err := w.expr(d.Tuple); err != nil {
			return err
		}
		return w.enc.EncodeInt(int64(d.Index))
	case ShapeData:
		return w.dims(d.Dims)
	case ConstData:
		return w.enc.EncodeInt64(d.Value)
	case nil:
		return w.enc.EncodeNil()
	default:
		return fmt.Errorf("unencodable expr kind %s", e.Kind)
	}
}

func (w *structuralWriter) dims(dims []Dim) error {
	if err := w.enc.EncodeArrayLen(len(dims)); err != nil {
		return err
	}
	for _, d := range dims {
		if err := w.enc.EncodeString(d.Sym); err != nil {
			return err
		}
		if err := w.enc.EncodeInt64(d.Value); err != nil {
			return err
		}
	}
	return nil
}

func (w *structuralWriter) typ(t Type) error {
	switch tt := t.(type) {
	case nil:
		return w.enc.EncodeNil()
	case TensorType:
		if err := w.enc.EncodeUint8(1); err != nil {
			return err
		}
		if err := w.enc.EncodeInt(int64(tt.Rank)); err != nil {
			return err
		}
		return w.enc.EncodeUint8(uint8(tt.DType))
	case ShapeType:
		return w.enc.EncodeUint8(2)
	case TupleType:
		if err := w.enc.EncodeUint8(3); err != nil {
			return err
		}
		if err := w.enc.EncodeArrayLen(len(tt.Fields)); err != nil {
			return err
		}
		for _, f := range tt.Fields {
			if err := w.typ(f); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unencodable type %T", t)
	}
}
