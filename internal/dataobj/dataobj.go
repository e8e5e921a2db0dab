// Package dataobj implements the DataObject sum type of spec.md §3: an
// abstract handle to the quad-visible location of a value, threaded
// between semantic actions.
package dataobj

import (
	"github.com/mexlang/mexc/internal/quad"
	"github.com/mexlang/mexc/internal/types"
)

// DataObject is implemented by each of the five operand shapes named in
// spec.md §3. The interface's (unexported) method set is what makes this
// a closed, discriminated sum rather than an untagged union: only the
// types in this package can satisfy it, per SPEC_FULL.md §9.
type DataObject interface {
	Type() *types.Descriptor
	dataObject()
}

// Literal is a compile-time constant, eligible for constant folding
// (spec.md §4.4).
type Literal struct {
	Val   int64
	Str   string // valid iff Typ is the string primitive
	Typ   *types.Descriptor
}

func (Literal) dataObject()            {}
func (l Literal) Type() *types.Descriptor { return l.Typ }

// Named is a variable or argument location.
type Named struct {
	SymName string
	Typ     *types.Descriptor
	Ref     bool // true if this names a `ref` formal: the symbol holds an address
	// ArgType is the formal type this object was declared with, if it
	// originated as a function-argument slot, so the caller can coerce
	// toward it (spec.md §3: "its declared formal type (argtype)").
	ArgType *types.Descriptor
}

func (Named) dataObject()               {}
func (n Named) Type() *types.Descriptor { return n.Typ }

// Temporary is a compiler-allocated temporary register.
type Temporary struct {
	ID      int
	Typ     *types.Descriptor
	Freed   bool // when true, sema's releaseIfTemp skips this value; releasing a temporary does not set it
}

func (Temporary) dataObject()               {}
func (t Temporary) Type() *types.Descriptor { return t.Typ }

// Indexed is base[index].
type Indexed struct {
	Base    DataObject
	Index   DataObject
	ElemTyp *types.Descriptor
}

func (Indexed) dataObject()               {}
func (i Indexed) Type() *types.Descriptor { return i.ElemTyp }

// Field is base.f.
type Field struct {
	Base       DataObject
	FieldOff   uint32
	FieldTyp   *types.Descriptor
}

func (Field) dataObject()               {}
func (f Field) Type() *types.Descriptor { return f.FieldTyp }

// Invalid is the sentinel "error type" DataObject: it absorbs further
// operations (indexing, field access, binary ops, assignment) without
// cascading diagnostics, per Design Notes §9's error-recovery guidance
// and SPEC_FULL.md §9's resolution of it. Every sema operation must
// check for Invalid first and propagate it rather than re-diagnosing.
type Invalid struct{ Typ *types.Descriptor }

func (Invalid) dataObject()               {}
func (i Invalid) Type() *types.Descriptor { return i.Typ }

// Void is the "empty DataObject" spec.md §4.4 says a void-returning call
// yields -- distinct from Invalid, since it is not an error-recovery
// sentinel and must not be diagnosed against.
type Void struct{ Typ *types.Descriptor }

func (Void) dataObject()               {}
func (v Void) Type() *types.Descriptor { return v.Typ }

// IsInvalid reports whether d is the error sentinel.
func IsInvalid(d DataObject) bool {
	_, ok := d.(Invalid)
	return ok
}

// IsLvalue reports whether d denotes a storage location assignable via
// EvalAssign: a named symbol, an indexed array element, or a struct
// field projection (spec.md §4.4's lval_ident nonterminal).
func IsLvalue(d DataObject) bool {
	switch d.(type) {
	case Named, Indexed, Field:
		return true
	default:
		return false
	}
}

// Operand converts a DataObject that is already resolved to a simple
// quad-visible location (Literal, Temporary, or a plain Named variable)
// into a quad.Operand. Indexed/Field objects must first be materialized
// into a temporary or resolved address by the caller (internal/sema),
// since they require emitting index/field-address quads.
func Operand(d DataObject) quad.Operand {
	switch v := d.(type) {
	case Literal:
		return quad.ConstOperand(v.Val)
	case Temporary:
		return quad.TempOperand(v.ID)
	case Named:
		return quad.SymbolOperand(v.SymName)
	default:
		return quad.Operand{}
	}
}
