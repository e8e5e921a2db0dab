// Package types implements the front end's closed type system: interned
// primitive singletons plus hash-consed array and struct descriptors, per
// spec.md §3/§4.3 and the interning resolution in SPEC_FULL.md §9.
package types

import "fmt"

// Primitive enumerates the closed set of primitive type tags.
type Primitive int

const (
	Void Primitive = iota
	String
	SignedByte
	UnsignedByte
	SignedWord
	UnsignedWord
	SignedDword
	UnsignedDword

	numPrimitives
)

func (p Primitive) String() string {
	switch p {
	case Void:
		return "void"
	case String:
		return "string"
	case SignedByte:
		return "byte"
	case UnsignedByte:
		return "unsigned byte"
	case SignedWord:
		return "word"
	case UnsignedWord:
		return "unsigned word"
	case SignedDword:
		return "dword"
	case UnsignedDword:
		return "unsigned dword"
	default:
		return fmt.Sprintf("Primitive(%d)", int(p))
	}
}

// sizes, in bytes, per spec.md §3's byte/word/dword family.
var primitiveSizes = [numPrimitives]uint32{
	Void:          0,
	String:        4, // a string value is carried by reference/handle
	SignedByte:    1,
	UnsignedByte:  1,
	SignedWord:    2,
	UnsignedWord:  2,
	SignedDword:   4,
	UnsignedDword: 4,
}

func (p Primitive) Size() uint32 { return primitiveSizes[p] }

// IsInteger reports whether p is one of the six integer primitives.
func (p Primitive) IsInteger() bool {
	switch p {
	case SignedByte, UnsignedByte, SignedWord, UnsignedWord, SignedDword, UnsignedDword:
		return true
	default:
		return false
	}
}

// IsSigned reports whether p is a signed integer primitive.
func (p Primitive) IsSigned() bool {
	switch p {
	case SignedByte, SignedWord, SignedDword:
		return true
	default:
		return false
	}
}

// Kind discriminates a Descriptor's shape.
type Kind int

const (
	KindPrimitive Kind = iota
	KindArray
	KindStruct
)

// Field describes one member of a struct, in declaration order.
type Field struct {
	Name   string
	Type   *Descriptor
	Offset uint32
}

// Descriptor is a TypeDescriptor: a tagged value that is either a
// primitive, an array, or a struct. Primitive descriptors are singletons
// (pointer equality implies type equality); array/struct descriptors are
// hash-consed by the Interner so that equal shapes share one pointer too,
// though array/struct equality (types.Equal) never depends on that.
type Descriptor struct {
	Kind Kind

	Prim Primitive // valid iff Kind == KindPrimitive

	// valid iff Kind == KindArray
	Low, High int32 // High == -1 means an open/unsized array
	Elem      *Descriptor

	// valid iff Kind == KindStruct
	Name      string
	Fields    []Field
	TotalSize uint32
	Defined   bool // a struct may be declared (tag reserved) before defined
}

// Open reports whether an array descriptor is open-ended (high == -1),
// per spec.md §4.4 / SPEC_FULL.md §9: such arrays get no static bound
// check, and sizeof of one is a static error.
func (d *Descriptor) Open() bool { return d.Kind == KindArray && d.High == -1 }

func (d *Descriptor) String() string {
	switch d.Kind {
	case KindPrimitive:
		return d.Prim.String()
	case KindArray:
		if d.Open() {
			return fmt.Sprintf("array[%d..] of %v", d.Low, d.Elem)
		}
		return fmt.Sprintf("array[%d..%d] of %v", d.Low, d.High, d.Elem)
	case KindStruct:
		return fmt.Sprintf("struct %s", d.Name)
	default:
		return "<invalid type>"
	}
}

// Size implements spec.md §4.3's sizeof: for a primitive it's the fixed
// width; for an array it's (high-low+1)*sizeof(element); for a struct it's
// TotalSize. Callers must reject Open() arrays before calling Size (see
// Interner.SizeOf, which does this and returns an error instead).
func (d *Descriptor) Size() uint32 {
	switch d.Kind {
	case KindPrimitive:
		return d.Prim.Size()
	case KindArray:
		if d.Open() {
			return 0
		}
		count := uint32(d.High-d.Low) + 1
		return count * d.Elem.Size()
	case KindStruct:
		return d.TotalSize
	default:
		return 0
	}
}

// Equal implements type_equal: structural for arrays (equal bounds + equal
// element), nominal for structs (tag identity), identity for primitives.
func Equal(a, b *Descriptor) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindPrimitive:
		return a.Prim == b.Prim
	case KindArray:
		return a.Low == b.Low && a.High == b.High && Equal(a.Elem, b.Elem)
	case KindStruct:
		return a.Name == b.Name
	default:
		return false
	}
}

// FieldByName looks up a struct field by name; ok is false if d is not a
// (defined) struct or has no such field.
func (d *Descriptor) FieldByName(name string) (Field, bool) {
	if d.Kind != KindStruct {
		return Field{}, false
	}
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
