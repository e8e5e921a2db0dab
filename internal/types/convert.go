package types

import "fmt"

// IncompatibleError indicates two types cannot be reconciled by an
// implicit conversion (spec.md §4.3: "string is not implicitly
// convertible to/from integers").
type IncompatibleError struct{ From, To *Descriptor }

func (e IncompatibleError) Error() string {
	return fmt.Sprintf("cannot convert %v to %v", e.From, e.To)
}

// ConvertResult classifies the coercion Convert decided on, so sema can
// decide which quad op (if any) performs it.
type ConvertResult int

const (
	ConvertNone     ConvertResult = iota // types already identical
	ConvertExtend                        // narrower integer -> wider (zero- or sign-extend)
	ConvertTruncate                      // wider integer -> narrower
	ConvertSameSize                      // equal width, signedness differs
)

// Convert reports how a value of type `from` must be coerced to type
// `to` under spec.md §4.3's implicit-conversion rules: any integer
// converts to any integer by zero/sign-extend or truncate; string is
// never implicitly compatible with an integer or another distinct type.
// Identical types give ConvertNone, and an integer/integer pair never
// errors (a narrowing one is ConvertTruncate). Explicit casts call
// ConvertExplicit, which applies these same rules.
func Convert(from, to *Descriptor) (ConvertResult, error) {
	if Equal(from, to) {
		return ConvertNone, nil
	}
	if from.Kind != KindPrimitive || to.Kind != KindPrimitive {
		return ConvertNone, IncompatibleError{from, to}
	}
	if from.Prim == String || to.Prim == String {
		return ConvertNone, IncompatibleError{from, to}
	}
	if !from.Prim.IsInteger() || !to.Prim.IsInteger() {
		return ConvertNone, IncompatibleError{from, to}
	}
	switch fs, ts := from.Prim.Size(), to.Prim.Size(); {
	case fs < ts:
		return ConvertExtend, nil
	case fs > ts:
		return ConvertTruncate, nil
	default:
		return ConvertSameSize, nil
	}
}

// ConvertExplicit performs a cast-expression conversion ((type) expr)
// with exactly Convert's rules: truncation is ConvertTruncate, not an
// error, and string<->integer remains rejected (casts don't reinterpret
// a string handle as an integer).
func ConvertExplicit(from, to *Descriptor) (ConvertResult, error) {
	return Convert(from, to)
}

// BinaryResultType computes the result type of a binary integer operator
// per spec.md §4.3: "Mixed-signedness follows the wider type; equal
// widths prefer signed if either operand is signed." Both operands must
// already be integer-typed; callers check that and `string` operators
// separately.
func BinaryResultType(in *Interner, a, b *Descriptor) (*Descriptor, error) {
	if a.Kind != KindPrimitive || b.Kind != KindPrimitive ||
		!a.Prim.IsInteger() || !b.Prim.IsInteger() {
		return nil, IncompatibleError{a, b}
	}
	if a.Prim.Size() == b.Prim.Size() {
		if a.Prim.IsSigned() || b.Prim.IsSigned() {
			return in.Primitive(signedOfSize(a.Prim.Size())), nil
		}
		return in.Primitive(unsignedOfSize(a.Prim.Size())), nil
	}
	wide, narrow := a, b
	if narrow.Prim.Size() > wide.Prim.Size() {
		wide, narrow = narrow, wide
	}
	_ = narrow
	return wide, nil
}

func signedOfSize(size uint32) Primitive {
	switch size {
	case 1:
		return SignedByte
	case 2:
		return SignedWord
	default:
		return SignedDword
	}
}

func unsignedOfSize(size uint32) Primitive {
	switch size {
	case 1:
		return UnsignedByte
	case 2:
		return UnsignedWord
	default:
		return UnsignedDword
	}
}
