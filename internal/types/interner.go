package types

import "fmt"

// Interner owns the canonical set of type descriptors for one compilation:
// the 8 primitive singletons in a fixed array, plus two hash-consing
// tables -- one for arrays keyed by structural identity, one for structs
// keyed by tag name -- per SPEC_FULL.md §9.
type Interner struct {
	primitives [numPrimitives]*Descriptor
	arrays     map[arrayKey]*Descriptor
	structs    map[string]*Descriptor

	// PadStructs enables back-end-style field alignment in DefineStruct,
	// per SPEC_FULL.md §4.3's supplement to spec.md's "no padding unless
	// the back-end requires it" clause (compiler.WithStructPadding).
	PadStructs bool
}

type arrayKey struct {
	low, high int32
	elem      *Descriptor
}

// NewInterner constructs an Interner with its primitive singletons ready.
func NewInterner() *Interner {
	in := &Interner{
		arrays:  make(map[arrayKey]*Descriptor),
		structs: make(map[string]*Descriptor),
	}
	for p := Primitive(0); p < numPrimitives; p++ {
		in.primitives[p] = &Descriptor{Kind: KindPrimitive, Prim: p}
	}
	return in
}

// Primitive returns the singleton descriptor for p.
func (in *Interner) Primitive(p Primitive) *Descriptor { return in.primitives[p] }

// RangeError reports an out-of-bounds array range (spec.md §3 invariant:
// low <= high and low, high in [0, 0x7FFF]); the caller clamps to [low,low]
// and continues, matching spec.md §4.7's non-fatal semantic-error policy.
type RangeError struct{ Low, High int32 }

func (e RangeError) Error() string {
	return fmt.Sprintf("invalid array range [%d..%d]", e.Low, e.High)
}

const maxBound = 0x7FFF

// Array interns (or returns the existing) array descriptor for
// [low..high] of elem. high == -1 denotes an open/unsized array and is
// never subject to the bounds check. On an invalid bounded range, it
// returns a RangeError alongside a descriptor clamped to [low,low], per
// spec.md §3: "violating bounds yields an error and the range is clamped".
func (in *Interner) Array(low, high int32, elem *Descriptor) (*Descriptor, error) {
	var err error
	if high != -1 {
		if high < low || low < 0 || low > maxBound || high > maxBound {
			err = RangeError{low, high}
			high = low
		}
	} else if low < 0 || low > maxBound {
		err = RangeError{low, high}
	}

	key := arrayKey{low, high, elem}
	if d, ok := in.arrays[key]; ok {
		return d, err
	}
	d := &Descriptor{Kind: KindArray, Low: low, High: high, Elem: elem}
	in.arrays[key] = d
	return d, err
}

// DuplicateStructError indicates a struct tag reused across declarations
// with mismatched fields, or a use of a tag that was never declared.
type DuplicateStructError struct{ Name string }

func (e DuplicateStructError) Error() string {
	return fmt.Sprintf("struct %q already declared", e.Name)
}

// DeclareStruct reserves a struct tag (spec.md §3: "a struct may be
// declared (name reserved) and later defined (body attached)"). Declaring
// the same tag twice is a no-op returning the existing descriptor -- MEX's
// error recovery substitutes a plausible value and continues.
func (in *Interner) DeclareStruct(name string) *Descriptor {
	if d, ok := in.structs[name]; ok {
		return d
	}
	d := &Descriptor{Kind: KindStruct, Name: name}
	in.structs[name] = d
	return d
}

// DuplicateFieldError indicates a struct field name reused within one struct.
type DuplicateFieldError struct {
	Struct, Field string
}

func (e DuplicateFieldError) Error() string {
	return fmt.Sprintf("struct %q: duplicate field %q", e.Struct, e.Field)
}

// DefineStruct attaches a field list to a previously-declared struct tag,
// computing offsets and TotalSize in declaration order: packed (no
// padding, per spec.md §4.3) by default, or with each field aligned when
// the Interner's PadStructs is set.
// Defining an already-defined struct is an error; the existing definition
// is kept.
func (in *Interner) DefineStruct(name string, fields []Field) (*Descriptor, error) {
	d, ok := in.structs[name]
	if !ok {
		d = in.DeclareStruct(name)
	}
	if d.Defined {
		return d, fmt.Errorf("struct %q already defined", name)
	}

	seen := make(map[string]bool, len(fields))
	var offset, maxAlign uint32
	out := make([]Field, 0, len(fields))
	var dupErr error
	for _, f := range fields {
		if seen[f.Name] {
			if dupErr == nil {
				dupErr = DuplicateFieldError{name, f.Name}
			}
			continue
		}
		seen[f.Name] = true
		if in.PadStructs {
			align := fieldAlignment(f.Type)
			offset = alignUp(offset, align)
			if align > maxAlign {
				maxAlign = align
			}
		}
		f.Offset = offset
		offset += f.Type.Size()
		out = append(out, f)
	}
	if in.PadStructs && maxAlign > 0 {
		offset = alignUp(offset, maxAlign)
	}

	d.Fields = out
	d.TotalSize = offset
	d.Defined = true
	return d, dupErr
}

// fieldAlignment returns the natural alignment of a struct field type
// when Interner.PadStructs is enabled: a field's own size, capped at 4
// bytes (the widest primitive), matching a typical back end's struct
// layout rules.
func fieldAlignment(t *Descriptor) uint32 {
	size := t.Size()
	if size == 0 {
		return 1
	}
	if size > 4 {
		return 4
	}
	return size
}

func alignUp(offset, align uint32) uint32 {
	if align <= 1 {
		return offset
	}
	if rem := offset % align; rem != 0 {
		offset += align - rem
	}
	return offset
}

// LookupStruct returns the struct descriptor for name, if any tag with
// that name has been declared (defined or not).
func (in *Interner) LookupStruct(name string) (*Descriptor, bool) {
	d, ok := in.structs[name]
	return d, ok
}

// OpenArraySizeofError is returned by SizeOf for an open array, per
// spec.md's own stated ambiguity (Design Notes §9): "sizeof of an open
// array is ambiguous--treat as a static error."
type OpenArraySizeofError struct{ Type *Descriptor }

func (e OpenArraySizeofError) Error() string {
	return fmt.Sprintf("sizeof of open array type %v is not a compile-time constant", e.Type)
}

// SizeOf implements spec.md §4.3's sizeof, rejecting open arrays.
func (in *Interner) SizeOf(d *Descriptor) (uint32, error) {
	if d.Open() {
		return 0, OpenArraySizeofError{d}
	}
	return d.Size(), nil
}
