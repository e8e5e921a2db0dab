package dataobj

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mexlang/mexc/internal/quad"
	"github.com/mexlang/mexc/internal/types"
)

func TestIsInvalid(t *testing.T) {
	in := types.NewInterner()
	assert.True(t, IsInvalid(Invalid{Typ: in.Primitive(types.SignedWord)}))
	assert.False(t, IsInvalid(Literal{Typ: in.Primitive(types.SignedWord)}))
	assert.False(t, IsInvalid(Void{Typ: in.Primitive(types.Void)}))
}

func TestIsLvalue(t *testing.T) {
	in := types.NewInterner()
	word := in.Primitive(types.SignedWord)
	for _, tc := range []struct {
		name string
		d    DataObject
		want bool
	}{
		{"named", Named{Typ: word}, true},
		{"indexed", Indexed{ElemTyp: word}, true},
		{"field", Field{FieldTyp: word}, true},
		{"literal", Literal{Typ: word}, false},
		{"temporary", Temporary{Typ: word}, false},
		{"invalid", Invalid{Typ: word}, false},
		{"void", Void{Typ: word}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsLvalue(tc.d))
		})
	}
}

func TestOperand_LiteralTempNamed(t *testing.T) {
	in := types.NewInterner()
	word := in.Primitive(types.SignedWord)

	lit := Operand(Literal{Val: 7, Typ: word})
	assert.Equal(t, quad.ConstOperand(7), lit)

	tmp := Operand(Temporary{ID: 3, Typ: word})
	assert.Equal(t, quad.TempOperand(3), tmp)

	named := Operand(Named{SymName: "x", Typ: word})
	assert.Equal(t, quad.SymbolOperand("x"), named)
}

func TestOperand_IndexedOrFieldNeedsMaterialization(t *testing.T) {
	// Indexed/Field have no direct quad.Operand encoding -- internal/sema
	// must materialize them into a temporary first. Operand falls back to
	// the zero Operand rather than panicking.
	in := types.NewInterner()
	word := in.Primitive(types.SignedWord)
	assert.Equal(t, quad.Operand{}, Operand(Indexed{ElemTyp: word}))
	assert.Equal(t, quad.Operand{}, Operand(Field{FieldTyp: word}))
}

func TestType_ReturnsEachVariantsOwnDescriptor(t *testing.T) {
	in := types.NewInterner()
	word := in.Primitive(types.SignedWord)
	byteTyp := in.Primitive(types.SignedByte)

	assert.Same(t, word, Literal{Typ: word}.Type())
	assert.Same(t, word, Named{Typ: word}.Type())
	assert.Same(t, word, Temporary{Typ: word}.Type())
	assert.Same(t, byteTyp, Indexed{ElemTyp: byteTyp}.Type())
	assert.Same(t, byteTyp, Field{FieldTyp: byteTyp}.Type())
	assert.Same(t, word, Invalid{Typ: word}.Type())
	assert.Same(t, word, Void{Typ: word}.Type())
}
