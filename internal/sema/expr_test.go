package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mexlang/mexc/internal/dataobj"
	"github.com/mexlang/mexc/internal/diag"
	"github.com/mexlang/mexc/internal/quad"
	"github.com/mexlang/mexc/internal/quadtest"
	"github.com/mexlang/mexc/internal/types"
)

func newTestContext() *Context {
	c := NewContext(diag.NewSink(false), false)
	c.CurFn = &FuncContext{Emit: quad.NewEmitter()}
	return c
}

func lit(c *Context, v int64, p types.Primitive) dataobj.DataObject {
	return dataobj.Literal{Val: v, Typ: c.Types.Primitive(p)}
}

func TestEvalBinary_ConstantFolding(t *testing.T) {
	for _, tc := range []struct {
		name string
		a, b int64
		op   BinOp
		want int64
	}{
		{"add", 2, 3, OpAdd, 5},
		{"sub", 10, 4, OpSub, 6},
		{"mul", 6, 7, OpMul, 42},
		{"div", 9, 3, OpDiv, 3},
		{"eq true", 4, 4, OpEq, 1},
		{"eq false", 4, 5, OpEq, 0},
		{"lt", 3, 5, OpLt, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestContext()
			result := c.EvalBinary(Pos{}, lit(c, tc.a, types.SignedWord), tc.op, lit(c, tc.b, types.SignedWord))
			got, ok := result.(dataobj.Literal)
			require.True(t, ok, "expected a folded Literal, got %T", result)
			assert.Equal(t, tc.want, got.Val)
			assert.Empty(t, c.CurFn.Emit.Quads, "constant folding must not emit any quad")
		})
	}
}

func TestEvalBinary_DivByZeroDoesNotFold(t *testing.T) {
	c := newTestContext()
	result := c.EvalBinary(Pos{}, lit(c, 1, types.SignedWord), OpDiv, lit(c, 0, types.SignedWord))
	_, isTemp := result.(dataobj.Temporary)
	assert.True(t, isTemp, "division by a literal zero must fall back to a runtime quad, not fold")
	assert.Len(t, c.CurFn.Emit.Quads, 1)
	assert.Equal(t, quad.OpDiv, c.CurFn.Emit.Quads[0].Op)
}

func TestEvalBinary_NonLiteralEmitsQuadAndCoerces(t *testing.T) {
	c := newTestContext()
	byteVal := dataobj.Named{SymName: "b", Typ: c.Types.Primitive(types.SignedByte)}
	wordVal := dataobj.Named{SymName: "w", Typ: c.Types.Primitive(types.SignedWord)}

	result := c.EvalBinary(Pos{}, byteVal, OpAdd, wordVal)
	temp, ok := result.(dataobj.Temporary)
	require.True(t, ok)
	assert.Equal(t, c.Types.Primitive(types.SignedWord), temp.Typ)

	// byte operand must be widened before the add: extend, then add.
	require.Len(t, c.CurFn.Emit.Quads, 2)
	assert.Equal(t, quad.OpExtend, c.CurFn.Emit.Quads[0].Op)
	assert.Equal(t, quad.OpAdd, c.CurFn.Emit.Quads[1].Op)
}

func TestEvalUnaryMinus_FoldsLiteral(t *testing.T) {
	c := newTestContext()
	result := c.EvalUnaryMinus(Pos{}, lit(c, 7, types.SignedWord))
	got, ok := result.(dataobj.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(-7), got.Val)
	assert.Empty(t, c.CurFn.Emit.Quads)
}

func TestEvalIdent_UndeclaredReportsAndReturnsInvalid(t *testing.T) {
	c := newTestContext()
	result := c.EvalIdent(Pos{}, "nope")
	assert.True(t, dataobj.IsInvalid(result))
	require.Len(t, c.Diag.Diagnostics, 1)
	assert.Equal(t, diag.ErrUndeclared, c.Diag.Diagnostics[0].Code)
}

func TestEvalIndex_OutOfRangeLiteralReportsErrorButStillIndexes(t *testing.T) {
	c := newTestContext()
	elem := c.Types.Primitive(types.SignedByte)
	arr, err := c.Types.Array(0, 3, elem)
	require.NoError(t, err)

	base := dataobj.Named{SymName: "arr", Typ: arr}
	idx := lit(c, 99, types.SignedWord)

	result := c.EvalIndex(Pos{}, base, idx)
	_, isIndexed := result.(dataobj.Indexed)
	assert.True(t, isIndexed, "an out-of-range literal index is still a valid Indexed DataObject")
	require.Len(t, c.Diag.Diagnostics, 1)
	assert.Equal(t, diag.ErrBadSubscript, c.Diag.Diagnostics[0].Code)
}

func TestEvalAssign_NonLvalueReportsError(t *testing.T) {
	c := newTestContext()
	rhs := lit(c, 1, types.SignedWord)
	result := c.EvalAssign(Pos{}, lit(c, 0, types.SignedWord), rhs)
	require.Len(t, c.Diag.Diagnostics, 1)
	assert.Equal(t, diag.ErrNotAnLvalue, c.Diag.Diagnostics[0].Code)
	assert.Equal(t, rhs, result)
}

func TestEvalAssign_NamedEmitsStore(t *testing.T) {
	c := newTestContext()
	lhs := dataobj.Named{SymName: "x", Typ: c.Types.Primitive(types.SignedWord)}
	rhs := lit(c, 5, types.SignedWord)

	c.EvalAssign(Pos{}, lhs, rhs)
	require.Len(t, c.CurFn.Emit.Quads, 1)
	q := c.CurFn.Emit.Quads[0]
	assert.Equal(t, quad.OpStore, q.Op)
	assert.Equal(t, quad.OperandSymbol, q.Dest.Kind)
	assert.Equal(t, "x", q.Dest.Symbol)
}

func TestEvalAssign_NarrowingLiteralWarnsAndTruncates(t *testing.T) {
	c := newTestContext()
	lhs := dataobj.Named{SymName: "b", Typ: c.Types.Primitive(types.SignedByte)}
	rhs := lit(c, 0x1FF, types.SignedDword)

	c.EvalAssign(Pos{}, lhs, rhs)
	require.Len(t, c.Diag.Diagnostics, 1)
	assert.Equal(t, diag.WarnNarrowingConversion, c.Diag.Diagnostics[0].Code)
	assert.Equal(t, diag.Warning, c.Diag.Diagnostics[0].Severity)

	require.Len(t, c.CurFn.Emit.Quads, 1)
	store := c.CurFn.Emit.Quads[0]
	assert.Equal(t, quad.OpStore, store.Op)
	assert.Equal(t, int64(0x1FF&0xFF), store.Src1.Const)
}

func TestEvalAssign_NarrowingNonLiteralEmitsTruncateQuad(t *testing.T) {
	c := newTestContext()
	lhs := dataobj.Named{SymName: "b", Typ: c.Types.Primitive(types.SignedByte)}
	rhs := dataobj.Named{SymName: "w", Typ: c.Types.Primitive(types.SignedDword)}

	c.EvalAssign(Pos{}, lhs, rhs)
	require.Len(t, c.Diag.Diagnostics, 1)
	assert.Equal(t, diag.WarnNarrowingConversion, c.Diag.Diagnostics[0].Code)
	quadtest.AssertOps(t, c.CurFn.Emit.Quads, quad.OpTruncate, quad.OpStore)
}

func TestEvalAssign_WideningDoesNotWarn(t *testing.T) {
	c := newTestContext()
	lhs := dataobj.Named{SymName: "w", Typ: c.Types.Primitive(types.SignedDword)}
	rhs := lit(c, 5, types.SignedByte)

	c.EvalAssign(Pos{}, lhs, rhs)
	assert.Empty(t, c.Diag.Diagnostics)
}

func TestEvalBinary_MixedWidthOperandsDoNotWarn(t *testing.T) {
	c := newTestContext()
	lhs := dataobj.Named{SymName: "b", Typ: c.Types.Primitive(types.SignedByte)}
	rhs := dataobj.Named{SymName: "w", Typ: c.Types.Primitive(types.SignedDword)}

	c.EvalBinary(Pos{}, lhs, OpAdd, rhs)
	assert.Empty(t, c.Diag.Diagnostics, "widening both operands toward the wider common type must never warn")
}

func TestSizeof_OpenArrayIsAnError(t *testing.T) {
	c := newTestContext()
	arr, err := c.Types.Array(0, -1, c.Types.Primitive(types.SignedByte))
	require.NoError(t, err)
	result := c.Sizeof(Pos{}, arr)
	assert.True(t, dataobj.IsInvalid(result))
	require.Len(t, c.Diag.Diagnostics, 1)
	assert.Equal(t, diag.ErrInvalidRange, c.Diag.Diagnostics[0].Code)
}
