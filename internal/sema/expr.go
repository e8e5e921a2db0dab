package sema

import (
	"github.com/mexlang/mexc/internal/dataobj"
	"github.com/mexlang/mexc/internal/diag"
	"github.com/mexlang/mexc/internal/quad"
	"github.com/mexlang/mexc/internal/types"
)

// BinOp enumerates the binary operators of spec.md §6's surface grammar.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLogAnd
	OpLogOr
)

var binToQuadOp = map[BinOp]quad.Op{
	OpAdd: quad.OpAdd, OpSub: quad.OpSub, OpMul: quad.OpMul, OpDiv: quad.OpDiv, OpMod: quad.OpMod,
	OpBitAnd: quad.OpAnd, OpBitOr: quad.OpOr, OpShl: quad.OpShl, OpShr: quad.OpShr,
	OpEq: quad.OpEq, OpNe: quad.OpNe, OpLt: quad.OpLt, OpLe: quad.OpLe, OpGt: quad.OpGt, OpGe: quad.OpGe,
	OpLogAnd: quad.OpLogAnd, OpLogOr: quad.OpLogOr,
}

// isComparison reports whether op produces a 0/1 boolean result rather
// than a value of the operands' arithmetic type.
func isComparison(op BinOp) bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpLogAnd, OpLogOr:
		return true
	default:
		return false
	}
}

func foldInt(op BinOp, a, b int64) (int64, bool) {
	switch op {
	case OpAdd:
		return a + b, true
	case OpSub:
		return a - b, true
	case OpMul:
		return a * b, true
	case OpDiv:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case OpMod:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case OpBitAnd:
		return a & b, true
	case OpBitOr:
		return a | b, true
	case OpShl:
		return a << uint(b), true
	case OpShr:
		return a >> uint(b), true
	case OpEq:
		return b2i(a == b), true
	case OpNe:
		return b2i(a != b), true
	case OpLt:
		return b2i(a < b), true
	case OpLe:
		return b2i(a <= b), true
	case OpGt:
		return b2i(a > b), true
	case OpGe:
		return b2i(a >= b), true
	case OpLogAnd:
		return b2i(a != 0 && b != 0), true
	case OpLogOr:
		return b2i(a != 0 || b != 0), true
	default:
		return 0, false
	}
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// EvalBinary implements spec.md §4.4's binary-operator evaluation: fold
// two literals at compile time, else emit a coercion (if needed) and a
// quad into a fresh temporary.
func (c *Context) EvalBinary(pos Pos, lhs dataobj.DataObject, op BinOp, rhs dataobj.DataObject) dataobj.DataObject {
	if dataobj.IsInvalid(lhs) || dataobj.IsInvalid(rhs) {
		return dataobj.Invalid{Typ: c.Types.Primitive(types.SignedWord)}
	}

	litL, lIsLit := lhs.(dataobj.Literal)
	litR, rIsLit := rhs.(dataobj.Literal)

	resultType, err := types.BinaryResultType(c.Types, lhs.Type(), rhs.Type())
	if err != nil {
		c.Diag.Error(pos, diag.ErrTypeMismatch, lhs.Type(), rhs.Type())
		return dataobj.Invalid{Typ: c.Types.Primitive(types.SignedWord)}
	}
	if isComparison(op) {
		resultType = c.Types.Primitive(types.SignedWord)
	}

	if lIsLit && rIsLit {
		if v, ok := foldInt(op, litL.Val, litR.Val); ok {
			return dataobj.Literal{Val: v, Typ: resultType}
		}
	}

	l1 := c.coerceOperand(pos, lhs, lhs.Type(), resultType, false)
	l2 := c.coerceOperand(pos, rhs, rhs.Type(), resultType, false)

	c.releaseIfTemp(lhs)
	c.releaseIfTemp(rhs)

	temp := c.CurFn.Emit.AllocTemp()
	c.CurFn.Emit.Emit(binToQuadOp[op], quad.TempOperand(temp), l1, l2)
	return dataobj.Temporary{ID: temp, Typ: resultType}
}

// EvalUnaryMinus implements spec.md §4.4: "Unary minus folds constants,
// else emits (neg, temp, operand)."
func (c *Context) EvalUnaryMinus(pos Pos, operand dataobj.DataObject) dataobj.DataObject {
	if dataobj.IsInvalid(operand) {
		return operand
	}
	if lit, ok := operand.(dataobj.Literal); ok {
		return dataobj.Literal{Val: -lit.Val, Typ: lit.Typ}
	}
	op := c.loadOperand(operand)
	c.releaseIfTemp(operand)
	temp := c.CurFn.Emit.AllocTemp()
	c.CurFn.Emit.Emit(quad.OpNeg, quad.TempOperand(temp), op, quad.Operand{})
	return dataobj.Temporary{ID: temp, Typ: operand.Type()}
}

// EvalCast implements the cast-expression `(type) expr` of spec.md §4.3:
// an explicit conversion, truncation allowed without complaint.
func (c *Context) EvalCast(pos Pos, target *types.Descriptor, operand dataobj.DataObject) dataobj.DataObject {
	if dataobj.IsInvalid(operand) {
		return dataobj.Invalid{Typ: target}
	}
	if _, err := types.ConvertExplicit(operand.Type(), target); err != nil {
		c.Diag.Error(pos, diag.ErrTypeMismatch, operand.Type(), target)
		return dataobj.Invalid{Typ: target}
	}
	if lit, ok := operand.(dataobj.Literal); ok {
		return dataobj.Literal{Val: truncateTo(lit.Val, target), Typ: target}
	}
	srcOp := c.loadOperand(operand)
	c.releaseIfTemp(operand)
	temp := c.CurFn.Emit.AllocTemp()
	op := quad.OpExtend
	if operand.Type().Size() > target.Size() {
		op = quad.OpTruncate
	}
	c.CurFn.Emit.Emit(op, quad.TempOperand(temp), srcOp, quad.Operand{})
	return dataobj.Temporary{ID: temp, Typ: target}
}

func truncateTo(v int64, t *types.Descriptor) int64 {
	switch t.Size() {
	case 1:
		return v & 0xFF
	case 2:
		return v & 0xFFFF
	case 4:
		return v & 0xFFFFFFFF
	default:
		return v
	}
}

// coerceOperand converts d (already evaluated) from `from` to `to`,
// emitting an extend/truncate quad into a fresh temp when widths differ,
// and returns the resulting quad.Operand. Literal operands are folded in
// place with no quad emitted. warnOnTruncate reports
// WarnNarrowingConversion when the conversion drops bits -- spec.md §8
// Testable Property 6: "assignment of a dword literal into a byte
// variable warns... and emits a truncation conversion" -- EvalAssign,
// EvalReturn and EvalCall's by-value argument coercion pass true;
// EvalBinary, widening both operands to their common type, passes false.
// An Indexed/Field d is first loaded into a temporary (materializeLoad).
func (c *Context) coerceOperand(pos Pos, d dataobj.DataObject, from, to *types.Descriptor, warnOnTruncate bool) quad.Operand {
	d = c.materializeLoad(d)
	res, err := types.Convert(from, to)
	if err != nil {
		c.Diag.Error(pos, diag.ErrTypeMismatch, from, to)
		return dataobj.Operand(d)
	}
	if res == types.ConvertNone || res == types.ConvertSameSize {
		return dataobj.Operand(d)
	}
	if res == types.ConvertTruncate && warnOnTruncate {
		c.Diag.Warn(pos, diag.WarnNarrowingConversion, from, to)
	}
	if lit, ok := d.(dataobj.Literal); ok {
		return quad.ConstOperand(truncateTo(lit.Val, to))
	}
	src := dataobj.Operand(d)
	temp := c.CurFn.Emit.AllocTemp()
	op := quad.OpExtend
	if res == types.ConvertTruncate {
		op = quad.OpTruncate
	}
	c.CurFn.Emit.Emit(op, quad.TempOperand(temp), src, quad.Operand{})
	return quad.TempOperand(temp)
}

// releaseIfTemp frees d's temporary back to the pool if d is a Temporary
// with no other live use, per spec.md §4.4 step 5.
func (c *Context) releaseIfTemp(d dataobj.DataObject) {
	if t, ok := d.(dataobj.Temporary); ok && !t.Freed {
		c.CurFn.Emit.FreeTemp(t.ID)
	}
}

// EvalIdent resolves a bare identifier to a DataObject, per spec.md
// §4.4's primary production `id`. Unknown identifiers get the
// undeclared-symbol fallback of spec.md §4.7: a word-typed Invalid
// sentinel, and the lookup is reported once.
func (c *Context) EvalIdent(pos Pos, name string) dataobj.DataObject {
	sym, ok := c.Symbols.Lookup(name)
	if !ok {
		c.Diag.Error(pos, diag.ErrUndeclared, name)
		return dataobj.Invalid{Typ: c.Types.Primitive(types.SignedWord)}
	}
	return dataobj.Named{SymName: sym.Name, Typ: sym.Type, Ref: sym.IsRef}
}

// EvalIndex implements spec.md §4.4's `a[i]`: requires a.Type() be an
// array. A literal index outside [low, high] is reported
// (MEXERR_BADSUBSCRIPT) but code is still emitted, per spec.md's
// "Concrete scenarios". An open array (high == -1) gets no static bound
// check at all, per SPEC_FULL.md §9.
func (c *Context) EvalIndex(pos Pos, base dataobj.DataObject, index dataobj.DataObject) dataobj.DataObject {
	if dataobj.IsInvalid(base) {
		return base
	}
	arr := base.Type()
	if arr.Kind != types.KindArray {
		c.Diag.Error(pos, diag.ErrBadSubscript, 0, 0, 0)
		return dataobj.Invalid{Typ: c.Types.Primitive(types.SignedWord)}
	}
	if lit, ok := index.(dataobj.Literal); ok && !arr.Open() {
		if int32(lit.Val) < arr.Low || int32(lit.Val) > arr.High {
			c.Diag.Error(pos, diag.ErrBadSubscript, lit.Val, arr.Low, arr.High)
		}
	}
	// normalize index to be zero-based: i - low
	normIdx := c.EvalBinary(pos, index, OpSub, dataobj.Literal{Val: int64(arr.Low), Typ: c.Types.Primitive(types.SignedWord)})
	return dataobj.Indexed{Base: base, Index: normIdx, ElemTyp: arr.Elem}
}

// EvalField implements spec.md §4.4's `s.f`.
func (c *Context) EvalField(pos Pos, base dataobj.DataObject, field string) dataobj.DataObject {
	if dataobj.IsInvalid(base) {
		return base
	}
	st := base.Type()
	if st.Kind != types.KindStruct {
		c.Diag.Error(pos, diag.ErrTypeMismatch, st, "struct")
		return dataobj.Invalid{Typ: c.Types.Primitive(types.SignedWord)}
	}
	f, ok := st.FieldByName(field)
	if !ok {
		c.Diag.Error(pos, diag.ErrUndeclared, field)
		return dataobj.Invalid{Typ: c.Types.Primitive(types.SignedWord)}
	}
	return dataobj.Field{Base: base, FieldOff: f.Offset, FieldTyp: f.Type}
}

// materializeLoad resolves an Indexed/Field object to its value: it emits
// the index/field-address quad into a temp holding the *address*, then a
// load from that address into a second temp, and returns that second
// temp as a Temporary. Named/Temporary/Literal pass through unchanged.
// Used wherever a DataObject's value must become a plain quad operand.
func (c *Context) materializeLoad(d dataobj.DataObject) dataobj.DataObject {
	switch v := d.(type) {
	case dataobj.Indexed:
		baseOp := c.loadOperand(v.Base)
		idxOp := dataobj.Operand(v.Index)
		temp := c.CurFn.Emit.AllocTemp()
		c.CurFn.Emit.Emit(quad.OpIndex, quad.TempOperand(temp), baseOp, idxOp)
		load := c.CurFn.Emit.AllocTemp()
		c.CurFn.Emit.Emit(quad.OpLoad, quad.TempOperand(load), quad.TempOperand(temp), quad.Operand{})
		c.CurFn.Emit.FreeTemp(temp)
		return dataobj.Temporary{ID: load, Typ: v.ElemTyp}
	case dataobj.Field:
		baseOp := c.loadOperand(v.Base)
		temp := c.CurFn.Emit.AllocTemp()
		c.CurFn.Emit.Emit(quad.OpField, quad.TempOperand(temp), baseOp, quad.ConstOperand(int64(v.FieldOff)))
		load := c.CurFn.Emit.AllocTemp()
		c.CurFn.Emit.Emit(quad.OpLoad, quad.TempOperand(load), quad.TempOperand(temp), quad.Operand{})
		c.CurFn.Emit.FreeTemp(temp)
		return dataobj.Temporary{ID: load, Typ: v.FieldTyp}
	default:
		return d
	}
}

func (c *Context) loadOperand(d dataobj.DataObject) quad.Operand {
	resolved := c.materializeLoad(d)
	return dataobj.Operand(resolved)
}

// EvalAssign implements spec.md §4.4's EvalAssign: lhs must be an
// lvalue; rhs is coerced toward lhs's type; emits (store, lhs_ref, rhs,
// _); the expression's value is the stored rhs.
func (c *Context) EvalAssign(pos Pos, lhs dataobj.DataObject, rhs dataobj.DataObject) dataobj.DataObject {
	if dataobj.IsInvalid(lhs) || dataobj.IsInvalid(rhs) {
		return dataobj.Invalid{Typ: c.Types.Primitive(types.SignedWord)}
	}
	if !dataobj.IsLvalue(lhs) {
		c.Diag.Error(pos, diag.ErrNotAnLvalue)
		return rhs
	}

	coerced := c.coerceOperand(pos, rhs, rhs.Type(), lhs.Type(), true)

	switch v := lhs.(type) {
	case dataobj.Named:
		c.CurFn.Emit.Emit(quad.OpStore, quad.SymbolOperand(v.SymName), coerced, quad.Operand{})
	case dataobj.Indexed:
		baseOp := c.loadOperand(v.Base)
		idxOp := dataobj.Operand(v.Index)
		addr := c.CurFn.Emit.AllocTemp()
		c.CurFn.Emit.Emit(quad.OpIndex, quad.TempOperand(addr), baseOp, idxOp)
		c.CurFn.Emit.Emit(quad.OpStore, quad.TempOperand(addr), coerced, quad.Operand{})
		c.CurFn.Emit.FreeTemp(addr)
	case dataobj.Field:
		baseOp := c.loadOperand(v.Base)
		addr := c.CurFn.Emit.AllocTemp()
		c.CurFn.Emit.Emit(quad.OpField, quad.TempOperand(addr), baseOp, quad.ConstOperand(int64(v.FieldOff)))
		c.CurFn.Emit.Emit(quad.OpStore, quad.TempOperand(addr), coerced, quad.Operand{})
		c.CurFn.Emit.FreeTemp(addr)
	}

	return rhs
}

// MaybeFreeTemporary frees d's temporary, matching mex_tab.c's
// `MaybeFreeTemporary` call for a bare expression-statement (spec.md
// §4.5 / original_source case 50-51): the expression's value is
// computed and discarded. meaningless selects the "meaningless expression"
// warning for expressions that are neither an assignment nor a call.
func (c *Context) MaybeFreeTemporary(pos Pos, d dataobj.DataObject, meaningless bool) {
	if meaningless {
		c.Diag.Warn(pos, diag.WarnMeaninglessExpr)
	}
	c.releaseIfTemp(d)
}

// Sizeof implements spec.md §4.3's sizeof(type): a compile-time `word`
// constant, erroring per SPEC_FULL.md §9 if typ is an open array.
func (c *Context) Sizeof(pos Pos, typ *types.Descriptor) dataobj.DataObject {
	size, err := c.Types.SizeOf(typ)
	if err != nil {
		c.Diag.Error(pos, diag.ErrInvalidRange, typ, typ)
		return dataobj.Invalid{Typ: c.Types.Primitive(types.SignedWord)}
	}
	return dataobj.Literal{Val: int64(size), Typ: c.Types.Primitive(types.SignedWord)}
}
