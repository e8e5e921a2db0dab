package sema

import (
	"github.com/mexlang/mexc/internal/dataobj"
	"github.com/mexlang/mexc/internal/diag"
	"github.com/mexlang/mexc/internal/quad"
	"github.com/mexlang/mexc/internal/symtab"
	"github.com/mexlang/mexc/internal/types"
)

// ArgSpec is one formal parameter as collected while parsing a function's
// argument list, before the function symbol exists -- the "FuncArgs
// accumulator" SPEC_FULL.md §3 calls for.
type ArgSpec struct {
	Name string
	Type *types.Descriptor
	Ref  bool
}

// BeginFunction implements spec.md §4.6 steps 1-4: allocate the function
// symbol in the enclosing scope, open its scope, declare its arguments,
// and record the start quad plus a prologue quad.
func (c *Context) BeginFunction(pos Pos, name string, retType *types.Descriptor, args []ArgSpec, variadic bool) *symtab.Symbol {
	symArgs := make([]symtab.Arg, len(args))
	for i, a := range args {
		symArgs[i] = symtab.Arg{Name: a.Name, Type: a.Type, Ref: a.Ref}
	}

	sym, err := c.Symbols.DeclareGlobal(name, symtab.KindFunction, retType)
	if err != nil {
		c.Diag.Error(pos, diag.ErrDuplicate, name)
	}
	sym.Args = symArgs
	sym.Variadic = variadic

	c.CurFn = &FuncContext{Sym: sym, Emit: quad.NewEmitter()}
	c.CurFn.EpiloguePatch = c.CurFn.Emit.NewPatchList()
	if !types.Equal(retType, c.Types.Primitive(types.Void)) {
		c.CurFn.RetSlot = c.synthName("ret")
	}

	c.Symbols.OpenScope()
	c.Symbols.ResetOffset(0)
	for _, a := range args {
		if _, err := c.Symbols.DeclareArgument(a.Name, a.Type, a.Ref, PtrSize); err != nil {
			c.Diag.Error(pos, diag.ErrDuplicate, a.Name)
		}
	}

	sym.Offset = c.CurFn.Emit.CurrentQuad()
	c.CurFn.Emit.Emit(quad.OpProlog, quad.Operand{}, quad.Operand{}, quad.Operand{})
	return sym
}

// EndFunction implements spec.md §4.6 steps 5-6: patch every `return`
// site to the epilogue, emit the epilogue quad, close the function's
// scope, and record start/end quads on the symbol.
func (c *Context) EndFunction(pos Pos) {
	fn := c.CurFn

	for name, li := range fn.Labels {
		if !li.Defined {
			c.Diag.Error(pos, diag.ErrUndeclared, name)
		}
	}

	fn.Emit.Patch(fn.EpiloguePatch, fn.Emit.CurrentQuad())
	fn.Emit.Emit(quad.OpEpilog, quad.Operand{}, quad.Operand{}, quad.Operand{})

	fn.Sym.StartQuad = fn.Sym.Offset
	fn.Sym.EndQuad = fn.Emit.CurrentQuad()
	fn.Sym.HasStartEnd = true
	fn.Sym.IsDefined = true

	c.Funcs[fn.Sym.Name] = fn

	c.Symbols.CloseScope()
	c.CurFn = nil
}

// EvalReturn implements spec.md §4.5's `return [expr]`: expr's type must
// convert to the function's return type; void functions must not return
// a value. Emits a store into the function's return slot (if any) then
// a jump into the shared epilogue patch list.
func (c *Context) EvalReturn(pos Pos, expr dataobj.DataObject) {
	fn := c.CurFn
	isVoid := types.Equal(fn.Sym.Type, c.Types.Primitive(types.Void))

	switch {
	case expr == nil && !isVoid:
		c.Diag.Error(pos, diag.ErrRetType, "void", fn.Sym.Type)
	case expr != nil && isVoid:
		c.Diag.Error(pos, diag.ErrRetType, expr.Type(), "void")
	case expr != nil && !dataobj.IsInvalid(expr):
		coerced := c.coerceOperand(pos, expr, expr.Type(), fn.Sym.Type, true)
		fn.Emit.Emit(quad.OpStore, quad.SymbolOperand(fn.RetSlot), coerced, quad.Operand{})
		c.releaseIfTemp(expr)
	}

	fn.Emit.EmitJumpPlaceholder(quad.OpJmp, quad.Operand{}, fn.EpiloguePatch)
}

// EvalCall implements spec.md §4.4's call f(args): f must resolve to a
// function symbol; arguments are evaluated left-to-right and coerced to
// their formal types (by-reference for `ref` formals, which require an
// lvalue argument); argument count must match unless the function is
// variadic, in which case the tail may carry any integer or string type.
func (c *Context) EvalCall(pos Pos, name string, args []dataobj.DataObject) dataobj.DataObject {
	sym, ok := c.Symbols.Lookup(name)
	if !ok || sym.Kind != symtab.KindFunction {
		if ok {
			c.Diag.Error(pos, diag.ErrNotAFunction, name)
		} else {
			c.Diag.Error(pos, diag.ErrUndeclared, name)
		}
		return dataobj.Invalid{Typ: c.Types.Primitive(types.SignedWord)}
	}

	want := len(sym.Args)
	if len(args) != want && !(sym.Variadic && len(args) >= want) {
		c.Diag.Error(pos, diag.ErrWrongArgCount, name, len(args), want)
	}

	for i, arg := range args {
		if dataobj.IsInvalid(arg) {
			continue
		}
		if i < want {
			formal := sym.Args[i]
			if formal.Ref {
				if !dataobj.IsLvalue(arg) {
					c.Diag.Error(pos, diag.ErrNotAnLvalue)
					continue
				}
				c.CurFn.Emit.Emit(quad.OpArg, quad.Operand{}, dataobj.Operand(arg), quad.Operand{})
				continue
			}
			coerced := c.coerceOperand(pos, arg, arg.Type(), formal.Type, true)
			c.CurFn.Emit.Emit(quad.OpArg, quad.Operand{}, coerced, quad.Operand{})
		} else {
			// variadic tail: any integer or string type, passed as-is.
			c.CurFn.Emit.Emit(quad.OpArg, quad.Operand{}, c.loadOperand(arg), quad.Operand{})
		}
		c.releaseIfTemp(arg)
	}

	if types.Equal(sym.Type, c.Types.Primitive(types.Void)) {
		c.CurFn.Emit.Emit(quad.OpCall, quad.Operand{}, quad.SymbolOperand(name), quad.Operand{})
		return dataobj.Void{Typ: c.Types.Primitive(types.Void)}
	}

	temp := c.CurFn.Emit.AllocTemp()
	c.CurFn.Emit.Emit(quad.OpCall, quad.TempOperand(temp), quad.SymbolOperand(name), quad.Operand{})
	return dataobj.Temporary{ID: temp, Typ: sym.Type}
}
