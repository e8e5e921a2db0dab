package sema

import (
	"github.com/mexlang/mexc/internal/dataobj"
	"github.com/mexlang/mexc/internal/diag"
	"github.com/mexlang/mexc/internal/quad"
)

// IfPatch is returned by IfTest and consumed by IfEnd/IfElseEnd --
// mirrors mex_tab.c's `(yyval.patch)=IfTest(cond)` / `IfEnd(&patch, &elsetype)`.
type IfPatch struct {
	ThenSkip int // patch list jumping past the `then` branch (to `else` or past the whole statement)
}

// IfTest implements spec.md §4.5's `if cond then S`/`if cond then S else
// T` shared prefix: evaluate cond, emit `jz cond, ?`, record the patch.
func (c *Context) IfTest(pos Pos, cond dataobj.DataObject) IfPatch {
	condOp := c.loadOperand(cond)
	c.releaseIfTemp(cond)
	list := c.CurFn.Emit.NewPatchList()
	c.CurFn.Emit.EmitJumpPlaceholder(quad.OpJz, condOp, list)
	return IfPatch{ThenSkip: list}
}

// IfEnd implements spec.md §4.5's `if cond then S` reduction (no else):
// patch(P, current_quad()).
func (c *Context) IfEnd(p IfPatch) {
	c.CurFn.Emit.Patch(p.ThenSkip, c.CurFn.Emit.CurrentQuad())
}

// ElsePatch is returned after parsing `then S` and the `else` keyword,
// before parsing T, so the two statement arms can be distinguished from
// a single reduction the way mex_tab.c's ElseType union member does.
type ElsePatch struct {
	PastElse int // patch list jumping past T, to the statement's end
}

// IfElseMiddle implements the second half of spec.md §4.5's
// `if cond then S else T`: after S, emit `jmp ?` (patch Q), then
// patch(P, current_quad()) so control falls into T when cond was false.
func (c *Context) IfElseMiddle(p IfPatch) ElsePatch {
	list := c.CurFn.Emit.NewPatchList()
	c.CurFn.Emit.EmitJumpPlaceholder(quad.OpJmp, quad.Operand{}, list)
	c.CurFn.Emit.Patch(p.ThenSkip, c.CurFn.Emit.CurrentQuad())
	return ElsePatch{PastElse: list}
}

// IfElseEnd implements the final reduction: patch(Q, current_quad()).
func (c *Context) IfElseEnd(e ElsePatch) {
	c.CurFn.Emit.Patch(e.PastElse, c.CurFn.Emit.CurrentQuad())
}

// WhileHead is returned by WhileTest, consumed by WhileEnd.
type WhileHead struct {
	Top       int
	ExitPatch int
}

// WhileTest implements spec.md §4.5's `while cond do S` prefix: record
// top = current_quad(); evaluate cond; emit `jz cond, ?` (patch E).
func (c *Context) WhileTest(pos Pos, topMark int, cond dataobj.DataObject) WhileHead {
	condOp := c.loadOperand(cond)
	c.releaseIfTemp(cond)
	list := c.CurFn.Emit.NewPatchList()
	c.CurFn.Emit.EmitJumpPlaceholder(quad.OpJz, condOp, list)
	return WhileHead{Top: topMark, ExitPatch: list}
}

// WhileEnd implements the remainder: emit `jmp top`; patch(E, current_quad()).
func (c *Context) WhileEnd(h WhileHead) {
	c.CurFn.Emit.EmitResolvedJump(quad.OpJmp, quad.Operand{}, h.Top)
	c.CurFn.Emit.Patch(h.ExitPatch, c.CurFn.Emit.CurrentQuad())
}

// DoWhileEnd implements spec.md §4.5's `do S while cond`: evaluate
// cond; emit `jnz cond, top`.
func (c *Context) DoWhileEnd(pos Pos, top int, cond dataobj.DataObject) {
	condOp := c.loadOperand(cond)
	c.releaseIfTemp(cond)
	c.CurFn.Emit.EmitResolvedJump(quad.OpJnz, condOp, top)
}

// ForHead carries the four anchor points spec.md §4.5 names for a
// `for (init; test; post) body` loop: vmTest, vmPost, vmBody, and the
// exit patch list.
type ForHead struct {
	VMTest    int
	VMPost    int
	VMBody    int
	ExitPatch int
	bodyPatch int // patch list for the `jmp vmBody` emitted right after the test
}

// ForTest implements spec.md §4.5's for-loop reorder, through "emit jmp
// vmBody": init has already been parsed/emitted by the caller; vmTest is
// marked before the test is evaluated; the test's false case jumps to
// the exit (patch E); true case falls through to an unconditional jump
// to vmBody (patched later, once vmBody is known).
func (c *Context) ForTest(pos Pos, vmTest int, test dataobj.DataObject) *ForHead {
	h := &ForHead{VMTest: vmTest}
	if test != nil {
		condOp := c.loadOperand(test)
		c.releaseIfTemp(test)
		h.ExitPatch = c.CurFn.Emit.NewPatchList()
		c.CurFn.Emit.EmitJumpPlaceholder(quad.OpJz, condOp, h.ExitPatch)
	} else {
		h.ExitPatch = -1 // no test: infinite loop, `for (;;)`
	}
	h.bodyPatch = c.CurFn.Emit.NewPatchList()
	c.CurFn.Emit.EmitJumpPlaceholder(quad.OpJmp, quad.Operand{}, h.bodyPatch)
	h.VMPost = c.CurFn.Emit.CurrentQuad()
	return h
}

// ForPostEmitted is called once the post-expression has been parsed and
// its (already emitted) code sits right after vmPost: emit `jmp vmTest`.
func (c *Context) ForPostEmitted(h *ForHead) {
	c.CurFn.Emit.EmitResolvedJump(quad.OpJmp, quad.Operand{}, h.VMTest)
	h.VMBody = c.CurFn.Emit.CurrentQuad()
	c.CurFn.Emit.Patch(h.bodyPatch, h.VMBody)
}

// ForEnd is called once the body has been parsed: emit `jmp vmPost`;
// patch(E, current_quad()).
func (c *Context) ForEnd(h *ForHead) {
	c.CurFn.Emit.EmitResolvedJump(quad.OpJmp, quad.Operand{}, h.VMPost)
	if h.ExitPatch >= 0 {
		c.CurFn.Emit.Patch(h.ExitPatch, c.CurFn.Emit.CurrentQuad())
	}
}

// ProcessGoto implements spec.md §4.5's `goto L`: if L is defined, emit
// `jmp L.quad`; else add this jump's target slot to L's forward-patch
// list.
func (c *Context) ProcessGoto(name string) {
	li := c.label(name)
	if li.Defined {
		c.CurFn.Emit.EmitResolvedJump(quad.OpJmp, quad.Operand{}, li.QuadIndex)
		return
	}
	if !li.HasPatch {
		li.PatchList = c.CurFn.Emit.NewPatchList()
		li.HasPatch = true
	}
	c.CurFn.Emit.EmitJumpPlaceholder(quad.OpJmp, quad.Operand{}, li.PatchList)
}

// DeclareLabel implements spec.md §4.5's `L:`: if L is new, declare it
// at current_quad(); if it already has forward-patch records, resolve
// them. Duplicate definitions are reported (MEXERR_DUPLABEL) and ignored
// (the first definition wins), per spec.md §4.7.
func (c *Context) DeclareLabel(pos Pos, name string) {
	li := c.label(name)
	if li.Defined {
		c.Diag.Error(pos, diag.ErrDupLabel, name)
		return
	}
	li.Defined = true
	li.QuadIndex = c.CurFn.Emit.CurrentQuad()
	if li.HasPatch {
		c.CurFn.Emit.Patch(li.PatchList, li.QuadIndex)
		li.HasPatch = false
	}
}

// CurrentQuad exposes current_quad() to the parser, e.g. to mark a
// loop's `top` before evaluating its condition.
func (c *Context) CurrentQuad() int { return c.CurFn.Emit.CurrentQuad() }
