package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mexlang/mexc/internal/quad"
	"github.com/mexlang/mexc/internal/types"
)

func resolvedTarget(t *testing.T, op quad.Operand) int {
	t.Helper()
	require.Equal(t, quad.OperandTarget, op.Kind)
	require.True(t, op.Target.Resolved, "target must be patched to a concrete quad index")
	return op.Target.Index
}

func TestIfEnd_PatchesPastThenBranch(t *testing.T) {
	c := newTestContext()
	cond := lit(c, 1, types.SignedWord)

	p := c.IfTest(Pos{}, cond)
	c.CurFn.Emit.Emit(quad.OpAdd, quad.TempOperand(0), quad.ConstOperand(1), quad.ConstOperand(1)) // "then" body
	c.IfEnd(p)

	require.Len(t, c.CurFn.Emit.Quads, 2)
	assert.Equal(t, quad.OpJz, c.CurFn.Emit.Quads[0].Op)
	assert.Equal(t, 2, resolvedTarget(t, c.CurFn.Emit.Quads[0].Dest))
}

func TestIfElse_ThenJumpsPastElseBranch(t *testing.T) {
	c := newTestContext()
	cond := lit(c, 1, types.SignedWord)

	p := c.IfTest(Pos{}, cond)
	c.CurFn.Emit.Emit(quad.OpAdd, quad.TempOperand(0), quad.ConstOperand(1), quad.ConstOperand(1)) // then
	e := c.IfElseMiddle(p)
	c.CurFn.Emit.Emit(quad.OpSub, quad.TempOperand(0), quad.ConstOperand(1), quad.ConstOperand(1)) // else
	c.IfElseEnd(e)

	require.Len(t, c.CurFn.Emit.Quads, 4)
	// jz cond, <else-start (quad 3): past the then-branch's own trailing jmp>
	assert.Equal(t, 3, resolvedTarget(t, c.CurFn.Emit.Quads[0].Dest))
	// then-branch's trailing jmp skips past the else branch, to quad 4 (the end)
	assert.Equal(t, quad.OpJmp, c.CurFn.Emit.Quads[2].Op)
	assert.Equal(t, 4, resolvedTarget(t, c.CurFn.Emit.Quads[2].Dest))
}

func TestWhileEnd_JumpsBackToTopAndPatchesExit(t *testing.T) {
	c := newTestContext()
	top := c.CurrentQuad()
	cond := lit(c, 1, types.SignedWord)
	h := c.WhileTest(Pos{}, top, cond)
	c.CurFn.Emit.Emit(quad.OpAdd, quad.TempOperand(0), quad.ConstOperand(1), quad.ConstOperand(1)) // body
	c.WhileEnd(h)

	require.Len(t, c.CurFn.Emit.Quads, 3)
	assert.Equal(t, quad.OpJz, c.CurFn.Emit.Quads[0].Op)
	assert.Equal(t, 3, resolvedTarget(t, c.CurFn.Emit.Quads[0].Dest), "exit jumps past the loop")
	assert.Equal(t, quad.OpJmp, c.CurFn.Emit.Quads[2].Op)
	assert.Equal(t, 0, resolvedTarget(t, c.CurFn.Emit.Quads[2].Dest), "loop jumps back to top")
}

func TestForLoop_PostEmittedBeforeBodyButJumpsAfterIt(t *testing.T) {
	c := newTestContext()
	// init: i = 0 (omitted, irrelevant to shape)
	vmTest := c.CurrentQuad()
	test := lit(c, 1, types.SignedWord)
	h := c.ForTest(Pos{}, vmTest, test)
	// post: i = i + 1
	c.CurFn.Emit.Emit(quad.OpAdd, quad.TempOperand(1), quad.ConstOperand(1), quad.ConstOperand(1))
	c.ForPostEmitted(h)
	// body
	c.CurFn.Emit.Emit(quad.OpAdd, quad.TempOperand(2), quad.ConstOperand(1), quad.ConstOperand(1))
	c.ForEnd(h)

	// quad 0: jz test -> exit
	// quad 1: jmp vmBody (patched once vmBody known)
	// quad 2: post add
	// quad 3: jmp vmTest
	// quad 4: body add   <- vmBody
	// quad 5: jmp vmPost
	require.Len(t, c.CurFn.Emit.Quads, 6)
	assert.Equal(t, 4, h.VMBody)
	assert.Equal(t, 2, h.VMPost)
	assert.Equal(t, h.VMBody, resolvedTarget(t, c.CurFn.Emit.Quads[1].Dest), "jmp vmBody must land on the body, not the post")
	assert.Equal(t, vmTest, resolvedTarget(t, c.CurFn.Emit.Quads[3].Dest))
	assert.Equal(t, h.VMPost, resolvedTarget(t, c.CurFn.Emit.Quads[5].Dest))
	assert.Equal(t, 6, resolvedTarget(t, c.CurFn.Emit.Quads[0].Dest), "exit lands past the whole loop")
}

func TestForLoop_NoTestIsInfinite(t *testing.T) {
	c := newTestContext()
	h := c.ForTest(Pos{}, c.CurrentQuad(), nil)
	c.ForPostEmitted(h)
	c.ForEnd(h)
	assert.Equal(t, -1, h.ExitPatch)
	for _, q := range c.CurFn.Emit.Quads {
		assert.NotEqual(t, quad.OpJz, q.Op, "a test-less for loop never emits a conditional exit jump")
	}
}

func TestGotoForward_PatchesOnceLabelDeclared(t *testing.T) {
	c := newTestContext()
	c.ProcessGoto("done")
	c.CurFn.Emit.Emit(quad.OpAdd, quad.TempOperand(0), quad.ConstOperand(1), quad.ConstOperand(1))
	c.DeclareLabel(Pos{}, "done")

	require.Len(t, c.CurFn.Emit.Quads, 2)
	assert.Equal(t, quad.OpJmp, c.CurFn.Emit.Quads[0].Op)
	assert.Equal(t, 2, resolvedTarget(t, c.CurFn.Emit.Quads[0].Dest))
}

func TestGotoBackward_EmitsResolvedJumpImmediately(t *testing.T) {
	c := newTestContext()
	c.DeclareLabel(Pos{}, "top")
	c.CurFn.Emit.Emit(quad.OpAdd, quad.TempOperand(0), quad.ConstOperand(1), quad.ConstOperand(1))
	c.ProcessGoto("top")

	require.Len(t, c.CurFn.Emit.Quads, 2)
	assert.Equal(t, quad.OpJmp, c.CurFn.Emit.Quads[1].Op)
	assert.Equal(t, 0, resolvedTarget(t, c.CurFn.Emit.Quads[1].Dest))
}

func TestDeclareLabel_DuplicateIsReportedAndKeepsFirst(t *testing.T) {
	c := newTestContext()
	c.DeclareLabel(Pos{}, "l")
	c.CurFn.Emit.Emit(quad.OpAdd, quad.TempOperand(0), quad.ConstOperand(1), quad.ConstOperand(1))
	c.DeclareLabel(Pos{}, "l")

	require.Len(t, c.Diag.Diagnostics, 1)
	li := c.CurFn.Labels["l"]
	require.NotNil(t, li)
	assert.Equal(t, 0, li.QuadIndex, "the first definition wins")
}
