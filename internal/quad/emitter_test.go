package quad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocTemp_ReusesFreedIDs(t *testing.T) {
	e := NewEmitter()
	a := e.AllocTemp()
	b := e.AllocTemp()
	assert.NotEqual(t, a, b)

	e.FreeTemp(a)
	c := e.AllocTemp()
	assert.Equal(t, a, c, "a freed temp id must be recycled before minting a new one")
}

func TestResetTemps_ClearsPoolAndCounter(t *testing.T) {
	e := NewEmitter()
	e.AllocTemp()
	e.AllocTemp()
	e.FreeTemp(0)
	e.ResetTemps()
	assert.Equal(t, 0, e.AllocTemp(), "after reset, allocation restarts from 0")
}

func TestEmit_ReturnsSequentialIndices(t *testing.T) {
	e := NewEmitter()
	i0 := e.Emit(OpAdd, Operand{}, Operand{}, Operand{})
	i1 := e.Emit(OpSub, Operand{}, Operand{}, Operand{})
	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
	assert.Equal(t, 2, e.CurrentQuad())
}

func TestPatch_ResolvesEveryRecordedSlot(t *testing.T) {
	e := NewEmitter()
	list := e.NewPatchList()
	i0 := e.EmitJumpPlaceholder(OpJz, Operand{}, list)
	i1 := e.EmitJumpPlaceholder(OpJmp, Operand{}, list)
	e.Patch(list, 42)

	assert.Equal(t, Target{Resolved: true, Index: 42}, e.Quads[i0].Dest.Target)
	assert.Equal(t, Target{Resolved: true, Index: 42}, e.Quads[i1].Dest.Target)
}

func TestPatch_DiscardedListIsANoOp(t *testing.T) {
	e := NewEmitter()
	list := e.NewPatchList()
	e.Patch(list, 1)
	require.NotPanics(t, func() { e.Patch(list, 2) })
}

func TestEmitResolvedJump_SetsTargetImmediately(t *testing.T) {
	e := NewEmitter()
	idx := e.EmitResolvedJump(OpJmp, Operand{}, 7)
	assert.True(t, e.Quads[idx].Dest.Target.Resolved)
	assert.Equal(t, 7, e.Quads[idx].Dest.Target.Index)
}

func TestAddToPatchList_RecordsAnExistingSlot(t *testing.T) {
	e := NewEmitter()
	idx := e.Emit(OpJmp, TargetOperand(Target{}), Operand{}, Operand{})
	list := e.NewPatchList()
	e.AddToPatchList(list, Slot{Index: idx, Operand: SlotDest})
	e.Patch(list, 9)
	assert.Equal(t, 9, e.Quads[idx].Dest.Target.Index)
}
