package quad

// Emitter appends quads to a per-function buffer, hands out fresh
// temporary IDs, and records/resolves patch lists, per spec.md §3/§4.5.
type Emitter struct {
	Quads []Quad

	nextTemp  int
	freeTemps []int

	// patchLists holds, for each open (unresolved) patch-list id, the
	// set of quad slots that must all receive the same target once it
	// becomes known.
	patchLists map[int][]Slot
	nextList   int
}

// NewEmitter returns an Emitter with an empty quad buffer.
func NewEmitter() *Emitter {
	return &Emitter{patchLists: make(map[int][]Slot)}
}

// CurrentQuad returns the index the next Emit call will use.
func (e *Emitter) CurrentQuad() int { return len(e.Quads) }

// Emit appends one quad and returns its index.
func (e *Emitter) Emit(op Op, dest, src1, src2 Operand) int {
	idx := len(e.Quads)
	e.Quads = append(e.Quads, Quad{Op: op, Dest: dest, Src1: src1, Src2: src2})
	return idx
}

// NewPatchList allocates a fresh, empty patch list id.
func (e *Emitter) NewPatchList() int {
	id := e.nextList
	e.nextList++
	e.patchLists[id] = nil
	return id
}

// EmitJumpPlaceholder emits an unresolved jump of the given op (Jz/Jnz/
// Jmp), whose target operand is Pending(listID). op's other operands
// (e.g. the tested condition for Jz/Jnz) are supplied by the caller.
// Returns the quad index and records the slot in listID for later Patch.
func (e *Emitter) EmitJumpPlaceholder(op Op, cond Operand, listID int) int {
	idx := e.Emit(op, TargetOperand(Target{ListID: listID}), cond, Operand{})
	e.patchLists[listID] = append(e.patchLists[listID], Slot{Index: idx, Operand: SlotDest})
	return idx
}

// AddToPatchList records an existing quad's jump-target slot into listID,
// for when a single jump (e.g. a forward goto) is itself the whole list.
func (e *Emitter) AddToPatchList(listID int, slot Slot) {
	e.patchLists[listID] = append(e.patchLists[listID], slot)
}

// Patch resolves every slot recorded in listID to target, then discards
// the list. Patching an already-discarded (or never-allocated) list is a
// no-op, matching the tolerant recovery style of spec.md §4.7.
func (e *Emitter) Patch(listID int, target int) {
	slots := e.patchLists[listID]
	for _, s := range slots {
		if s.Index < 0 || s.Index >= len(e.Quads) {
			continue
		}
		resolved := Target{Resolved: true, Index: target}
		q := &e.Quads[s.Index]
		switch s.Operand {
		case SlotDest:
			q.Dest = TargetOperand(resolved)
		case SlotSrc1:
			q.Src1 = TargetOperand(resolved)
		case SlotSrc2:
			q.Src2 = TargetOperand(resolved)
		}
	}
	delete(e.patchLists, listID)
}

// EmitResolvedJump emits an unconditional/conditional jump whose target
// quad index is already known (e.g. a backward jump to a loop's top, or
// a goto to an already-defined label).
func (e *Emitter) EmitResolvedJump(op Op, cond Operand, target int) int {
	return e.Emit(op, TargetOperand(Target{Resolved: true, Index: target}), cond, Operand{})
}

// AllocTemp hands out a fresh temporary id, reusing one from the free
// pool if available (spec.md §5: "a per-function pool that is reclaimed
// on scope close").
func (e *Emitter) AllocTemp() int {
	if n := len(e.freeTemps); n > 0 {
		id := e.freeTemps[n-1]
		e.freeTemps = e.freeTemps[:n-1]
		return id
	}
	id := e.nextTemp
	e.nextTemp++
	return id
}

// FreeTemp returns a temporary id to the pool for reuse (spec.md §4.4
// step 5: "Release temporaries consumed by this op").
func (e *Emitter) FreeTemp(id int) {
	e.freeTemps = append(e.freeTemps, id)
}

// ResetTemps clears the temporary pool entirely, so the next AllocTemp
// starts counting from 0 again. The compiler itself gives each function a
// fresh Emitter (sema.BeginFunction), which already starts at 0 (spec.md
// §5: "per-function pool").
func (e *Emitter) ResetTemps() {
	e.nextTemp = 0
	e.freeTemps = nil
}
