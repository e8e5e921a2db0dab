// Package quadtest provides assertion helpers for comparing a quad.Emitter's
// output against an expected opcode shape, generalized from the teacher's
// generated vmTestCase-expectation style (scripts/gen_vm_expects.go) to
// three-address quads instead of VM traces.
package quadtest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mexlang/mexc/internal/quad"
)

// Ops returns the opcode sequence of quads, discarding operands, for
// shape-only assertions (e.g. "exactly one store, no add").
func Ops(quads []quad.Quad) []quad.Op {
	ops := make([]quad.Op, len(quads))
	for i, q := range quads {
		ops[i] = q.Op
	}
	return ops
}

// AssertOps asserts that quads' opcodes, in order, equal want.
func AssertOps(t *testing.T, quads []quad.Quad, want ...quad.Op) {
	t.Helper()
	assert.Equal(t, want, Ops(quads))
}

// CountOp returns how many quads in quads have opcode op.
func CountOp(quads []quad.Quad, op quad.Op) int {
	n := 0
	for _, q := range quads {
		if q.Op == op {
			n++
		}
	}
	return n
}

// AssertNoOp asserts quads contains zero instances of op -- the shape of
// spec.md §8 property 1 ("the emitted code contains zero quads for that
// operation").
func AssertNoOp(t *testing.T, quads []quad.Quad, op quad.Op) {
	t.Helper()
	assert.Zero(t, CountOp(quads, op), "expected no %v quads", op)
}

// AssertSingleLiteralStore asserts quads contains exactly one `store`
// whose source operand is the constant want -- spec.md §8's "byte x; x =
// 2 + 3;" scenario.
func AssertSingleLiteralStore(t *testing.T, quads []quad.Quad, want int64) {
	t.Helper()
	var stores []quad.Quad
	for _, q := range quads {
		if q.Op == quad.OpStore {
			stores = append(stores, q)
		}
	}
	if !assert.Len(t, stores, 1, "expected exactly one store quad") {
		return
	}
	assert.Equal(t, quad.OperandConst, stores[0].Src1.Kind, "store source should be a literal constant")
	assert.Equal(t, want, stores[0].Src1.Const)
}

// TargetIndex resolves a jump quad's Dest operand to its quad index,
// failing the test if the operand isn't a resolved Target -- the shape
// every back-patching assertion (spec.md §8 properties 3-5) needs.
func TargetIndex(t *testing.T, q quad.Quad) int {
	t.Helper()
	if !assert.Equal(t, quad.OperandTarget, q.Dest.Kind, "expected a jump target operand") {
		return -1
	}
	if !assert.True(t, q.Dest.Target.Resolved, "jump target should be resolved by end of compilation") {
		return -1
	}
	return q.Dest.Target.Index
}

// Describe renders quads with explicit indices, for failure messages
// that need to show the whole buffer. Each line is annotated with
// OpDoc's comment for that opcode, when one is generated.
func Describe(quads []quad.Quad) string {
	s := ""
	for i, q := range quads {
		s += fmt.Sprintf("%3d: %v", i, q)
		if doc, ok := OpDoc[q.Op]; ok {
			s += fmt.Sprintf("  // %s", doc)
		}
		s += "\n"
	}
	return s
}
