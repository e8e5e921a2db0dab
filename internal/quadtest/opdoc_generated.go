package quadtest

// @generated from internal/quad/quad.go

import "github.com/mexlang/mexc/internal/quad"

// OpDoc maps an opcode to the doc comment next to its const
// declaration, for richer quadtest failure messages than quad.Op.String() alone.
var OpDoc = map[quad.Op]string{
	quad.OpAssign: "register/temp copy",
	quad.OpLoad:   "load from a named/indexed/field location into a temp",
	quad.OpStore:  "store a value into a named/indexed/field location",
	quad.OpIndex:  "compute base[index] address",
	quad.OpField:  "compute base.field address",
	quad.OpArg:    "push one call argument",
	quad.OpCall:   "call a function, result in dest",
	quad.OpReturn: "return [src1]",
	quad.OpJz:     "conditional jump if src1 == 0",
	quad.OpJnz:    "conditional jump if src1 != 0",
	quad.OpJmp:    "unconditional jump",
	quad.OpLabel:  "no-op marker, used only for dump readability",
}
