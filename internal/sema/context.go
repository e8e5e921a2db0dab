// Package sema implements the semantic actions described in spec.md
// §4.2-§4.7: scope/symbol resolution, the expression evaluator and
// constant folder, statement-level code generation, control-flow
// patching, and function definition. It is invoked by internal/parser's
// recursive-descent driver at exactly the point a real LALR reduction
// would fire.
package sema

import (
	"github.com/mexlang/mexc/internal/diag"
	"github.com/mexlang/mexc/internal/quad"
	"github.com/mexlang/mexc/internal/symtab"
	"github.com/mexlang/mexc/internal/token"
	"github.com/mexlang/mexc/internal/types"
)

// PtrSize is the representation size, in bytes, of a `ref` argument slot
// and of the `string`/array-handle family -- spec.md §4.2 leaves the
// exact ABI to the back end; the front end only needs one fixed value to
// lay out argument offsets.
const PtrSize = 4

// LabelInfo tracks one label's definition state and any forward
// references recorded against it before it was seen, per spec.md §4.5
// ("Label L:" / "goto L").
type LabelInfo struct {
	Defined   bool
	QuadIndex int
	PatchList int // valid iff !Defined and at least one goto has targeted it
	HasPatch  bool
}

// FuncContext is the "curfn" record of spec.md §3: the function
// currently being parsed, its quad buffer, and its epilogue patch list.
type FuncContext struct {
	Sym    *symtab.Symbol
	Emit   *quad.Emitter
	Labels map[string]*LabelInfo

	// EpiloguePatch collects every `return` site's jump, to be resolved
	// once the function's single epilogue quad is emitted (spec.md §3:
	// "patch lists (for return to emit a jump to the common epilogue)").
	EpiloguePatch int
	RetSlot       string // synthetic symbol name holding the return value, if non-void
}

// Context is the ParseContext of SPEC_FULL.md §9: the one mutable
// compiler-state record, owned exclusively by the driver's semantic-
// action methods, resolving spec.md Design Notes' "mutable global
// compiler state" concern.
type Context struct {
	Types   *types.Interner
	Symbols *symtab.Table
	Diag    *diag.Sink

	CurFn *FuncContext

	// Funcs collects every function body compiled so far, keyed by name,
	// for final serialization (internal/quadio).
	Funcs map[string]*FuncContext

	tempLabelSeq int
}

// NewContext returns a fresh compiler context with an open outermost
// (file) scope. padStructs configures the type interner's struct layout
// (compiler.WithStructPadding).
func NewContext(sink *diag.Sink, padStructs bool) *Context {
	in := types.NewInterner()
	in.PadStructs = padStructs
	c := &Context{
		Types:   in,
		Symbols: symtab.New(),
		Diag:    sink,
		Funcs:   make(map[string]*FuncContext),
	}
	c.Symbols.OpenScope()
	return c
}

// synthName returns a name for a compiler-internal symbol (e.g. a
// function's return-value slot) that cannot collide with a
// user-declared identifier, since MEX identifiers never contain '$'.
func (c *Context) synthName(prefix string) string {
	c.tempLabelSeq++
	return prefix + "$" + itoa(c.tempLabelSeq)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// label returns (creating if absent) the LabelInfo for name within the
// current function, per spec.md §4.5's label semantics -- labels are
// function-local.
func (c *Context) label(name string) *LabelInfo {
	if c.CurFn.Labels == nil {
		c.CurFn.Labels = make(map[string]*LabelInfo)
	}
	li, ok := c.CurFn.Labels[name]
	if !ok {
		li = &LabelInfo{}
		c.CurFn.Labels[name] = li
	}
	return li
}

// Pos is threaded by internal/parser into every sema call that may
// diagnose; it is a type alias to keep sema's public API independent of
// the lexer's own Pos construction details.
type Pos = token.Pos
