// Package symtab implements the symbol table and scope stack of
// spec.md §4.2: scope_open/scope_close and declare/lookup. Labels and
// their forward references are tracked per function by internal/sema.
package symtab

import (
	"fmt"

	"github.com/mexlang/mexc/internal/types"
)

// Kind discriminates what a Symbol names.
type Kind int

const (
	KindVariable Kind = iota
	KindArgument
	KindFunction
	KindLabel
	KindStructTag
)

// Arg describes one formal parameter of a function symbol, in
// declaration order.
type Arg struct {
	Name string
	Type *types.Descriptor
	Ref  bool
}

// Symbol is one entry in a Scope, per spec.md §3.
type Symbol struct {
	Name       string
	Type       *types.Descriptor
	ScopeDepth int
	Kind       Kind
	Offset     int // address/offset, meaning depends on Kind
	IsDefined  bool
	IsRef      bool

	// function-only fields
	Args        []Arg
	Variadic    bool
	StartQuad   int
	EndQuad     int
	HasStartEnd bool
}

// Scope is one lexical frame: a mapping from name to Symbol, owning only
// the symbols declared directly within it.
type Scope struct {
	depth   int
	symbols map[string]*Symbol
	// offsetMark is the function's offset cursor value as it stood when
	// this scope was opened, so scope_close can restore it (stack
	// discipline for local storage reuse, per spec.md §4.2).
	offsetMark int
}

// DuplicateError indicates declare() found name already bound in the
// current scope (MEXERR_DUPLICATE).
type DuplicateError struct{ Name string }

func (e DuplicateError) Error() string { return fmt.Sprintf("%q already declared in this scope", e.Name) }

// Table is the scope stack plus the active function's monotonic offset
// cursor, per spec.md §4.2.
type Table struct {
	scopes []*Scope
	offset int
}

// New returns an empty Table with no open scopes.
func New() *Table { return &Table{} }

// Depth returns the number of currently open scopes.
func (t *Table) Depth() int { return len(t.scopes) }

// Offset returns the current offset cursor.
func (t *Table) Offset() int { return t.offset }

// ResetOffset reinitializes the offset cursor, e.g. to a function's
// argument-area base, per spec.md §4.2 ("Function arguments are assigned
// negative offsets... per target ABI").
func (t *Table) ResetOffset(v int) { t.offset = v }

// OpenScope pushes a fresh scope frame (scope_open), recording the
// current offset so CloseScope can restore it.
func (t *Table) OpenScope() {
	t.scopes = append(t.scopes, &Scope{
		depth:      len(t.scopes) + 1,
		symbols:    make(map[string]*Symbol),
		offsetMark: t.offset,
	})
}

// CloseScope pops the top scope frame (scope_close); all symbols it
// owned become inaccessible, and the offset cursor is restored to its
// value when the scope was opened, reusing local storage (spec.md §4.2's
// simple stack discipline for block-local variables).
func (t *Table) CloseScope() {
	if len(t.scopes) == 0 {
		return
	}
	top := t.scopes[len(t.scopes)-1]
	t.scopes = t.scopes[:len(t.scopes)-1]
	t.offset = top.offsetMark
}

// Declare adds a symbol to the current (innermost) scope. It fails with
// DuplicateError if name already exists in that scope; callers recover
// by keeping the existing symbol and continuing (spec.md §4.7).
func (t *Table) Declare(name string, kind Kind, typ *types.Descriptor) (*Symbol, error) {
	if len(t.scopes) == 0 {
		t.OpenScope()
	}
	top := t.scopes[len(t.scopes)-1]
	if existing, ok := top.symbols[name]; ok {
		return existing, DuplicateError{name}
	}
	sym := &Symbol{Name: name, Type: typ, Kind: kind, ScopeDepth: top.depth}
	top.symbols[name] = sym
	return sym, nil
}

// DeclareVariable declares a local variable at the current offset
// cursor, then advances the cursor by the type's size, per spec.md §4.2.
func (t *Table) DeclareVariable(name string, typ *types.Descriptor) (*Symbol, error) {
	sym, err := t.Declare(name, KindVariable, typ)
	if err == nil {
		sym.Offset = t.offset
		t.offset += int(typ.Size())
	}
	return sym, err
}

// DeclareArgument declares a function formal at the current (argument-
// area) offset cursor, advancing by the type's size (or a pointer-sized
// slot for a ref argument), per spec.md §4.2.
func (t *Table) DeclareArgument(name string, typ *types.Descriptor, ref bool, ptrSize int) (*Symbol, error) {
	sym, err := t.Declare(name, KindArgument, typ)
	if err == nil {
		sym.Offset = t.offset
		sym.IsRef = ref
		if ref {
			t.offset += ptrSize
		} else {
			t.offset += int(typ.Size())
		}
	}
	return sym, err
}

// Lookup searches innermost-first across all open scopes, returning the
// first match.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Globals returns every symbol declared directly in the outermost (file)
// scope, for serialization (internal/quadio) -- a back end resolving a
// Quad's symbol operand needs this flattened table.
func (t *Table) Globals() []*Symbol {
	if len(t.scopes) == 0 {
		return nil
	}
	bottom := t.scopes[0]
	out := make([]*Symbol, 0, len(bottom.symbols))
	for _, sym := range bottom.symbols {
		out = append(out, sym)
	}
	return out
}

// DeclareGlobal declares a symbol directly in the outermost (file) scope,
// whatever scopes are open, used to place function declarations and
// definitions at file scope per spec.md §3. Like Declare, it returns the
// existing symbol and a DuplicateError if name is already bound there.
func (t *Table) DeclareGlobal(name string, kind Kind, typ *types.Descriptor) (*Symbol, error) {
	if len(t.scopes) == 0 {
		t.OpenScope()
	}
	bottom := t.scopes[0]
	if existing, ok := bottom.symbols[name]; ok {
		return existing, DuplicateError{name}
	}
	sym := &Symbol{Name: name, Type: typ, Kind: kind, ScopeDepth: bottom.depth}
	bottom.symbols[name] = sym
	return sym, nil
}
