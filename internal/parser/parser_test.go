package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mexlang/mexc/internal/diag"
	"github.com/mexlang/mexc/internal/lexer"
	"github.com/mexlang/mexc/internal/quad"
	"github.com/mexlang/mexc/internal/quadtest"
	"github.com/mexlang/mexc/internal/sema"
	"github.com/mexlang/mexc/internal/types"
)

func newTestParser(t *testing.T, src string) (*Parser, *sema.Context) {
	t.Helper()
	sc := sema.NewContext(diag.NewSink(false), false)
	lx := lexer.New("test.mex", strings.NewReader(src))
	p, err := New(lx, sc)
	require.NoError(t, err)
	return p, sc
}

func TestParseProgram_GlobalVarDecl(t *testing.T) {
	p, sc := newTestParser(t, `word x, y;`)
	require.NoError(t, p.ParseProgram())
	assert.False(t, sc.Diag.Failed())
	_, ok := sc.Symbols.Lookup("x")
	assert.True(t, ok)
	_, ok = sc.Symbols.Lookup("y")
	assert.True(t, ok)
}

func TestParseProgram_StructDeclThenUse(t *testing.T) {
	p, sc := newTestParser(t, `
struct point { word x; word y; };
struct point origin;
`)
	require.NoError(t, p.ParseProgram())
	assert.False(t, sc.Diag.Failed())
	d, ok := sc.Types.LookupStruct("point")
	require.True(t, ok)
	assert.Equal(t, types.KindStruct, d.Kind)
}

func TestParseProgram_FunctionWithBody(t *testing.T) {
	p, sc := newTestParser(t, `
word add(word a, word b) begin
	return a + b;
end
`)
	require.NoError(t, p.ParseProgram())
	assert.False(t, sc.Diag.Failed())
	fn, ok := sc.Funcs["add"]
	require.True(t, ok)
	assert.NotEmpty(t, fn.Emit.Quads)
}

func TestParseProgram_ForwardDeclarationOnly(t *testing.T) {
	p, sc := newTestParser(t, `void helper(word n);`)
	require.NoError(t, p.ParseProgram())
	assert.False(t, sc.Diag.Failed())
	sym, ok := sc.Symbols.Lookup("helper")
	require.True(t, ok)
	require.Len(t, sym.Args, 1)
	assert.Equal(t, "n", sym.Args[0].Name)
}

func TestParseArgList_VariadicTrailingEllipsis(t *testing.T) {
	p, sc := newTestParser(t, `void printf(string fmt, ...);`)
	require.NoError(t, p.ParseProgram())
	assert.False(t, sc.Diag.Failed())
	sym, ok := sc.Symbols.Lookup("printf")
	require.True(t, ok)
	assert.True(t, sym.Variadic)
	assert.Len(t, sym.Args, 1)
}

func TestParseArgList_RefArgument(t *testing.T) {
	p, sc := newTestParser(t, `void set(ref word dst) begin
	dst = 1;
end
`)
	require.NoError(t, p.ParseProgram())
	assert.False(t, sc.Diag.Failed())
}

func TestParseType_ArrayOfByte(t *testing.T) {
	p, sc := newTestParser(t, `array[0..9] of byte buf;`)
	require.NoError(t, p.ParseProgram())
	assert.False(t, sc.Diag.Failed())
	sym, ok := sc.Symbols.Lookup("buf")
	require.True(t, ok)
	assert.Equal(t, types.KindArray, sym.Type.Kind)
}

func TestParseType_UnsignedWord(t *testing.T) {
	p, sc := newTestParser(t, `unsigned word x;`)
	require.NoError(t, p.ParseProgram())
	assert.False(t, sc.Diag.Failed())
	sym, ok := sc.Symbols.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, types.UnsignedWord, sym.Type.Prim)
}

func TestParseStructDecl_DuplicateFieldReported(t *testing.T) {
	p, sc := newTestParser(t, `struct s { word x; word x; };`)
	require.NoError(t, p.ParseProgram())
	assert.True(t, sc.Diag.Failed())
}

func TestParseProgram_UndeclaredStructTypeReportsError(t *testing.T) {
	p, sc := newTestParser(t, `struct missing m;`)
	require.NoError(t, p.ParseProgram())
	assert.True(t, sc.Diag.Failed())
}

func TestParseStatement_SyntaxErrorRecoversToSemicolon(t *testing.T) {
	p, sc := newTestParser(t, `
word x;
void main() begin
	x = ;
	x = 1;
end
`)
	require.NoError(t, p.ParseProgram())
	assert.True(t, sc.Diag.Failed())
	fn, ok := sc.Funcs["main"]
	require.True(t, ok)
	// recovery must let the well-formed second statement still generate a store.
	var sawStore bool
	for _, q := range fn.Emit.Quads {
		if q.Op == quad.OpStore {
			sawStore = true
		}
	}
	assert.True(t, sawStore, "the statement after the recovered error should still emit a store")
}

func TestParseFor_InfiniteFormWithEmptyClausesParses(t *testing.T) {
	p, sc := newTestParser(t, `
void main() begin
	for (;;)
		goto done;
	done:
	return;
end
`)
	require.NoError(t, p.ParseProgram())
	assert.False(t, sc.Diag.Failed())
	fn, ok := sc.Funcs["main"]
	require.True(t, ok)
	assert.Zero(t, quadtest.CountOp(fn.Emit.Quads, quad.OpJz), "an empty test clause must not emit a conditional jump")
}

func TestParseFor_AllClausesPresentStillParses(t *testing.T) {
	p, sc := newTestParser(t, `
void main() begin
	word i;
	for (i = 0; i < 10; i = i + 1)
		i = i;
end
`)
	require.NoError(t, p.ParseProgram())
	assert.False(t, sc.Diag.Failed())
	fn, ok := sc.Funcs["main"]
	require.True(t, ok)
	assert.NotZero(t, quadtest.CountOp(fn.Emit.Quads, quad.OpJz))
}

func TestParseLabel_DistinguishedFromExprStatementByColon(t *testing.T) {
	p, sc := newTestParser(t, `
void main() begin
	goto done;
	done: return;
end
`)
	require.NoError(t, p.ParseProgram())
	assert.False(t, sc.Diag.Failed())
}
