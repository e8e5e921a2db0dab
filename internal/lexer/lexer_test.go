package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mexlang/mexc/internal/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New("test", strings.NewReader(src))
	var toks []token.Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestNext_DotDisambiguation(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want token.Kind
	}{
		{"field access", "a.b", token.Dot},
		{"array range", "1..5", token.Range},
		{"variadic tail", "f(x, ...)", token.Ellipsis},
	} {
		t.Run(tc.name, func(t *testing.T) {
			toks := scanAll(t, tc.src)
			var found bool
			for _, tok := range toks {
				if tok.Kind == tc.want {
					found = true
				}
			}
			assert.True(t, found, "expected a %v token among %v", tc.want, kinds(toks))
		})
	}
}

func TestNext_KeywordsVsIdentifiers(t *testing.T) {
	toks := scanAll(t, "while whiley")
	require.Len(t, toks, 3) // while, whiley, EOF
	assert.Equal(t, token.While, toks[0].Kind)
	assert.Equal(t, token.Ident, toks[1].Kind)
	assert.Equal(t, "whiley", toks[1].Value.Name)
}

func TestNext_NumberWidthSuffixes(t *testing.T) {
	for _, tc := range []struct {
		src       string
		wantVal   int64
		wantWidth token.Width
	}{
		{"42", 42, token.WidthByte},
		{"42w", 42, token.WidthWord},
		{"1000d", 1000, token.WidthDword},
		{"5b", 5, token.WidthByte},
	} {
		t.Run(tc.src, func(t *testing.T) {
			toks := scanAll(t, tc.src)
			require.Equal(t, token.IntLit, toks[0].Kind)
			assert.Equal(t, tc.wantVal, toks[0].Value.IntVal)
			assert.Equal(t, tc.wantWidth, toks[0].Value.Width)
		})
	}
}

func TestNext_StringEscapes(t *testing.T) {
	toks := scanAll(t, `"a\nb\tc"`)
	require.Equal(t, token.StrLit, toks[0].Kind)
	assert.Equal(t, "a\nb\tc", toks[0].Value.StrVal)
}

func TestNext_UnterminatedStringErrors(t *testing.T) {
	l := New("test", strings.NewReader(`"no end`))
	_, err := l.Next()
	assert.Error(t, err)
}

func TestNext_SkipsLineAndBlockComments(t *testing.T) {
	toks := scanAll(t, "a // line comment\n/* block\ncomment */ b")
	require.Len(t, toks, 3) // a, b, EOF
	assert.Equal(t, "a", toks[0].Value.Name)
	assert.Equal(t, "b", toks[1].Value.Name)
}

func TestNext_TwoCharOperatorsMaximalMunch(t *testing.T) {
	toks := scanAll(t, "<= << < = ==")
	got := kinds(toks)[:5]
	assert.Equal(t, []token.Kind{token.Le, token.Shl, token.Lt, token.Assign, token.Eq}, got)
}

func TestNext_EOFIsStableAcrossRepeatedCalls(t *testing.T) {
	l := New("test", strings.NewReader(""))
	first, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, token.EOF, first.Kind)
	second, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, token.EOF, second.Kind)
}
