// Package token defines the lexical token kinds and tagged semantic
// values produced by a Lexer and consumed by the parser driver.
package token

import "fmt"

// Kind discriminates a Token's grammatical category.
type Kind int

const (
	Invalid Kind = iota
	EOF

	Ident  // a bare identifier: foo, bar_baz
	IntLit // a byte/word/dword literal constant: 1, 2w, 3d
	StrLit // a "quoted string" literal

	// type keywords
	Byte
	Word
	Dword
	Void
	String
	Unsigned
	Signed

	// structural keywords
	If
	Then
	Else
	Goto
	While
	Do
	For
	Struct
	Array
	Range
	Of
	Return
	Sizeof
	Ref
	Begin
	End

	// punctuation
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Comma
	Semicolon
	Colon
	Dot
	Ellipsis

	// operators, ascending precedence per spec.md §6
	Assign
	OrOr
	AndAnd
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	Pipe
	Amp
	Shl
	Shr
	Plus
	Minus
	Star
	Slash
	Percent
	Not

	// synthetic recovery token (spec.md §4.1: "a statement may be `error ;`")
	Error
)

var kindNames = map[Kind]string{
	Invalid: "invalid", EOF: "eof",
	Ident: "identifier", IntLit: "int-literal", StrLit: "string-literal",
	Byte: "byte", Word: "word", Dword: "dword", Void: "void", String: "string",
	Unsigned: "unsigned", Signed: "signed",
	If: "if", Then: "then", Else: "else", Goto: "goto", While: "while", Do: "do",
	For: "for", Struct: "struct", Array: "array", Range: "range", Of: "of",
	Return: "return", Sizeof: "sizeof", Ref: "ref", Begin: "begin", End: "end",
	LParen: "(", RParen: ")", LBracket: "[", RBracket: "]", LBrace: "{", RBrace: "}",
	Comma: ",", Semicolon: ";", Colon: ":", Dot: ".", Ellipsis: "...",
	Assign: "=", OrOr: "||", AndAnd: "&&", Eq: "==", Ne: "!=",
	Lt: "<", Le: "<=", Gt: ">", Ge: ">=", Pipe: "|", Amp: "&",
	Shl: "<<", Shr: ">>", Plus: "+", Minus: "-", Star: "*", Slash: "/",
	Percent: "%", Not: "!", Error: "error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps the reserved-word spelling to its Kind.
var Keywords = map[string]Kind{
	"byte": Byte, "word": Word, "dword": Dword, "void": Void, "string": String,
	"unsigned": Unsigned, "signed": Signed,
	"if": If, "then": Then, "else": Else, "goto": Goto, "while": While, "do": Do,
	"for": For, "struct": Struct, "array": Array, "range": Range, "of": Of,
	"return": Return, "sizeof": Sizeof, "ref": Ref, "begin": Begin, "end": End,
}

// Width tags a literal constant's storage size, independent of signedness.
type Width int

const (
	WidthByte Width = iota
	WidthWord
	WidthDword
	WidthString
)

// Pos is a source location: a file name and 1-based line.
type Pos struct {
	Name string
	Line int
}

func (p Pos) String() string { return fmt.Sprintf("%s:%d", p.Name, p.Line) }

// Value is the tagged semantic value carried by a Token. Exactly one of
// Name, IntVal, StrVal is meaningful, selected by the owning Token's Kind
// (Ident, IntLit, StrLit respectively) -- this is the "discriminated sum
// aligned with grammar symbols" called for in place of an untagged union.
type Value struct {
	Name   string
	IntVal int64
	StrVal string
	Width  Width
}

// Token is one lexical unit: a Kind plus its Pos and (for Ident/IntLit/StrLit)
// Value.
type Token struct {
	Kind  Kind
	Pos   Pos
	Value Value
}

func (t Token) String() string {
	switch t.Kind {
	case Ident:
		return fmt.Sprintf("%v(%s)", t.Kind, t.Value.Name)
	case IntLit:
		return fmt.Sprintf("%v(%d)", t.Kind, t.Value.IntVal)
	case StrLit:
		return fmt.Sprintf("%v(%q)", t.Kind, t.Value.StrVal)
	default:
		return t.Kind.String()
	}
}

// Lexer is the external collaborator contract (spec.md §6): a stream of
// (kind, value) tokens. The parser never constructs one directly; it is
// handed a Lexer by its caller (the root package's Compiler.Compile wires
// the concrete internal/lexer.Lexer).
type Lexer interface {
	Next() (Token, error)
}
