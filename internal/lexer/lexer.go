// Package lexer implements a maximal-munch scanner producing the token
// stream internal/parser consumes, generalized from internal/runeio's
// rune-at-a-time reading discipline to the full token.Kind set of
// spec.md §3/§6.
package lexer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/mexlang/mexc/internal/fileinput"
	"github.com/mexlang/mexc/internal/token"
)

// Lexer scans one or more named input streams into a token.Token
// sequence. It implements token.Lexer.
type Lexer struct {
	in      fileinput.Input
	name    string
	pending []rune
	atEOF   bool
}

// New returns a Lexer reading r, reporting name in positions.
func New(name string, r io.Reader) *Lexer {
	l := &Lexer{name: name}
	l.in.Queue = []io.Reader{namedReader{r, name}}
	return l
}

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }

func (l *Lexer) pos() token.Pos {
	return token.Pos{Name: l.in.Scan.Name, Line: l.in.Scan.Line}
}

func (l *Lexer) readRune() (rune, error) {
	if n := len(l.pending); n > 0 {
		r := l.pending[n-1]
		l.pending = l.pending[:n-1]
		return r, nil
	}
	r, _, err := l.in.ReadRune()
	return r, err
}

func (l *Lexer) unread(r rune) {
	l.pending = append(l.pending, r)
}

// Next returns the next token, or a token.EOF-kinded token (with nil
// error) once the input is exhausted, matching spec.md §6's "the token
// stream ends with a distinguished EOF token" framing.
func (l *Lexer) Next() (token.Token, error) {
	if l.atEOF {
		return token.Token{Kind: token.EOF, Pos: l.pos()}, nil
	}

	if err := l.skipSpaceAndComments(); err != nil {
		if err == io.EOF {
			l.atEOF = true
			return token.Token{Kind: token.EOF, Pos: l.pos()}, nil
		}
		return token.Token{}, err
	}

	pos := l.pos()
	r, err := l.readRune()
	if err != nil {
		if err == io.EOF {
			l.atEOF = true
			return token.Token{Kind: token.EOF, Pos: pos}, nil
		}
		return token.Token{}, err
	}

	switch {
	case r == '"':
		return l.scanString(pos)
	case unicode.IsDigit(r):
		return l.scanNumber(pos, r)
	case isIdentStart(r):
		return l.scanIdentOrKeyword(pos, r)
	default:
		return l.scanOperator(pos, r)
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func (l *Lexer) skipSpaceAndComments() error {
	for {
		r, err := l.readRune()
		if err != nil {
			return err
		}
		switch {
		case unicode.IsSpace(r):
			continue
		case r == '/':
			r2, err := l.readRune()
			if err != nil {
				l.unread(r)
				return nil
			}
			switch r2 {
			case '/':
				if err := l.skipLineComment(); err != nil {
					return err
				}
				continue
			case '*':
				if err := l.skipBlockComment(); err != nil {
					return err
				}
				continue
			default:
				l.unread(r2)
				l.unread(r)
				return nil
			}
		default:
			l.unread(r)
			return nil
		}
	}
}

func (l *Lexer) skipLineComment() error {
	for {
		r, err := l.readRune()
		if err != nil {
			return err
		}
		if r == '\n' {
			return nil
		}
	}
}

func (l *Lexer) skipBlockComment() error {
	for {
		r, err := l.readRune()
		if err != nil {
			return err
		}
		if r != '*' {
			continue
		}
		r2, err := l.readRune()
		if err != nil {
			return err
		}
		if r2 == '/' {
			return nil
		}
		l.unread(r2)
	}
}

func (l *Lexer) scanString(pos token.Pos) (token.Token, error) {
	var sb strings.Builder
	for {
		r, err := l.readRune()
		if err != nil {
			return token.Token{}, fmt.Errorf("%v: unterminated string literal: %w", pos, err)
		}
		if r == '"' {
			break
		}
		if r == '\\' {
			r2, err := l.readRune()
			if err != nil {
				return token.Token{}, fmt.Errorf("%v: unterminated string literal: %w", pos, err)
			}
			sb.WriteRune(unescape(r2))
			continue
		}
		sb.WriteRune(r)
	}
	return token.Token{Kind: token.StrLit, Pos: pos, Value: token.Value{StrVal: sb.String(), Width: token.WidthString}}, nil
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return r
	}
}

func (l *Lexer) scanNumber(pos token.Pos, first rune) (token.Token, error) {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		r, err := l.readRune()
		if err != nil {
			break
		}
		if !unicode.IsDigit(r) {
			l.unread(r)
			break
		}
		sb.WriteRune(r)
	}

	width := token.WidthByte
	if r, err := l.readRune(); err == nil {
		switch r {
		case 'w', 'W':
			width = token.WidthWord
		case 'd', 'D':
			width = token.WidthDword
		case 'b', 'B':
			width = token.WidthByte
		default:
			l.unread(r)
		}
	}

	v, err := strconv.ParseInt(sb.String(), 10, 64)
	if err != nil {
		return token.Token{}, fmt.Errorf("%v: invalid integer literal %q: %w", pos, sb.String(), err)
	}
	return token.Token{Kind: token.IntLit, Pos: pos, Value: token.Value{IntVal: v, Width: width}}, nil
}

func (l *Lexer) scanIdentOrKeyword(pos token.Pos, first rune) (token.Token, error) {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		r, err := l.readRune()
		if err != nil {
			break
		}
		if !isIdentCont(r) {
			l.unread(r)
			break
		}
		sb.WriteRune(r)
	}
	name := sb.String()
	if kind, ok := token.Keywords[name]; ok {
		return token.Token{Kind: kind, Pos: pos}, nil
	}
	return token.Token{Kind: token.Ident, Pos: pos, Value: token.Value{Name: name}}, nil
}

// twoCharOps maps a leading rune to its possible second rune and the
// resulting Kind, checked before falling back to the single-char Kind.
type twoCharOp struct {
	second rune
	kind   token.Kind
}

var twoCharOps = map[rune][]twoCharOp{
	'|': {{'|', token.OrOr}},
	'&': {{'&', token.AndAnd}},
	'=': {{'=', token.Eq}},
	'!': {{'=', token.Ne}},
	'<': {{'=', token.Le}, {'<', token.Shl}},
	'>': {{'=', token.Ge}, {'>', token.Shr}},
}

var oneCharOps = map[rune]token.Kind{
	'(': token.LParen, ')': token.RParen,
	'[': token.LBracket, ']': token.RBracket,
	'{': token.LBrace, '}': token.RBrace,
	',': token.Comma, ';': token.Semicolon, ':': token.Colon,
	'=': token.Assign, '|': token.Pipe, '&': token.Amp,
	'<': token.Lt, '>': token.Gt,
	'+': token.Plus, '-': token.Minus, '*': token.Star,
	'/': token.Slash, '%': token.Percent, '!': token.Not,
}

func (l *Lexer) scanOperator(pos token.Pos, first rune) (token.Token, error) {
	if first == '.' {
		return l.scanDot(pos)
	}

	if candidates, ok := twoCharOps[first]; ok {
		r2, err := l.readRune()
		if err == nil {
			for _, c := range candidates {
				if c.second == r2 {
					return token.Token{Kind: c.kind, Pos: pos}, nil
				}
			}
			l.unread(r2)
		}
	}

	if kind, ok := oneCharOps[first]; ok {
		return token.Token{Kind: kind, Pos: pos}, nil
	}

	return token.Token{}, fmt.Errorf("%v: unexpected character %q", pos, first)
}

// scanDot disambiguates `.` (field access), `..` (the array-range
// operator, spec.md's `array[1..5]`) and `...` (the variadic-tail
// marker, spec.md's `f(args, ...)`) by maximal munch.
func (l *Lexer) scanDot(pos token.Pos) (token.Token, error) {
	r2, err := l.readRune()
	if err != nil || r2 != '.' {
		if err == nil {
			l.unread(r2)
		}
		return token.Token{Kind: token.Dot, Pos: pos}, nil
	}
	r3, err := l.readRune()
	if err != nil || r3 != '.' {
		if err == nil {
			l.unread(r3)
		}
		return token.Token{Kind: token.Range, Pos: pos}, nil
	}
	return token.Token{Kind: token.Ellipsis, Pos: pos}, nil
}
