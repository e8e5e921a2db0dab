// Package parser implements a recursive-descent driver over internal/token's
// lexical contract, generalized from a literal LALR(1) action/goto table per
// the REDESIGN FLAG recorded in SPEC_FULL.md §4.1: every reduction point of
// spec.md §4.1-§4.6's grammar becomes a call into internal/sema at exactly
// the position a real LALR reduction would fire.
package parser

import (
	"fmt"

	"github.com/mexlang/mexc/internal/diag"
	"github.com/mexlang/mexc/internal/sema"
	"github.com/mexlang/mexc/internal/symtab"
	"github.com/mexlang/mexc/internal/token"
	"github.com/mexlang/mexc/internal/types"
)

// Parser drives token.Lexer through the surface grammar of spec.md §6,
// invoking internal/sema at each rule's reduction point.
type Parser struct {
	lex token.Lexer
	sc  *sema.Context

	cur  token.Token
	peek *token.Token // one token of lookahead buffered by peekTok

	// errTokens counts tokens successfully shifted since the last parse
	// error; spec.md §4.1: "after three successfully shifted tokens
	// following an error, error state clears."
	errTokens int
	inError   bool
}

// New returns a Parser reading tokens from lex and driving sc.
func New(lex token.Lexer, sc *sema.Context) (*Parser, error) {
	p := &Parser{lex: lex, sc: sc}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	if p.peek != nil {
		p.cur = *p.peek
		p.peek = nil
		return nil
	}
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) peekTok() (token.Token, error) {
	if p.peek == nil {
		tok, err := p.lex.Next()
		if err != nil {
			return token.Token{}, err
		}
		p.peek = &tok
	}
	return *p.peek, nil
}

func (p *Parser) at(k token.Kind) bool { return p.cur.Kind == k }

// expect requires the current token be kind k, consumes it, and returns
// it; on mismatch it reports a syntax error and enters the parser's
// error-recovery mode.
func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.cur.Kind != k {
		p.syntaxError(fmt.Sprintf("expected %v, got %v", k, p.cur.Kind))
		return p.cur, nil
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return tok, err
	}
	p.noteShift()
	return tok, nil
}

func (p *Parser) syntaxError(msg string) {
	p.sc.Diag.Syntax(p.cur.Pos, msg)
	p.inError = true
	p.errTokens = 0
}

// noteShift implements the "after three successfully shifted tokens
// following an error, error state clears" half of spec.md §4.1's
// recovery protocol.
func (p *Parser) noteShift() {
	if !p.inError {
		return
	}
	p.errTokens++
	if p.errTokens >= 3 {
		p.inError = false
		p.errTokens = 0
	}
}

// recoverToSemicolon implements the other half: on a parse error inside a
// statement, discard tokens until a synchronizing `;` (or EOF), modeling
// "pop the stack until a state that shifts the synthetic error token,
// then discard input tokens until a valid continuation" for the one
// explicit error production spec.md §4.1 names: `error ;`.
func (p *Parser) recoverToSemicolon() error {
	for !p.at(token.Semicolon) && !p.at(token.EOF) {
		if err := p.advance(); err != nil {
			return err
		}
	}
	if p.at(token.Semicolon) {
		return p.advance()
	}
	return nil
}

// ParseProgram parses the whole input as a sequence of top-level
// declarations: struct declarations, global variable declarations, and
// function definitions (or forward declarations).
func (p *Parser) ParseProgram() error {
	for !p.at(token.EOF) {
		if err := p.parseTopLevel(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseTopLevel() error {
	switch {
	case p.at(token.Struct):
		return p.parseStructDecl()
	default:
		return p.parseTypedDecl()
	}
}

// parseStructDecl parses `struct Name { fieldDecl* };` (spec.md §3's
// "a struct may be declared (name reserved) and later defined"), or,
// when no `{` follows the tag, a global variable declaration of that
// struct type: `struct Name var, ...;`.
func (p *Parser) parseStructDecl() error {
	pos := p.cur.Pos
	if _, err := p.expect(token.Struct); err != nil {
		return err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	if !p.at(token.LBrace) {
		typ, ok := p.sc.Types.LookupStruct(name.Value.Name)
		if !ok {
			p.sc.Diag.Error(name.Pos, diag.ErrUndeclared, name.Value.Name)
			typ = p.sc.Types.DeclareStruct(name.Value.Name)
		}
		varName, err := p.expect(token.Ident)
		if err != nil {
			return err
		}
		return p.parseVarTail(typ, varName)
	}
	p.sc.Types.DeclareStruct(name.Value.Name)

	if _, err := p.expect(token.LBrace); err != nil {
		return err
	}
	var fields []types.Field
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		ftyp, err := p.parseType()
		if err != nil {
			return err
		}
		fname, err := p.expect(token.Ident)
		if err != nil {
			return err
		}
		fields = append(fields, types.Field{Name: fname.Value.Name, Type: ftyp})
		if _, err := p.expect(token.Semicolon); err != nil {
			return err
		}
	}
	if _, err := p.expect(token.RBrace); err != nil {
		return err
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return err
	}
	if _, err := p.sc.Types.DefineStruct(name.Value.Name, fields); err != nil {
		p.sc.Diag.Error(pos, diag.ErrDuplicate, name.Value.Name)
	}
	return nil
}

// parseType parses one of: a primitive keyword, `struct Name`, or
// `array [ low Range high? ] of Type`.
func (p *Parser) parseType() (*types.Descriptor, error) {
	switch p.cur.Kind {
	case token.Byte:
		p.advance()
		return p.sc.Types.Primitive(types.SignedByte), nil
	case token.Word:
		p.advance()
		return p.sc.Types.Primitive(types.SignedWord), nil
	case token.Dword:
		p.advance()
		return p.sc.Types.Primitive(types.SignedDword), nil
	case token.Void:
		p.advance()
		return p.sc.Types.Primitive(types.Void), nil
	case token.String:
		p.advance()
		return p.sc.Types.Primitive(types.String), nil
	case token.Unsigned:
		p.advance()
		return p.parseUnsignedType()
	case token.Signed:
		p.advance()
		return p.parseType()
	case token.Struct:
		return p.parseStructTypeRef()
	case token.Array:
		return p.parseArrayType()
	default:
		p.syntaxError(fmt.Sprintf("expected a type, got %v", p.cur.Kind))
		return p.sc.Types.Primitive(types.SignedWord), nil
	}
}

func (p *Parser) parseUnsignedType() (*types.Descriptor, error) {
	switch p.cur.Kind {
	case token.Byte:
		p.advance()
		return p.sc.Types.Primitive(types.UnsignedByte), nil
	case token.Word:
		p.advance()
		return p.sc.Types.Primitive(types.UnsignedWord), nil
	case token.Dword:
		p.advance()
		return p.sc.Types.Primitive(types.UnsignedDword), nil
	default:
		p.syntaxError(fmt.Sprintf("expected byte/word/dword after unsigned, got %v", p.cur.Kind))
		return p.sc.Types.Primitive(types.UnsignedWord), nil
	}
}

func (p *Parser) parseStructTypeRef() (*types.Descriptor, error) {
	if _, err := p.expect(token.Struct); err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if d, ok := p.sc.Types.LookupStruct(name.Value.Name); ok {
		return d, nil
	}
	p.sc.Diag.Error(name.Pos, diag.ErrUndeclared, name.Value.Name)
	return p.sc.Types.DeclareStruct(name.Value.Name), nil
}

func (p *Parser) parseArrayType() (*types.Descriptor, error) {
	if _, err := p.expect(token.Array); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBracket); err != nil {
		return nil, err
	}
	lowTok, err := p.expect(token.IntLit)
	if err != nil {
		return nil, err
	}
	low := int32(lowTok.Value.IntVal)
	high := int32(-1)
	if _, err := p.expect(token.Range); err != nil {
		return nil, err
	}
	if p.at(token.IntLit) {
		highTok, err := p.expect(token.IntLit)
		if err != nil {
			return nil, err
		}
		high = int32(highTok.Value.IntVal)
	}
	if _, err := p.expect(token.RBracket); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Of); err != nil {
		return nil, err
	}
	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	d, aerr := p.sc.Types.Array(low, high, elem)
	if aerr != nil {
		p.sc.Diag.Error(lowTok.Pos, diag.ErrInvalidRange, low, high)
	}
	return d, nil
}

// parseTypedDecl parses the shared prefix of a global variable
// declaration and a function definition: `Type name`. If `(` follows, it
// is a function; otherwise a global variable declaration.
func (p *Parser) parseTypedDecl() error {
	typ, err := p.parseType()
	if err != nil {
		return err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	if p.at(token.LParen) {
		return p.parseFunctionDecl(typ, name)
	}
	return p.parseVarTail(typ, name)
}

func (p *Parser) parseVarTail(typ *types.Descriptor, name token.Token) error {
	if _, err := p.sc.Symbols.DeclareVariable(name.Value.Name, typ); err != nil {
		p.sc.Diag.Error(name.Pos, diag.ErrDuplicate, name.Value.Name)
	}
	for p.at(token.Comma) {
		p.advance()
		extra, err := p.expect(token.Ident)
		if err != nil {
			return err
		}
		if _, err := p.sc.Symbols.DeclareVariable(extra.Value.Name, typ); err != nil {
			p.sc.Diag.Error(extra.Pos, diag.ErrDuplicate, extra.Value.Name)
		}
	}
	_, err := p.expect(token.Semicolon)
	return err
}

// parseFunctionDecl parses `Type name ( ArgList ) (begin Body end | ;)`,
// per spec.md §4.6.
func (p *Parser) parseFunctionDecl(retType *types.Descriptor, name token.Token) error {
	if _, err := p.expect(token.LParen); err != nil {
		return err
	}
	args, variadic, err := p.parseArgList()
	if err != nil {
		return err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return err
	}

	if p.at(token.Semicolon) {
		// forward declaration only.
		p.advance()
		symArgs := make([]symtab.Arg, len(args))
		for i, a := range args {
			symArgs[i] = symtab.Arg{Name: a.Name, Type: a.Type, Ref: a.Ref}
		}
		sym, derr := p.sc.Symbols.DeclareGlobal(name.Value.Name, symtab.KindFunction, retType)
		if derr != nil {
			p.sc.Diag.Error(name.Pos, diag.ErrDuplicate, name.Value.Name)
		}
		sym.Args = symArgs
		sym.Variadic = variadic
		return nil
	}

	p.sc.BeginFunction(name.Pos, name.Value.Name, retType, args, variadic)
	if err := p.parseBlock(); err != nil {
		return err
	}
	p.sc.EndFunction(name.Pos)
	return nil
}

func (p *Parser) parseArgList() ([]sema.ArgSpec, bool, error) {
	var args []sema.ArgSpec
	if p.at(token.RParen) {
		return args, false, nil
	}
	for {
		if p.at(token.Ellipsis) {
			p.advance()
			return args, true, nil
		}
		ref := false
		if p.at(token.Ref) {
			ref = true
			p.advance()
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, false, err
		}
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, false, err
		}
		args = append(args, sema.ArgSpec{Name: name.Value.Name, Type: typ, Ref: ref})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	return args, false, nil
}

// startsType reports whether the current token can begin a type, used to
// distinguish a local declaration statement from an expression statement.
func (p *Parser) startsType() bool {
	switch p.cur.Kind {
	case token.Byte, token.Word, token.Dword, token.Void, token.String,
		token.Unsigned, token.Signed, token.Struct, token.Array:
		return true
	default:
		return false
	}
}
