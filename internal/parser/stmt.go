package parser

import (
	"github.com/mexlang/mexc/internal/dataobj"
	"github.com/mexlang/mexc/internal/token"
)

// parseBlock parses `begin stmt* end`, opening and closing a lexical
// scope per spec.md §4.2's "called on function entry and on every
// begin…end block."
func (p *Parser) parseBlock() error {
	if _, err := p.expect(token.Begin); err != nil {
		return err
	}
	p.sc.Symbols.OpenScope()
	for !p.at(token.End) && !p.at(token.EOF) {
		if err := p.parseStatement(); err != nil {
			p.sc.Symbols.CloseScope()
			return err
		}
	}
	p.sc.Symbols.CloseScope()
	_, err := p.expect(token.End)
	return err
}

// parseStatement parses one statement of spec.md §4.5's surface forms,
// recovering to the next `;` on a parse error so one malformed statement
// does not abort the whole pass (spec.md §4.1's error-token discipline).
// Recovery only discards input when no token was shifted after the
// error, so a statement that already consumed its own `;` does not also
// swallow the statement after it.
func (p *Parser) parseStatement() error {
	before := p.inError
	if err := p.parseStatementInner(); err != nil {
		return err
	}
	if !before && p.inError && p.errTokens == 0 {
		return p.recoverToSemicolon()
	}
	return nil
}

func (p *Parser) parseStatementInner() error {
	switch p.cur.Kind {
	case token.Begin:
		return p.parseBlock()
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.Do:
		return p.parseDoWhile()
	case token.For:
		return p.parseFor()
	case token.Goto:
		return p.parseGoto()
	case token.Return:
		return p.parseReturn()
	case token.Semicolon:
		return p.advance()
	case token.Ident:
		if isLabel, err := p.identStartsLabel(); err != nil {
			return err
		} else if isLabel {
			return p.parseLabel()
		}
		return p.parseExprStatement()
	default:
		if p.startsType() {
			return p.parseLocalDecl()
		}
		return p.parseExprStatement()
	}
}

// identStartsLabel reports whether the current Ident is immediately
// followed by `:`, i.e. is a label declaration rather than the start of
// an expression statement.
func (p *Parser) identStartsLabel() (bool, error) {
	next, err := p.peekTok()
	if err != nil {
		return false, err
	}
	return next.Kind == token.Colon, nil
}

// parseLabel parses `Ident :` and declares it, then parses the statement
// it labels -- spec.md §4.5 treats a label as a prefix, not a standalone
// statement.
func (p *Parser) parseLabel() error {
	name, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.Colon); err != nil {
		return err
	}
	p.sc.DeclareLabel(name.Pos, name.Value.Name)
	return p.parseStatement()
}

func (p *Parser) parseGoto() error {
	if _, err := p.expect(token.Goto); err != nil {
		return err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	p.sc.ProcessGoto(name.Value.Name)
	_, err = p.expect(token.Semicolon)
	return err
}

func (p *Parser) parseReturn() error {
	pos := p.cur.Pos
	if _, err := p.expect(token.Return); err != nil {
		return err
	}
	if p.at(token.Semicolon) {
		p.sc.EvalReturn(pos, nil)
		return p.advance()
	}
	expr, err := p.parseExpr(nil)
	if err != nil {
		return err
	}
	p.sc.EvalReturn(pos, expr)
	_, err = p.expect(token.Semicolon)
	return err
}

// parseIf parses `if cond then S` and `if cond then S else T`, threading
// the patch lists internal/sema's IfTest/IfElseMiddle/IfEnd/IfElseEnd
// hand back, per spec.md §4.5.
func (p *Parser) parseIf() error {
	pos := p.cur.Pos
	if _, err := p.expect(token.If); err != nil {
		return err
	}
	cond, err := p.parseExpr(nil)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.Then); err != nil {
		return err
	}
	ifPatch := p.sc.IfTest(pos, cond)
	if err := p.parseStatement(); err != nil {
		return err
	}
	if p.at(token.Else) {
		elsePatch := p.sc.IfElseMiddle(ifPatch)
		if err := p.advance(); err != nil {
			return err
		}
		p.noteShift()
		if err := p.parseStatement(); err != nil {
			return err
		}
		p.sc.IfElseEnd(elsePatch)
		return nil
	}
	p.sc.IfEnd(ifPatch)
	return nil
}

func (p *Parser) parseWhile() error {
	pos := p.cur.Pos
	if _, err := p.expect(token.While); err != nil {
		return err
	}
	top := p.sc.CurrentQuad()
	cond, err := p.parseExpr(nil)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.Do); err != nil {
		return err
	}
	head := p.sc.WhileTest(pos, top, cond)
	if err := p.parseStatement(); err != nil {
		return err
	}
	p.sc.WhileEnd(head)
	return nil
}

func (p *Parser) parseDoWhile() error {
	if _, err := p.expect(token.Do); err != nil {
		return err
	}
	top := p.sc.CurrentQuad()
	if err := p.parseStatement(); err != nil {
		return err
	}
	pos := p.cur.Pos
	if _, err := p.expect(token.While); err != nil {
		return err
	}
	cond, err := p.parseExpr(nil)
	if err != nil {
		return err
	}
	p.sc.DoWhileEnd(pos, top, cond)
	_, err = p.expect(token.Semicolon)
	return err
}

// parseFor parses `for (init; test; post) body`, emitting init and test
// directly (the parser, not sema, sequences the emission order), then
// calling ForTest/ForPostEmitted/ForEnd at exactly the points spec.md
// §4.5's reorder algorithm names.
func (p *Parser) parseFor() error {
	pos := p.cur.Pos
	if _, err := p.expect(token.For); err != nil {
		return err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return err
	}

	if !p.at(token.Semicolon) {
		initExpr, err := p.parseExpr(nil)
		if err != nil {
			return err
		}
		p.sc.MaybeFreeTemporary(pos, initExpr, false)
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return err
	}

	vmTest := p.sc.CurrentQuad()
	var testExpr dataobj.DataObject
	if !p.at(token.Semicolon) {
		var err error
		testExpr, err = p.parseExpr(nil)
		if err != nil {
			return err
		}
	}
	if _, err := p.expect(token.Semicolon); err != nil {
		return err
	}
	head := p.sc.ForTest(pos, vmTest, testExpr)

	if !p.at(token.RParen) {
		postExpr, err := p.parseExpr(nil)
		if err != nil {
			return err
		}
		p.sc.MaybeFreeTemporary(pos, postExpr, false)
	}
	p.sc.ForPostEmitted(head)

	if _, err := p.expect(token.RParen); err != nil {
		return err
	}
	if err := p.parseStatement(); err != nil {
		return err
	}
	p.sc.ForEnd(head)
	return nil
}

// parseLocalDecl parses a block-local variable declaration: `Type name
// (, name)* ;`.
func (p *Parser) parseLocalDecl() error {
	typ, err := p.parseType()
	if err != nil {
		return err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	return p.parseVarTail(typ, name)
}

// parseExprStatement parses a bare expression followed by `;`, warning if
// the expression is neither an assignment nor a call (spec.md §4.5 /
// original_source's MaybeFreeTemporary call site).
func (p *Parser) parseExprStatement() error {
	pos := p.cur.Pos
	var effect bool
	expr, err := p.parseExpr(&effect)
	if err != nil {
		return err
	}
	p.sc.MaybeFreeTemporary(pos, expr, !effect)
	_, err = p.expect(token.Semicolon)
	return err
}
