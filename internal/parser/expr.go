package parser

import (
	"github.com/mexlang/mexc/internal/dataobj"
	"github.com/mexlang/mexc/internal/sema"
	"github.com/mexlang/mexc/internal/token"
	"github.com/mexlang/mexc/internal/types"
)

// parseExpr parses the full expression grammar of spec.md §6, from
// assignment (lowest precedence, right-associative) down to primary
// (highest). effect, if non-nil, is set true when the parsed expression
// is an assignment or a call -- spec.md §4.4/§4.5's distinction between a
// meaningful expression-statement and one the "meaningless expression"
// warning should flag.
func (p *Parser) parseExpr(effect *bool) (dataobj.DataObject, error) {
	lhs, err := p.parseLogical(effect)
	if err != nil {
		return nil, err
	}
	if !p.at(token.Assign) {
		return lhs, nil
	}
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	p.noteShift()
	rhs, err := p.parseExpr(effect) // right-associative
	if err != nil {
		return nil, err
	}
	if effect != nil {
		*effect = true
	}
	return p.sc.EvalAssign(pos, lhs, rhs), nil
}

// widthToType maps an IntLit's lexical width tag to its default (signed)
// type, per spec.md §6's "scanner normalizes integer-literal width to
// match its source suffix."
func (p *Parser) widthToType(w token.Width) *types.Descriptor {
	switch w {
	case token.WidthWord:
		return p.sc.Types.Primitive(types.SignedWord)
	case token.WidthDword:
		return p.sc.Types.Primitive(types.SignedDword)
	default:
		return p.sc.Types.Primitive(types.SignedByte)
	}
}

// binLevel is one precedence tier of the left-associative binary-operator
// ladder between assignment and unary, per spec.md §6's grammar table.
type binLevel struct {
	toks []token.Kind
	ops  []sema.BinOp
}

var (
	logicalLevel = binLevel{
		toks: []token.Kind{token.OrOr, token.AndAnd},
		ops:  []sema.BinOp{sema.OpLogOr, sema.OpLogAnd},
	}
	equalityLevel = binLevel{
		toks: []token.Kind{token.Eq, token.Ne},
		ops:  []sema.BinOp{sema.OpEq, sema.OpNe},
	}
	relationLevel = binLevel{
		toks: []token.Kind{token.Lt, token.Le, token.Gt, token.Ge},
		ops:  []sema.BinOp{sema.OpLt, sema.OpLe, sema.OpGt, sema.OpGe},
	}
	bitwiseLevel = binLevel{
		toks: []token.Kind{token.Pipe, token.Amp},
		ops:  []sema.BinOp{sema.OpBitOr, sema.OpBitAnd},
	}
	shiftLevel = binLevel{
		toks: []token.Kind{token.Shl, token.Shr},
		ops:  []sema.BinOp{sema.OpShl, sema.OpShr},
	}
	additiveLevel = binLevel{
		toks: []token.Kind{token.Plus, token.Minus},
		ops:  []sema.BinOp{sema.OpAdd, sema.OpSub},
	}
	multiplicativeLevel = binLevel{
		toks: []token.Kind{token.Star, token.Slash, token.Percent},
		ops:  []sema.BinOp{sema.OpMul, sema.OpDiv, sema.OpMod},
	}
)

func (lv binLevel) match(k token.Kind) (sema.BinOp, bool) {
	for i, t := range lv.toks {
		if t == k {
			return lv.ops[i], true
		}
	}
	return 0, false
}

func (p *Parser) parseLogical(effect *bool) (dataobj.DataObject, error) {
	return p.parseBinLevel(effect, logicalLevel, p.parseEquality)
}

func (p *Parser) parseEquality(effect *bool) (dataobj.DataObject, error) {
	return p.parseBinLevel(effect, equalityLevel, p.parseRelational)
}

func (p *Parser) parseRelational(effect *bool) (dataobj.DataObject, error) {
	return p.parseBinLevel(effect, relationLevel, p.parseBitwise)
}

func (p *Parser) parseBitwise(effect *bool) (dataobj.DataObject, error) {
	return p.parseBinLevel(effect, bitwiseLevel, p.parseShift)
}

func (p *Parser) parseShift(effect *bool) (dataobj.DataObject, error) {
	return p.parseBinLevel(effect, shiftLevel, p.parseAdditive)
}

func (p *Parser) parseAdditive(effect *bool) (dataobj.DataObject, error) {
	return p.parseBinLevel(effect, additiveLevel, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative(effect *bool) (dataobj.DataObject, error) {
	return p.parseBinLevel(effect, multiplicativeLevel, p.parseUnary)
}

// parseBinLevel parses a left-associative chain at one precedence tier:
// next() parses the tier immediately above lv.
func (p *Parser) parseBinLevel(effect *bool, lv binLevel, next func(*bool) (dataobj.DataObject, error)) (dataobj.DataObject, error) {
	lhs, err := next(effect)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := lv.match(p.cur.Kind)
		if !ok {
			return lhs, nil
		}
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		p.noteShift()
		rhs, err := next(effect)
		if err != nil {
			return nil, err
		}
		lhs = p.sc.EvalBinary(pos, lhs, op, rhs)
	}
}

// parseUnary parses unary minus, a cast `(type) expr`, or sizeof(type),
// per spec.md §6's unary tier; otherwise falls through to postfix/primary.
func (p *Parser) parseUnary(effect *bool) (dataobj.DataObject, error) {
	switch p.cur.Kind {
	case token.Minus:
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		p.noteShift()
		operand, err := p.parseUnary(effect)
		if err != nil {
			return nil, err
		}
		return p.sc.EvalUnaryMinus(pos, operand), nil

	case token.Not:
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		p.noteShift()
		operand, err := p.parseUnary(effect)
		if err != nil {
			return nil, err
		}
		// logical not: `!x` folds to the `x == 0` comparison.
		zero := dataobj.Literal{Typ: p.sc.Types.Primitive(types.SignedWord)}
		return p.sc.EvalBinary(pos, operand, sema.OpEq, zero), nil

	case token.Sizeof:
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		p.noteShift()
		if _, err := p.expect(token.LParen); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return p.sc.Sizeof(pos, typ), nil

	case token.LParen:
		if p.isCastAhead() {
			pos := p.cur.Pos
			if err := p.advance(); err != nil { // consume '('
				return nil, err
			}
			p.noteShift()
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RParen); err != nil {
				return nil, err
			}
			operand, err := p.parseUnary(effect)
			if err != nil {
				return nil, err
			}
			return p.sc.EvalCast(pos, typ, operand), nil
		}
		return p.parsePostfix(effect)

	default:
		return p.parsePostfix(effect)
	}
}

// isCastAhead reports whether the current `(` begins a cast `(type)
// expr` rather than a parenthesized expression, by checking whether the
// very next token can only begin a type.
func (p *Parser) isCastAhead() bool {
	next, err := p.peekTok()
	if err != nil {
		return false
	}
	switch next.Kind {
	case token.Byte, token.Word, token.Dword, token.Void, token.String,
		token.Unsigned, token.Signed:
		return true
	default:
		return false
	}
}

// parsePostfix parses a primary expression followed by any number of
// `[index]` or `.field` projections, per spec.md §4.4.
func (p *Parser) parsePostfix(effect *bool) (dataobj.DataObject, error) {
	base, err := p.parsePrimary(effect)
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur.Kind {
		case token.LBracket:
			pos := p.cur.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			p.noteShift()
			idx, err := p.parseExpr(nil)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBracket); err != nil {
				return nil, err
			}
			base = p.sc.EvalIndex(pos, base, idx)
		case token.Dot:
			pos := p.cur.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			p.noteShift()
			field, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			base = p.sc.EvalField(pos, base, field.Value.Name)
		default:
			return base, nil
		}
	}
}

// parsePrimary parses a literal, identifier (bare, or a call if followed
// by `(`), or a parenthesized expression.
func (p *Parser) parsePrimary(effect *bool) (dataobj.DataObject, error) {
	switch p.cur.Kind {
	case token.IntLit:
		v := p.cur.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		p.noteShift()
		return dataobj.Literal{Val: v.IntVal, Typ: p.widthToType(v.Width)}, nil

	case token.StrLit:
		v := p.cur.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		p.noteShift()
		return dataobj.Literal{Str: v.StrVal, Typ: p.sc.Types.Primitive(types.String)}, nil

	case token.Ident:
		name := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		p.noteShift()
		if p.at(token.LParen) {
			return p.parseCallArgs(name, effect)
		}
		return p.sc.EvalIdent(name.Pos, name.Value.Name), nil

	case token.LParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		p.noteShift()
		inner, err := p.parseExpr(effect)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		p.syntaxError("expected an expression")
		return dataobj.Invalid{Typ: p.sc.Types.Primitive(types.SignedWord)}, nil
	}
}

func (p *Parser) parseCallArgs(name token.Token, effect *bool) (dataobj.DataObject, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var args []dataobj.DataObject
	if !p.at(token.RParen) {
		for {
			arg, err := p.parseExpr(nil)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.at(token.Comma) {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			p.noteShift()
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	if effect != nil {
		*effect = true
	}
	return p.sc.EvalCall(name.Pos, name.Value.Name, args), nil
}
