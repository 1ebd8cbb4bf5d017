package parser

import (
	"fmt"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/lexer"
)

// parseExpr is the entry point of the precedence-climbing expression
// grammar, lowest precedence first:
//
//	ternary > or > and > compare > range > additive > multiplicative
//	> unary > postfix > primary
func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseTernary()
}

func (p *Parser) parseTernary() (ast.Expr, error) {
	pos := p.cur().Pos
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.KwThen) {
		return cond, nil
	}
	p.advance()
	then, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KwElse, "'else'"); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.TernaryExpr{
		ExprBase: ast.ExprBase{Position: pos}, Condition: cond, ThenExpr: then, ElseExpr: els,
	}, nil
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.KwOr) {
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicBinExpr{ExprBase: ast.ExprBase{Position: pos}, Op: ast.LogicOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseCompare()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.KwAnd) {
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicBinExpr{ExprBase: ast.ExprBase{Position: pos}, Op: ast.LogicAnd, Left: left, Right: right}
	}
	return left, nil
}

func compareOpFor(k lexer.Kind) (ast.CompareOp, bool) {
	switch k {
	case lexer.Eq:
		return ast.CmpEq, true
	case lexer.Neq:
		return ast.CmpNeq, true
	case lexer.Lt:
		return ast.CmpLt, true
	case lexer.Le:
		return ast.CmpLe, true
	case lexer.Gt:
		return ast.CmpGt, true
	case lexer.Ge:
		return ast.CmpGe, true
	}
	return 0, false
}

func (p *Parser) parseCompare() (ast.Expr, error) {
	left, err := p.parseRange()
	if err != nil {
		return nil, err
	}
	op, ok := compareOpFor(p.cur().Kind)
	if !ok {
		return left, nil
	}
	pos := p.cur().Pos
	p.advance()
	right, err := p.parseRange()
	if err != nil {
		return nil, err
	}
	return &ast.CompareExpr{ExprBase: ast.ExprBase{Position: pos}, Op: op, Left: left, Right: right}, nil
}

func (p *Parser) parseRange() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.DotDot) && !p.at(lexer.DotDotEq) && !p.at(lexer.DotDotLt) {
		return left, nil
	}
	inclusive := p.at(lexer.DotDotEq)
	pos := p.cur().Pos
	p.advance()
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &ast.ArithBinExpr{
		ExprBase: ast.ExprBase{Position: pos}, Op: ast.ArithRange, Left: left, Right: right, Inclusive: inclusive,
	}, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Plus) || p.at(lexer.Minus) {
		op := ast.ArithAdd
		if p.at(lexer.Minus) {
			op = ast.ArithSub
		}
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.ArithBinExpr{ExprBase: ast.ExprBase{Position: pos}, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Star) || p.at(lexer.Slash) || p.at(lexer.Percent) {
		var op ast.ArithOp
		switch p.cur().Kind {
		case lexer.Star:
			op = ast.ArithMul
		case lexer.Slash:
			op = ast.ArithDiv
		default:
			op = ast.ArithMod
		}
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.ArithBinExpr{ExprBase: ast.ExprBase{Position: pos}, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.cur().Kind {
	case lexer.Minus:
		pos := p.advance().Pos
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.NegExpr{ExprBase: ast.ExprBase{Position: pos}, Operand: operand}, nil
	case lexer.KwNot:
		pos := p.advance().Pos
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.NotExpr{ExprBase: ast.ExprBase{Position: pos}, Operand: operand}, nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles indexing/slicing, `as Type` casts, and `is
// Type` narrowing tests, all of which may chain off a primary.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case lexer.LBracket:
			// a `[` on a later line starts the next statement (an array
			// literal or a destructuring set), not an index.
			if p.pos > 0 && p.cur().Pos.Line > p.toks[p.pos-1].Pos.Line {
				return e, nil
			}
			e, err = p.parseAccess(e)
			if err != nil {
				return nil, err
			}
		case lexer.KwAs:
			pos := p.advance().Pos
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			e = &ast.CastExpr{ExprBase: ast.ExprBase{Position: pos}, Operand: e, Target: t}
		case lexer.KwIs:
			pos := p.advance().Pos
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			e = &ast.IsTestExpr{ExprBase: ast.ExprBase{Position: pos}, Operand: e, Target: t}
		default:
			return e, nil
		}
	}
}

func (p *Parser) parseAccess(obj ast.Expr) (ast.Expr, error) {
	pos := p.advance().Pos // '['
	if p.at(lexer.DotDot) || p.at(lexer.DotDotEq) || p.at(lexer.DotDotLt) {
		return p.finishSlice(obj, pos, nil)
	}
	// parsed below the range level so `a..b` stays visible here as a
	// slice, not an index holding a range expression.
	first, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.DotDot) || p.at(lexer.DotDotEq) || p.at(lexer.DotDotLt) {
		return p.finishSlice(obj, pos, first)
	}
	if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
		return nil, err
	}
	return &ast.AccessExpr{ExprBase: ast.ExprBase{Position: pos}, Object: obj, Index: first}, nil
}

func (p *Parser) finishSlice(obj ast.Expr, pos diag.Position, from ast.Expr) (ast.Expr, error) {
	inclusive := p.at(lexer.DotDotEq)
	p.advance()
	var to ast.Expr
	if !p.at(lexer.RBracket) {
		t, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		to = t
	}
	if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
		return nil, err
	}
	return &ast.AccessExpr{
		ExprBase: ast.ExprBase{Position: pos}, Object: obj, IsSlice: true,
		SliceFrom: from, SliceTo: to, SliceInclusive: inclusive,
	}, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case lexer.IntNum:
		p.advance()
		return &ast.IntLit{ExprBase: ast.ExprBase{Position: tok.Pos}, Value: tok.Text}, nil
	case lexer.FloatNum:
		p.advance()
		return &ast.NumLit{ExprBase: ast.ExprBase{Position: tok.Pos}, Value: tok.Text}, nil
	case lexer.KwTrue:
		p.advance()
		return &ast.BoolLit{ExprBase: ast.ExprBase{Position: tok.Pos}, Value: true}, nil
	case lexer.KwFalse:
		p.advance()
		return &ast.BoolLit{ExprBase: ast.ExprBase{Position: tok.Pos}, Value: false}, nil
	case lexer.KwNull:
		p.advance()
		return &ast.NullLit{ExprBase: ast.ExprBase{Position: tok.Pos}}, nil
	case lexer.KwStatus:
		p.advance()
		return &ast.StatusLit{ExprBase: ast.ExprBase{Position: tok.Pos}}, nil
	case lexer.TextStart:
		return p.parseTextLit()
	case lexer.RawCommandStart:
		cmd, err := p.parseRawCommandLit()
		if err != nil {
			return nil, err
		}
		return &ast.CommandInvokeExpr{ExprBase: ast.ExprBase{Position: tok.Pos}, Command: cmd}, nil
	case lexer.LParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')'"); err != nil {
			return nil, err
		}
		return &ast.ParenExpr{ExprBase: ast.ExprBase{Position: tok.Pos}, Inner: inner}, nil
	case lexer.LBracket:
		return p.parseArrayLit()
	case lexer.KwLen:
		p.advance()
		if _, err := p.expect(lexer.LParen, "'('"); err != nil {
			return nil, err
		}
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')'"); err != nil {
			return nil, err
		}
		return &ast.LengthExpr{ExprBase: ast.ExprBase{Position: tok.Pos}, Operand: operand}, nil
	case lexer.KwNameof:
		p.advance()
		if _, err := p.expect(lexer.LParen, "'('"); err != nil {
			return nil, err
		}
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')'"); err != nil {
			return nil, err
		}
		return &ast.NameOfExpr{ExprBase: ast.ExprBase{Position: tok.Pos}, Operand: operand}, nil
	case lexer.KwSudo, lexer.KwSilent, lexer.KwSuppress, lexer.KwTrust:
		mods := p.parseModifiers()
		return p.parseModifiedExpr(mods)
	case lexer.KwCd, lexer.KwCp, lexer.KwMv, lexer.KwRm, lexer.KwLs, lexer.KwTouch,
		lexer.KwEcho, lexer.KwSleep, lexer.KwWait, lexer.KwPid, lexer.KwPwd,
		lexer.KwClear, lexer.KwDisown, lexer.KwExit:
		return p.parseBuiltinExpr(ast.Modifiers{})
	case lexer.Ident:
		p.advance()
		if p.at(lexer.LParen) {
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			return &ast.FuncInvokeExpr{ExprBase: ast.ExprBase{Position: tok.Pos}, Name: tok.Text, Args: args}, nil
		}
		return &ast.VarGetExpr{ExprBase: ast.ExprBase{Position: tok.Pos}, Name: tok.Text}, nil
	default:
		return nil, diag.NewLoud(tok.Pos, fmt.Sprintf("unexpected token %q in expression", tok.Text), "")
	}
}

func (p *Parser) parseModifiedExpr(mods ast.Modifiers) (ast.Expr, error) {
	tok := p.cur()
	if tok.Kind == lexer.RawCommandStart {
		cmd, err := p.parseRawCommandLit()
		if err != nil {
			return nil, err
		}
		return &ast.CommandInvokeExpr{ExprBase: ast.ExprBase{Position: tok.Pos}, Command: cmd, Modifiers: mods}, nil
	}
	return p.parseBuiltinExpr(mods)
}

func (p *Parser) parseArrayLit() (ast.Expr, error) {
	pos := p.advance().Pos // '['
	lit := &ast.ArrayLit{ExprBase: ast.ExprBase{Position: pos}}
	for !p.at(lexer.RBracket) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		lit.Elements = append(lit.Elements, e)
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
		return nil, err
	}
	return lit, nil
}

// parseTextLit consumes a TextStart/(TextInterpStart expr
// TextInterpEnd)*/TextEnd run, recursing into parseExpr for each
// embedded interpolation (whose tokens the lexer already inlined into
// the stream).
func (p *Parser) parseTextLit() (*ast.TextLit, error) {
	pos := p.cur().Pos
	if _, err := p.expect(lexer.TextStart, "'\"'"); err != nil {
		return nil, err
	}
	lit := &ast.TextLit{ExprBase: ast.ExprBase{Position: pos}}
	for {
		tok := p.cur()
		switch tok.Kind {
		case lexer.TextInterpStart:
			p.advance()
			if tok.Text != "" {
				lit.Chunks = append(lit.Chunks, ast.TextChunk{Literal: tok.Text})
			}
			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			lit.Chunks = append(lit.Chunks, ast.TextChunk{Interp: inner})
			if _, err := p.expect(lexer.TextInterpEnd, "'}'"); err != nil {
				return nil, err
			}
		case lexer.TextEnd:
			p.advance()
			if tok.Text != "" || len(lit.Chunks) == 0 {
				lit.Chunks = append(lit.Chunks, ast.TextChunk{Literal: tok.Text})
			}
			return lit, nil
		default:
			return nil, diag.NewLoud(tok.Pos, "malformed text literal", "")
		}
	}
}

// parseRawCommandLit mirrors parseTextLit for backtick raw-command
// literals: no escape processing happened in the lexer, the text is
// passed through close to verbatim.
func (p *Parser) parseRawCommandLit() (*ast.TextLit, error) {
	pos := p.cur().Pos
	if _, err := p.expect(lexer.RawCommandStart, "'`'"); err != nil {
		return nil, err
	}
	lit := &ast.TextLit{ExprBase: ast.ExprBase{Position: pos}}
	for {
		tok := p.cur()
		switch tok.Kind {
		case lexer.RawCommandInterpStart:
			p.advance()
			if tok.Text != "" {
				lit.Chunks = append(lit.Chunks, ast.TextChunk{Literal: tok.Text})
			}
			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			lit.Chunks = append(lit.Chunks, ast.TextChunk{Interp: inner})
			if _, err := p.expect(lexer.RawCommandInterpEnd, "'}'"); err != nil {
				return nil, err
			}
		case lexer.RawCommandEnd:
			p.advance()
			if tok.Text != "" || len(lit.Chunks) == 0 {
				lit.Chunks = append(lit.Chunks, ast.TextChunk{Literal: tok.Text})
			}
			return lit, nil
		default:
			return nil, diag.NewLoud(tok.Pos, "malformed raw command literal", "")
		}
	}
}

func (p *Parser) parseModifiers() ast.Modifiers {
	var mods ast.Modifiers
	for {
		switch p.cur().Kind {
		case lexer.KwSudo:
			mods.Sudo = true
		case lexer.KwSilent:
			mods.Silent = true
		case lexer.KwSuppress:
			mods.Suppress = true
		case lexer.KwTrust:
			mods.Trust = true
		default:
			return mods
		}
		p.advance()
	}
}

func (p *Parser) parseArgList() ([]ast.Expr, error) {
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.at(lexer.RParen) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseFailureHandler() (ast.FailureHandler, error) {
	switch p.cur().Kind {
	case lexer.Question:
		p.advance()
		return ast.FailureHandler{Kind: ast.HandlerPropagate}, nil
	case lexer.KwFailed, lexer.KwSucceeded, lexer.KwExited:
		kind := p.cur().Kind
		p.advance()
		body, err := p.parseBlock()
		if err != nil {
			return ast.FailureHandler{}, err
		}
		hk := ast.HandlerFailed
		switch kind {
		case lexer.KwSucceeded:
			hk = ast.HandlerSucceeded
		case lexer.KwExited:
			hk = ast.HandlerExited
		}
		return ast.FailureHandler{Kind: hk, Body: body}, nil
	default:
		return ast.FailureHandler{}, nil
	}
}

func builtinFromKind(k lexer.Kind) ast.Builtin {
	switch k {
	case lexer.KwCd:
		return ast.BuiltinCd
	case lexer.KwCp:
		return ast.BuiltinCp
	case lexer.KwMv:
		return ast.BuiltinMv
	case lexer.KwRm:
		return ast.BuiltinRm
	case lexer.KwLs:
		return ast.BuiltinLs
	case lexer.KwTouch:
		return ast.BuiltinTouch
	case lexer.KwEcho:
		return ast.BuiltinEcho
	case lexer.KwSleep:
		return ast.BuiltinSleep
	case lexer.KwWait:
		return ast.BuiltinWait
	case lexer.KwPid:
		return ast.BuiltinPid
	case lexer.KwPwd:
		return ast.BuiltinPwd
	case lexer.KwClear:
		return ast.BuiltinClear
	case lexer.KwDisown:
		return ast.BuiltinDisown
	default:
		return ast.BuiltinExit
	}
}

// niladicBuiltin reports whether b takes no arguments, so its `()` may
// be omitted at the call site.
func niladicBuiltin(b ast.Builtin) bool {
	return b == ast.BuiltinPid || b == ast.BuiltinPwd || b == ast.BuiltinClear
}

func (p *Parser) parseModifiedCommand() (ast.Statement, error) {
	mods := p.parseModifiers()
	if p.at(lexer.RawCommandStart) {
		return p.parseRawCommandStmt(mods)
	}
	return p.parseBuiltinStmt(mods)
}

func (p *Parser) parseBuiltinStmt(mods ast.Modifiers) (ast.Statement, error) {
	pos := p.cur().Pos
	b := builtinFromKind(p.cur().Kind)
	p.advance()
	var args []ast.Expr
	var err error
	noParens := true
	if !niladicBuiltin(b) || p.at(lexer.LParen) {
		noParens = false
		args, err = p.parseArgList()
		if err != nil {
			return nil, err
		}
	}
	handler, err := p.parseFailureHandler()
	if err != nil {
		return nil, err
	}
	return &ast.BuiltinCallStmt{
		Base: ast.Base{Position: pos}, Builtin: b, Args: args, Modifiers: mods, Handler: handler,
		NoParens: noParens,
	}, nil
}

func (p *Parser) parseBuiltinExpr(mods ast.Modifiers) (ast.Expr, error) {
	pos := p.cur().Pos
	b := builtinFromKind(p.cur().Kind)
	p.advance()
	var args []ast.Expr
	var err error
	noParens := true
	if !niladicBuiltin(b) || p.at(lexer.LParen) {
		noParens = false
		args, err = p.parseArgList()
		if err != nil {
			return nil, err
		}
	}
	handler, err := p.parseFailureHandler()
	if err != nil {
		return nil, err
	}
	return &ast.BuiltinCallExpr{
		ExprBase: ast.ExprBase{Position: pos}, Builtin: b, Args: args, Modifiers: mods, Handler: handler,
		NoParens: noParens,
	}, nil
}

func (p *Parser) parseRawCommandStmt(mods ast.Modifiers) (ast.Statement, error) {
	pos := p.cur().Pos
	cmd, err := p.parseRawCommandLit()
	if err != nil {
		return nil, err
	}
	handler, err := p.parseFailureHandler()
	if err != nil {
		return nil, err
	}
	return &ast.RawCommandStmt{
		Base: ast.Base{Position: pos}, Command: cmd, Modifiers: mods, Handler: handler,
	}, nil
}
