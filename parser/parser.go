// Package parser is a recursive-descent parser that turns a
// lexer.Token stream into an ast.Program: a cursor over tokens with
// one token of lookahead, quiet failures for alternation, and loud
// failures once a production has committed.
package parser

import (
	"fmt"

	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/lexer"
	"github.com/amberc/amberc/types"
)

// Parser walks a flat token stream with one token of lookahead.
type Parser struct {
	toks []lexer.Token
	pos  int
	file string
}

// Parse tokenizes and parses src from filename into an ast.Program.
func Parse(filename, src string) (*ast.Program, error) {
	lx := lexer.New(filename, src)
	toks, err := lx.Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks, file: filename}
	return p.parseProgram()
}

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) at(k lexer.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k lexer.Kind, what string) (lexer.Token, error) {
	if !p.at(k) {
		return lexer.Token{}, diag.NewLoud(p.cur().Pos, fmt.Sprintf("expected %s, found %q", what, p.cur().Text), "")
	}
	return p.advance(), nil
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{SourceFile: p.file}
	for !p.at(lexer.EOF) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if s != nil {
			prog.Statements = append(prog.Statements, s)
		}
	}
	return prog, nil
}

func (p *Parser) parseBlock() ([]ast.Statement, error) {
	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for !p.at(lexer.RBrace) {
		if p.at(lexer.EOF) {
			return nil, diag.NewLoud(p.cur().Pos, "unterminated block, expected '}'", "")
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	p.advance()
	return stmts, nil
}

func (p *Parser) parseStmt() (ast.Statement, error) {
	switch p.cur().Kind {
	case lexer.Comment:
		t := p.advance()
		return &ast.CommentStmt{Base: ast.Base{Position: t.Pos}, Text: t.Text}, nil
	case lexer.DocComment:
		t := p.advance()
		return &ast.DocCommentStmt{Base: ast.Base{Position: t.Pos}, Text: t.Text}, nil
	case lexer.KwLet, lexer.KwConst:
		return p.parseVarInitOrDestruct(false)
	case lexer.KwPub:
		return p.parsePub()
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwFor:
		return p.parseFor()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwLoop:
		return p.parseLoop()
	case lexer.KwFun:
		return p.parseFuncDecl(false)
	case lexer.KwMain:
		return p.parseMain()
	case lexer.KwTest:
		return p.parseTest()
	case lexer.KwReturn:
		return p.parseReturn()
	case lexer.KwFail:
		return p.parseFail()
	case lexer.KwBreak:
		t := p.advance()
		return &ast.BreakStmt{Base: ast.Base{Position: t.Pos}}, nil
	case lexer.KwContinue:
		t := p.advance()
		return &ast.ContinueStmt{Base: ast.Base{Position: t.Pos}}, nil
	case lexer.KwImport:
		return p.parseImport(false)
	case lexer.KwTrust, lexer.KwSilent, lexer.KwSuppress, lexer.KwSudo:
		return p.parseModifiedCommand()
	case lexer.KwCd, lexer.KwCp, lexer.KwMv, lexer.KwRm, lexer.KwLs, lexer.KwTouch,
		lexer.KwEcho, lexer.KwSleep, lexer.KwWait, lexer.KwPid, lexer.KwPwd,
		lexer.KwClear, lexer.KwDisown, lexer.KwExit:
		return p.parseBuiltinStmt(ast.Modifiers{})
	case lexer.RawCommandStart:
		return p.parseRawCommandStmt(ast.Modifiers{})
	case lexer.LBracket:
		// alternation: try the `[a, b] = expr` destructuring target
		// first; a quiet failure rewinds and re-parses as an array-
		// literal expression.
		save := p.pos
		s, err := p.parseDestructSet()
		if err == nil {
			return s, nil
		}
		if !diag.IsQuiet(err) {
			return nil, err
		}
		p.pos = save
		pos := p.cur().Pos
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Base: ast.Base{Position: pos}, Expression: e}, nil
	case lexer.Ident:
		return p.parseIdentLedStmt()
	default:
		pos := p.cur().Pos
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Base: ast.Base{Position: pos}, Expression: e}, nil
	}
}

func (p *Parser) parsePub() (ast.Statement, error) {
	p.advance()
	switch p.cur().Kind {
	case lexer.KwLet, lexer.KwConst:
		return p.parseVarInitOrDestruct(true)
	case lexer.KwFun:
		return p.parseFuncDecl(true)
	case lexer.KwImport:
		return p.parseImport(true)
	default:
		return nil, diag.NewLoud(p.cur().Pos, "`pub` must be followed by `let`, `const`, `fun`, or `import`", "")
	}
}

func (p *Parser) parseVarInitOrDestruct(public bool) (ast.Statement, error) {
	pos := p.cur().Pos
	isConst := p.at(lexer.KwConst)
	p.advance() // let/const
	if p.at(lexer.LBracket) {
		p.advance()
		var names []string
		for {
			tok, err := p.expect(lexer.Ident, "identifier")
			if err != nil {
				return nil, err
			}
			names = append(names, tok.Text)
			if p.at(lexer.Comma) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Assign, "'='"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.DestructInitStmt{Base: ast.Base{Position: pos}, Names: names, Value: val}, nil
	}

	name, err := p.expect(lexer.Ident, "identifier")
	if err != nil {
		return nil, err
	}
	var declared *types.Type
	if p.at(lexer.Colon) {
		p.advance()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		declared = &t
	}
	if _, err := p.expect(lexer.Assign, "'='"); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.VarInitStmt{
		Base: ast.Base{Position: pos}, Name: name.Text, Declared: declared,
		Value: val, Const: isConst, Public: public,
	}, nil
}

func isTypeAtom(k lexer.Kind) bool {
	switch k {
	case lexer.TypeText, lexer.TypeBool, lexer.TypeNum, lexer.TypeInt, lexer.TypeNull, lexer.Ident:
		return true
	}
	return false
}

// parseType reads a run of type-grammar lexemes ('[', ']', '|', type
// keyword identifiers) and hands them to types.Parse, which owns the
// actual grammar (union/array nesting, typo suggestions).
func (p *Parser) parseType() (types.Type, error) {
	var toks []string
	for {
		for p.at(lexer.LBracket) {
			toks = append(toks, "[")
			p.advance()
		}
		if !isTypeAtom(p.cur().Kind) {
			return types.Type{}, diag.NewLoud(p.cur().Pos, fmt.Sprintf("expected a type, found %q", p.cur().Text), "")
		}
		toks = append(toks, p.cur().Text)
		p.advance()
		for p.at(lexer.RBracket) {
			toks = append(toks, "]")
			p.advance()
		}
		if p.at(lexer.Pipe) {
			toks = append(toks, "|")
			p.advance()
			continue
		}
		break
	}
	return types.Parse(toks)
}

// indexAssignAhead reports whether the '[' at index start (inclusive)
// is followed, after its matching ']', directly by '=' — i.e. this is
// `name[idx] = ...` rather than `name[idx]` used as a value.
func (p *Parser) indexAssignAhead(start int) bool {
	depth := 0
	for i := start; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case lexer.LBracket:
			depth++
		case lexer.RBracket:
			depth--
			if depth == 0 {
				return i+1 < len(p.toks) && p.toks[i+1].Kind == lexer.Assign
			}
		case lexer.EOF:
			return false
		}
	}
	return false
}

func isCompoundAssign(k lexer.Kind) bool {
	switch k {
	case lexer.PlusAssign, lexer.MinusAssign, lexer.StarAssign, lexer.SlashAssign, lexer.PercentAssign:
		return true
	}
	return false
}

func (p *Parser) parseIdentLedStmt() (ast.Statement, error) {
	startPos := p.cur().Pos
	next := p.toks[p.pos+1].Kind

	switch {
	case next == lexer.Assign:
		name := p.advance().Text
		p.advance() // '='
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.VarSetStmt{Base: ast.Base{Position: startPos}, Name: name, Value: val}, nil
	case isCompoundAssign(next):
		name := p.advance().Text
		opTok := p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ArithShorthandStmt{
			Base: ast.Base{Position: startPos}, Name: name, Op: shorthandOp(opTok.Kind), Value: val,
		}, nil
	case next == lexer.LBracket && p.indexAssignAhead(p.pos+1):
		name := p.advance().Text
		p.advance() // '['
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
			return nil, err
		}
		p.advance() // '='
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.IndexSetStmt{Base: ast.Base{Position: startPos}, Name: name, Index: idx, Value: val}, nil
	default:
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Base: ast.Base{Position: startPos}, Expression: e}, nil
	}
}

// parseDestructSet attempts `[a, b, ...] = expr`. Until the `=` is
// seen the statement shape is ambiguous with an array-literal
// expression, so any mismatch before that point is a quiet failure the
// caller can rewind from; after the `=` the parse is committed and
// errors turn loud.
func (p *Parser) parseDestructSet() (ast.Statement, error) {
	pos := p.cur().Pos
	p.advance()
	var names []string
	for {
		if !p.at(lexer.Ident) {
			return nil, &diag.Quiet{Pos: p.cur().Pos}
		}
		names = append(names, p.advance().Text)
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	if !p.at(lexer.RBracket) {
		return nil, &diag.Quiet{Pos: p.cur().Pos}
	}
	p.advance()
	if !p.at(lexer.Assign) {
		return nil, &diag.Quiet{Pos: p.cur().Pos}
	}
	p.advance()
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.DestructSetStmt{Base: ast.Base{Position: pos}, Names: names, Value: val}, nil
}

func shorthandOp(k lexer.Kind) ast.ArithShorthandOp {
	switch k {
	case lexer.PlusAssign:
		return ast.ShorthandAdd
	case lexer.MinusAssign:
		return ast.ShorthandSub
	case lexer.StarAssign:
		return ast.ShorthandMul
	case lexer.SlashAssign:
		return ast.ShorthandDiv
	default:
		return ast.ShorthandMod
	}
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	pos := p.advance().Pos
	if p.atStmtEnd() {
		return &ast.ReturnStmt{Base: ast.Base{Position: pos}}, nil
	}
	v, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Base: ast.Base{Position: pos}, Value: v}, nil
}

func (p *Parser) parseFail() (ast.Statement, error) {
	pos := p.advance().Pos
	if p.atStmtEnd() {
		return &ast.FailStmt{Base: ast.Base{Position: pos}}, nil
	}
	v, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.FailStmt{Base: ast.Base{Position: pos}, Value: v}, nil
}

// atStmtEnd reports whether the current token cannot begin an
// expression, used to detect a bare `return`/`fail` with no value.
func (p *Parser) atStmtEnd() bool {
	switch p.cur().Kind {
	case lexer.RBrace, lexer.EOF:
		return true
	}
	return false
}

func (p *Parser) parseMain() (ast.Statement, error) {
	pos := p.advance().Pos
	argsParam := ""
	if p.at(lexer.LParen) {
		p.advance()
		if !p.at(lexer.RParen) {
			tok, err := p.expect(lexer.Ident, "identifier")
			if err != nil {
				return nil, err
			}
			argsParam = tok.Text
		}
		if _, err := p.expect(lexer.RParen, "')'"); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.MainStmt{Base: ast.Base{Position: pos}, ArgsParam: argsParam, Body: body}, nil
}

func (p *Parser) parseTest() (ast.Statement, error) {
	pos := p.advance().Pos
	nameExpr, err := p.parseTextLit()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.TestStmt{Base: ast.Base{Position: pos}, Name: flattenLiteral(nameExpr), Body: body}, nil
}

// flattenLiteral concatenates a TextLit's literal chunks, used for a
// test name where interpolation is not meaningful.
func flattenLiteral(t *ast.TextLit) string {
	s := ""
	for _, c := range t.Chunks {
		s += c.Literal
	}
	return s
}
