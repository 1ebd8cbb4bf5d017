package parser

import (
	"github.com/amberc/amberc/ast"
	"github.com/amberc/amberc/diag"
	"github.com/amberc/amberc/lexer"
	"github.com/amberc/amberc/types"
)

// parseIf handles both the single-condition `if cond {} elsif cond {}
// else {}` form and the brace-delimited multi-clause chain
// `if { cond1 {} cond2 {} else {} }`.
func (p *Parser) parseIf() (ast.Statement, error) {
	pos := p.advance().Pos // 'if'
	if p.at(lexer.LBrace) {
		return p.parseIfChain(pos)
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Base: ast.Base{Position: pos}, Condition: cond, Body: body}
	for p.at(lexer.KwElsif) {
		p.advance()
		c, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.ElsifClauses = append(stmt.ElsifClauses, ast.ElsifClause{Condition: c, Body: b})
	}
	if p.at(lexer.KwElse) {
		p.advance()
		if p.at(lexer.KwIf) {
			// `else if` nests a whole if statement as the else body;
			// the checker warns and suggests the if-chain form.
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			stmt.ElseBody = []ast.Statement{nested}
			stmt.HasElse = true
			return stmt, nil
		}
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.ElseBody = b
		stmt.HasElse = true
	}
	return stmt, nil
}

func (p *Parser) parseIfChain(pos diag.Position) (ast.Statement, error) {
	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return nil, err
	}
	chain := &ast.IfChainStmt{Base: ast.Base{Position: pos}}
	for !p.at(lexer.RBrace) {
		if p.at(lexer.EOF) {
			return nil, diag.NewLoud(p.cur().Pos, "unterminated if-chain, expected '}'", "")
		}
		if p.at(lexer.KwElse) {
			p.advance()
			b, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			chain.ElseBody = b
			chain.HasElse = true
			continue
		}
		c, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		chain.Clauses = append(chain.Clauses, ast.IfChainClause{Condition: c, Body: b})
	}
	p.advance() // '}'
	return chain, nil
}

// parseFor handles both range loops (`for i in a..b` / `a..<b`) and
// iterator loops (`for x in collection`), each with an optional second
// `, idx` binding.
func (p *Parser) parseFor() (ast.Statement, error) {
	pos := p.advance().Pos // 'for'
	first, err := p.expect(lexer.Ident, "identifier")
	if err != nil {
		return nil, err
	}
	idxVar := ""
	if p.at(lexer.Comma) {
		p.advance()
		idxTok, err := p.expect(lexer.Ident, "identifier")
		if err != nil {
			return nil, err
		}
		idxVar = idxTok.Text
	}
	if _, err := p.expect(lexer.KwIn, "'in'"); err != nil {
		return nil, err
	}
	from, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.DotDot) || p.at(lexer.DotDotEq) || p.at(lexer.DotDotLt) {
		inclusive := p.at(lexer.DotDotEq)
		p.advance()
		to, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.RangeLoopStmt{
			Base: ast.Base{Position: pos}, Var: first.Text, IndexVar: idxVar,
			From: from, To: to, Inclusive: inclusive, Body: body,
		}, nil
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.IteratorLoopStmt{
		Base: ast.Base{Position: pos}, Var: first.Text, IndexVar: idxVar,
		Collection: from, Body: body,
	}, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	pos := p.advance().Pos
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileLoopStmt{Base: ast.Base{Position: pos}, Condition: cond, Body: body}, nil
}

func (p *Parser) parseLoop() (ast.Statement, error) {
	pos := p.advance().Pos
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.InfiniteLoopStmt{Base: ast.Base{Position: pos}, Body: body}, nil
}

func (p *Parser) parseFuncDecl(public bool) (ast.Statement, error) {
	pos := p.advance().Pos // 'fun'
	name, err := p.expect(lexer.Ident, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.at(lexer.RParen) {
		pname, err := p.expect(lexer.Ident, "parameter name")
		if err != nil {
			return nil, err
		}
		pt, err := p.parseParamType()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: pname.Text, Type: pt})
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	var ret *types.Type
	if p.at(lexer.Colon) {
		p.advance()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ret = &t
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDeclStmt{
		Base: ast.Base{Position: pos}, Name: name.Text, Params: params,
		ReturnType: ret, Body: body, Public: public,
	}, nil
}

// parseParamType reads a parameter's `: Type` annotation, defaulting
// to a generic (untyped) parameter when absent — on-demand
// monomorphization keys off exactly this case.
func (p *Parser) parseParamType() (types.Type, error) {
	if !p.at(lexer.Colon) {
		return types.Generic(), nil
	}
	p.advance()
	return p.parseType()
}

func (p *Parser) parseImport(public bool) (ast.Statement, error) {
	pos := p.advance().Pos // 'import'
	pathTok, err := p.parseTextLit()
	if err != nil {
		return nil, err
	}
	path := flattenLiteral(pathTok)
	stmt := &ast.ImportStmt{Base: ast.Base{Position: pos}, Path: path, Public: public}
	if !p.at(lexer.KwAs) {
		return stmt, nil
	}
	p.advance()
	if p.at(lexer.Star) {
		p.advance()
		stmt.Star = true
		return stmt, nil
	}
	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return nil, err
	}
	for !p.at(lexer.RBrace) {
		name, err := p.expect(lexer.Ident, "identifier")
		if err != nil {
			return nil, err
		}
		item := ast.ImportItem{Name: name.Text}
		if p.at(lexer.KwAs) {
			p.advance()
			alias, err := p.expect(lexer.Ident, "identifier")
			if err != nil {
				return nil, err
			}
			item.Alias = alias.Text
		}
		stmt.Items = append(stmt.Items, item)
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return stmt, nil
}
