package parser

import (
	"github.com/pschiffmann/minic/lang/ast"
	"github.com/pschiffmann/minic/lang/token"
)

func (p *parser) parseCompoundStatement() (*ast.CompoundStatement, error) {
	start, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}

	scope := ast.NewScope(p.currentScope)
	outer := p.currentScope
	p.currentScope = scope
	defer func() { p.currentScope = outer }()

	var stmts []ast.Stmt
	for p.tok() != token.RBRACE {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	end, err := p.expect(token.RBRACE)
	if err != nil {
		return nil, err
	}
	return ast.NewCompoundStatement(scope, stmts, token.Span{Start: start.Span.Start, End: end.Span.End}), nil
}

// parseStatement greedily parses zero or more labels, then dispatches on
// the current token to the right statement form.
func (p *parser) parseStatement() (ast.Stmt, error) {
	labels, err := p.parseLabels()
	if err != nil {
		return nil, err
	}

	stmt, err := p.parseUnlabeledStatement()
	if err != nil {
		return nil, err
	}
	for _, l := range labels {
		if err := p.validateLabel(l, stmt); err != nil {
			return nil, err
		}
		ast.AddLabel(stmt, l)
	}
	return stmt, nil
}

func (p *parser) parseLabels() ([]*ast.Label, error) {
	var labels []*ast.Label
	for {
		start := p.pos()
		switch p.tok() {
		case token.CASE:
			if err := p.advance(); err != nil {
				return nil, err
			}
			e, err := p.parseExpression(lowestPrecedence)
			if err != nil {
				return nil, err
			}
			end, err := p.expect(token.COLON)
			if err != nil {
				return nil, err
			}
			labels = append(labels, &ast.Label{Kind: ast.CaseLabel, Expr: e, Span: token.Span{Start: start, End: end.Span.End}})
			continue
		case token.DEFAULT:
			if err := p.advance(); err != nil {
				return nil, err
			}
			end, err := p.expect(token.COLON)
			if err != nil {
				return nil, err
			}
			labels = append(labels, &ast.Label{Kind: ast.DefaultLabel, Span: token.Span{Start: start, End: end.Span.End}})
			continue
		case token.IDENT:
			if p.lex.CheckNext(token.COLON) {
				name := p.val().Raw
				if err := p.advance(); err != nil { // identifier
					return nil, err
				}
				end, err := p.expect(token.COLON)
				if err != nil {
					return nil, err
				}
				labels = append(labels, &ast.Label{Kind: ast.GotoLabel, Name: name, Span: token.Span{Start: start, End: end.Span.End}})
				continue
			}
		}
		return labels, nil
	}
}

// validateLabel enforces the placement and uniqueness rules from §4.2.1:
// case/default only inside a switch, and goto label uniqueness across the
// enclosing function — checked once resolveGotos has the full label set,
// so here we only check case/default placement eagerly.
func (p *parser) validateLabel(l *ast.Label, stmt ast.Stmt) error {
	if l.Kind == ast.GotoLabel {
		return nil
	}
	if ast.EnclosingSwitch(stmt) == nil {
		return p.errorf("%s label outside of a switch statement", l.Kind)
	}
	return nil
}

func (p *parser) parseUnlabeledStatement() (ast.Stmt, error) {
	switch p.tok() {
	case token.LBRACE:
		return p.parseCompoundStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.SWITCH:
		return p.parseSwitchStatement()
	case token.BREAK:
		start := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		end, err := p.expect(token.SEMI)
		if err != nil {
			return nil, err
		}
		return ast.NewBreakStatement(token.Span{Start: start, End: end.Span.End}), nil
	case token.CONTINUE:
		start := p.pos()
		if err := p.advance(); err != nil {
			return nil, err
		}
		end, err := p.expect(token.SEMI)
		if err != nil {
			return nil, err
		}
		return ast.NewContinueStatement(token.Span{Start: start, End: end.Span.End}), nil
	case token.GOTO:
		return p.parseGotoStatement()
	case token.SEMI:
		start := p.pos()
		end, err := p.expect(token.SEMI)
		if err != nil {
			return nil, err
		}
		return ast.NewCompoundStatement(ast.NewScope(p.currentScope), nil, token.Span{Start: start, End: end.Span.End}), nil
	}

	if p.startsTypeSpecifier() {
		return p.parseDeclarationStatement()
	}
	return p.parseExpressionStatement()
}

func (p *parser) parseReturnStatement() (ast.Stmt, error) {
	start := p.pos()
	if err := p.advance(); err != nil {
		return nil, err
	}
	fn := p.currentFunc
	voidType, _ := p.global.LookUp("void")

	var value ast.Expr
	if p.tok() != token.SEMI {
		e, err := p.parseExpression(lowestPrecedence)
		if err != nil {
			return nil, err
		}
		value = e
		if fn != nil && fn.ReturnType == voidType {
			return nil, p.errorf("void function %q must not return a value", fn.Name())
		}
		if fn != nil && e.ValueType() != nil && !e.ValueType().CanBeConvertedTo(fn.ReturnType) {
			return nil, p.errorf("cannot convert return value of type %s to %s", e.ValueType().Name(), fn.ReturnType.Name())
		}
	} else if fn != nil && fn.ReturnType != voidType {
		return nil, p.errorf("non-void function %q must return a value", fn.Name())
	}

	end, err := p.expect(token.SEMI)
	if err != nil {
		return nil, err
	}
	return ast.NewReturnStatement(value, token.Span{Start: start, End: end.Span.End}), nil
}

func (p *parser) parseIfStatement() (ast.Stmt, error) {
	start := p.pos()
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(lowestPrecedence)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var els ast.Stmt
	end := then.Span().End
	if p.tok() == token.ELSE {
		if err := p.advance(); err != nil {
			return nil, err
		}
		els, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
		end = els.Span().End
	}
	return ast.NewIfStatement(cond, then, els, token.Span{Start: start, End: end}), nil
}

func (p *parser) parseWhileStatement() (ast.Stmt, error) {
	start := p.pos()
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(lowestPrecedence)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return ast.NewWhileStatement(cond, body, token.Span{Start: start, End: body.Span().End}), nil
}

func (p *parser) parseDoWhileStatement() (ast.Stmt, error) {
	start := p.pos()
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.WHILE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(lowestPrecedence)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	end, err := p.expect(token.SEMI)
	if err != nil {
		return nil, err
	}
	return ast.NewDoWhileStatement(body, cond, token.Span{Start: start, End: end.Span.End}), nil
}

func (p *parser) parseForStatement() (ast.Stmt, error) {
	start := p.pos()
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	scope := ast.NewScope(p.currentScope)
	outer := p.currentScope
	p.currentScope = scope
	defer func() { p.currentScope = outer }()

	var init ast.Stmt
	if p.tok() != token.SEMI {
		if p.startsTypeSpecifier() {
			s, err := p.parseDeclarationStatement()
			if err != nil {
				return nil, err
			}
			init = s
		} else {
			s, err := p.parseExpressionStatement()
			if err != nil {
				return nil, err
			}
			init = s
		}
	} else if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	var cond ast.Expr
	if p.tok() != token.SEMI {
		e, err := p.parseExpression(lowestPrecedence)
		if err != nil {
			return nil, err
		}
		cond = e
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	var post ast.Expr
	if p.tok() != token.RPAREN {
		e, err := p.parseExpression(lowestPrecedence)
		if err != nil {
			return nil, err
		}
		post = e
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return ast.NewForStatement(init, cond, post, body, token.Span{Start: start, End: body.Span().End}), nil
}

func (p *parser) parseSwitchStatement() (ast.Stmt, error) {
	start := p.pos()
	if err := p.advance(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	tag, err := p.parseExpression(lowestPrecedence)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseCompoundStatement()
	if err != nil {
		return nil, err
	}
	sw := ast.NewSwitchStatement(tag, body, token.Span{Start: start, End: body.Span().End})

	for _, s := range ast.LabeledStatements(body) {
		for _, l := range s.Labels() {
			if l.Kind != ast.CaseLabel {
				continue
			}
			if ast.EnclosingSwitch(s) != sw {
				continue
			}
			if l.Expr.ValueType() != nil && tag.ValueType() != nil && !l.Expr.ValueType().CanBeConvertedTo(tag.ValueType()) {
				return nil, p.errorf("case label type does not match switch value type")
			}
		}
	}
	return sw, nil
}

func (p *parser) parseGotoStatement() (ast.Stmt, error) {
	start := p.pos()
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameVal, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	end, err := p.expect(token.SEMI)
	if err != nil {
		return nil, err
	}
	g := ast.NewGotoStatement(nameVal.Raw, token.Span{Start: start, End: end.Span.End})
	p.pendingGotos = append(p.pendingGotos, g)
	return g, nil
}

func (p *parser) parseDeclarationStatement() (ast.Stmt, error) {
	start := p.pos()
	isConst, err := p.consumeConstQualifier()
	if err != nil {
		return nil, err
	}
	typ, err := p.parseTypeSpecifier()
	if err != nil {
		return nil, err
	}

	var vars []*ast.Variable
	for {
		nameVal, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		var init ast.Expr
		if _, ok, err := p.consumeIfMatches(token.ASSIGN); err != nil {
			return nil, err
		} else if ok {
			e, err := p.parseExpression(assignmentPrecedence)
			if err != nil {
				return nil, err
			}
			init = e
		}
		v := ast.NewVariable(nameVal.Raw, isConst, typ, init, token.Span{Start: nameVal.Span.Start, End: p.pos()})
		if err := p.currentScope.Define(v); err != nil {
			return nil, err
		}
		vars = append(vars, v)

		if _, ok, err := p.consumeIfMatches(token.COMMA); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	end, err := p.expect(token.SEMI)
	if err != nil {
		return nil, err
	}
	return ast.NewDeclarationStatement(vars, token.Span{Start: start, End: end.Span.End}), nil
}

func (p *parser) parseExpressionStatement() (ast.Stmt, error) {
	start := p.pos()
	e, err := p.parseExpression(lowestPrecedence)
	if err != nil {
		return nil, err
	}
	end, err := p.expect(token.SEMI)
	if err != nil {
		return nil, err
	}
	return ast.NewExpressionStatement(e, token.Span{Start: start, End: end.Span.End}), nil
}
