package parser

import (
	"fmt"

	"github.com/pschiffmann/minic/lang/ast"
	"github.com/pschiffmann/minic/lang/token"
)

func (p *parser) consumeConstQualifier() (bool, error) {
	if p.tok() != token.CONST {
		return false, nil
	}
	if err := p.advance(); err != nil {
		return false, err
	}
	return true, nil
}

// parseTypeSpecifier parses a built-in type name, optionally preceded by an
// unsigned/signed qualifier and optionally followed by one or more '*'
// pointer markers. An identifier that does not resolve to a VariableType in
// the current scope is an undefined-name error.
func (p *parser) parseTypeSpecifier() (ast.VariableType, error) {
	unsigned, signed := false, false
	switch p.tok() {
	case token.UNSIGNED:
		unsigned = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	case token.SIGNED:
		signed = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	_ = signed // signed is the default interpretation; the qualifier is a no-op

	var baseName string
	switch p.tok() {
	case token.LONG:
		baseName = "long"
		if err := p.advance(); err != nil {
			return nil, err
		}
	case token.SHORT:
		baseName = "short"
		if err := p.advance(); err != nil {
			return nil, err
		}
	case token.IDENT:
		baseName = p.val().Raw
		if err := p.advance(); err != nil {
			return nil, err
		}
	default:
		if unsigned || signed {
			baseName = "int"
		} else {
			return nil, p.errorf("expected a type specifier, found %#v", p.tok())
		}
	}

	def, err := p.currentScope.LookUp(baseName)
	if err != nil {
		return nil, err
	}
	vt, ok := def.(ast.VariableType)
	if !ok {
		return nil, p.errorf("%q does not name a type", baseName)
	}
	if unsigned {
		bt, ok := vt.(*ast.BasicType)
		if !ok {
			return nil, p.errorf("%q cannot be qualified with unsigned", baseName)
		}
		vt = ast.UnsignedVariantOf(bt)
	}

	for p.tok() == token.STAR {
		if err := p.advance(); err != nil {
			return nil, err
		}
		vt = ast.NewPointerType(vt, p.pointerSize)
	}
	return vt, nil
}

// startsTypeSpecifier reports whether the current token could begin a type
// specifier, used by statement dispatch to distinguish a local declaration
// from an expression statement.
func (p *parser) startsTypeSpecifier() bool {
	switch p.tok() {
	case token.CONST, token.LONG, token.SHORT, token.UNSIGNED, token.SIGNED:
		return true
	case token.IDENT:
		def, err := p.currentScope.LookUp(p.val().Raw)
		if err != nil {
			return false
		}
		_, ok := def.(ast.VariableType)
		return ok
	}
	return false
}

func (p *parser) parseFunctionDefinition(name string, ret ast.VariableType, start token.Pos) (*ast.FunctionDefinition, error) {
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}

	paramsScope := ast.NewScope(p.currentScope)
	var order []string
	for p.tok() != token.RPAREN {
		if len(order) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		if _, err := p.consumeConstQualifier(); err != nil {
			return nil, err
		}
		pt, err := p.parseTypeSpecifier()
		if err != nil {
			return nil, err
		}
		pnameVal, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		v := ast.NewVariable(pnameVal.Raw, false, pt, nil, pnameVal.Span)
		if err := paramsScope.Define(v); err != nil {
			return nil, err
		}
		order = append(order, pnameVal.Raw)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	fn := ast.NewFunctionDefinition(name, ret, paramsScope, order, token.Span{Start: start})
	if err := p.global.Define(fn); err != nil {
		return nil, err
	}

	outerScope, outerFunc := p.currentScope, p.currentFunc
	p.currentScope, p.currentFunc = paramsScope, fn
	body, err := p.parseCompoundStatement()
	p.currentScope, p.currentFunc = outerScope, outerFunc
	if err != nil {
		return nil, err
	}
	fn.SetBody(body)

	if err := p.resolveGotos(fn); err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *parser) parseGlobalVariableTail(name string, isConst bool, typ ast.VariableType, start token.Pos) (*ast.Variable, error) {
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
	end, err := p.expect(token.SEMI)
	if err != nil {
		return nil, err
	}
	return ast.NewVariable(name, isConst, typ, init, token.Span{Start: start, End: end.Span.End}), nil
}

func (p *parser) consumeIfMatches(want token.Token) (token.Value, bool, error) {
	return p.lex.ConsumeIfMatches(want)
}

// resolveGotos runs the fixup pass described in the specification: every
// GotoStatement inside fn is bound to the labeled statement with the
// matching name, found anywhere in fn's body. An unresolved target is a
// language-violation error.
func (p *parser) resolveGotos(fn *ast.FunctionDefinition) error {
	labels := map[string]ast.Stmt{}
	for _, s := range ast.LabeledStatements(fn.Body) {
		for _, l := range s.Labels() {
			if l.Kind != ast.GotoLabel {
				continue
			}
			if _, dup := labels[l.Name]; dup {
				return &Error{Pos: l.Span.Start, Msg: fmt.Sprintf("label %q is defined more than once in this function", l.Name)}
			}
			labels[l.Name] = s
		}
	}
	for _, g := range p.pendingGotos {
		if ast.EnclosingFunction(g) != fn {
			continue
		}
		target, ok := labels[g.Name]
		if !ok {
			return p.errorf("goto target %q is not defined in this function", g.Name)
		}
		g.Target = target
	}
	return nil
}
