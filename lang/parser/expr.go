package parser

import (
	"github.com/pschiffmann/minic/lang/ast"
	"github.com/pschiffmann/minic/lang/numeric"
	"github.com/pschiffmann/minic/lang/token"
)

// parseExpression implements the core Pratt loop from §4.2.2: a prefix
// parselet produces the left-hand side, then infix/postfix parselets
// extend it for as long as they bind tighter than precedence.
func (p *parser) parseExpression(precedence int) (ast.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for infixPrecedence(p.tok()) > precedence {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *parser) parsePrefix() (ast.Expr, error) {
	start := p.pos()
	switch tok := p.tok(); {
	case tok == token.INT:
		v := p.val()
		if err := p.advance(); err != nil {
			return nil, err
		}
		lit := ast.NewNumberLiteral(numeric.FromInt64(v.NumberType, v.Int), v.Span)
		ast.ResolveNumberLiteral(p.global, lit)
		return lit, nil
	case tok == token.FLOAT:
		v := p.val()
		if err := p.advance(); err != nil {
			return nil, err
		}
		lit := ast.NewNumberLiteral(numeric.FromFloat64(v.NumberType, v.Float), v.Span)
		ast.ResolveNumberLiteral(p.global, lit)
		return lit, nil
	case tok == token.CHAR:
		v := p.val()
		if err := p.advance(); err != nil {
			return nil, err
		}
		lit := ast.NewNumberLiteral(numeric.FromInt64(v.NumberType, v.Int), v.Span)
		ast.ResolveNumberLiteral(p.global, lit)
		return lit, nil
	case tok == token.STRING:
		v := p.val()
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewStringLiteral([]byte(v.Str), v.Span), nil
	case tok == token.IDENT:
		v := p.val()
		if err := p.advance(); err != nil {
			return nil, err
		}
		ref := ast.NewVariableRef(v.Raw, v.Span)
		if err := ast.ResolveVariableRef(p.currentScope, ref); err != nil {
			return nil, err
		}
		return ref, nil
	case tok == token.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.startsTypeSpecifier() {
			typ, err := p.parseTypeSpecifier()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			operand, err := p.parseExpression(prefixPrecedence - 1)
			if err != nil {
				return nil, err
			}
			return ast.NewCast(typ, operand, token.Span{Start: start, End: operand.Span().End}), nil
		}
		e, err := p.parseExpression(lowestPrecedence)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case tok.IsUnop():
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseExpression(prefixPrecedence - 1)
		if err != nil {
			return nil, err
		}
		u := ast.NewUnaryOp(tok, operand, false, token.Span{Start: start, End: operand.Span().End})
		if err := ast.ResolveExprType(p.global, u); err != nil {
			return nil, err
		}
		return u, nil
	}
	return nil, p.errorf("expected an expression, found %#v", p.tok())
}

func (p *parser) parseInfix(left ast.Expr) (ast.Expr, error) {
	tok := p.tok()
	start := left.Span().Start

	switch tok {
	case token.INC, token.DEC:
		if err := p.advance(); err != nil {
			return nil, err
		}
		u := ast.NewUnaryOp(tok, left, true, token.Span{Start: start, End: p.pos()})
		if err := ast.ResolveExprType(p.global, u); err != nil {
			return nil, err
		}
		return u, nil

	case token.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		var args []ast.Expr
		for p.tok() != token.RPAREN {
			if len(args) > 0 {
				if _, err := p.expect(token.COMMA); err != nil {
					return nil, err
				}
			}
			a, err := p.parseExpression(assignmentPrecedence)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		end, err := p.expect(token.RPAREN)
		if err != nil {
			return nil, err
		}
		c := ast.NewCall(left, args, token.Span{Start: start, End: end.Span.End})
		if err := ast.ResolveExprType(p.global, c); err != nil {
			return nil, err
		}
		return c, nil

	case token.LBRACKET:
		if err := p.advance(); err != nil {
			return nil, err
		}
		idx, err := p.parseExpression(lowestPrecedence)
		if err != nil {
			return nil, err
		}
		end, err := p.expect(token.RBRACKET)
		if err != nil {
			return nil, err
		}
		sub := ast.NewSubscript(left, idx, token.Span{Start: start, End: end.Span.End})
		if err := ast.ResolveExprType(p.global, sub); err != nil {
			return nil, err
		}
		return sub, nil

	case token.QUESTION:
		if err := p.advance(); err != nil {
			return nil, err
		}
		then, err := p.parseExpression(assignmentPrecedence)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		els, err := p.parseExpression(assignmentPrecedence)
		if err != nil {
			return nil, err
		}
		t := ast.NewTernaryOp(left, then, els, token.Span{Start: start, End: els.Span().End})
		if err := ast.ResolveExprType(p.global, t); err != nil {
			return nil, err
		}
		return t, nil

	default:
		prec := infixPrecedence(tok)
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhsPrec := prec
		if isRightAssociative(tok) {
			rhsPrec = prec - 1
		}
		right, err := p.parseExpression(rhsPrec)
		if err != nil {
			return nil, err
		}
		b := ast.NewBinaryOp(tok, left, right, token.Span{Start: start, End: right.Span().End})
		if err := ast.ResolveExprType(p.global, b); err != nil {
			return nil, err
		}
		return b, nil
	}
}
