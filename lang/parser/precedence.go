package parser

import "github.com/pschiffmann/minic/lang/token"

// Precedence levels, highest binds tightest, per the specification's
// §4.2.2 table. Only levels actually reachable by this dialect's grammar
// are used. Of the member-access operators only `.` and `->` are scanned
// as tokens; neither has a precedence here, so an expression ends in front
// of them and the parser then rejects them as unexpected tokens.
const (
	lowestPrecedence    = 0
	namePrecedence      = 1
	assignmentPrecedence = 2
	orOrPrecedence      = 3
	andAndPrecedence    = 4
	bitOrPrecedence     = 5
	bitXorPrecedence    = 6
	bitAndPrecedence    = 7
	equalityPrecedence  = 8
	relationalPrecedence = 9
	shiftPrecedence     = 10
	additivePrecedence  = 11
	multiplicativePrecedence = 12
	prefixPrecedence    = 14
	suffixPrecedence    = 15
)

// infixPrecedence returns the binding power of tok used as an infix or
// postfix operator, and 0 if tok cannot appear in that position.
func infixPrecedence(tok token.Token) int {
	switch tok {
	case token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN,
		token.SLASH_ASSIGN, token.PERCENT_ASSIGN, token.SHL_ASSIGN, token.SHR_ASSIGN,
		token.AMP_ASSIGN, token.CARET_ASSIGN, token.PIPE_ASSIGN:
		return assignmentPrecedence
	case token.OROR:
		return orOrPrecedence
	case token.ANDAND:
		return andAndPrecedence
	case token.PIPE:
		return bitOrPrecedence
	case token.CARET:
		return bitXorPrecedence
	case token.AMP:
		return bitAndPrecedence
	case token.EQ, token.NEQ:
		return equalityPrecedence
	case token.LT, token.LE, token.GT, token.GE:
		return relationalPrecedence
	case token.SHL, token.SHR:
		return shiftPrecedence
	case token.PLUS, token.MINUS:
		return additivePrecedence
	case token.STAR, token.SLASH, token.PERCENT:
		return multiplicativePrecedence
	case token.QUESTION:
		return assignmentPrecedence + 1 // binds just tighter than assignment
	case token.LPAREN, token.LBRACKET, token.INC, token.DEC:
		return suffixPrecedence
	}
	return lowestPrecedence
}

func isRightAssociative(tok token.Token) bool {
	return tok.IsAssignOp() || tok == token.QUESTION
}
