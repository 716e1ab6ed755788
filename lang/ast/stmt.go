package ast

import "github.com/pschiffmann/minic/lang/token"

// CompoundStatement is a `{ ... }` block: an ordered list of statements
// sharing a single child Scope. The function body is itself a
// CompoundStatement; its Scope is a child of the function's parameter
// scope, so a local declared in the body may reuse a parameter's name.
type CompoundStatement struct {
	stmtBase
	Scope      *Scope
	Statements []Stmt
}

func NewCompoundStatement(scope *Scope, stmts []Stmt, span token.Span) *CompoundStatement {
	c := &CompoundStatement{Scope: scope, Statements: stmts}
	c.span = span
	for _, s := range stmts {
		s.setParent(c)
	}
	return c
}

// DeclarationStatement declares one or more local variables.
type DeclarationStatement struct {
	stmtBase
	Vars []*Variable
}

func NewDeclarationStatement(vars []*Variable, span token.Span) *DeclarationStatement {
	d := &DeclarationStatement{Vars: vars}
	d.span = span
	return d
}

// ExpressionStatement evaluates Expr for its side effects and discards the
// result.
type ExpressionStatement struct {
	stmtBase
	Expr Expr
}

func NewExpressionStatement(e Expr, span token.Span) *ExpressionStatement {
	s := &ExpressionStatement{Expr: e}
	s.span = span
	e.setParent(s)
	return s
}

// IfStatement is `if (Cond) Then [else Else]`. Else is nil when absent.
type IfStatement struct {
	stmtBase
	Cond Expr
	Then Stmt
	Else Stmt
}

func NewIfStatement(cond Expr, then, els Stmt, span token.Span) *IfStatement {
	s := &IfStatement{Cond: cond, Then: then, Else: els}
	s.span = span
	cond.setParent(s)
	then.setParent(s)
	if els != nil {
		els.setParent(s)
	}
	return s
}

// WhileStatement is `while (Cond) Body`.
type WhileStatement struct {
	stmtBase
	Cond Expr
	Body Stmt
}

func NewWhileStatement(cond Expr, body Stmt, span token.Span) *WhileStatement {
	s := &WhileStatement{Cond: cond, Body: body}
	s.span = span
	cond.setParent(s)
	body.setParent(s)
	return s
}

// DoWhileStatement is `do Body while (Cond);`.
type DoWhileStatement struct {
	stmtBase
	Body Stmt
	Cond Expr
}

func NewDoWhileStatement(body Stmt, cond Expr, span token.Span) *DoWhileStatement {
	s := &DoWhileStatement{Body: body, Cond: cond}
	s.span = span
	body.setParent(s)
	cond.setParent(s)
	return s
}

// ForStatement is the classic three-clause `for (Init; Cond; Post) Body`.
// Any of Init, Cond, Post may be nil.
type ForStatement struct {
	stmtBase
	Init Stmt // a DeclarationStatement or ExpressionStatement, or nil
	Cond Expr
	Post Expr
	Body Stmt
}

func NewForStatement(init Stmt, cond, post Expr, body Stmt, span token.Span) *ForStatement {
	s := &ForStatement{Init: init, Cond: cond, Post: post, Body: body}
	s.span = span
	if init != nil {
		init.setParent(s)
	}
	if cond != nil {
		cond.setParent(s)
	}
	if post != nil {
		post.setParent(s)
	}
	body.setParent(s)
	return s
}

// SwitchStatement dispatches on Tag's value to the case/default label whose
// constant expression matches, falling through between cases as in C.
type SwitchStatement struct {
	stmtBase
	Tag  Expr
	Body Stmt // a CompoundStatement whose nested statements carry the labels
}

func NewSwitchStatement(tag Expr, body Stmt, span token.Span) *SwitchStatement {
	s := &SwitchStatement{Tag: tag, Body: body}
	s.span = span
	tag.setParent(s)
	body.setParent(s)
	return s
}

// BreakStatement exits the nearest enclosing loop or switch.
type BreakStatement struct {
	stmtBase
}

func NewBreakStatement(span token.Span) *BreakStatement {
	s := &BreakStatement{}
	s.span = span
	return s
}

// ContinueStatement jumps to the next iteration check of the nearest
// enclosing loop.
type ContinueStatement struct {
	stmtBase
}

func NewContinueStatement(span token.Span) *ContinueStatement {
	s := &ContinueStatement{}
	s.span = span
	return s
}

// ReturnStatement exits the current function, optionally yielding a value.
// Value is nil for a bare `return;` in a void function.
type ReturnStatement struct {
	stmtBase
	Value Expr
}

func NewReturnStatement(value Expr, span token.Span) *ReturnStatement {
	s := &ReturnStatement{Value: value}
	s.span = span
	if value != nil {
		value.setParent(s)
	}
	return s
}

// GotoStatement transfers control to the statement carrying a GotoLabel
// named Name. Target is resolved by the parser once the whole function body
// has been parsed, since a goto may jump forward to a not-yet-seen label.
type GotoStatement struct {
	stmtBase
	Name   string
	Target Stmt
}

func NewGotoStatement(name string, span token.Span) *GotoStatement {
	s := &GotoStatement{Name: name}
	s.span = span
	return s
}
