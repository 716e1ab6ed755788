package ast

import (
	"github.com/pschiffmann/minic/lang/numeric"
	"github.com/pschiffmann/minic/lang/token"
)

// NumberLiteral is an integer, floating-point or character constant.
type NumberLiteral struct {
	exprBase
	Value numeric.Number
}

func NewNumberLiteral(v numeric.Number, span token.Span) *NumberLiteral {
	n := &NumberLiteral{Value: v}
	n.span = span
	n.valueType = nil // filled in by the resolver from v.Type
	return n
}

// StringLiteral is a string constant, stored as its decoded bytes. It is
// given no value type, and code generation rejects it.
type StringLiteral struct {
	exprBase
	Value []byte
}

func NewStringLiteral(v []byte, span token.Span) *StringLiteral {
	s := &StringLiteral{Value: v}
	s.span = span
	return s
}

// VariableRef is a reference to a declared variable or function by name.
type VariableRef struct {
	exprBase
	Name string
	Def  Definition // resolved during scope resolution
}

func NewVariableRef(name string, span token.Span) *VariableRef {
	v := &VariableRef{Name: name}
	v.span = span
	return v
}

// UnaryOp applies a prefix or postfix operator (++, --, -, !, ~, *, &) to
// Operand. Postfix is true for x++ / x--, false for all other unary forms.
type UnaryOp struct {
	exprBase
	Op      token.Token
	Operand Expr
	Postfix bool
}

func NewUnaryOp(op token.Token, operand Expr, postfix bool, span token.Span) *UnaryOp {
	u := &UnaryOp{Op: op, Operand: operand, Postfix: postfix}
	u.span = span
	operand.setParent(u)
	return u
}

// BinaryOp applies an infix operator to Left and Right, including the
// assignment operators (=, +=, ...).
type BinaryOp struct {
	exprBase
	Op    token.Token
	Left  Expr
	Right Expr
}

func NewBinaryOp(op token.Token, left, right Expr, span token.Span) *BinaryOp {
	b := &BinaryOp{Op: op, Left: left, Right: right}
	b.span = span
	left.setParent(b)
	right.setParent(b)
	return b
}

// TernaryOp is the `cond ? then : els` conditional expression.
type TernaryOp struct {
	exprBase
	Cond Expr
	Then Expr
	Else Expr
}

func NewTernaryOp(cond, then, els Expr, span token.Span) *TernaryOp {
	t := &TernaryOp{Cond: cond, Then: then, Else: els}
	t.span = span
	cond.setParent(t)
	then.setParent(t)
	els.setParent(t)
	return t
}

// Call is a function invocation.
type Call struct {
	exprBase
	Callee Expr
	Args   []Expr
}

func NewCall(callee Expr, args []Expr, span token.Span) *Call {
	c := &Call{Callee: callee, Args: args}
	c.span = span
	callee.setParent(c)
	for _, a := range args {
		a.setParent(c)
	}
	return c
}

// Subscript is the `base[index]` array/pointer indexing expression.
type Subscript struct {
	exprBase
	Base  Expr
	Index Expr
}

func NewSubscript(b, index Expr, span token.Span) *Subscript {
	s := &Subscript{Base: b, Index: index}
	s.span = span
	b.setParent(s)
	index.setParent(s)
	return s
}

// Cast is an explicit `(type)expr` conversion.
type Cast struct {
	exprBase
	Target   VariableType
	Operand  Expr
}

func NewCast(target VariableType, operand Expr, span token.Span) *Cast {
	c := &Cast{Target: target, Operand: operand}
	c.span = span
	c.valueType = target
	operand.setParent(c)
	return c
}
