// Package ast defines the typed abstract syntax tree produced by the
// parser: declarations, statements and expressions, linked to the lexical
// Scope each identifier resolves against.
package ast

import "github.com/pschiffmann/minic/lang/token"

// Node is the common interface of every AST node: declarations, statements
// and expressions.
type Node interface {
	Span() token.Span
	Parent() Node
	setParent(Node)
}

type base struct {
	span   token.Span
	parent Node
}

func (b *base) Span() token.Span { return b.span }
func (b *base) Parent() Node     { return b.parent }
func (b *base) setParent(p Node) { b.parent = p }

// Stmt is any statement node. Statements may carry zero or more labels
// (goto targets, switch case/default labels).
type Stmt interface {
	Node
	Labels() []*Label
	addLabel(*Label)
	stmtNode()
}

type stmtBase struct {
	base
	labels []*Label
}

func (s *stmtBase) Labels() []*Label  { return s.labels }
func (s *stmtBase) addLabel(l *Label) { s.labels = append(s.labels, l) }
func (*stmtBase) stmtNode()           {}

// AddLabel attaches l to s. Used by the parser, which discovers a
// statement's labels (case/default/goto) before it parses the statement
// itself.
func AddLabel(s Stmt, l *Label) {
	l.Stmt = s
	s.addLabel(l)
}

// Expr is any expression node, annotated with the VariableType the resolver
// inferred for it.
type Expr interface {
	Node
	ValueType() VariableType
	setValueType(VariableType)
	exprNode()
}

type exprBase struct {
	base
	valueType VariableType
}

func (e *exprBase) ValueType() VariableType          { return e.valueType }
func (e *exprBase) setValueType(t VariableType)       { e.valueType = t }
func (*exprBase) exprNode()                          {}

// LabelKind distinguishes the three kinds of labels a statement can carry.
type LabelKind int8

const (
	GotoLabel LabelKind = iota
	CaseLabel
	DefaultLabel
)

func (k LabelKind) String() string {
	switch k {
	case GotoLabel:
		return "goto"
	case CaseLabel:
		return "case"
	case DefaultLabel:
		return "default"
	default:
		return "unknown label kind"
	}
}

// Label marks a statement as a jump target: a named goto label, or a case
// or default label inside an enclosing switch.
type Label struct {
	Kind LabelKind
	Name string      // goto label identifier; empty for case/default
	Expr Expr        // case constant expression; nil for goto/default
	Stmt Stmt        // the statement this label is attached to
	Span token.Span
}

// Program is the root of the tree: the translation unit's global scope plus
// its top-level declarations, in source order.
type Program struct {
	Global      *Scope
	Globals     []*Variable
	Functions   []*FunctionDefinition
	Types       []VariableType
	span        token.Span
}

func NewProgram(global *Scope) *Program {
	return &Program{Global: global}
}

func (p *Program) Span() token.Span { return p.span }
func (p *Program) Parent() Node     { return nil }
func (p *Program) setParent(Node)   {}

func (p *Program) AddGlobal(v *Variable) {
	v.setParent(p)
	p.Globals = append(p.Globals, v)
}

func (p *Program) AddFunction(f *FunctionDefinition) {
	f.setParent(p)
	p.Functions = append(p.Functions, f)
}

func (p *Program) AddType(t VariableType) {
	p.Types = append(p.Types, t)
}
