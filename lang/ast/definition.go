package ast

import (
	"github.com/pschiffmann/minic/lang/numeric"
	"github.com/pschiffmann/minic/lang/token"
)

// Definition is anything a Scope can bind a name to: a type, a variable, or
// a function.
type Definition interface {
	Name() string
	// Scope returns the scope this definition was defined in, or nil before
	// it has been defined anywhere.
	Scope() *Scope
	bindScope(*Scope)
}

type defBase struct {
	name  string
	scope *Scope
}

func (d *defBase) Name() string       { return d.name }
func (d *defBase) Scope() *Scope      { return d.scope }
func (d *defBase) bindScope(s *Scope) { d.scope = s }

// nodeDefBase is embedded by Definitions that are also AST Nodes (Variable,
// FunctionDefinition): it provides both halves of the Definition+Node
// interfaces from a single embedded struct.
type nodeDefBase struct {
	base
	defBase
}

// VariableType is the common interface of the three type-definition
// variants: BasicType, VoidType and PointerType.
type VariableType interface {
	Definition
	// CanBeConvertedTo reports whether a value of this type can be
	// implicitly converted to other: only defined between two BasicTypes
	// sharing the same number-type family, source width >= destination
	// width.
	CanBeConvertedTo(other VariableType) bool
	variableType()
}

// BasicType is a C scalar type mapped 1-to-1 to a numeric.Type.
type BasicType struct {
	defBase
	Number numeric.Type
}

func NewBasicType(name string, n numeric.Type) *BasicType {
	t := &BasicType{Number: n}
	t.name = name
	return t
}

func (*BasicType) variableType() {}

func (t *BasicType) CanBeConvertedTo(other VariableType) bool {
	o, ok := other.(*BasicType)
	if !ok {
		return false
	}
	if t.Number.Interpretation() != o.Number.Interpretation() {
		return false
	}
	return t.Number.SizeInBytes() >= o.Number.SizeInBytes()
}

// VoidType is the type of a function that returns nothing.
type VoidType struct {
	defBase
}

func NewVoidType() *VoidType {
	t := &VoidType{}
	t.name = "void"
	return t
}

func (*VoidType) variableType()                             {}
func (*VoidType) CanBeConvertedTo(other VariableType) bool { _, ok := other.(*VoidType); return ok }

// PointerType wraps a target type, carrying the configured pointer size (in
// bytes) used to address it.
type PointerType struct {
	defBase
	Target      VariableType
	PointerSize int
}

func NewPointerType(target VariableType, pointerSize int) *PointerType {
	t := &PointerType{Target: target, PointerSize: pointerSize}
	t.name = target.Name() + "*"
	return t
}

func (*PointerType) variableType() {}
func (t *PointerType) CanBeConvertedTo(other VariableType) bool {
	o, ok := other.(*PointerType)
	if !ok {
		return false
	}
	return t.Target.Name() == o.Target.Name()
}

// Variable is a declared variable: a global, a local, or a function
// parameter.
type Variable struct {
	nodeDefBase
	Const bool
	Type  VariableType
	Init  Expr // optional initializer expression, nil if absent

	// Addr is the resolved address/offset assigned by the code generator:
	// an absolute address for globals, a frame-pointer offset for locals
	// and parameters. It is set only after code generation.
	Addr int
}

func NewVariable(name string, constFlag bool, typ VariableType, init Expr, span token.Span) *Variable {
	v := &Variable{Const: constFlag, Type: typ, Init: init}
	v.name = name
	v.span = span
	if init != nil {
		init.setParent(v)
	}
	return v
}

// FunctionDefinition is a function's signature and body.
type FunctionDefinition struct {
	nodeDefBase
	ReturnType VariableType
	Params     *Scope   // scope holding the parameter Variables
	ParamOrder []string // parameter names, in declaration order
	Body       *CompoundStatement

	// EntryAddr is the resolved bytecode address of the function's first
	// instruction, set by the code generator.
	EntryAddr int
}

func NewFunctionDefinition(name string, ret VariableType, params *Scope, order []string, span token.Span) *FunctionDefinition {
	f := &FunctionDefinition{ReturnType: ret, Params: params, ParamOrder: order}
	f.name = name
	f.span = span
	return f
}

// SetBody attaches the parsed function body, linking its parent pointer.
func (f *FunctionDefinition) SetBody(body *CompoundStatement) {
	f.Body = body
	body.setParent(f)
}

// Parameters returns the function's parameters as Variables, in order.
func (f *FunctionDefinition) Parameters() []*Variable {
	out := make([]*Variable, 0, len(f.ParamOrder))
	for _, n := range f.ParamOrder {
		d, _ := f.Params.LookUpLocal(n)
		out = append(out, d.(*Variable))
	}
	return out
}
