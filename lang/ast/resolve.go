package ast

import (
	"fmt"

	"github.com/pschiffmann/minic/lang/numeric"
	"github.com/pschiffmann/minic/lang/token"
)

// NewGlobalScope returns a fresh, parentless scope pre-populated with the
// built-in types every translation unit starts with: char, short, int,
// long, float, double and void.
func NewGlobalScope() *Scope {
	s := NewScope(nil)
	for _, t := range []*BasicType{
		NewBasicType("char", numeric.Uint8),
		NewBasicType("short", numeric.Sint16),
		NewBasicType("int", numeric.Sint32),
		NewBasicType("long", numeric.Sint64),
		NewBasicType("float", numeric.Fp32),
		NewBasicType("double", numeric.Fp64),
	} {
		must(s.Define(t))
	}
	must(s.Define(NewVoidType()))
	return s
}

// defaultPointerSize is the byte width assigned to a pointer type
// synthesized by the & operator, independent of the parser's configured
// pointerSize for declared pointer types (see parser.DefaultPointerSize).
const defaultPointerSize = 4

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("ast: defining a builtin name failed: %v", err))
	}
}

// TypeError reports a static type-checking failure: an operator or
// assignment applied to operands whose types are not compatible under
// CanBeConvertedTo.
type TypeError struct {
	Span token.Span
	Msg  string
}

func (e *TypeError) Error() string { return e.Msg }

// ResolveNumberLiteral assigns lit's value type from its numeric.Number,
// looking up the matching built-in BasicType in global. The scanner's
// u-suffixed literal types, Uint32 and Uint64, have no built-in name of
// their own and resolve to the unsigned variants of int and long. Any other
// numeric.Type with no corresponding built-in name panics.
func ResolveNumberLiteral(global *Scope, lit *NumberLiteral) {
	switch lit.Value.Type {
	case numeric.Uint32:
		lit.valueType = UnsignedVariantOf(basicTypeFor(global, numeric.Sint32).(*BasicType))
	case numeric.Uint64:
		lit.valueType = UnsignedVariantOf(basicTypeFor(global, numeric.Sint64).(*BasicType))
	default:
		lit.valueType = basicTypeFor(global, lit.Value.Type)
	}
}

func basicTypeFor(global *Scope, n numeric.Type) VariableType {
	for _, name := range global.Names() {
		def, _ := global.LookUpLocal(name)
		if bt, ok := def.(*BasicType); ok && bt.Number == n {
			return bt
		}
	}
	panic(fmt.Sprintf("ast: no built-in type spells numeric type %s", n))
}

// UnsignedVariantOf returns the BasicType with the same width as t but an
// Unsigned interpretation, used when the parser sees an `unsigned`
// qualifier in front of char/short/int/long. The returned type is not
// itself registered in any scope; the parser attaches it directly to the
// declaration it qualifies.
func UnsignedVariantOf(t *BasicType) *BasicType {
	var u numeric.Type
	switch t.Number {
	case numeric.Uint8, numeric.Sint8:
		u = numeric.Uint8
	case numeric.Uint16, numeric.Sint16:
		u = numeric.Uint16
	case numeric.Uint32, numeric.Sint32:
		u = numeric.Uint32
	case numeric.Uint64, numeric.Sint64:
		u = numeric.Uint64
	default:
		panic(fmt.Sprintf("ast: %s has no unsigned variant", t.Number))
	}
	return NewBasicType("unsigned "+t.Name(), u)
}

// ResolveVariableRef looks up ref.Name in scope and binds ref.Def and
// ref.valueType. It returns the NameError from Scope.LookUp unchanged on
// failure.
func ResolveVariableRef(scope *Scope, ref *VariableRef) error {
	def, err := scope.LookUp(ref.Name)
	if err != nil {
		return err
	}
	ref.Def = def
	switch d := def.(type) {
	case *Variable:
		ref.valueType = d.Type
	case *FunctionDefinition:
		// A function name used as an expression carries no VariableType of
		// its own; call sites resolve the callee's return type separately.
	}
	return nil
}

// ResolveExprType assigns the value type of a composite expression node
// (BinaryOp, UnaryOp, TernaryOp, Call, Subscript) once its operands have
// already been resolved. The parser calls it right after building each such
// node, mirroring how ResolveNumberLiteral/ResolveVariableRef handle the
// leaf expressions.
func ResolveExprType(global *Scope, e Expr) error {
	switch v := e.(type) {
	case *BinaryOp:
		return resolveBinaryOpType(global, v)
	case *UnaryOp:
		return resolveUnaryOpType(global, v)
	case *TernaryOp:
		t, err := unifyArithmetic(v.Then.ValueType(), v.Else.ValueType())
		if err != nil {
			return &TypeError{Span: v.Span(), Msg: err.Error()}
		}
		v.valueType = t
		return nil
	case *Call:
		ref, ok := v.Callee.(*VariableRef)
		if !ok {
			return &TypeError{Span: v.Span(), Msg: "call target must be a function name"}
		}
		fn, ok := ref.Def.(*FunctionDefinition)
		if !ok {
			return &TypeError{Span: v.Span(), Msg: fmt.Sprintf("%q is not a function", ref.Name)}
		}
		v.valueType = fn.ReturnType
		return nil
	case *Subscript:
		pt, ok := v.Base.ValueType().(*PointerType)
		if !ok {
			return &TypeError{Span: v.Span(), Msg: "subscript base is not a pointer"}
		}
		v.valueType = pt.Target
		return nil
	}
	return nil
}

func resolveBinaryOpType(global *Scope, v *BinaryOp) error {
	if v.Op.IsAssignOp() {
		v.valueType = v.Left.ValueType()
		return nil
	}
	switch v.Op {
	case token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE, token.ANDAND, token.OROR:
		v.valueType = basicTypeFor(global, numeric.Uint8)
		return nil
	default:
		t, err := unifyArithmetic(v.Left.ValueType(), v.Right.ValueType())
		if err != nil {
			return &TypeError{Span: v.Span(), Msg: err.Error()}
		}
		v.valueType = t
		return nil
	}
}

func resolveUnaryOpType(global *Scope, v *UnaryOp) error {
	switch v.Op {
	case token.BANG:
		v.valueType = basicTypeFor(global, numeric.Uint8)
	case token.AMP:
		v.valueType = NewPointerType(v.Operand.ValueType(), defaultPointerSize)
	case token.STAR:
		pt, ok := v.Operand.ValueType().(*PointerType)
		if !ok {
			return &TypeError{Span: v.Span(), Msg: fmt.Sprintf("cannot dereference non-pointer type %s", v.Operand.ValueType().Name())}
		}
		v.valueType = pt.Target
	default:
		v.valueType = v.Operand.ValueType()
	}
	return nil
}

// unifyArithmetic implements the "usual arithmetic conversions" this dialect
// supports: both operands must be BasicTypes of the same Interpretation
// family; the result is the wider of the two.
func unifyArithmetic(a, b VariableType) (VariableType, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("operand type could not be resolved")
	}
	ba, ok1 := a.(*BasicType)
	bb, ok2 := b.(*BasicType)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("operand types %s and %s are not arithmetic", a.Name(), b.Name())
	}
	if ba.Number.Interpretation() != bb.Number.Interpretation() {
		return nil, fmt.Errorf("incompatible operand types %s and %s", a.Name(), b.Name())
	}
	if ba.Number.SizeInBytes() >= bb.Number.SizeInBytes() {
		return a, nil
	}
	return b, nil
}
