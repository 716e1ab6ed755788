package compiler

import (
	"fmt"

	"github.com/pschiffmann/minic/lang/ast"
	"github.com/pschiffmann/minic/lang/numeric"
	"github.com/pschiffmann/minic/lang/token"
)

// genExpr lowers e, leaving its value on top of the stack.
func (g *gen) genExpr(e ast.Expr) error {
	switch v := e.(type) {
	case *ast.NumberLiteral:
		ins, ok := LoadC[v.Value.Type]
		if !ok {
			return fmt.Errorf("compiler: no loadc instruction for type %s", v.Value.Type)
		}
		g.b.Emit(ins, Concrete(v.Value.Bits))
		return nil

	case *ast.StringLiteral:
		return fmt.Errorf("compiler: string literals are not implemented (arrays are reserved but unsupported)")

	case *ast.VariableRef:
		switch d := v.Def.(type) {
		case *ast.Variable:
			g.genLoad(d)
			return nil
		default:
			return fmt.Errorf("compiler: %q cannot be used as a value", v.Name)
		}

	case *ast.UnaryOp:
		return g.genUnaryOp(v)

	case *ast.BinaryOp:
		return g.genBinaryOp(v)

	case *ast.TernaryOp:
		return g.genTernary(v)

	case *ast.Call:
		return g.genCall(v)

	case *ast.Subscript:
		return fmt.Errorf("compiler: subscript/array indexing is not implemented (arrays are reserved but unsupported)")

	case *ast.Cast:
		return g.genCast(v)

	default:
		return fmt.Errorf("compiler: unsupported expression node %T", e)
	}
}

// genVariableAddr pushes v's address: an absolute address for globals, a
// frame-relative address (via loadr) for locals and parameters.
func (g *gen) genVariableAddr(v *ast.Variable) error {
	if addr, ok := g.globals[v]; ok {
		g.b.Emit(LoadC[numeric.Uint16], Concrete(uint64(addr)))
		return nil
	}
	off, ok := g.frameOffsetOf(v)
	if !ok {
		return fmt.Errorf("compiler: variable %q has no assigned address", v.Name())
	}
	g.b.Emit(Loadr, Concrete(off))
	return nil
}

// genLoad pushes v's current value.
func (g *gen) genLoad(v *ast.Variable) error {
	if err := g.genVariableAddr(v); err != nil {
		return err
	}
	g.b.Emit(Loada, Concrete(uint64(typeSize(v.Type))))
	return nil
}

// convertTop emits a cast if the value on top of the stack is not already of
// type to.
func (g *gen) convertTop(from, to numeric.Type) {
	if from == to {
		return
	}
	if ins, ok := Cast[[2]numeric.Type{from, to}]; ok {
		g.b.Emit(ins, Immediate{})
	}
}

// wider picks the larger-width of two same-family numeric types, per the
// usual arithmetic conversions ast.unifyArithmetic already validated.
func wider(a, b numeric.Type) numeric.Type {
	if a.SizeInBytes() >= b.SizeInBytes() {
		return a
	}
	return b
}

// genCondition reduces e to a single truthy/falsy byte, the width jumpz
// always pops regardless of e's own type: push e, compare it to zero of its
// own type (a width-correct test for any operand size), then invert — Eq
// yields 1 when e is zero (falsy), Not flips that to the truthiness value.
func (g *gen) genCondition(e ast.Expr) error {
	if err := g.genExpr(e); err != nil {
		return err
	}
	nt := numType(e.ValueType())
	g.b.Emit(LoadC[nt], Concrete(0))
	ins, ok := Eq[nt]
	if !ok {
		return fmt.Errorf("compiler: no eq instruction for condition type %s", nt)
	}
	g.b.Emit(ins, Immediate{})
	g.b.Emit(Not, Immediate{})
	return nil
}

func binaryFamily(op token.Token) (map[numeric.Type]*Instruction, bool) {
	switch op {
	case token.PLUS:
		return Add, true
	case token.MINUS:
		return Sub, true
	case token.STAR:
		return Mul, true
	case token.SLASH:
		return Div, true
	case token.PERCENT:
		return Mod, true
	case token.AMP:
		return And, true
	case token.PIPE:
		return Or, true
	case token.CARET:
		return Xor, true
	case token.EQ:
		return Eq, true
	case token.GT:
		return Gt, true
	case token.GE:
		return Ge, true
	case token.LT:
		return Lt, true
	case token.LE:
		return Le, true
	}
	return nil, false
}

func compoundFamily(op token.Token) (map[numeric.Type]*Instruction, bool) {
	switch op {
	case token.PLUS_ASSIGN:
		return Add, true
	case token.MINUS_ASSIGN:
		return Sub, true
	case token.STAR_ASSIGN:
		return Mul, true
	case token.SLASH_ASSIGN:
		return Div, true
	case token.PERCENT_ASSIGN:
		return Mod, true
	case token.AMP_ASSIGN:
		return And, true
	case token.PIPE_ASSIGN:
		return Or, true
	case token.CARET_ASSIGN:
		return Xor, true
	}
	return nil, false
}

// genBinaryTyped evaluates both operands, converting each to their unified
// type, then emits the family's instruction for that type.
func (g *gen) genBinaryTyped(v *ast.BinaryOp, family map[numeric.Type]*Instruction) error {
	lt := numType(v.Left.ValueType())
	rt := numType(v.Right.ValueType())
	ct := wider(lt, rt)

	if err := g.genExpr(v.Left); err != nil {
		return err
	}
	g.convertTop(lt, ct)
	if err := g.genExpr(v.Right); err != nil {
		return err
	}
	g.convertTop(rt, ct)

	ins, ok := family[ct]
	if !ok {
		return fmt.Errorf("compiler: no instruction for operand type %s", ct)
	}
	g.b.Emit(ins, Immediate{})
	return nil
}

func (g *gen) genNotEqual(v *ast.BinaryOp) error {
	if err := g.genBinaryTyped(v, Eq); err != nil {
		return err
	}
	g.b.Emit(Not, Immediate{})
	return nil
}

// genLogicalAnd short-circuits: if Left is falsy, the result is 0 without
// evaluating Right.
func (g *gen) genLogicalAnd(v *ast.BinaryOp) error {
	if err := g.genCondition(v.Left); err != nil {
		return err
	}
	falseKey, endKey := new(int), new(int)
	g.b.Emit(Jumpz, Pending(falseKey))
	if err := g.genCondition(v.Right); err != nil {
		return err
	}
	g.b.Emit(Jump, Pending(endKey))
	g.b.Label(falseKey)
	g.b.Emit(LoadC[numeric.Uint8], Concrete(0))
	g.b.Label(endKey)
	return nil
}

// genLogicalOr short-circuits: if Left is truthy, the result is 1 without
// evaluating Right.
func (g *gen) genLogicalOr(v *ast.BinaryOp) error {
	if err := g.genCondition(v.Left); err != nil {
		return err
	}
	checkRightKey, endKey := new(int), new(int)
	g.b.Emit(Jumpz, Pending(checkRightKey))
	g.b.Emit(LoadC[numeric.Uint8], Concrete(1))
	g.b.Emit(Jump, Pending(endKey))
	g.b.Label(checkRightKey)
	if err := g.genCondition(v.Right); err != nil {
		return err
	}
	g.b.Label(endKey)
	return nil
}

func (g *gen) genBinaryOp(v *ast.BinaryOp) error {
	if v.Op.IsAssignOp() {
		return g.genAssign(v)
	}
	switch v.Op {
	case token.ANDAND:
		return g.genLogicalAnd(v)
	case token.OROR:
		return g.genLogicalOr(v)
	case token.NEQ:
		return g.genNotEqual(v)
	case token.SHL, token.SHR:
		return fmt.Errorf("compiler: shift operators are not implemented by the instruction set")
	}
	family, ok := binaryFamily(v.Op)
	if !ok {
		return fmt.Errorf("compiler: unsupported binary operator %#v", v.Op)
	}
	return g.genBinaryTyped(v, family)
}

// genAssign handles both `=` and the compound assignment operators. Only a
// bare variable reference is a valid assignment target — subscript and
// dereference targets fall under the unsupported pointer-arithmetic/array
// domain.
func (g *gen) genAssign(v *ast.BinaryOp) error {
	ref, ok := v.Left.(*ast.VariableRef)
	if !ok {
		return fmt.Errorf("compiler: assignment target must be a variable")
	}
	variable, ok := ref.Def.(*ast.Variable)
	if !ok {
		return fmt.Errorf("compiler: %q is not assignable", ref.Name)
	}
	lt := numType(variable.Type)
	size := typeSize(variable.Type)

	if v.Op == token.ASSIGN {
		if err := g.genExpr(v.Right); err != nil {
			return err
		}
		g.convertTop(numType(v.Right.ValueType()), lt)
	} else {
		family, ok := compoundFamily(v.Op)
		if !ok {
			return fmt.Errorf("compiler: unsupported compound assignment operator %#v", v.Op)
		}
		if err := g.genLoad(variable); err != nil {
			return err
		}
		if err := g.genExpr(v.Right); err != nil {
			return err
		}
		g.convertTop(numType(v.Right.ValueType()), lt)
		ins, ok := family[lt]
		if !ok {
			return fmt.Errorf("compiler: no instruction for operand type %s", lt)
		}
		g.b.Emit(ins, Immediate{})
	}

	if err := g.genVariableAddr(variable); err != nil {
		return err
	}
	g.b.Emit(Store, Concrete(uint64(size)))

	// Assignment is an expression: re-read the stored value, since the ISA
	// has no dup instruction to keep a copy around across the store.
	return g.genLoad(variable)
}

// genIncDec decomposes `++`/`--` (prefix and postfix) into a load-modify-
// store sequence; there is no dedicated opcode for either.
func (g *gen) genIncDec(u *ast.UnaryOp) error {
	ref, ok := u.Operand.(*ast.VariableRef)
	if !ok {
		return fmt.Errorf("compiler: %s operand must be a variable", u.Op)
	}
	variable, ok := ref.Def.(*ast.Variable)
	if !ok {
		return fmt.Errorf("compiler: %q is not assignable", ref.Name)
	}
	nt := numType(variable.Type)
	size := typeSize(variable.Type)

	family := Add
	if u.Op == token.DEC {
		family = Sub
	}
	ins, ok := family[nt]
	if !ok {
		return fmt.Errorf("compiler: no instruction for operand type %s", nt)
	}
	one := numeric.FromInt64(nt, 1).Bits

	if u.Postfix {
		// Read the variable twice: once to keep as the expression's result
		// (the pre-increment value), once as the working copy to modify.
		if err := g.genLoad(variable); err != nil {
			return err
		}
		if err := g.genLoad(variable); err != nil {
			return err
		}
		g.b.Emit(LoadC[nt], Concrete(one))
		g.b.Emit(ins, Immediate{})
		if err := g.genVariableAddr(variable); err != nil {
			return err
		}
		g.b.Emit(Store, Concrete(uint64(size)))
		return nil
	}

	if err := g.genLoad(variable); err != nil {
		return err
	}
	g.b.Emit(LoadC[nt], Concrete(one))
	g.b.Emit(ins, Immediate{})
	if err := g.genVariableAddr(variable); err != nil {
		return err
	}
	g.b.Emit(Store, Concrete(uint64(size)))
	return g.genLoad(variable)
}

func (g *gen) genUnaryMinus(v *ast.UnaryOp) error {
	nt := numType(v.ValueType())
	g.b.Emit(LoadC[nt], Concrete(0))
	if err := g.genExpr(v.Operand); err != nil {
		return err
	}
	g.convertTop(numType(v.Operand.ValueType()), nt)
	ins, ok := Sub[nt]
	if !ok {
		return fmt.Errorf("compiler: no instruction for operand type %s", nt)
	}
	g.b.Emit(ins, Immediate{})
	return nil
}

func (g *gen) genUnaryComplement(v *ast.UnaryOp) error {
	nt := numType(v.ValueType())
	if err := g.genExpr(v.Operand); err != nil {
		return err
	}
	g.convertTop(numType(v.Operand.ValueType()), nt)
	g.b.Emit(LoadC[nt], Concrete(nt.Bitmask()))
	ins, ok := Xor[nt]
	if !ok {
		return fmt.Errorf("compiler: bitwise complement is not supported for type %s", nt)
	}
	g.b.Emit(ins, Immediate{})
	return nil
}

func (g *gen) genLogicalNot(v *ast.UnaryOp) error {
	if err := g.genExpr(v.Operand); err != nil {
		return err
	}
	nt := numType(v.Operand.ValueType())
	g.b.Emit(LoadC[nt], Concrete(0))
	ins, ok := Eq[nt]
	if !ok {
		return fmt.Errorf("compiler: no eq instruction for operand type %s", nt)
	}
	g.b.Emit(ins, Immediate{})
	return nil
}

func (g *gen) genUnaryOp(v *ast.UnaryOp) error {
	switch v.Op {
	case token.INC, token.DEC:
		return g.genIncDec(v)
	case token.MINUS:
		return g.genUnaryMinus(v)
	case token.PLUS:
		return g.genExpr(v.Operand)
	case token.TILDE:
		return g.genUnaryComplement(v)
	case token.BANG:
		return g.genLogicalNot(v)
	case token.AMP:
		return fmt.Errorf("compiler: address-of is not implemented")
	case token.STAR:
		return fmt.Errorf("compiler: pointer dereference is not implemented")
	default:
		return fmt.Errorf("compiler: unsupported unary operator %#v", v.Op)
	}
}

func (g *gen) genTernary(v *ast.TernaryOp) error {
	ct := numType(v.ValueType())
	if err := g.genCondition(v.Cond); err != nil {
		return err
	}
	elseKey, endKey := new(int), new(int)
	g.b.Emit(Jumpz, Pending(elseKey))
	if err := g.genExpr(v.Then); err != nil {
		return err
	}
	g.convertTop(numType(v.Then.ValueType()), ct)
	g.b.Emit(Jump, Pending(endKey))
	g.b.Label(elseKey)
	if err := g.genExpr(v.Else); err != nil {
		return err
	}
	g.convertTop(numType(v.Else.ValueType()), ct)
	g.b.Label(endKey)
	return nil
}

func (g *gen) genCall(v *ast.Call) error {
	ref, ok := v.Callee.(*ast.VariableRef)
	if !ok {
		return fmt.Errorf("compiler: call target must be a function name")
	}
	fn, ok := ref.Def.(*ast.FunctionDefinition)
	if !ok {
		return fmt.Errorf("compiler: %q is not a function", ref.Name)
	}
	params := fn.Parameters()
	if len(params) != len(v.Args) {
		return fmt.Errorf("compiler: %q expects %d arguments, got %d", fn.Name(), len(params), len(v.Args))
	}

	// Arguments are pushed in reverse declaration order: the stack grows
	// toward address 0, so the last value pushed ends up at the lowest
	// address, nearest the callee's frame pointer. genFunction assigns the
	// first parameter to that nearest-fp slot (frameOffsetOf's smallest
	// offset), so pushing arg[N-1] first and arg[0] last is what makes the
	// two conventions agree -- pushing in declaration order would bind
	// arg[0] to the last parameter instead.
	argsSize := 0
	for i := len(v.Args) - 1; i >= 0; i-- {
		a := v.Args[i]
		if err := g.genExpr(a); err != nil {
			return err
		}
		g.convertTop(numType(a.ValueType()), numType(params[i].Type))
		argsSize += typeSize(params[i].Type)
	}
	g.b.Emit(LoadC[numeric.Uint16], Pending(fn))
	g.b.Emit(Call, Concrete(uint64(argsSize)))

	if g.isVoid(fn.ReturnType) {
		return nil
	}
	g.b.Emit(LoadC[numeric.Uint16], Concrete(uint64(g.returnSlotAddr)))
	g.b.Emit(Loada, Concrete(uint64(typeSize(fn.ReturnType))))
	return nil
}

func (g *gen) genCast(v *ast.Cast) error {
	if err := g.genExpr(v.Operand); err != nil {
		return err
	}
	g.convertTop(numType(v.Operand.ValueType()), numType(v.Target))
	return nil
}
