package compiler

import (
	"fmt"

	"github.com/pschiffmann/minic/lang/ast"
	"github.com/pschiffmann/minic/lang/numeric"
)

// addressWidth is the width in bytes of every address pushed onto the
// stack (global addresses, frame-relative addresses, jump/call targets).
// The specification's "latest iteration" fixes a 16-bit memory, so 2 bytes
// is always enough to address it.
const addressWidth = 2

// frameHeaderSize is the size in bytes of the four registers `call` saves
// on entry (extremePointer, framePointer, stackPointer, programCounter),
// each addressWidth bytes wide.
const frameHeaderSize = 4 * addressWidth

// returnSlotSize is the width of the reserved return-value slot, wide
// enough to hold any of the ten scalar types (the widest are 8 bytes).
const returnSlotSize = 8

// gen holds the state threaded through code generation for one Program.
type gen struct {
	b       *Builder
	prog    *ast.Program
	globals map[*ast.Variable]int // resolved absolute addresses

	// returnSlotAddr is a fixed, reserved memory address used to pass a
	// function's return value back to its caller. The instruction set has
	// no dedicated return-value register or stack convention for it (see
	// §4.6), so genReturn stores into this slot just before `return`, and
	// genCall reads it back right after `call`.
	returnSlotAddr int

	fn           *ast.FunctionDefinition
	params       map[*ast.Variable]int // negative-encoded frame offsets
	locals       map[*ast.Variable]int // positive frame offsets
	localsCursor int

	loopBreak    []any // stack of break-target marker keys, innermost last
	loopContinue []any // stack of continue-target marker keys, innermost last
}

// Generate lowers a fully parsed and resolved Program into a linear
// bytecode image, per §4.6: globals are laid out and their initializers
// emitted first, then the main bootstrap sequence, then every function
// body. Execution starts at address 0, so it runs the initializers and the
// bootstrap and only enters a function body through a call.
func Generate(prog *ast.Program) ([]byte, error) {
	g := &gen{
		b:       NewBuilder(),
		prog:    prog,
		globals: map[*ast.Variable]int{},
	}

	if err := g.layoutGlobals(); err != nil {
		return nil, err
	}
	if err := g.genGlobalInitializers(); err != nil {
		return nil, err
	}
	if err := g.genMainBootstrap(); err != nil {
		return nil, err
	}
	for _, fn := range prog.Functions {
		if err := g.genFunction(fn); err != nil {
			return nil, err
		}
	}

	if err := g.b.Fixup(); err != nil {
		return nil, err
	}
	return g.b.Encode()
}

func typeSize(t ast.VariableType) int {
	switch v := t.(type) {
	case *ast.BasicType:
		return v.Number.SizeInBytes()
	case *ast.PointerType:
		return v.PointerSize
	default:
		return addressWidth
	}
}

func numType(t ast.VariableType) numeric.Type {
	switch v := t.(type) {
	case *ast.BasicType:
		return v.Number
	case *ast.PointerType:
		switch v.PointerSize {
		case 1:
			return numeric.Uint8
		case 2:
			return numeric.Uint16
		case 8:
			return numeric.Uint64
		default:
			return numeric.Uint32
		}
	default:
		return numeric.Uint32
	}
}

// layoutGlobals assigns every global variable a contiguous absolute
// address at the bottom of memory, in declaration order.
func (g *gen) layoutGlobals() error {
	g.returnSlotAddr = 0
	addr := returnSlotSize
	for _, v := range g.prog.Globals {
		g.globals[v] = addr
		v.Addr = addr
		addr += typeSize(v.Type)
	}
	return nil
}

// genGlobalInitializers emits, for each global carrying an initializer,
// code to evaluate it and store it at the global's address; globals
// without an initializer need no code (memory starts zeroed).
func (g *gen) genGlobalInitializers() error {
	for _, v := range g.prog.Globals {
		if v.Init == nil {
			continue
		}
		if err := g.genExpr(v.Init); err != nil {
			return err
		}
		g.genConvert(v.Init.ValueType(), v.Type)
		g.b.Emit(LoadC[numeric.Uint16], Concrete(uint64(g.globals[v])))
		g.b.Emit(Store, Concrete(uint64(typeSize(v.Type))))
	}
	return nil
}

// genFunction emits one function's entry point, prologue, body, and a
// default return if the body falls off the end without one.
func (g *gen) genFunction(fn *ast.FunctionDefinition) error {
	g.fn = fn
	g.params = map[*ast.Variable]int{}
	g.locals = map[*ast.Variable]int{}
	g.localsCursor = 0

	offset := frameHeaderSize
	for _, v := range fn.Parameters() {
		g.params[v] = offset
		v.Addr = offset
		offset += typeSize(v.Type)
	}

	fn.EntryAddr = g.b.Addr()
	g.b.Label(fn)
	g.b.Emit(Enter, Concrete(uint64(localsSize(fn.Body))))

	if err := g.genStmt(fn.Body); err != nil {
		return err
	}

	stmts := fn.Body.Statements
	if len(stmts) == 0 {
		g.b.Emit(Return, Immediate{})
	} else if _, ok := stmts[len(stmts)-1].(*ast.ReturnStatement); !ok {
		g.b.Emit(Return, Immediate{})
	}
	return nil
}

// isVoid reports whether t is the built-in void type.
func (g *gen) isVoid(t ast.VariableType) bool {
	_, ok := t.(*ast.VoidType)
	return ok
}

// localsSize walks fn's body and sums the byte size of every local
// variable that will be allocated, used as the enter instruction's
// stack-depth budget.
func localsSize(body *ast.CompoundStatement) int {
	total := 0
	for _, n := range ast.RecursiveChildren(body) {
		if v, ok := n.(*ast.Variable); ok {
			total += typeSize(v.Type)
		}
	}
	return total
}

// genMainBootstrap emits the program's entry sequence: call main, then
// halt with its (converted) return value as the uint32 exit status.
func (g *gen) genMainBootstrap() error {
	var mainFn *ast.FunctionDefinition
	for _, fn := range g.prog.Functions {
		if fn.Name() == "main" {
			mainFn = fn
			break
		}
	}
	if mainFn == nil {
		return fmt.Errorf("compiler: no main function to bootstrap")
	}

	g.b.Emit(LoadC[numeric.Uint16], Pending(mainFn))
	g.b.Emit(Call, Concrete(0))
	g.b.Emit(LoadC[numeric.Uint16], Concrete(uint64(g.returnSlotAddr)))
	g.b.Emit(Loada, Concrete(uint64(typeSize(mainFn.ReturnType))))
	g.b.Emit(Cast[[2]numeric.Type{numeric.Sint32, numeric.Uint32}], Immediate{})
	g.b.Emit(Halt, Immediate{})
	return nil
}

// frameOffsetOf returns the loadr immediate for v: params resolve to
// addresses above the frame pointer (encoded as the two's-complement
// negative of their positive distance, since loadr only expresses
// `framePointer - imm`), locals resolve to addresses below it.
func (g *gen) frameOffsetOf(v *ast.Variable) (uint64, bool) {
	if off, ok := g.params[v]; ok {
		return uint64(uint16(-int16(off))), true
	}
	if off, ok := g.locals[v]; ok {
		return uint64(off), true
	}
	return 0, false
}

// allocLocal reserves stack space for a newly declared local variable and
// assigns it a frame offset.
func (g *gen) allocLocal(v *ast.Variable) {
	size := typeSize(v.Type)
	g.localsCursor += size
	g.locals[v] = g.localsCursor
	v.Addr = g.localsCursor
	g.b.Emit(Alloc, Concrete(uint64(size)))
}

// genConvert emits a cast<from,to> if from and to differ, implementing the
// implicit conversions the parser already validated with CanBeConvertedTo.
func (g *gen) genConvert(from, to ast.VariableType) {
	if from == nil || to == nil || from == to {
		return
	}
	ft, tt := numType(from), numType(to)
	if ft == tt {
		return
	}
	if ins, ok := Cast[[2]numeric.Type{ft, tt}]; ok {
		g.b.Emit(ins, Immediate{})
	}
}
