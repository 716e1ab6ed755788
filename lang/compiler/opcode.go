// Package compiler implements the minic instruction set, the two-pass code
// generator that lowers a resolved AST to bytecode, and a human-readable
// assembler/disassembler text format for hand-authoring bytecode in tests.
package compiler

import (
	"fmt"

	"github.com/pschiffmann/minic/lang/numeric"
)

// Opcode is a 1-based instruction opcode; 0 is never assigned and is
// treated as invalid (an unrecognized byte in the program image).
type Opcode uint8

// ImmKind classifies what an instruction's immediate argument means, so
// the assembler, disassembler and fixup pass can agree on its size and
// whether it denotes a jump/call target.
type ImmKind int

const (
	// ImmNone: the instruction has no immediate bytes.
	ImmNone ImmKind = iota
	// ImmCount: a uint16 byte count or stack offset (pop, alloc, loada,
	// store, loadr, enter).
	ImmCount
	// ImmAddr: a uint16 program address (jump, jumpz, call's return-target
	// is on the stack, call's immediate is an ImmCount-shaped frame offset).
	ImmAddr
	// ImmValue: a value of the instruction's NumType, width NumType.SizeInBytes()
	// (loadc<N>).
	ImmValue
)

// Instruction describes one entry in the authoritative instruction table:
// a mnemonic (the identity used for equality/lookup), the Opcode assigned
// by declaration order, and the shape of its immediate argument.
type Instruction struct {
	Mnemonic string
	Opcode   Opcode
	Kind     ImmKind
	// NumType is the operand type for typed instructions (loadc, cast's
	// source type, arithmetic/bitwise/comparison); the zero Type otherwise.
	NumType numeric.Type
	// NumType2 is the cast target type; the zero Type for all other
	// instructions.
	NumType2 numeric.Type
}

// ImmSize returns the number of bytes this instruction's immediate
// argument occupies, 0 if it has none.
func (ins *Instruction) ImmSize() int {
	switch ins.Kind {
	case ImmCount, ImmAddr:
		return 2
	case ImmValue:
		return ins.NumType.SizeInBytes()
	default:
		return 0
	}
}

// EncodedSize is 1 (opcode byte) plus ImmSize.
func (ins *Instruction) EncodedSize() int { return 1 + ins.ImmSize() }

var (
	byMnemonic = map[string]*Instruction{}
	byOpcode   []*Instruction // index 0 unused; byOpcode[op] for op>=1
)

func register(mnemonic string, kind ImmKind, t1, t2 numeric.Type) *Instruction {
	ins := &Instruction{
		Mnemonic: mnemonic,
		Opcode:   Opcode(len(byOpcode)), // first call gets opcode 1, see padding below
		Kind:     kind,
		NumType:  t1,
		NumType2: t2,
	}
	if len(byOpcode) == 0 {
		byOpcode = append(byOpcode, nil) // opcode 0 is invalid
	}
	ins.Opcode = Opcode(len(byOpcode))
	byOpcode = append(byOpcode, ins)
	byMnemonic[mnemonic] = ins
	return ins
}

// Arithmetic and comparison mnemonic families, declared in the order the
// specification's table lists them.
var (
	LoadC  = map[numeric.Type]*Instruction{}
	Cast   = map[[2]numeric.Type]*Instruction{}
	Add    = map[numeric.Type]*Instruction{}
	Sub    = map[numeric.Type]*Instruction{}
	Mul    = map[numeric.Type]*Instruction{}
	Div    = map[numeric.Type]*Instruction{}
	Mod    = map[numeric.Type]*Instruction{}
	And    = map[numeric.Type]*Instruction{}
	Or     = map[numeric.Type]*Instruction{}
	Xor    = map[numeric.Type]*Instruction{}
	Eq     = map[numeric.Type]*Instruction{}
	Gt     = map[numeric.Type]*Instruction{}
	Ge     = map[numeric.Type]*Instruction{}
	Lt     = map[numeric.Type]*Instruction{}
	Le     = map[numeric.Type]*Instruction{}
)

var (
	Pop    *Instruction
	Alloc  *Instruction
	Loada  *Instruction
	Store  *Instruction
	Loadr  *Instruction
	Halt   *Instruction
	Jump   *Instruction
	Jumpz  *Instruction
	Call   *Instruction
	Enter  *Instruction
	Return *Instruction
	Not    *Instruction
)

func init() {
	for _, t := range numeric.All {
		LoadC[t] = register(fmt.Sprintf("loadc<%s>", t), ImmValue, t, numeric.Type{})
	}
	Pop = register("pop", ImmCount, numeric.Type{}, numeric.Type{})
	Alloc = register("alloc", ImmCount, numeric.Type{}, numeric.Type{})
	Loada = register("loada", ImmCount, numeric.Type{}, numeric.Type{})
	Store = register("store", ImmCount, numeric.Type{}, numeric.Type{})
	Loadr = register("loadr", ImmCount, numeric.Type{}, numeric.Type{})
	Halt = register("halt", ImmNone, numeric.Type{}, numeric.Type{})
	Jump = register("jump", ImmAddr, numeric.Type{}, numeric.Type{})
	Jumpz = register("jumpz", ImmAddr, numeric.Type{}, numeric.Type{})
	Call = register("call", ImmCount, numeric.Type{}, numeric.Type{})
	Enter = register("enter", ImmCount, numeric.Type{}, numeric.Type{})
	Return = register("return", ImmNone, numeric.Type{}, numeric.Type{})

	for _, a := range numeric.All {
		for _, b := range numeric.All {
			Cast[[2]numeric.Type{a, b}] = register(fmt.Sprintf("cast<%s↦%s>", a, b), ImmNone, a, b)
		}
	}
	for _, t := range numeric.All {
		Add[t] = register(fmt.Sprintf("add<%s>", t), ImmNone, t, numeric.Type{})
		Sub[t] = register(fmt.Sprintf("sub<%s>", t), ImmNone, t, numeric.Type{})
		Mul[t] = register(fmt.Sprintf("mul<%s>", t), ImmNone, t, numeric.Type{})
		Div[t] = register(fmt.Sprintf("div<%s>", t), ImmNone, t, numeric.Type{})
		Mod[t] = register(fmt.Sprintf("mod<%s>", t), ImmNone, t, numeric.Type{})
	}
	for _, t := range []numeric.Type{numeric.Uint8, numeric.Uint16, numeric.Uint32, numeric.Uint64,
		numeric.Sint8, numeric.Sint16, numeric.Sint32, numeric.Sint64} {
		And[t] = register(fmt.Sprintf("and<%s>", t), ImmNone, t, numeric.Type{})
		Or[t] = register(fmt.Sprintf("or<%s>", t), ImmNone, t, numeric.Type{})
		Xor[t] = register(fmt.Sprintf("xor<%s>", t), ImmNone, t, numeric.Type{})
	}
	for _, t := range numeric.All {
		Eq[t] = register(fmt.Sprintf("eq<%s>", t), ImmNone, t, numeric.Type{})
		Gt[t] = register(fmt.Sprintf("gt<%s>", t), ImmNone, t, numeric.Type{})
		Ge[t] = register(fmt.Sprintf("ge<%s>", t), ImmNone, t, numeric.Type{})
		Lt[t] = register(fmt.Sprintf("lt<%s>", t), ImmNone, t, numeric.Type{})
		Le[t] = register(fmt.Sprintf("le<%s>", t), ImmNone, t, numeric.Type{})
	}
	Not = register("not", ImmNone, numeric.Type{}, numeric.Type{})
}

// Lookup returns the Instruction with the given mnemonic, for use by the
// assembler's parser.
func Lookup(mnemonic string) (*Instruction, bool) {
	ins, ok := byMnemonic[mnemonic]
	return ins, ok
}

// ByOpcode returns the Instruction assigned to op, or (nil, false) if op is
// 0 or exceeds the declared table — a VM segfault condition.
func ByOpcode(op Opcode) (*Instruction, bool) {
	if int(op) <= 0 || int(op) >= len(byOpcode) {
		return nil, false
	}
	return byOpcode[op], true
}

// IsJump reports whether ins's immediate, once fixed up, denotes a program
// address that a disassembler should render symbolically (jump, jumpz).
func IsJump(ins *Instruction) bool {
	return ins == Jump || ins == Jumpz
}
