// Package machine implements the minic virtual machine: a byte-addressable
// memory model, the four control registers, and the fetch-decode-dispatch
// loop that executes a compiler-produced bytecode image to completion or
// fault.
package machine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pschiffmann/minic/lang/compiler"
	"github.com/pschiffmann/minic/lang/membuf"
	"github.com/pschiffmann/minic/lang/numeric"
)

// addressWidth mirrors compiler.addressWidth: every address the VM pushes
// or reads from a saved frame slot is a 2-byte uint16.
const addressWidth = 2

// Config bounds the VM's two buffers, per §6's "construction outside these
// limits raises an argument error". Library callers construct this
// directly; cmd/minic instead loads internal/config.Limits from the
// environment and translates it into a Config.
type Config struct {
	// MaxProgramBytes is the largest accepted program image, default 2^16.
	MaxProgramBytes int
	// MemoryBytes is the fixed size of the VM's memory buffer, default 2^16.
	MemoryBytes int
}

// DefaultConfig matches the specification's stated limits.
var DefaultConfig = Config{MaxProgramBytes: 1 << 16, MemoryBytes: 1 << 16}

// HaltError signals normal termination: the program executed a halt
// instruction and popped a uint32 exit status.
type HaltError struct {
	Status uint32
}

func (e *HaltError) Error() string { return fmt.Sprintf("machine: halted with status %d", e.Status) }

// SegfaultError signals a fatal runtime fault: an out-of-range memory
// access, an invalid opcode, or an invalid immediate.
type SegfaultError struct {
	Address int
	Reason  string
}

func (e *SegfaultError) Error() string {
	return fmt.Sprintf("machine: segfault at address %d: %s", e.Address, e.Reason)
}

// StepRecorder observes every instruction the VM dispatches, before its
// effects are applied. The default Machine uses a no-op recorder; an
// embedder wanting the sketched-but-unimplemented rollback feature from
// §9's open questions can plug in its own.
type StepRecorder interface {
	Step(pc int, ins *compiler.Instruction)
}

type noopRecorder struct{}

func (noopRecorder) Step(int, *compiler.Instruction) {}

// Machine holds the state that lives for a single Run call: the program and
// memory buffers and the four control registers.
type Machine struct {
	program *membuf.Buffer
	memory  *membuf.Buffer

	pc, sp, fp, ep int

	recorder StepRecorder
}

// New constructs a Machine ready to execute program, per §4.5.1's initial
// register values. It returns an argument error if program exceeds
// cfg.MaxProgramBytes.
func New(program []byte, cfg Config) (*Machine, error) {
	if len(program) > cfg.MaxProgramBytes {
		return nil, fmt.Errorf("machine: program size %d exceeds maximum %d", len(program), cfg.MaxProgramBytes)
	}
	progBuf := membuf.New(len(program))
	if err := progBuf.WriteBytes(0, program); err != nil {
		return nil, fmt.Errorf("machine: loading program: %w", err)
	}
	memBuf := membuf.New(cfg.MemoryBytes)
	m := &Machine{
		program:  progBuf,
		memory:   memBuf,
		pc:       0,
		sp:       cfg.MemoryBytes,
		fp:       cfg.MemoryBytes,
		ep:       cfg.MemoryBytes,
		recorder: noopRecorder{},
	}
	return m, nil
}

// SetStepRecorder installs r as the recorder invoked before each dispatched
// instruction. Passing nil restores the no-op recorder.
func (m *Machine) SetStepRecorder(r StepRecorder) {
	if r == nil {
		r = noopRecorder{}
	}
	m.recorder = r
}

// Memory exposes the VM's memory buffer directly, for an embedder that
// wants to read globals or the stack after a run.
func (m *Machine) Memory() *membuf.Buffer { return m.memory }

// Run executes instructions until a halt or a fault, per §4.5.3's
// fetch-decode-dispatch loop. It returns a *HaltError on normal
// termination and a *SegfaultError on fault (a memory range error is
// reported as a SegfaultError whose Reason is that error's text); both are
// ordinary errors, never panics.
func (m *Machine) Run() error {
	for {
		op, err := m.fetchOpcode()
		if err != nil {
			return err
		}
		ins, ok := compiler.ByOpcode(op)
		if !ok {
			return &SegfaultError{Address: m.pc - 1, Reason: fmt.Sprintf("undefined opcode %d", op)}
		}

		imm, err := m.fetchImmediate(ins)
		if err != nil {
			return err
		}

		m.recorder.Step(m.pc, ins)

		if err := m.dispatch(ins, imm); err != nil {
			if halt := (*HaltError)(nil); errors.As(err, &halt) {
				return halt
			}
			return err
		}
	}
}

func (m *Machine) fetchOpcode() (compiler.Opcode, error) {
	b, err := m.program.ReadByte(m.pc)
	if err != nil {
		return 0, &SegfaultError{Address: m.pc, Reason: "program counter ran past the program buffer"}
	}
	m.pc++
	return compiler.Opcode(b), nil
}

// fetchImmediate decodes ins's immediate argument (if any) from the program
// buffer at the current program counter and advances past it.
func (m *Machine) fetchImmediate(ins *compiler.Instruction) (uint64, error) {
	switch ins.Kind {
	case compiler.ImmNone:
		return 0, nil
	case compiler.ImmCount, compiler.ImmAddr:
		n, err := m.program.Read(m.pc, numeric.Uint16)
		if err != nil {
			return 0, &SegfaultError{Address: m.pc, Reason: "immediate argument ran past the program buffer"}
		}
		m.pc += 2
		return n.Bits, nil
	case compiler.ImmValue:
		n, err := m.program.Read(m.pc, ins.NumType)
		if err != nil {
			return 0, &SegfaultError{Address: m.pc, Reason: "immediate argument ran past the program buffer"}
		}
		m.pc += ins.NumType.SizeInBytes()
		return n.Bits, nil
	default:
		return 0, &SegfaultError{Address: m.pc, Reason: "instruction declares an unrecognized immediate kind"}
	}
}

// mnemonicFamily strips a mnemonic's `<...>` type payload, leaving the
// family name the dispatch switch matches on (e.g. "loadc<sint32>" ->
// "loadc"; "halt" is unaffected, having no payload).
func mnemonicFamily(mnemonic string) string {
	if i := strings.IndexByte(mnemonic, '<'); i >= 0 {
		return mnemonic[:i]
	}
	return mnemonic
}

func (m *Machine) dispatch(ins *compiler.Instruction, imm uint64) error {
	switch mnemonicFamily(ins.Mnemonic) {
	case "loadc":
		return m.pushStack(ins.NumType, numeric.Number{Type: ins.NumType, Bits: imm})
	case "pop":
		m.sp += int(imm)
		return nil
	case "alloc":
		m.sp -= int(imm)
		return nil
	case "loada":
		return m.execLoada(int(imm))
	case "store":
		return m.execStore(int(imm))
	case "loadr":
		addr := int(uint16(m.fp) - uint16(imm))
		return m.pushAddr(addr)
	case "halt":
		n, err := m.popStack(numeric.Uint32)
		if err != nil {
			return err
		}
		return &HaltError{Status: uint32(n.Bits)}
	case "jump":
		m.pc = int(imm)
		return nil
	case "jumpz":
		b, err := m.popStack(numeric.Uint8)
		if err != nil {
			return err
		}
		if b.Bits == 0 {
			m.pc = int(imm)
		}
		return nil
	case "call":
		return m.execCall(int(imm))
	case "enter":
		m.ep = m.fp - int(imm)
		return nil
	case "return":
		return m.execReturn()
	case "cast":
		return m.execCast(ins.NumType, ins.NumType2)
	case "add", "sub", "mul", "div", "mod":
		return m.execArith(mnemonicFamily(ins.Mnemonic), ins.NumType)
	case "and", "or", "xor":
		return m.execBitwise(mnemonicFamily(ins.Mnemonic), ins.NumType)
	case "eq", "gt", "ge", "lt", "le":
		return m.execCompare(mnemonicFamily(ins.Mnemonic), ins.NumType)
	case "not":
		return m.execNot()
	default:
		return &SegfaultError{Address: m.pc, Reason: fmt.Sprintf("unrecognized instruction family %q", ins.Mnemonic)}
	}
}

// popStack implements §4.5.2: reads type.size bytes at stackPointer, then
// advances stackPointer upward by type.size.
func (m *Machine) popStack(t numeric.Type) (numeric.Number, error) {
	n, err := m.memory.Read(m.sp, t)
	if err != nil {
		return numeric.Number{}, &SegfaultError{Address: m.sp, Reason: err.Error()}
	}
	m.sp += t.SizeInBytes()
	return n, nil
}

// pushStack implements §4.5.2: decrements stackPointer by type.size, then
// writes the value at the new position.
func (m *Machine) pushStack(t numeric.Type, v numeric.Number) error {
	addr := m.sp - t.SizeInBytes()
	if err := m.memory.Write(addr, t, v); err != nil {
		return &SegfaultError{Address: addr, Reason: err.Error()}
	}
	m.sp = addr
	return nil
}

func (m *Machine) popAddr() (int, error) {
	n, err := m.popStack(numeric.Uint16)
	if err != nil {
		return 0, err
	}
	return int(n.Bits), nil
}

func (m *Machine) pushAddr(addr int) error {
	return m.pushStack(numeric.Uint16, numeric.Number{Type: numeric.Uint16, Bits: uint64(uint16(addr))})
}

// popBytes pops n raw bytes off the stack without any numeric
// interpretation, for loada/store's arbitrary-width memory blocks.
func (m *Machine) popBytes(n int) ([]byte, error) {
	b, err := m.memory.ReadBytes(m.sp, n)
	if err != nil {
		return nil, &SegfaultError{Address: m.sp, Reason: err.Error()}
	}
	m.sp += n
	return b, nil
}

func (m *Machine) pushBytes(data []byte) error {
	addr := m.sp - len(data)
	if err := m.memory.WriteBytes(addr, data); err != nil {
		return &SegfaultError{Address: addr, Reason: err.Error()}
	}
	m.sp = addr
	return nil
}

// execLoada pops an address, copies n bytes from it to the top of the
// stack.
func (m *Machine) execLoada(n int) error {
	addr, err := m.popAddr()
	if err != nil {
		return err
	}
	data, err := m.memory.ReadBytes(addr, n)
	if err != nil {
		return &SegfaultError{Address: addr, Reason: err.Error()}
	}
	return m.pushBytes(data)
}

// execStore pops an address, pops n bytes off the stack, writes them there.
func (m *Machine) execStore(n int) error {
	addr, err := m.popAddr()
	if err != nil {
		return err
	}
	data, err := m.popBytes(n)
	if err != nil {
		return err
	}
	if err := m.memory.WriteBytes(addr, data); err != nil {
		return &SegfaultError{Address: addr, Reason: err.Error()}
	}
	return nil
}

// execCall implements §4.5.4's call: pop the jump target, save the four
// registers in push order (extremePointer, framePointer, stackPointer +
// offset, programCounter), then enter the callee. Saving in this order
// means the new frame's lowest slot (offset 0 from the new framePointer)
// holds programCounter, matching return's restore order.
func (m *Machine) execCall(offset int) error {
	target, err := m.popAddr()
	if err != nil {
		return err
	}
	// Capture the stack pointer as it stood right after popping the target
	// (i.e. pointing at the top of the pushed-arguments block), before this
	// call's own register saves push anything further -- offset lets the
	// restored stack pointer skip back over the arguments on return.
	restoreSP := m.sp + offset

	if err := m.pushAddr(m.ep); err != nil {
		return err
	}
	if err := m.pushAddr(m.fp); err != nil {
		return err
	}
	if err := m.pushAddr(restoreSP); err != nil {
		return err
	}
	if err := m.pushAddr(m.pc); err != nil {
		return err
	}
	m.pc = target
	m.fp = m.sp
	return nil
}

// execReturn implements §4.5.4's return: restore the four registers from
// the frame's saved slots at offsets 0,1,2,3 of addressWidth from the frame
// pointer, reading them all before any assignment since fp itself is one
// of the values being restored.
func (m *Machine) execReturn() error {
	savedPC, err := m.memory.Read(m.fp+0*addressWidth, numeric.Uint16)
	if err != nil {
		return &SegfaultError{Address: m.fp, Reason: err.Error()}
	}
	savedSP, err := m.memory.Read(m.fp+1*addressWidth, numeric.Uint16)
	if err != nil {
		return &SegfaultError{Address: m.fp + addressWidth, Reason: err.Error()}
	}
	savedFP, err := m.memory.Read(m.fp+2*addressWidth, numeric.Uint16)
	if err != nil {
		return &SegfaultError{Address: m.fp + 2*addressWidth, Reason: err.Error()}
	}
	savedEP, err := m.memory.Read(m.fp+3*addressWidth, numeric.Uint16)
	if err != nil {
		return &SegfaultError{Address: m.fp + 3*addressWidth, Reason: err.Error()}
	}
	// The slots are 2 bytes wide, so with a memory of exactly 2^16 bytes
	// the initial sp/fp/ep value (the memory size) is saved as 0; decode
	// it back to the memory size here.
	decode := func(n numeric.Number) int {
		if n.Bits == 0 && m.memory.Len() == 1<<16 {
			return m.memory.Len()
		}
		return int(n.Bits)
	}
	m.pc = int(savedPC.Bits)
	m.sp = decode(savedSP)
	m.fp = decode(savedFP)
	m.ep = decode(savedEP)
	return nil
}

func (m *Machine) execCast(from, to numeric.Type) error {
	n, err := m.popStack(from)
	if err != nil {
		return err
	}
	return m.pushStack(to, numeric.Cast(n, to))
}

func (m *Machine) execNot() error {
	n, err := m.popStack(numeric.Uint8)
	if err != nil {
		return err
	}
	var result uint64
	if n.Bits == 0 {
		result = 1
	}
	return m.pushStack(numeric.Uint8, numeric.Number{Type: numeric.Uint8, Bits: result})
}
