package compiler

import (
	"encoding/binary"
	"fmt"

	"github.com/pschiffmann/minic/lang/numeric"
)

// MaxProgramSize is the maximum encoded program size in bytes, per §6.
const MaxProgramSize = 1 << 16

// emitted is one instruction invocation awaiting address fixup and byte
// encoding.
type emitted struct {
	ins *Instruction
	imm Immediate
	pos int // byte offset this instruction will occupy, known at emit time
}

// Builder accumulates instruction invocations emitted by the code
// generator, tracks AST-node-to-address bindings for pending immediates,
// and performs the fixup + encoding passes described in §4.6.
type Builder struct {
	emitted []emitted
	addr    int
	labels  map[any]int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{labels: map[any]int{}}
}

// Addr returns the byte address the next Emit call will occupy.
func (b *Builder) Addr() int { return b.addr }

// Emit appends one instruction invocation and returns the address it was
// placed at.
func (b *Builder) Emit(ins *Instruction, imm Immediate) int {
	pos := b.addr
	b.emitted = append(b.emitted, emitted{ins: ins, imm: imm, pos: pos})
	b.addr += ins.EncodedSize()
	return pos
}

// Label records key's address as the Builder's current position, for later
// resolution of any Pending immediate referencing key (a jump target, a
// function entry point, a call target, a loop break/continue marker).
func (b *Builder) Label(key any) {
	b.labels[key] = b.addr
}

// LabelAt records address as key's resolved address directly, used when
// the target address is already known.
func (b *Builder) LabelAt(key any, address int) {
	b.labels[key] = address
}

// Fixup resolves every pending immediate against the recorded labels. It
// must run after every instruction for the whole program has been emitted.
func (b *Builder) Fixup() error {
	for i := range b.emitted {
		e := &b.emitted[i]
		if !e.imm.isPending {
			continue
		}
		addr, ok := b.labels[e.imm.pending]
		if !ok {
			return fmt.Errorf("compiler: unresolved address reference from instruction %s at byte %d", e.ins.Mnemonic, e.pos)
		}
		e.imm = Concrete(uint64(addr))
	}
	return nil
}

// Encode concatenates every emitted instruction into a contiguous
// big-endian byte image, per §6's bytecode format. Fixup must have already
// run; Encode returns an error if a pending immediate remains.
func (b *Builder) Encode() ([]byte, error) {
	buf := make([]byte, 0, b.addr)
	for _, e := range b.emitted {
		if e.imm.isPending {
			return nil, fmt.Errorf("compiler: instruction %s at byte %d was never fixed up", e.ins.Mnemonic, e.pos)
		}
		buf = append(buf, byte(e.ins.Opcode))
		switch e.ins.Kind {
		case ImmNone:
		case ImmCount, ImmAddr:
			var tmp [2]byte
			binary.BigEndian.PutUint16(tmp[:], uint16(e.imm.concrete))
			buf = append(buf, tmp[:]...)
		case ImmValue:
			n := numeric.Number{Type: e.ins.NumType, Bits: e.imm.concrete}
			switch e.ins.NumType.SizeInBytes() {
			case 1:
				buf = append(buf, byte(n.Bits))
			case 2:
				var tmp [2]byte
				binary.BigEndian.PutUint16(tmp[:], uint16(n.Bits))
				buf = append(buf, tmp[:]...)
			case 4:
				var tmp [4]byte
				binary.BigEndian.PutUint32(tmp[:], uint32(n.Bits))
				buf = append(buf, tmp[:]...)
			case 8:
				var tmp [8]byte
				binary.BigEndian.PutUint64(tmp[:], n.Bits)
				buf = append(buf, tmp[:]...)
			}
		}
	}
	if len(buf) > MaxProgramSize {
		return nil, fmt.Errorf("compiler: program size %d exceeds maximum %d", len(buf), MaxProgramSize)
	}
	return buf, nil
}
