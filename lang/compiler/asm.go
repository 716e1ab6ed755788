package compiler

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pschiffmann/minic/lang/membuf"
	"github.com/pschiffmann/minic/lang/numeric"
)

// This file implements a human-readable/writable textual form of a
// compiled program. There is no function/locals/constants section
// structure to speak of -- Generate already lowers a whole Program
// straight into one flat byte image, so the assembly format is just a
// flat list of instructions, one per line:
//
//	loadc<sint32> 5
//	loadc<sint32> 2
//	add<sint32>
//	jumpz 4                # jump/jumpz arguments are instruction indices
//	halt
//
// This exists to let VM unit tests hand-author bytecode without going
// through the front end.

// Assemble parses src into an encoded bytecode image. jump/jumpz
// immediates are written as the 0-based index of the target instruction
// in this same listing, not a byte address; Assemble translates them.
// Every other typed immediate is written as a plain decimal (or, for
// float operand types, decimal/scientific) literal.
func Assemble(src []byte) ([]byte, error) {
	type line struct {
		ins *Instruction
		arg string
	}
	var lines []line

	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		fields := strings.Fields(stripComment(sc.Text()))
		if len(fields) == 0 {
			continue
		}
		ins, ok := Lookup(fields[0])
		if !ok {
			return nil, fmt.Errorf("compiler: unknown mnemonic %q", fields[0])
		}
		switch {
		case ins.Kind == ImmNone && len(fields) != 1:
			return nil, fmt.Errorf("compiler: %s takes no argument", fields[0])
		case ins.Kind != ImmNone && len(fields) != 2:
			return nil, fmt.Errorf("compiler: %s requires exactly one argument", fields[0])
		}
		arg := ""
		if len(fields) == 2 {
			arg = fields[1]
		}
		lines = append(lines, line{ins, arg})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	indexToAddr := make([]int, len(lines))
	addr := 0
	for i, l := range lines {
		indexToAddr[i] = addr
		addr += l.ins.EncodedSize()
	}

	b := NewBuilder()
	for i, l := range lines {
		var imm Immediate
		switch l.ins.Kind {
		case ImmNone:
			imm = Immediate{}
		case ImmCount:
			n, err := strconv.ParseUint(l.arg, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("compiler: instruction %d (%s): invalid count %q: %w", i, l.ins.Mnemonic, l.arg, err)
			}
			imm = Concrete(n)
		case ImmAddr:
			idx, err := strconv.Atoi(l.arg)
			if err != nil || idx < 0 || idx >= len(indexToAddr) {
				return nil, fmt.Errorf("compiler: instruction %d (%s): invalid jump target index %q", i, l.ins.Mnemonic, l.arg)
			}
			imm = Concrete(uint64(indexToAddr[idx]))
		case ImmValue:
			n, err := parseImmValue(l.ins.NumType, l.arg)
			if err != nil {
				return nil, fmt.Errorf("compiler: instruction %d (%s): %w", i, l.ins.Mnemonic, err)
			}
			imm = Concrete(n.Bits)
		}
		b.Emit(l.ins, imm)
	}
	if err := b.Fixup(); err != nil {
		return nil, err
	}
	return b.Encode()
}

// Disassemble renders an encoded bytecode image back into Assemble's
// textual format, with a `# NNN` instruction-index comment trailing each
// line for readability.
func Disassemble(prog []byte) ([]byte, error) {
	type insn struct {
		ins *Instruction
		imm uint64
	}
	var insns []insn
	addrToIndex := map[int]int{}

	progBuf := membuf.New(len(prog))
	if err := progBuf.WriteBytes(0, prog); err != nil {
		return nil, err
	}
	pos := 0
	for pos < len(prog) {
		addrToIndex[pos] = len(insns)
		b, err := progBuf.ReadByte(pos)
		if err != nil {
			return nil, err
		}
		ins, ok := ByOpcode(Opcode(b))
		if !ok {
			return nil, fmt.Errorf("compiler: invalid opcode %d at byte %d", b, pos)
		}
		pos++

		var imm uint64
		switch ins.Kind {
		case ImmNone:
		case ImmCount, ImmAddr:
			n, err := progBuf.Read(pos, numeric.Uint16)
			if err != nil {
				return nil, fmt.Errorf("compiler: truncated immediate for %s at byte %d", ins.Mnemonic, pos)
			}
			imm = n.Bits
			pos += 2
		case ImmValue:
			n, err := progBuf.Read(pos, ins.NumType)
			if err != nil {
				return nil, fmt.Errorf("compiler: truncated immediate for %s at byte %d", ins.Mnemonic, pos)
			}
			imm = n.Bits
			pos += ins.NumType.SizeInBytes()
		}
		insns = append(insns, insn{ins, imm})
	}

	var buf bytes.Buffer
	for i, ins := range insns {
		buf.WriteString(ins.ins.Mnemonic)
		switch ins.ins.Kind {
		case ImmAddr:
			idx, ok := addrToIndex[int(ins.imm)]
			if !ok {
				return nil, fmt.Errorf("compiler: jump target %d is not an instruction boundary", ins.imm)
			}
			fmt.Fprintf(&buf, " %d", idx)
		case ImmCount:
			fmt.Fprintf(&buf, " %d", ins.imm)
		case ImmValue:
			n := numeric.Number{Type: ins.ins.NumType, Bits: ins.imm}
			fmt.Fprintf(&buf, " %s", formatImmValue(n))
		}
		fmt.Fprintf(&buf, "\t# %03d\n", i)
	}
	return buf.Bytes(), nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

func parseImmValue(t numeric.Type, tok string) (numeric.Number, error) {
	switch {
	case t.IsFloat():
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return numeric.Number{}, fmt.Errorf("invalid float literal %q: %w", tok, err)
		}
		return numeric.FromFloat64(t, f), nil
	case t.IsSigned():
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return numeric.Number{}, fmt.Errorf("invalid integer literal %q: %w", tok, err)
		}
		return numeric.FromInt64(t, v), nil
	default:
		v, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return numeric.Number{}, fmt.Errorf("invalid integer literal %q: %w", tok, err)
		}
		return numeric.FromUint64(t, v), nil
	}
}

func formatImmValue(n numeric.Number) string {
	switch {
	case n.Type.IsFloat():
		return strconv.FormatFloat(n.Float64(), 'g', -1, 64)
	case n.Type.IsSigned():
		return strconv.FormatInt(n.Int64(), 10)
	default:
		return strconv.FormatUint(n.Uint64(), 10)
	}
}
