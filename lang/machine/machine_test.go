package machine_test

import (
	"testing"

	"github.com/pschiffmann/minic/lang/compiler"
	"github.com/pschiffmann/minic/lang/machine"
	"github.com/pschiffmann/minic/lang/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// build is a tiny test-only assembler over *compiler.Builder, encoding a
// fixed instruction sequence with already-concrete immediates (no fixup
// pass needed since these fixtures never reference an AST node).
func build(t *testing.T, steps ...func(*compiler.Builder)) []byte {
	t.Helper()
	b := compiler.NewBuilder()
	for _, s := range steps {
		s(b)
	}
	require.NoError(t, b.Fixup())
	prog, err := b.Encode()
	require.NoError(t, err)
	return prog
}

func emit(ins *compiler.Instruction, imm uint64) func(*compiler.Builder) {
	return func(b *compiler.Builder) { b.Emit(ins, compiler.Concrete(imm)) }
}

func TestArithmeticPushPushAdd(t *testing.T) {
	// loadc<uint8> 2; loadc<uint8> 4; add<uint8>
	prog := build(t,
		emit(compiler.LoadC[numeric.Uint8], 2),
		emit(compiler.LoadC[numeric.Uint8], 4),
		emit(compiler.Add[numeric.Uint8], 0),
	)
	m, err := machine.New(prog, machine.DefaultConfig)
	require.NoError(t, err)

	err = m.Run()
	var segfault *machine.SegfaultError
	require.ErrorAs(t, err, &segfault) // falls off the end of the program

	top, err := m.Memory().Read(machine.DefaultConfig.MemoryBytes-1, numeric.Uint8)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), top.Bits)
}

func TestMinimalProgramHalts(t *testing.T) {
	// A hand-assembled equivalent of `int main() { return 0; }`'s bootstrap:
	// push the (fixed, known) exit status and halt directly, bypassing
	// call/return frame discipline (covered separately below).
	prog := build(t,
		emit(compiler.LoadC[numeric.Uint32], 0),
		emit(compiler.Halt, 0),
	)
	m, err := machine.New(prog, machine.DefaultConfig)
	require.NoError(t, err)

	err = m.Run()
	var haltErr *machine.HaltError
	require.ErrorAs(t, err, &haltErr)
	assert.Equal(t, uint32(0), haltErr.Status)
}

func TestJumpzTaken(t *testing.T) {
	prog := build(t,
		emit(compiler.LoadC[numeric.Uint8], 0),
		emit(compiler.Jumpz, 9),
	)
	m, err := machine.New(prog, machine.DefaultConfig)
	require.NoError(t, err)
	err = m.Run()
	var segfault *machine.SegfaultError
	require.ErrorAs(t, err, &segfault)
	assert.Equal(t, 9, segfault.Address) // pc jumped to 9 then faulted fetching there
}

func TestJumpzNotTaken(t *testing.T) {
	prog := build(t,
		emit(compiler.LoadC[numeric.Uint8], 22),
		emit(compiler.Jumpz, 9),
		emit(compiler.LoadC[numeric.Uint32], 0), // pc lands here: 3 bytes after jumpz's start
		emit(compiler.Halt, 0),
	)
	m, err := machine.New(prog, machine.DefaultConfig)
	require.NoError(t, err)
	err = m.Run()
	var haltErr *machine.HaltError
	require.ErrorAs(t, err, &haltErr)
	assert.Equal(t, uint32(0), haltErr.Status)
}

func TestCallReturnFrameDiscipline(t *testing.T) {
	// Lay out: [0] loadc<uint16> <target addr of callee>; call offset=0
	//          [target] loadc<uint32> 7; halt
	// The callee's address is resolved through the builder's "callee"
	// label and Fixup, without an AST node.
	b := compiler.NewBuilder()
	b.Emit(compiler.LoadC[numeric.Uint16], compiler.Pending("callee"))
	b.Emit(compiler.Call, compiler.Concrete(0))
	calleeAddr := b.Addr()
	b.Label("callee")
	b.Emit(compiler.LoadC[numeric.Uint32], compiler.Concrete(7))
	b.Emit(compiler.Halt, compiler.Immediate{})
	require.NoError(t, b.Fixup())
	prog, err := b.Encode()
	require.NoError(t, err)

	m, err := machine.New(prog, machine.DefaultConfig)
	require.NoError(t, err)
	err = m.Run()
	var haltErr *machine.HaltError
	require.ErrorAs(t, err, &haltErr)
	assert.Equal(t, uint32(7), haltErr.Status)
	_ = calleeAddr
}

func TestReturnResumesCallerAfterCall(t *testing.T) {
	// caller: call callee; loadc<uint32> 42; halt
	// callee: return (no value)
	b := compiler.NewBuilder()
	b.Emit(compiler.LoadC[numeric.Uint16], compiler.Pending("callee"))
	b.Emit(compiler.Call, compiler.Concrete(0))
	b.Emit(compiler.LoadC[numeric.Uint32], compiler.Concrete(42))
	b.Emit(compiler.Halt, compiler.Immediate{})
	b.Label("callee")
	b.Emit(compiler.Return, compiler.Immediate{})
	require.NoError(t, b.Fixup())
	prog, err := b.Encode()
	require.NoError(t, err)

	m, err := machine.New(prog, machine.DefaultConfig)
	require.NoError(t, err)
	err = m.Run()
	var haltErr *machine.HaltError
	require.ErrorAs(t, err, &haltErr)
	assert.Equal(t, uint32(42), haltErr.Status)
}

func TestCastFloatToIntTruncates(t *testing.T) {
	prog := build(t,
		emit(compiler.LoadC[numeric.Fp32], numeric.FromFloat64(numeric.Fp32, 52.4).Bits),
		emit(compiler.Cast[[2]numeric.Type{numeric.Fp32, numeric.Sint32}], 0),
	)
	m, err := machine.New(prog, machine.DefaultConfig)
	require.NoError(t, err)
	err = m.Run()
	var segfault *machine.SegfaultError
	require.ErrorAs(t, err, &segfault) // falls off the end after the cast

	top, err := m.Memory().Read(machine.DefaultConfig.MemoryBytes-4, numeric.Sint32)
	require.NoError(t, err)
	assert.Equal(t, int64(52), top.Int64())
}

func TestPopExceedingStackDepthSegfaults(t *testing.T) {
	// halt internally pops a uint32 status; with nothing pushed, the
	// stack's current depth (0) is smaller than uint32's size, so the read
	// underlying the pop runs outside the memory buffer.
	prog := build(t, emit(compiler.Halt, 0))
	cfg := machine.Config{MaxProgramBytes: machine.DefaultConfig.MaxProgramBytes, MemoryBytes: 2}
	m, err := machine.New(prog, cfg)
	require.NoError(t, err)
	err = m.Run()
	var segfault *machine.SegfaultError
	require.ErrorAs(t, err, &segfault)
}

func TestProgramSizeLimitRejectsOversizedImage(t *testing.T) {
	prog := make([]byte, 1<<16+1)
	_, err := machine.New(prog, machine.DefaultConfig)
	require.Error(t, err)
}

func TestProgramSizeLimitAcceptsExactly64K(t *testing.T) {
	prog := make([]byte, 1<<16)
	_, err := machine.New(prog, machine.DefaultConfig)
	require.NoError(t, err)
}

func TestDoubleNotNormalizesToBoolean(t *testing.T) {
	for _, in := range []uint64{0, 1, 5} {
		prog := build(t,
			emit(compiler.LoadC[numeric.Uint8], in),
			emit(compiler.Not, 0),
			emit(compiler.Not, 0),
		)
		m, err := machine.New(prog, machine.DefaultConfig)
		require.NoError(t, err)
		err = m.Run()
		var segfault *machine.SegfaultError
		require.ErrorAs(t, err, &segfault)

		top, err := m.Memory().Read(machine.DefaultConfig.MemoryBytes-1, numeric.Uint8)
		require.NoError(t, err)
		want := uint64(0)
		if in != 0 {
			want = 1
		}
		assert.Equal(t, want, top.Bits)
	}
}

func TestCastIdentity(t *testing.T) {
	for _, typ := range numeric.All {
		prog := build(t,
			emit(compiler.LoadC[typ], numeric.FromInt64(typ, 3).Bits),
			emit(compiler.Cast[[2]numeric.Type{typ, typ}], 0),
		)
		m, err := machine.New(prog, machine.DefaultConfig)
		require.NoError(t, err)
		err = m.Run()
		var segfault *machine.SegfaultError
		require.ErrorAs(t, err, &segfault)

		top, err := m.Memory().Read(machine.DefaultConfig.MemoryBytes-typ.SizeInBytes(), typ)
		require.NoError(t, err)
		assert.Equal(t, numeric.FromInt64(typ, 3).Bits, top.Bits)
	}
}
