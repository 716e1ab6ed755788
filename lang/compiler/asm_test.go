package compiler_test

import (
	"testing"

	"github.com/pschiffmann/minic/lang/compiler"
	"github.com/pschiffmann/minic/lang/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleMatchesHandBuiltEncoding(t *testing.T) {
	src := `
		loadc<sint32> 2   # push 2
		loadc<sint32> 4
		add<sint32>
		jumpz 4
		halt
	`
	got, err := compiler.Assemble([]byte(src))
	require.NoError(t, err)

	b := compiler.NewBuilder()
	b.Emit(compiler.LoadC[numeric.Sint32], compiler.Concrete(numeric.FromInt64(numeric.Sint32, 2).Bits))
	b.Emit(compiler.LoadC[numeric.Sint32], compiler.Concrete(numeric.FromInt64(numeric.Sint32, 4).Bits))
	b.Emit(compiler.Add[numeric.Sint32], compiler.Immediate{})
	b.Emit(compiler.Jumpz, compiler.Pending("halt"))
	b.Label("halt")
	b.Emit(compiler.Halt, compiler.Immediate{})
	require.NoError(t, b.Fixup())
	want, err := b.Encode()
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestAssembleRejectsUnknownMnemonic(t *testing.T) {
	_, err := compiler.Assemble([]byte("bogus\n"))
	assert.Error(t, err)
}

func TestAssembleRejectsMissingArgument(t *testing.T) {
	_, err := compiler.Assemble([]byte("loadc<sint32>\n"))
	assert.Error(t, err)
}

func TestAssembleRejectsOutOfRangeJumpIndex(t *testing.T) {
	_, err := compiler.Assemble([]byte("jump 5\n"))
	assert.Error(t, err)
}

func TestDisassembleRoundTripsAssemble(t *testing.T) {
	src := `
		loadc<uint8> 2
		loadc<uint8> 4
		add<uint8>
		jumpz 0
		halt
	`
	prog, err := compiler.Assemble([]byte(src))
	require.NoError(t, err)

	text, err := compiler.Disassemble(prog)
	require.NoError(t, err)

	again, err := compiler.Assemble(text)
	require.NoError(t, err)
	assert.Equal(t, prog, again)
}

func TestDisassembleRendersTypedImmediates(t *testing.T) {
	prog, err := compiler.Assemble([]byte("loadc<fp32> 3.5\nhalt\n"))
	require.NoError(t, err)

	text, err := compiler.Disassemble(prog)
	require.NoError(t, err)
	assert.Contains(t, string(text), "loadc<fp32> 3.5")
}

func TestDisassembleRejectsInvalidOpcode(t *testing.T) {
	_, err := compiler.Disassemble([]byte{0xff})
	assert.Error(t, err)
}
