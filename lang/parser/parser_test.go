package parser_test

import (
	"testing"

	"github.com/pschiffmann/minic/lang/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinimalProgram(t *testing.T) {
	prog, err := parser.Parse("test.c", `int main() { return 0; }`, parser.DefaultPointerSize)
	require.NoError(t, err)
	require.Len(t, prog.Functions, 1)
	assert.Equal(t, "main", prog.Functions[0].Name())
}

func TestParseGlobalVariableWithInitializer(t *testing.T) {
	prog, err := parser.Parse("test.c", `
		int counter = 42;
		int main() { return counter; }
	`, parser.DefaultPointerSize)
	require.NoError(t, err)
	require.Len(t, prog.Globals, 1)
	assert.Equal(t, "counter", prog.Globals[0].Name())
	assert.NotNil(t, prog.Globals[0].Init)
}

func TestParseGotoForwardReference(t *testing.T) {
	_, err := parser.Parse("test.c", `
		int main() {
			goto done;
			return 1;
		done:
			return 0;
		}
	`, parser.DefaultPointerSize)
	require.NoError(t, err)
}

func TestParseGotoUndefinedTargetFails(t *testing.T) {
	_, err := parser.Parse("test.c", `
		int main() {
			goto nowhere;
			return 0;
		}
	`, parser.DefaultPointerSize)
	assert.Error(t, err)
}

func TestParseDuplicateLabelFails(t *testing.T) {
	_, err := parser.Parse("test.c", `
		void f() {
		a:
		a:
			;
		}
		int main() { return 0; }
	`, parser.DefaultPointerSize)
	assert.Error(t, err)
}

func TestParseMissingMainFails(t *testing.T) {
	_, err := parser.Parse("test.c", `int notMain() { return 0; }`, parser.DefaultPointerSize)
	assert.Error(t, err)
}

func TestParseMainWrongReturnTypeFails(t *testing.T) {
	_, err := parser.Parse("test.c", `void main() { return; }`, parser.DefaultPointerSize)
	assert.Error(t, err)
}

func TestParseMainWithParametersFails(t *testing.T) {
	_, err := parser.Parse("test.c", `int main(int argc) { return 0; }`, parser.DefaultPointerSize)
	assert.Error(t, err)
}

func TestParseCaseOutsideSwitchFails(t *testing.T) {
	_, err := parser.Parse("test.c", `
		int main() {
		case 1:
			return 0;
		}
	`, parser.DefaultPointerSize)
	assert.Error(t, err)
}

func TestParseFunctionWithParameters(t *testing.T) {
	prog, err := parser.Parse("test.c", `
		int add(int a, int b) { return a + b; }
		int main() { return add(1, 2); }
	`, parser.DefaultPointerSize)
	require.NoError(t, err)
	require.Len(t, prog.Functions, 2)
	assert.Len(t, prog.Functions[0].Parameters(), 2)
}

func TestParseReservedStructIsRejected(t *testing.T) {
	_, err := parser.Parse("test.c", `
		struct Point { int x; int y; };
		int main() { return 0; }
	`, parser.DefaultPointerSize)
	assert.Error(t, err)
}
