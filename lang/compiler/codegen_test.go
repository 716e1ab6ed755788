package compiler_test

import (
	"testing"

	"github.com/pschiffmann/minic/lang/compiler"
	"github.com/pschiffmann/minic/lang/machine"
	"github.com/pschiffmann/minic/lang/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStatus parses, generates, and runs src end to end, returning main's
// exit status. Any compile-time or runtime error fails the test directly.
func runStatus(t *testing.T, src string) uint32 {
	t.Helper()
	prog, err := parser.Parse("test.c", src, parser.DefaultPointerSize)
	require.NoError(t, err)

	image, err := compiler.Generate(prog)
	require.NoError(t, err)

	m, err := machine.New(image, machine.DefaultConfig)
	require.NoError(t, err)

	err = m.Run()
	var haltErr *machine.HaltError
	require.ErrorAsf(t, err, &haltErr, "program did not halt cleanly: %v", err)
	return haltErr.Status
}

func TestGenerateMinimalProgramHalts(t *testing.T) {
	assert.EqualValues(t, 0, runStatus(t, `int main() { return 0; }`))
}

func TestGenerateReturnsArithmeticResult(t *testing.T) {
	assert.EqualValues(t, 5, runStatus(t, `int main() { return 2 + 3; }`))
}

func TestGenerateGlobalVariableWithInitializer(t *testing.T) {
	assert.EqualValues(t, 10, runStatus(t, `
		int x = 10;
		int main() { return x; }
	`))
}

func TestGenerateFunctionCallWithParameters(t *testing.T) {
	assert.EqualValues(t, 5, runStatus(t, `
		int add(int a, int b) { return a + b; }
		int main() { return add(2, 3); }
	`))
}

// Non-commutative, so a swapped argument binding changes the result: a
// regression here is a compiler bug that add(2, 3)'s commutativity above
// cannot catch.
func TestGenerateFunctionCallArgumentOrder(t *testing.T) {
	assert.EqualValues(t, 7, runStatus(t, `
		int sub(int a, int b) { return a - b; }
		int main() { return sub(10, 3); }
	`))
}

func TestGenerateFunctionCallWithThreeParameters(t *testing.T) {
	assert.EqualValues(t, 1, runStatus(t, `
		int combine(int a, int b, int c) { return a - b - c; }
		int main() { return combine(10, 6, 3); }
	`))
}

func TestGenerateLocalVariablesAndAssignment(t *testing.T) {
	assert.EqualValues(t, 7, runStatus(t, `
		int main() {
			int x;
			x = 3;
			x = x + 4;
			return x;
		}
	`))
}

func TestGenerateIfElse(t *testing.T) {
	assert.EqualValues(t, 1, runStatus(t, `
		int main() {
			int x = 5;
			if (x > 3) {
				return 1;
			} else {
				return 0;
			}
		}
	`))
	assert.EqualValues(t, 0, runStatus(t, `
		int main() {
			int x = 1;
			if (x > 3) {
				return 1;
			} else {
				return 0;
			}
		}
	`))
}

func TestGenerateWhileLoopAccumulates(t *testing.T) {
	assert.EqualValues(t, 15, runStatus(t, `
		int main() {
			int total = 0;
			int i = 1;
			while (i <= 5) {
				total = total + i;
				i = i + 1;
			}
			return total;
		}
	`))
}

func TestGenerateForLoopAccumulates(t *testing.T) {
	assert.EqualValues(t, 45, runStatus(t, `
		int main() {
			int total = 0;
			for (int i = 0; i < 10; i = i + 1) {
				total = total + i;
			}
			return total;
		}
	`))
}

func TestGenerateRecursiveCall(t *testing.T) {
	assert.EqualValues(t, 120, runStatus(t, `
		int fact(int n) {
			if (n <= 1) {
				return 1;
			}
			return n * fact(n - 1);
		}
		int main() { return fact(5); }
	`))
}

func TestGenerateLogicalOperatorsShortCircuit(t *testing.T) {
	assert.EqualValues(t, 1, runStatus(t, `
		int main() {
			int x = 1;
			int y = 0;
			if (x || (1 / y)) {
				return 1;
			}
			return 0;
		}
	`))
}

func TestGenerateBreakAndContinue(t *testing.T) {
	// i runs 1,2,3,4: i=1 adds (total=1), i=2 is even so `continue` skips
	// the add, i=3 adds (total=4), i=4 hits `break` before any add.
	assert.EqualValues(t, 4, runStatus(t, `
		int main() {
			int total = 0;
			int i = 0;
			while (i < 10) {
				i = i + 1;
				if (i == 4) {
					break;
				}
				if (i % 2 == 0) {
					continue;
				}
				total = total + i;
			}
			return total;
		}
	`))
}

func TestGenerateRejectsMissingMain(t *testing.T) {
	_, err := parser.Parse("test.c", `int notMain() { return 0; }`, parser.DefaultPointerSize)
	assert.Error(t, err)
}

func TestGenerateRejectsSwitchStatement(t *testing.T) {
	prog, err := parser.Parse("test.c", `
		int main() {
			switch (1) {
			case 1:
				return 1;
			}
			return 0;
		}
	`, parser.DefaultPointerSize)
	require.NoError(t, err)
	_, err = compiler.Generate(prog)
	assert.Error(t, err)
}
