package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pschiffmann/minic/internal/config"
	"github.com/pschiffmann/minic/lang/parser"
)

func TestGlobalSymbolsSortedByName(t *testing.T) {
	limits, err := config.Load()
	require.NoError(t, err)

	src := `
int zebra;
int apple = 1;
int add(int a, int b) { return a + b; }
int main() { return 0; }
`
	prog, err := parser.Parse("test.c", src, limits.PointerSize)
	require.NoError(t, err)

	syms := globalSymbols(prog)
	names := make([]string, len(syms))
	for i, s := range syms {
		names[i] = s.name
	}
	assert.Equal(t, []string{"add", "apple", "main", "zebra"}, names)
}

func TestFuncSignatureListsParameterTypes(t *testing.T) {
	limits, err := config.Load()
	require.NoError(t, err)

	src := `
int add(int a, int b) { return a + b; }
int main() { return 0; }
`
	prog, err := parser.Parse("test.c", src, limits.PointerSize)
	require.NoError(t, err)

	for _, f := range prog.Functions {
		if f.Name() == "add" {
			assert.Equal(t, "(int, int) int", funcSignature(f))
			return
		}
	}
	t.Fatal("function add not found")
}
