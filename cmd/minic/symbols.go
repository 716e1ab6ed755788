package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"
	"golang.org/x/exp/slices"

	"github.com/pschiffmann/minic/internal/config"
	"github.com/pschiffmann/minic/lang/ast"
	"github.com/pschiffmann/minic/lang/parser"
)

// symbol is one entry in the sorted global-symbol dump printed by Symbols.
type symbol struct {
	name string
	kind string
	sig  string
}

// Symbols parses each file in args and prints its global variables and
// functions, sorted by name.
func (c *Cmd) Symbols(_ context.Context, stdio mainer.Stdio, args []string) error {
	limits, err := config.Load()
	if err != nil {
		return err
	}

	var firstErr error
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		prog, err := parser.Parse(path, string(src), limits.PointerSize)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, s := range globalSymbols(prog) {
			fmt.Fprintf(stdio.Stdout, "%s: %s %s %s\n", path, s.kind, s.name, s.sig)
		}
	}
	return firstErr
}

// globalSymbols collects a program's global variables and functions and
// returns them sorted by name, breaking ties by kind so that a variable and
// a function sharing a name (impossible in a resolved program, but the sort
// must still be total) print in a stable order.
func globalSymbols(prog *ast.Program) []symbol {
	syms := make([]symbol, 0, len(prog.Globals)+len(prog.Functions))
	for _, v := range prog.Globals {
		syms = append(syms, symbol{name: v.Name(), kind: "var", sig: v.Type.Name()})
	}
	for _, f := range prog.Functions {
		syms = append(syms, symbol{name: f.Name(), kind: "func", sig: funcSignature(f)})
	}
	slices.SortFunc(syms, func(a, b symbol) int {
		if a.name != b.name {
			return strings.Compare(a.name, b.name)
		}
		return strings.Compare(a.kind, b.kind)
	})
	return syms
}

func funcSignature(f *ast.FunctionDefinition) string {
	sig := "("
	for i, p := range f.Parameters() {
		if i > 0 {
			sig += ", "
		}
		sig += p.Type.Name()
	}
	sig += ") " + f.ReturnType.Name()
	return sig
}
