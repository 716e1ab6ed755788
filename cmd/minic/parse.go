package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/pschiffmann/minic/internal/config"
	"github.com/pschiffmann/minic/lang/ast"
	"github.com/pschiffmann/minic/lang/parser"
)

// Parse parses each file in args and prints the resulting AST.
func (c *Cmd) Parse(_ context.Context, stdio mainer.Stdio, args []string) error {
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
		fmt.Fprint(stdio.Stdout, ast.Print(prog))
	}
	return firstErr
}
