package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/pschiffmann/minic/internal/config"
	"github.com/pschiffmann/minic/lang/compiler"
	"github.com/pschiffmann/minic/lang/parser"
)

// Compile parses and generates bytecode for each file in args, writing the
// resulting image (or, with --asm, its disassembly) to stdout.
func (c *Cmd) Compile(_ context.Context, stdio mainer.Stdio, args []string) error {
	limits, err := config.Load()
	if err != nil {
		return err
	}

	var firstErr error
	for _, path := range args {
		image, err := compileFile(path, limits.PointerSize)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if c.Asm {
			text, err := compiler.Disassemble(image)
			if err != nil {
				fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if _, err := stdio.Stdout.Write(text); err != nil && firstErr == nil {
				firstErr = err
			}
			continue
		}
		if _, err := stdio.Stdout.Write(image); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func compileFile(path string, pointerSize int) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog, err := parser.Parse(path, string(src), pointerSize)
	if err != nil {
		return nil, err
	}
	return compiler.Generate(prog)
}
