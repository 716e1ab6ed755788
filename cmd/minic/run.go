package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mna/mainer"

	"github.com/pschiffmann/minic/internal/config"
	"github.com/pschiffmann/minic/lang/machine"
)

// Run compiles and executes each file in args, printing its exit status
// (or fault) to stdout/stderr.
func (c *Cmd) Run(_ context.Context, stdio mainer.Stdio, args []string) error {
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

		m, err := machine.New(image, limits.MachineConfig())
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		err = m.Run()
		var haltErr *machine.HaltError
		switch {
		case errors.As(err, &haltErr):
			fmt.Fprintf(stdio.Stdout, "%s: exit status %d\n", path, haltErr.Status)
			if haltErr.Status != 0 && firstErr == nil {
				firstErr = err
			}
		default:
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
